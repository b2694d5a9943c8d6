package analysis

import (
	"errors"
	"testing"

	"github.com/trestleaml/networkengine/pkg/entity"
	"github.com/trestleaml/networkengine/pkg/network"
)

// starGraph is a center connected to four leaves with full-confidence
// shared_address edges (risk weight 0.5).
func starGraph() *network.Graph {
	ents := []entity.Entity{ent("c", 0.2), ent("a", 0.1), ent("b", 0.1), ent("d", 0.1), ent("e", 0.1)}
	rels := []entity.Relationship{
		rel("r1", "c", "a", 1.0, entity.RelSharedAddress),
		rel("r2", "c", "b", 1.0, entity.RelSharedAddress),
		rel("r3", "d", "c", 1.0, entity.RelSharedAddress),
		rel("r4", "c", "e", 1.0, entity.RelSharedAddress),
	}
	return buildGraph(ents, rels)
}

func TestAnalyzeCentrality_StarGraph(t *testing.T) {
	result, err := AnalyzeCentrality(starGraph(), DefaultCentralityOptions())
	if err != nil {
		t.Fatalf("AnalyzeCentrality: %v", err)
	}

	center := result.Metrics["c"]
	if center == nil {
		t.Fatal("center has no metrics")
	}
	if center.Degree != 4 {
		t.Errorf("center degree = %d, want 4", center.Degree)
	}
	if !almost(center.NormalizedDegree, 1.0) {
		t.Errorf("normalized degree = %g, want 1.0", center.NormalizedDegree)
	}
	// 0.4 x 1.0 + 0.3 x 1.0 (avg confidence) + 0.3 x 2.0 (risk-weighted).
	if !almost(center.CompositeScore, 1.3) {
		t.Errorf("composite = %g, want 1.3", center.CompositeScore)
	}
	if !almost(center.Closeness, 1.0) {
		t.Errorf("closeness = %g, want capped at 1.0", center.Closeness)
	}
	if !almost(center.Betweenness, 0.8) {
		t.Errorf("betweenness = %g, want 0.8", center.Betweenness)
	}

	leaf := result.Metrics["a"]
	if leaf.Degree != 1 {
		t.Errorf("leaf degree = %d, want 1", leaf.Degree)
	}
	if !almost(leaf.CompositeScore, 0.55) {
		t.Errorf("leaf composite = %g, want 0.55", leaf.CompositeScore)
	}
}

func TestAnalyzeCentrality_DirectionSplit(t *testing.T) {
	result, err := AnalyzeCentrality(starGraph(), DefaultCentralityOptions())
	if err != nil {
		t.Fatalf("AnalyzeCentrality: %v", err)
	}
	// r3 arrives at c, the other three leave it; the composite only cares
	// about the sum but both directions must be counted.
	if got := result.Metrics["d"].Degree; got != 1 {
		t.Errorf("d degree = %d, want 1", got)
	}
}

func TestAnalyzeCentrality_TopEntitiesOrdering(t *testing.T) {
	result, err := AnalyzeCentrality(starGraph(), CentralityOptions{TopN: 3})
	if err != nil {
		t.Fatalf("AnalyzeCentrality: %v", err)
	}
	if len(result.TopEntities) != 3 {
		t.Fatalf("top = %d entries, want 3", len(result.TopEntities))
	}
	if result.TopEntities[0].EntityID != "c" {
		t.Errorf("top[0] = %s, want c", result.TopEntities[0].EntityID)
	}
	// Leaves all score identically; ties break by ascending id.
	if result.TopEntities[1].EntityID != "a" || result.TopEntities[2].EntityID != "b" {
		t.Errorf("ties = %s, %s, want a, b", result.TopEntities[1].EntityID, result.TopEntities[2].EntityID)
	}
}

func TestAnalyzeCentrality_InactiveEdgesIgnored(t *testing.T) {
	inactive := rel("r1", "c", "a", 1.0, entity.RelSharedAddress)
	inactive.Active = false
	g := buildGraph(
		[]entity.Entity{ent("c", 0.2), ent("a", 0.1)},
		[]entity.Relationship{inactive},
	)

	result, err := AnalyzeCentrality(g, DefaultCentralityOptions())
	if err != nil {
		t.Fatalf("AnalyzeCentrality: %v", err)
	}
	if got := result.Metrics["c"].Degree; got != 0 {
		t.Errorf("degree = %d, inactive edge should not count", got)
	}
}

func TestAnalyzeCentrality_CandidatesRestrictMetrics(t *testing.T) {
	result, err := AnalyzeCentrality(starGraph(), CentralityOptions{
		Candidates: []string{"c", "a"},
		TopN:       10,
	})
	if err != nil {
		t.Fatalf("AnalyzeCentrality: %v", err)
	}
	if len(result.Metrics) != 2 {
		t.Fatalf("metrics = %d entries, want 2", len(result.Metrics))
	}
	// Edges to non-candidates are excluded, so c keeps only the c-a edge.
	if got := result.Metrics["c"].Degree; got != 1 {
		t.Errorf("restricted degree = %d, want 1", got)
	}
}

func TestAnalyzeCentrality_IsolatedEntityScoresZero(t *testing.T) {
	g := buildGraph([]entity.Entity{ent("c", 0.2), ent("x", 0.1)}, nil)

	result, err := AnalyzeCentrality(g, DefaultCentralityOptions())
	if err != nil {
		t.Fatalf("AnalyzeCentrality: %v", err)
	}
	m := result.Metrics["x"]
	if m == nil {
		t.Fatal("isolated entity must still get a record")
	}
	if m.Degree != 0 || m.CompositeScore != 0 {
		t.Errorf("isolated metrics = %+v, want zeros", m)
	}
}

func TestAnalyzeCentrality_RejectsBadTopN(t *testing.T) {
	_, err := AnalyzeCentrality(starGraph(), CentralityOptions{TopN: 0})
	if !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("err = %v, want ErrInvalidRequest", err)
	}
}
