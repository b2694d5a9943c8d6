package network

import (
	"testing"

	"github.com/trestleaml/networkengine/pkg/entity"
)

func node(id string) entity.Entity {
	return entity.Entity{ID: id, Name: id, Type: entity.TypeIndividual, RiskScore: 0.1, RiskLevel: entity.RiskLow}
}

func edge(id, src, dst string, conf float64) entity.Relationship {
	return entity.Relationship{
		ID:         id,
		SourceID:   src,
		TargetID:   dst,
		Type:       entity.RelBusinessAssociate,
		Strength:   entity.StrengthLikely,
		Confidence: conf,
		Verified:   true,
		Active:     true,
	}
}

func triangleGraph() *Graph {
	g := NewGraph("a", 2)
	g.AddNode(node("a"), 0)
	g.AddNode(node("b"), 1)
	g.AddNode(node("c"), 1)
	g.AddEdge(edge("rel-ab", "a", "b", 0.9))
	g.AddEdge(edge("rel-ac", "a", "c", 0.8))
	g.AddEdge(edge("rel-bc", "b", "c", 0.7))
	return g
}

func TestGraph_DegreeCounts(t *testing.T) {
	g := triangleGraph()

	if g.NodeCount() != 3 || g.EdgeCount() != 3 {
		t.Fatalf("expected 3 nodes and 3 edges, got %d/%d", g.NodeCount(), g.EdgeCount())
	}
	for _, id := range []string{"a", "b", "c"} {
		if g.Degree(id) != 2 {
			t.Errorf("degree(%s) = %d, want 2", id, g.Degree(id))
		}
	}
	if g.OutDegree("a") != 2 || g.InDegree("a") != 0 {
		t.Errorf("a: out %d in %d, want 2/0", g.OutDegree("a"), g.InDegree("a"))
	}
	if g.OutDegree("c") != 0 || g.InDegree("c") != 2 {
		t.Errorf("c: out %d in %d, want 0/2", g.OutDegree("c"), g.InDegree("c"))
	}
	if g.Node("a").ConnectionCount != 2 {
		t.Errorf("connection count not maintained, got %d", g.Node("a").ConnectionCount)
	}
}

func TestGraph_NeighborsDeduplicated(t *testing.T) {
	g := NewGraph("a", 1)
	g.AddNode(node("a"), 0)
	g.AddNode(node("b"), 1)
	g.AddEdge(edge("rel-1", "a", "b", 0.9))
	g.AddEdge(edge("rel-2", "b", "a", 0.8))

	got := g.Neighbors("a")
	if len(got) != 1 || got[0] != "b" {
		t.Errorf("Neighbors(a) = %v, want [b]", got)
	}
	if g.Degree("a") != 2 {
		t.Errorf("parallel edges should both count toward degree, got %d", g.Degree("a"))
	}
}

func TestGraph_Density(t *testing.T) {
	g := triangleGraph()
	if d := g.Density(); d != 1.0 {
		t.Errorf("triangle density = %.3f, want 1.0", d)
	}

	single := NewGraph("a", 1)
	single.AddNode(node("a"), 0)
	if d := single.Density(); d != 0 {
		t.Errorf("single node density = %.3f, want 0", d)
	}
}

func TestGraph_NodeListOrderedByHopThenID(t *testing.T) {
	g := NewGraph("m", 2)
	g.AddNode(node("m"), 0)
	g.AddNode(node("z"), 1)
	g.AddNode(node("b"), 1)
	g.AddNode(node("a"), 2)

	list := g.NodeList()
	want := []string{"m", "b", "z", "a"}
	for i, n := range list {
		if n.Entity.ID != want[i] {
			t.Errorf("position %d: got %s, want %s", i, n.Entity.ID, want[i])
		}
	}
}

func TestGraph_AddEdgeIgnoresInvalid(t *testing.T) {
	g := NewGraph("a", 1)
	g.AddNode(node("a"), 0)
	g.AddNode(node("b"), 1)

	g.AddEdge(edge("rel-loop", "a", "a", 0.9))
	g.AddEdge(edge("rel-ghost", "a", "ghost", 0.9))
	g.AddEdge(edge("rel-ok", "a", "b", 0.9))

	if g.EdgeCount() != 1 {
		t.Errorf("expected only the valid edge, got %d", g.EdgeCount())
	}
	if g.Degree("a") != 1 {
		t.Errorf("invalid edges must not affect degree, got %d", g.Degree("a"))
	}
}

func TestGraph_ReaddedNodeKeepsFirstHop(t *testing.T) {
	g := NewGraph("a", 2)
	g.AddNode(node("b"), 1)
	enriched := node("b")
	enriched.Name = "Bravo Holdings"
	g.AddNode(enriched, 2)

	n := g.Node("b")
	if n.Hop != 1 {
		t.Errorf("hop rewritten on re-add: got %d, want 1", n.Hop)
	}
	if n.Entity.Name != "Bravo Holdings" {
		t.Errorf("summary not updated on re-add: %q", n.Entity.Name)
	}
}
