package analysis

import (
	"errors"
	"testing"

	"github.com/trestleaml/networkengine/pkg/entity"
)

// hubGraph centres six edges of two types on "hub"; every other entity
// has degree one or two.
func hubGraph() ([]entity.Entity, []entity.Relationship) {
	ents := []entity.Entity{
		ent("hub", 0.5),
		ent("n1", 0.1), ent("n2", 0.1), ent("n3", 0.1),
		ent("n4", 0.1), ent("n5", 0.1), ent("n6", 0.1),
	}
	rels := []entity.Relationship{
		rel("r1", "hub", "n1", 0.8, entity.RelDirectorOf),
		rel("r2", "hub", "n2", 0.8, entity.RelDirectorOf),
		rel("r3", "hub", "n3", 0.8, entity.RelDirectorOf),
		rel("r4", "n4", "hub", 0.8, entity.RelBusinessAssociate),
		rel("r5", "n5", "hub", 0.8, entity.RelBusinessAssociate),
		rel("r6", "hub", "n6", 0.8, entity.RelBusinessAssociate),
		rel("r7", "n1", "n2", 0.8, entity.RelSharedAddress),
	}
	return ents, rels
}

func TestDetectHubs_DegreeThreshold(t *testing.T) {
	ents, rels := hubGraph()
	hubs, err := DetectHubs(buildGraph(ents, rels), DefaultHubOptions())
	if err != nil {
		t.Fatalf("DetectHubs: %v", err)
	}

	if len(hubs) != 1 {
		t.Fatalf("hubs = %d, want 1", len(hubs))
	}
	h := hubs[0]
	if h.EntityID != "hub" {
		t.Errorf("hub = %s", h.EntityID)
	}
	if h.Degree != 6 || h.OutDegree != 4 || h.InDegree != 2 {
		t.Errorf("degree = %d (out %d, in %d), want 6 (4, 2)", h.Degree, h.OutDegree, h.InDegree)
	}
	if !almost(h.AvgConfidence, 0.8) {
		t.Errorf("avg confidence = %g, want 0.8", h.AvgConfidence)
	}
	if h.DistinctTypes != 2 {
		t.Errorf("distinct types = %d, want 2", h.DistinctTypes)
	}
}

func TestDetectHubs_InfluenceScore(t *testing.T) {
	ents, rels := hubGraph()
	hubs, err := DetectHubs(buildGraph(ents, rels), DefaultHubOptions())
	if err != nil {
		t.Fatalf("DetectHubs: %v", err)
	}

	// 0.4x6 + 0.3x(0.8x30) + 0.2x(2x5) + 0.1x(0.5x10) = 12.1
	h := hubs[0]
	if !almost(h.InfluenceScore, 12.1) {
		t.Errorf("influence = %g, want 12.1", h.InfluenceScore)
	}
	if h.RiskLevel != entity.RiskMedium {
		t.Errorf("risk level = %s, want medium", h.RiskLevel)
	}
}

func TestDetectHubs_WithoutRiskAnalysis(t *testing.T) {
	ents, rels := hubGraph()
	hubs, err := DetectHubs(buildGraph(ents, rels), HubOptions{MinConnections: 5})
	if err != nil {
		t.Fatalf("DetectHubs: %v", err)
	}
	if hubs[0].InfluenceScore != 0 || hubs[0].Name != "" {
		t.Errorf("enrichment should be absent: %+v", hubs[0])
	}
}

func TestDetectHubs_OrderingAndTies(t *testing.T) {
	ents, rels := hubGraph()
	// Threshold 2 admits n1 and n2 (degree 2 each) behind the hub.
	hubs, err := DetectHubs(buildGraph(ents, rels), HubOptions{MinConnections: 2, IncludeRiskAnalysis: true})
	if err != nil {
		t.Fatalf("DetectHubs: %v", err)
	}
	if len(hubs) != 3 {
		t.Fatalf("hubs = %d, want 3", len(hubs))
	}
	if hubs[0].EntityID != "hub" || hubs[1].EntityID != "n1" || hubs[2].EntityID != "n2" {
		t.Errorf("order = %s, %s, %s", hubs[0].EntityID, hubs[1].EntityID, hubs[2].EntityID)
	}
}

func TestDetectHubs_TypeFilter(t *testing.T) {
	ents, rels := hubGraph()
	hubs, err := DetectHubs(buildGraph(ents, rels), HubOptions{
		MinConnections:  3,
		ConnectionTypes: []entity.RelationshipType{entity.RelDirectorOf},
	})
	if err != nil {
		t.Fatalf("DetectHubs: %v", err)
	}
	if len(hubs) != 1 {
		t.Fatalf("hubs = %d, want 1", len(hubs))
	}
	if hubs[0].Degree != 3 {
		t.Errorf("filtered degree = %d, want 3", hubs[0].Degree)
	}
}

func TestDetectHubs_InactiveEdgesIgnored(t *testing.T) {
	ents, rels := hubGraph()
	for i := range rels {
		rels[i].Active = false
	}
	hubs, err := DetectHubs(buildGraph(ents, rels), HubOptions{MinConnections: 1})
	if err != nil {
		t.Fatalf("DetectHubs: %v", err)
	}
	if len(hubs) != 0 {
		t.Errorf("hubs = %d, inactive edges should not qualify anyone", len(hubs))
	}
}

func TestDetectHubs_RejectsBadThreshold(t *testing.T) {
	ents, rels := hubGraph()
	if _, err := DetectHubs(buildGraph(ents, rels), HubOptions{MinConnections: 0}); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("err = %v, want ErrInvalidRequest", err)
	}
}
