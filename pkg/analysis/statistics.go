package analysis

import (
	"math"

	"github.com/trestleaml/networkengine/pkg/entity"
	"github.com/trestleaml/networkengine/pkg/network"
)

// The average risk contribution of high-risk neighbours never lifts a
// node's network risk by more than this.
const maxConnectionRiskFactor = 0.5

// Statistics summarizes a built subgraph for the response envelope.
type Statistics struct {
	TotalEntities      int     `json:"total_entities"`
	TotalRelationships int     `json:"total_relationships"`
	Density            float64 `json:"density"`
	AvgConfidence      float64 `json:"avg_confidence"`
	VerifiedRatio      float64 `json:"verified_ratio"`

	RiskDistribution             map[entity.RiskLevel]int        `json:"risk_distribution"`
	EntityTypeDistribution       map[entity.EntityType]int       `json:"entity_type_distribution"`
	RelationshipTypeDistribution map[entity.RelationshipType]int `json:"relationship_type_distribution"`
}

// ComputeStatistics derives the aggregate statistics of a graph in one
// pass over nodes and edges.
func ComputeStatistics(g *network.Graph) *Statistics {
	s := &Statistics{
		TotalEntities:                g.NodeCount(),
		TotalRelationships:           g.EdgeCount(),
		Density:                      g.Density(),
		RiskDistribution:             make(map[entity.RiskLevel]int),
		EntityTypeDistribution:       make(map[entity.EntityType]int),
		RelationshipTypeDistribution: make(map[entity.RelationshipType]int),
	}

	for _, n := range g.NodeList() {
		s.RiskDistribution[n.Entity.RiskLevel]++
		s.EntityTypeDistribution[n.Entity.Type]++
	}

	verified := 0
	confidenceSum := 0.0
	for _, e := range g.Edges() {
		s.RelationshipTypeDistribution[e.Type]++
		confidenceSum += e.Confidence
		if e.Verified {
			verified++
		}
	}
	if n := g.EdgeCount(); n > 0 {
		s.AvgConfidence = confidenceSum / float64(n)
		s.VerifiedRatio = float64(verified) / float64(n)
	}

	return s
}

// NetworkRiskScores lifts each node's base risk by the capped average
// contribution of its high and critical direct neighbours:
//
//	min(base + min(sum(elevated neighbour risk) / neighbours, 0.5), 1.0)
func NetworkRiskScores(g *network.Graph) map[string]float64 {
	scores := make(map[string]float64, g.NodeCount())

	for _, n := range g.NodeList() {
		id := n.Entity.ID
		neighbors := g.Neighbors(id)

		factor := 0.0
		if len(neighbors) > 0 {
			elevatedSum := 0.0
			for _, nb := range neighbors {
				other := g.Node(nb)
				if other != nil && other.Entity.RiskLevel.Elevated() {
					elevatedSum += other.Entity.RiskScore
				}
			}
			factor = math.Min(elevatedSum/float64(len(neighbors)), maxConnectionRiskFactor)
		}

		scores[id] = math.Min(n.Entity.RiskScore+factor, 1.0)
	}

	return scores
}
