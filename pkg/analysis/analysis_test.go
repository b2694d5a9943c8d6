package analysis

import (
	"github.com/trestleaml/networkengine/pkg/entity"
	"github.com/trestleaml/networkengine/pkg/network"
)

// ent builds an entity summary with a derived risk level.
func ent(id string, risk float64) entity.Entity {
	return entity.Entity{
		ID:        id,
		Name:      id,
		Type:      entity.TypeIndividual,
		RiskScore: risk,
		RiskLevel: entity.RiskLevelFromScore(risk),
	}
}

// rel builds an active, verified relationship of the given type.
func rel(id, src, dst string, conf float64, typ entity.RelationshipType) entity.Relationship {
	return entity.Relationship{
		ID:         id,
		SourceID:   src,
		TargetID:   dst,
		Type:       typ,
		Strength:   entity.StrengthLikely,
		Confidence: conf,
		Verified:   true,
		Active:     true,
	}
}

// buildGraph assembles a graph from entity and relationship lists. The
// first entity becomes the center at hop 0, everything else hop 1; hop
// distances are irrelevant to the analyzers under test.
func buildGraph(ents []entity.Entity, rels []entity.Relationship) *network.Graph {
	g := network.NewGraph(ents[0].ID, 3)
	for i, e := range ents {
		hop := 1
		if i == 0 {
			hop = 0
		}
		g.AddNode(e, hop)
	}
	for _, r := range rels {
		g.AddEdge(r)
	}
	return g
}

// almost reports whether two floats agree to within 1e-9.
func almost(a, b float64) bool {
	d := a - b
	return d < 1e-9 && d > -1e-9
}
