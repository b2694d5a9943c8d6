package analysis

import (
	"sort"

	"github.com/trestleaml/networkengine/pkg/entity"
	"github.com/trestleaml/networkengine/pkg/network"
)

// Hub results are capped at this many entries regardless of how many
// entities clear the degree threshold.
const maxHubs = 20

// HubOptions configures hub detection.
type HubOptions struct {
	// Candidates restricts detection to the listed entities. Nil means
	// every node in the graph.
	Candidates []string

	// MinConnections is the combined in+out active degree an entity needs
	// to qualify as a hub.
	MinConnections int

	// ConnectionTypes restricts which relationship types count towards
	// the degree. Nil means all types.
	ConnectionTypes []entity.RelationshipType

	// IncludeRiskAnalysis adds entity risk enrichment and the influence
	// score to each hub.
	IncludeRiskAnalysis bool
}

// DefaultHubOptions returns the standard defaults.
func DefaultHubOptions() HubOptions {
	return HubOptions{
		MinConnections:      5,
		IncludeRiskAnalysis: true,
	}
}

// Validate checks every option against its documented range.
func (o HubOptions) Validate() error {
	if o.MinConnections < 1 {
		return requestError("min_connections", o.MinConnections, ">= 1")
	}
	return nil
}

func (o HubOptions) countsType(t entity.RelationshipType) bool {
	if len(o.ConnectionTypes) == 0 {
		return true
	}
	for _, ct := range o.ConnectionTypes {
		if t == ct {
			return true
		}
	}
	return false
}

// Hub is one detected high-degree entity.
type Hub struct {
	EntityID      string  `json:"entity_id"`
	Degree        int     `json:"degree"`
	OutDegree     int     `json:"out_degree"`
	InDegree      int     `json:"in_degree"`
	AvgConfidence float64 `json:"avg_confidence"`
	DistinctTypes int     `json:"distinct_relationship_types"`

	// Risk enrichment, populated when IncludeRiskAnalysis is set.
	Name           string            `json:"name,omitempty"`
	EntityType     entity.EntityType `json:"entity_type,omitempty"`
	RiskScore      float64           `json:"risk_score,omitempty"`
	RiskLevel      entity.RiskLevel  `json:"risk_level,omitempty"`
	InfluenceScore float64           `json:"influence_score,omitempty"`
}

// DetectHubs finds entities whose combined active-edge degree reaches
// MinConnections, ranked by degree descending with ties broken by
// ascending id, truncated to the top 20.
//
// The influence score blends degree, average edge confidence, type
// diversity and the entity's own risk:
//
//	0.4 x degree + 0.3 x (avg confidence x 30) + 0.2 x (types x 5) + 0.1 x (risk x 10)
func DetectHubs(g *network.Graph, opts HubOptions) ([]Hub, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	candidates := opts.Candidates
	if candidates == nil {
		candidates = g.NodeIDs()
	} else {
		candidates = append([]string(nil), candidates...)
		sort.Strings(candidates)
	}

	hubs := make([]Hub, 0)
	for _, id := range candidates {
		if !g.Has(id) {
			continue
		}

		h := Hub{EntityID: id}
		confidenceSum := 0.0
		types := make(map[entity.RelationshipType]bool)

		for _, e := range g.EdgesOf(id) {
			if !e.Active || !opts.countsType(e.Type) {
				continue
			}
			if e.SourceID == id {
				h.OutDegree++
			} else {
				h.InDegree++
			}
			confidenceSum += e.Confidence
			types[e.Type] = true
		}

		h.Degree = h.OutDegree + h.InDegree
		if h.Degree < opts.MinConnections {
			continue
		}
		h.AvgConfidence = confidenceSum / float64(h.Degree)
		h.DistinctTypes = len(types)

		if opts.IncludeRiskAnalysis {
			e := g.Node(id).Entity
			h.Name = e.Name
			h.EntityType = e.Type
			h.RiskScore = e.RiskScore
			h.RiskLevel = e.RiskLevel
			h.InfluenceScore = 0.4*float64(h.Degree) +
				0.3*(h.AvgConfidence*30) +
				0.2*(float64(h.DistinctTypes)*5) +
				0.1*(e.RiskScore*10)
		}

		hubs = append(hubs, h)
	}

	sort.SliceStable(hubs, func(i, j int) bool {
		if hubs[i].Degree != hubs[j].Degree {
			return hubs[i].Degree > hubs[j].Degree
		}
		return hubs[i].EntityID < hubs[j].EntityID
	})
	if len(hubs) > maxHubs {
		hubs = hubs[:maxHubs]
	}
	return hubs, nil
}
