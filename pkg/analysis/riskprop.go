package analysis

import (
	"fmt"
	"sort"

	"github.com/trestleaml/networkengine/pkg/entity"
	"github.com/trestleaml/networkengine/pkg/network"
)

// PropagationOptions configures risk diffusion from a seed entity.
type PropagationOptions struct {
	// MaxDepth bounds how many hops risk may travel.
	MaxDepth int

	// Factor is the per-hop decay multiplier in (0,1].
	Factor float64

	// MinScore is the floor below which risk stops propagating along an
	// edge.
	MinScore float64

	// RelationshipTypes restricts which edge types carry risk. Nil means
	// all types.
	RelationshipTypes []entity.RelationshipType
}

// DefaultPropagationOptions returns the standard defaults.
func DefaultPropagationOptions() PropagationOptions {
	return PropagationOptions{
		MaxDepth: 3,
		Factor:   0.5,
		MinScore: 0.1,
	}
}

// Validate checks every option against its documented range.
func (o PropagationOptions) Validate() error {
	if o.MaxDepth < 1 || o.MaxDepth > 5 {
		return requestError("max_depth", o.MaxDepth, "[1,5]")
	}
	if o.Factor <= 0 || o.Factor > 1 {
		return requestError("propagation_factor", o.Factor, "(0,1]")
	}
	if o.MinScore < 0 || o.MinScore > 1 {
		return requestError("min_propagated_score", o.MinScore, "[0,1]")
	}
	return nil
}

func (o PropagationOptions) carriesType(t entity.RelationshipType) bool {
	if len(o.RelationshipTypes) == 0 {
		return true
	}
	for _, rt := range o.RelationshipTypes {
		if t == rt {
			return true
		}
	}
	return false
}

// PropagationResult maps each reached entity to its propagated risk value
// and the edge path that value arrived over.
type PropagationResult struct {
	SourceID string `json:"source_entity_id"`

	// SeedRisk is the source entity's own base risk score.
	SeedRisk float64 `json:"seed_risk"`

	// Scores holds the propagated value per reached entity. The source
	// itself is not listed.
	Scores map[string]float64 `json:"scores"`

	// Paths records, per reached entity, the edges risk travelled to get
	// there, in source-to-entity order.
	Paths map[string][]entity.Relationship `json:"paths"`

	// Depths records how many hops from the source each value arrived at.
	Depths map[string]int `json:"depths"`
}

// PropagateRisk diffuses the seed entity's risk outward level by level.
//
// Each hop attenuates the parent's value by the decay factor, the edge
// confidence and the relationship-type risk weight. An entity keeps the
// first value that reaches it: later paths, even stronger ones, are not
// considered. Expansion stops when a whole level produces no new value
// or MaxDepth is exhausted.
func PropagateRisk(g *network.Graph, sourceID string, opts PropagationOptions) (*PropagationResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	seed := g.Node(sourceID)
	if seed == nil {
		return nil, fmt.Errorf("%w: %s", ErrSeedNotInGraph, sourceID)
	}

	res := &PropagationResult{
		SourceID: sourceID,
		SeedRisk: seed.Entity.RiskScore,
		Scores:   make(map[string]float64),
		Paths:    make(map[string][]entity.Relationship),
		Depths:   make(map[string]int),
	}

	// A seed too weak to clear the floor propagates nothing.
	if res.SeedRisk < opts.MinScore {
		return res, nil
	}

	reached := map[string]float64{sourceID: res.SeedRisk}
	frontier := []string{sourceID}

	for depth := 1; depth <= opts.MaxDepth && len(frontier) > 0; depth++ {
		sort.Strings(frontier)

		var next []string
		for _, parent := range frontier {
			parentRisk := reached[parent]
			for _, e := range g.EdgesOf(parent) {
				if !e.Active || !opts.carriesType(e.Type) {
					continue
				}
				neighbor := e.Other(parent)
				if _, done := reached[neighbor]; done {
					continue
				}

				propagated := parentRisk * opts.Factor * e.Confidence * e.Type.RiskWeight()
				if propagated < opts.MinScore {
					// The edge is skipped, not the neighbor: another
					// edge this level or deeper may still reach it.
					continue
				}

				reached[neighbor] = propagated
				res.Scores[neighbor] = propagated
				res.Depths[neighbor] = depth
				path := append(append([]entity.Relationship(nil), res.Paths[parent]...), e)
				res.Paths[neighbor] = path
				next = append(next, neighbor)
			}
		}
		frontier = next
	}

	return res, nil
}
