package network

import (
	"context"
	"fmt"
	"sort"

	"github.com/trestleaml/networkengine/pkg/entity"
	"github.com/trestleaml/networkengine/pkg/graphstore"
)

// PathOptions configures the shortest-path search.
type PathOptions struct {
	MaxDepth          int // hop limit for the search
	MinConfidence     float64
	RelationshipTypes []entity.RelationshipType // nil means all types
}

// DefaultPathOptions returns the standard path search defaults.
func DefaultPathOptions() PathOptions {
	return PathOptions{
		MaxDepth:      6,
		MinConfidence: 0.3,
	}
}

// Validate checks every option against its documented range.
func (o PathOptions) Validate() error {
	if o.MaxDepth < 1 || o.MaxDepth > 10 {
		return optionError("max_depth", o.MaxDepth, "[1,10]")
	}
	if o.MinConfidence < 0 || o.MinConfidence > 1 {
		return optionError("min_confidence", o.MinConfidence, "[0,1]")
	}
	return nil
}

// PathResult describes the outcome of a shortest-path search. Found is
// false when no path exists within the hop limit; that is a result, not
// an error.
type PathResult struct {
	Found    bool                  `json:"found"`
	SourceID string                `json:"source_id"`
	TargetID string                `json:"target_id"`
	Nodes    []entity.Entity       `json:"nodes,omitempty"`
	Edges    []entity.Relationship `json:"edges,omitempty"`
	Hops     int                   `json:"hops"`
	Warnings []string              `json:"warnings,omitempty"`
}

// PathFinder searches for shortest relationship paths between entities.
type PathFinder struct {
	store graphstore.GraphStore
}

// NewPathFinder creates a PathFinder reading from the given store.
func NewPathFinder(store graphstore.GraphStore) *PathFinder {
	return &PathFinder{store: store}
}

// FindPath runs a breadth-first search from sourceID towards targetID,
// expanding one hop at a time through the store. Frontier nodes are
// processed in ascending id order and each node keeps the first edge that
// reached it, so results are stable across runs.
func (p *PathFinder) FindPath(ctx context.Context, sourceID, targetID string, opts PathOptions) (*PathResult, error) {
	if sourceID == "" || targetID == "" {
		return nil, fmt.Errorf("%w: source and target ids are required", ErrInvalidOptions)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if sourceID == targetID {
		nodes, warnings := p.resolvePathEntities(ctx, []string{sourceID})
		return &PathResult{
			Found:    true,
			SourceID: sourceID,
			TargetID: targetID,
			Nodes:    nodes,
			Hops:     0,
			Warnings: warnings,
		}, nil
	}

	filter := graphstore.RelationshipFilter{
		Types:         opts.RelationshipTypes,
		MinConfidence: opts.MinConfidence,
	}

	visited := map[string]bool{sourceID: true}
	parentNode := make(map[string]string)
	parentEdge := make(map[string]entity.Relationship)
	frontier := []string{sourceID}

	for depth := 1; depth <= opts.MaxDepth && len(frontier) > 0; depth++ {
		sort.Strings(frontier)

		var next []string
		for _, current := range frontier {
			edges, err := p.store.BoundedTraversal(ctx, current, 1, filter)
			if err != nil {
				return nil, fmt.Errorf("%w: expanding %s: %w", ErrPathFailed, current, err)
			}

			for _, edge := range edges {
				if edge.SelfLoop() {
					continue
				}
				neighbor := edge.Other(current)
				if visited[neighbor] {
					continue
				}
				visited[neighbor] = true
				parentNode[neighbor] = current
				parentEdge[neighbor] = edge

				if neighbor == targetID {
					return p.reconstruct(ctx, sourceID, targetID, parentNode, parentEdge), nil
				}
				next = append(next, neighbor)
			}
		}
		frontier = next
	}

	return &PathResult{
		Found:    false,
		SourceID: sourceID,
		TargetID: targetID,
	}, nil
}

// reconstruct walks the parent chain back from target to source and
// returns the path in source-to-target order.
func (p *PathFinder) reconstruct(ctx context.Context, sourceID, targetID string, parentNode map[string]string, parentEdge map[string]entity.Relationship) *PathResult {
	var ids []string
	var edges []entity.Relationship

	node := targetID
	for node != sourceID {
		ids = append(ids, node)
		edges = append(edges, parentEdge[node])
		node = parentNode[node]
	}
	ids = append(ids, sourceID)

	// Reverse into source-to-target order.
	for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
		ids[i], ids[j] = ids[j], ids[i]
	}
	for i, j := 0, len(edges)-1; i < j; i, j = i+1, j-1 {
		edges[i], edges[j] = edges[j], edges[i]
	}

	nodes, warnings := p.resolvePathEntities(ctx, ids)

	return &PathResult{
		Found:    true,
		SourceID: sourceID,
		TargetID: targetID,
		Nodes:    nodes,
		Edges:    edges,
		Hops:     len(edges),
		Warnings: warnings,
	}
}

// resolvePathEntities enriches path node ids with store summaries,
// substituting defaults when lookups fail.
func (p *PathFinder) resolvePathEntities(ctx context.Context, ids []string) ([]entity.Entity, []string) {
	var warnings []string

	summaries, err := p.store.BatchLookupEntities(ctx, ids)
	if err != nil {
		warnings = append(warnings, "entity enrichment unavailable, summaries defaulted")
		summaries = nil
	}

	nodes := make([]entity.Entity, len(ids))
	for i, id := range ids {
		e, ok := summaries[id]
		if !ok {
			if summaries != nil {
				warnings = append(warnings, fmt.Sprintf("entity %s not found, summary defaulted", id))
			}
			nodes[i] = entity.Unknown(id)
			continue
		}
		norm, fixes := e.Normalize()
		for _, fix := range fixes {
			warnings = append(warnings, fmt.Sprintf("entity %s: %s", id, fix))
		}
		nodes[i] = norm
	}
	return nodes, warnings
}
