package network

import (
	"context"
	"fmt"

	"github.com/trestleaml/networkengine/pkg/entity"
	"github.com/trestleaml/networkengine/pkg/graphstore"
)

// BuildOptions configures subgraph construction around a center entity.
type BuildOptions struct {
	MaxDepth          int // traversal hops from the center
	MaxEntities       int // node cap, closest kept first
	MaxRelationships  int // edge cap in discovery order
	MinConfidence     float64
	RelationshipTypes []entity.RelationshipType // nil means all types
	ActiveOnly        bool
	VerifiedOnly      bool

	// IncludeEntityTypes restricts nodes to the listed entity types.
	// Empty means all. The center is always kept.
	IncludeEntityTypes []entity.EntityType

	// ExcludeEntityTypes drops nodes of the listed entity types. The
	// center is always kept.
	ExcludeEntityTypes []entity.EntityType
}

// DefaultBuildOptions returns the standard investigation defaults.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		MaxDepth:         2,
		MaxEntities:      100,
		MaxRelationships: 500,
		MinConfidence:    0.3,
	}
}

// Validate checks every option against its documented range.
func (o BuildOptions) Validate() error {
	if o.MaxDepth < 1 || o.MaxDepth > 5 {
		return optionError("max_depth", o.MaxDepth, "[1,5]")
	}
	if o.MaxEntities < 10 || o.MaxEntities > 500 {
		return optionError("max_entities", o.MaxEntities, "[10,500]")
	}
	if o.MaxRelationships < 20 || o.MaxRelationships > 2000 {
		return optionError("max_relationships", o.MaxRelationships, "[20,2000]")
	}
	if o.MinConfidence < 0 || o.MinConfidence > 1 {
		return optionError("min_confidence", o.MinConfidence, "[0,1]")
	}
	return nil
}

func (o BuildOptions) filter() graphstore.RelationshipFilter {
	return graphstore.RelationshipFilter{
		Types:         o.RelationshipTypes,
		MinConfidence: o.MinConfidence,
		ActiveOnly:    o.ActiveOnly,
		VerifiedOnly:  o.VerifiedOnly,
	}
}

// allows reports whether an entity of the given type may join the graph.
func (o BuildOptions) allows(t entity.EntityType) bool {
	for _, ex := range o.ExcludeEntityTypes {
		if t == ex {
			return false
		}
	}
	if len(o.IncludeEntityTypes) == 0 {
		return true
	}
	for _, in := range o.IncludeEntityTypes {
		if t == in {
			return true
		}
	}
	return false
}

// BuildResult is a built subgraph plus construction diagnostics.
type BuildResult struct {
	Graph *Graph

	// Truncated reports that a node or edge cap cut the neighbourhood.
	Truncated bool

	// Warnings lists the data-quality repairs applied during enrichment.
	Warnings []string
}

// Builder constructs bounded subgraphs from a graph store.
type Builder struct {
	store graphstore.GraphStore
}

// NewBuilder creates a Builder reading from the given store.
func NewBuilder(store graphstore.GraphStore) *Builder {
	return &Builder{store: store}
}

// Build traverses outward from centerID and assembles a bounded subgraph.
//
// Traversal failures abort the build. Enrichment failures do not: the
// topology is kept and the affected summaries fall back to defaults, with
// a warning recorded per repair.
func (b *Builder) Build(ctx context.Context, centerID string, opts BuildOptions) (*BuildResult, error) {
	if centerID == "" {
		return nil, fmt.Errorf("%w: center entity id is empty", ErrInvalidOptions)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	rels, err := b.store.BoundedTraversal(ctx, centerID, opts.MaxDepth, opts.filter())
	if err != nil {
		return nil, fmt.Errorf("%w: traversal from %s: %w", ErrBuildFailed, centerID, err)
	}

	var warnings []string
	truncated := false

	// Deduplicate and drop self loops while preserving discovery order.
	seen := make(map[string]bool, len(rels))
	selfLoops := 0
	kept := make([]entity.Relationship, 0, len(rels))
	for _, r := range rels {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		if r.SelfLoop() {
			selfLoops++
			continue
		}
		kept = append(kept, r)
	}
	if selfLoops > 0 {
		warnings = append(warnings, fmt.Sprintf("%d self-referencing relationships dropped", selfLoops))
	}

	if len(kept) > opts.MaxRelationships {
		kept = kept[:opts.MaxRelationships]
		truncated = true
	}

	// Resolve summaries for every surviving endpoint before any node-level
	// filtering, so entity-type filters see real types.
	idSet := map[string]bool{centerID: true}
	ids := []string{centerID}
	for _, r := range kept {
		if !idSet[r.SourceID] {
			idSet[r.SourceID] = true
			ids = append(ids, r.SourceID)
		}
		if !idSet[r.TargetID] {
			idSet[r.TargetID] = true
			ids = append(ids, r.TargetID)
		}
	}

	summaries := make(map[string]entity.Entity, len(ids))
	lookups, err := b.store.BatchLookupEntities(ctx, ids)
	if err != nil {
		warnings = append(warnings, "entity enrichment unavailable, summaries defaulted")
		lookups = nil
	}
	for _, id := range ids {
		e, ok := lookups[id]
		if !ok {
			if lookups != nil {
				warnings = append(warnings, fmt.Sprintf("entity %s not found, summary defaulted", id))
			}
			summaries[id] = entity.Unknown(id)
			continue
		}
		norm, fixes := e.Normalize()
		for _, fix := range fixes {
			warnings = append(warnings, fmt.Sprintf("entity %s: %s", id, fix))
		}
		summaries[id] = norm
	}

	// Entity-type filtering restricts which edges may carry the walk. The
	// center is exempt so the graph always has a root.
	admitted := func(id string) bool {
		return id == centerID || opts.allows(summaries[id].Type)
	}
	walkable := kept[:0:0]
	for _, r := range kept {
		if admitted(r.SourceID) && admitted(r.TargetID) {
			walkable = append(walkable, r)
		}
	}

	// Hop distances over the admitted edges. Discovery order doubles as
	// the closest-first ranking used when the node cap bites; anything no
	// longer reachable from the center drops out here.
	adj := make(map[string][]int)
	for i, r := range walkable {
		adj[r.SourceID] = append(adj[r.SourceID], i)
		adj[r.TargetID] = append(adj[r.TargetID], i)
	}

	hops := map[string]int{centerID: 0}
	order := []string{centerID}
	queue := []string{centerID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, idx := range adj[cur] {
			other := walkable[idx].Other(cur)
			if _, ok := hops[other]; ok {
				continue
			}
			hops[other] = hops[cur] + 1
			order = append(order, other)
			queue = append(queue, other)
		}
	}

	if len(order) > opts.MaxEntities {
		order = order[:opts.MaxEntities]
		truncated = true
	}

	g := NewGraph(centerID, opts.MaxDepth)
	for _, id := range order {
		g.AddNode(summaries[id], hops[id])
	}
	for _, r := range walkable {
		g.AddEdge(r)
	}

	return &BuildResult{Graph: g, Truncated: truncated, Warnings: warnings}, nil
}
