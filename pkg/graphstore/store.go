// Package graphstore defines the read-only contract the analysis engine
// requires from an entity graph backend, together with an in-memory
// implementation used by tests and the demo tooling. Production backends
// live in the pgstore and httpstore subpackages.
package graphstore

import (
	"context"

	"github.com/trestleaml/networkengine/pkg/entity"
)

// RelationshipFilter constrains which relationships a traversal may follow.
// The zero value admits every relationship.
type RelationshipFilter struct {
	// Types restricts edges to the listed relationship types. Empty means all.
	Types []entity.RelationshipType

	// MinConfidence drops edges whose confidence is below the threshold.
	MinConfidence float64

	// ActiveOnly drops relationships marked inactive.
	ActiveOnly bool

	// VerifiedOnly drops relationships that have not been verified.
	VerifiedOnly bool
}

// Match reports whether the relationship passes the filter.
func (f RelationshipFilter) Match(r entity.Relationship) bool {
	if r.Confidence < f.MinConfidence {
		return false
	}
	if f.ActiveOnly && !r.Active {
		return false
	}
	if f.VerifiedOnly && !r.Verified {
		return false
	}
	if len(f.Types) == 0 {
		return true
	}
	for _, t := range f.Types {
		if r.Type == t {
			return true
		}
	}
	return false
}

// WithTypes returns a copy of the filter restricted to the given types.
func (f RelationshipFilter) WithTypes(types ...entity.RelationshipType) RelationshipFilter {
	f.Types = types
	return f
}

// GraphStore is the read-only view of the entity graph the engine consumes.
//
// Implementations must be safe for concurrent use. All methods honour
// context cancellation.
type GraphStore interface {
	// BoundedTraversal walks outward from entityID up to maxDepth hops,
	// following edges in both directions, and returns every relationship
	// that passes the filter.
	//
	// Results are ordered by hop (edges reachable in fewer hops first) and
	// by relationship ID within a hop, and contain each relationship at
	// most once. An unknown entityID yields an empty result, not an error.
	BoundedTraversal(ctx context.Context, entityID string, maxDepth int, filter RelationshipFilter) ([]entity.Relationship, error)

	// LookupEntity resolves a single entity summary. Returns an error
	// wrapping ErrEntityNotFound when the id is unknown.
	LookupEntity(ctx context.Context, entityID string) (entity.Entity, error)

	// BatchLookupEntities resolves many summaries in one round trip. IDs
	// the store cannot resolve are simply absent from the result; only
	// backend failures produce an error.
	BatchLookupEntities(ctx context.Context, entityIDs []string) (map[string]entity.Entity, error)
}
