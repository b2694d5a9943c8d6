package graphstore

import (
	"context"
	"time"

	"github.com/trestleaml/networkengine/pkg/entity"
)

// CallRecorder receives one observation per backend call.
// *metrics.Registry satisfies it.
type CallRecorder interface {
	RecordStoreCall(op string, duration time.Duration, err error)
}

// InstrumentedStore wraps a GraphStore and records the duration and
// outcome of every backend call.
type InstrumentedStore struct {
	inner GraphStore
	rec   CallRecorder
}

// Instrument wraps store so every call is reported to rec.
func Instrument(store GraphStore, rec CallRecorder) *InstrumentedStore {
	return &InstrumentedStore{inner: store, rec: rec}
}

// BoundedTraversal implements GraphStore.
func (s *InstrumentedStore) BoundedTraversal(ctx context.Context, entityID string, maxDepth int, filter RelationshipFilter) ([]entity.Relationship, error) {
	start := time.Now()
	rels, err := s.inner.BoundedTraversal(ctx, entityID, maxDepth, filter)
	s.rec.RecordStoreCall("bounded_traversal", time.Since(start), err)
	return rels, err
}

// LookupEntity implements GraphStore.
func (s *InstrumentedStore) LookupEntity(ctx context.Context, entityID string) (entity.Entity, error) {
	start := time.Now()
	e, err := s.inner.LookupEntity(ctx, entityID)
	reported := err
	if IsNotFound(err) {
		// An unknown id is a valid answer, not a backend failure.
		reported = nil
	}
	s.rec.RecordStoreCall("lookup_entity", time.Since(start), reported)
	return e, err
}

// BatchLookupEntities implements GraphStore.
func (s *InstrumentedStore) BatchLookupEntities(ctx context.Context, entityIDs []string) (map[string]entity.Entity, error) {
	start := time.Now()
	found, err := s.inner.BatchLookupEntities(ctx, entityIDs)
	s.rec.RecordStoreCall("batch_lookup_entities", time.Since(start), err)
	return found, err
}
