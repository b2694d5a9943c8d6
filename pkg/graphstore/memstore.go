package graphstore

import (
	"context"
	"sort"
	"sync"

	"github.com/trestleaml/networkengine/pkg/entity"
)

// MemStore is an in-memory GraphStore backed by adjacency maps. It serves
// unit tests, the demo commands, and small datasets loaded from fixtures.
type MemStore struct {
	mu            sync.RWMutex
	closed        bool
	entities      map[string]entity.Entity
	relationships map[string]entity.Relationship
	adjacency     map[string][]string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		entities:      make(map[string]entity.Entity),
		relationships: make(map[string]entity.Relationship),
		adjacency:     make(map[string][]string),
	}
}

// PutEntity inserts or replaces an entity summary.
func (s *MemStore) PutEntity(e entity.Entity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[e.ID] = e
}

// PutRelationship inserts or replaces a relationship and indexes it under
// both endpoints.
func (s *MemStore) PutRelationship(r entity.Relationship) error {
	if r.ID == "" || r.SourceID == "" || r.TargetID == "" {
		return NewError("PutRelationship").Relationship(r.ID).Cause(ErrBadRecord).Context("empty id").Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.relationships[r.ID]; !exists {
		s.adjacency[r.SourceID] = append(s.adjacency[r.SourceID], r.ID)
		if r.TargetID != r.SourceID {
			s.adjacency[r.TargetID] = append(s.adjacency[r.TargetID], r.ID)
		}
	}
	s.relationships[r.ID] = r
	return nil
}

// Seed bulk-loads entities and relationships, typically from a fixture.
func (s *MemStore) Seed(entities []entity.Entity, relationships []entity.Relationship) error {
	for _, e := range entities {
		s.PutEntity(e)
	}
	for _, r := range relationships {
		if err := s.PutRelationship(r); err != nil {
			return err
		}
	}
	return nil
}

// EntityCount returns the number of stored entities.
func (s *MemStore) EntityCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entities)
}

// RelationshipCount returns the number of stored relationships.
func (s *MemStore) RelationshipCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.relationships)
}

// Close marks the store closed. Subsequent reads fail with ErrStoreClosed.
func (s *MemStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// BoundedTraversal implements GraphStore using a level-order walk so the
// documented hop ordering holds.
func (s *MemStore) BoundedTraversal(ctx context.Context, entityID string, maxDepth int, filter RelationshipFilter) ([]entity.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewError("BoundedTraversal").Traversal(entityID).Cause(ErrStoreClosed).Err()
	}
	if err := ctx.Err(); err != nil {
		return nil, NewError("BoundedTraversal").Traversal(entityID).Cause(err).Err()
	}

	visited := map[string]bool{entityID: true}
	collected := make(map[string]bool)
	frontier := []string{entityID}
	var out []entity.Relationship

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		if err := ctx.Err(); err != nil {
			return nil, NewError("BoundedTraversal").Traversal(entityID).Cause(err).Err()
		}

		var level []entity.Relationship
		for _, id := range frontier {
			for _, relID := range s.adjacency[id] {
				if collected[relID] {
					continue
				}
				r := s.relationships[relID]
				if !filter.Match(r) {
					continue
				}
				collected[relID] = true
				level = append(level, r)
			}
		}
		sort.Slice(level, func(i, j int) bool { return level[i].ID < level[j].ID })
		out = append(out, level...)

		var next []string
		for _, r := range level {
			if !visited[r.SourceID] {
				visited[r.SourceID] = true
				next = append(next, r.SourceID)
			}
			if !visited[r.TargetID] {
				visited[r.TargetID] = true
				next = append(next, r.TargetID)
			}
		}
		frontier = next
	}

	return out, nil
}

// LookupEntity implements GraphStore.
func (s *MemStore) LookupEntity(ctx context.Context, entityID string) (entity.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return entity.Entity{}, NewError("LookupEntity").Entity(entityID).Cause(ErrStoreClosed).Err()
	}
	if err := ctx.Err(); err != nil {
		return entity.Entity{}, NewError("LookupEntity").Entity(entityID).Cause(err).Err()
	}

	e, ok := s.entities[entityID]
	if !ok {
		return entity.Entity{}, EntityNotFoundError(entityID)
	}
	return e, nil
}

// BatchLookupEntities implements GraphStore. Unknown ids are skipped.
func (s *MemStore) BatchLookupEntities(ctx context.Context, entityIDs []string) (map[string]entity.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewError("BatchLookupEntities").Store().Cause(ErrStoreClosed).Err()
	}
	if err := ctx.Err(); err != nil {
		return nil, NewError("BatchLookupEntities").Store().Cause(err).Err()
	}

	found := make(map[string]entity.Entity, len(entityIDs))
	for _, id := range entityIDs {
		if e, ok := s.entities[id]; ok {
			found[id] = e
		}
	}
	return found, nil
}
