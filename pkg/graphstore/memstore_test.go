package graphstore

import (
	"context"
	"errors"
	"testing"

	"github.com/trestleaml/networkengine/pkg/entity"
)

func rel(id, src, dst string, conf float64) entity.Relationship {
	return entity.Relationship{
		ID:         id,
		SourceID:   src,
		TargetID:   dst,
		Type:       entity.RelBusinessAssociate,
		Strength:   entity.StrengthLikely,
		Confidence: conf,
		Verified:   true,
		Active:     true,
	}
}

func seedStore(t *testing.T, rels ...entity.Relationship) *MemStore {
	t.Helper()
	s := NewMemStore()
	seen := make(map[string]bool)
	for _, r := range rels {
		if err := s.PutRelationship(r); err != nil {
			t.Fatalf("PutRelationship(%s): %v", r.ID, err)
		}
		seen[r.SourceID] = true
		seen[r.TargetID] = true
	}
	for id := range seen {
		s.PutEntity(entity.Entity{ID: id, Name: id, Type: entity.TypeIndividual, RiskScore: 0.2, RiskLevel: entity.RiskLow})
	}
	return s
}

func relIDs(rels []entity.Relationship) []string {
	ids := make([]string, len(rels))
	for i, r := range rels {
		ids[i] = r.ID
	}
	return ids
}

func TestBoundedTraversal_HopOrdering(t *testing.T) {
	// Chain: a - b - c - d
	s := seedStore(t,
		rel("rel-3", "c", "d", 0.9),
		rel("rel-1", "a", "b", 0.9),
		rel("rel-2", "b", "c", 0.9),
	)

	got, err := s.BoundedTraversal(context.Background(), "a", 2, RelationshipFilter{})
	if err != nil {
		t.Fatalf("BoundedTraversal: %v", err)
	}
	want := []string{"rel-1", "rel-2"}
	ids := relIDs(got)
	if len(ids) != len(want) {
		t.Fatalf("expected %d relationships, got %v", len(want), ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, ids[i], want[i])
		}
	}

	got, err = s.BoundedTraversal(context.Background(), "a", 3, RelationshipFilter{})
	if err != nil {
		t.Fatalf("BoundedTraversal depth 3: %v", err)
	}
	if len(got) != 3 || got[2].ID != "rel-3" {
		t.Errorf("depth 3 should reach rel-3 last, got %v", relIDs(got))
	}
}

func TestBoundedTraversal_DeduplicatesWithinLevel(t *testing.T) {
	// Triangle: a-b, a-c, b-c. The b-c edge is reachable from both b and c
	// at hop 2 but must appear once.
	s := seedStore(t,
		rel("rel-ab", "a", "b", 0.9),
		rel("rel-ac", "a", "c", 0.9),
		rel("rel-bc", "b", "c", 0.9),
	)

	got, err := s.BoundedTraversal(context.Background(), "a", 2, RelationshipFilter{})
	if err != nil {
		t.Fatalf("BoundedTraversal: %v", err)
	}
	ids := relIDs(got)
	want := []string{"rel-ab", "rel-ac", "rel-bc"}
	if len(ids) != 3 {
		t.Fatalf("expected 3 relationships, got %v", ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("position %d: got %s, want %s", i, ids[i], want[i])
		}
	}
}

func TestBoundedTraversal_FilterStopsExpansion(t *testing.T) {
	// The low-confidence a-b edge is filtered, so b's neighbourhood must
	// stay undiscovered.
	s := seedStore(t,
		rel("rel-1", "a", "b", 0.2),
		rel("rel-2", "b", "c", 0.9),
	)

	got, err := s.BoundedTraversal(context.Background(), "a", 3, RelationshipFilter{MinConfidence: 0.5})
	if err != nil {
		t.Fatalf("BoundedTraversal: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty traversal, got %v", relIDs(got))
	}
}

func TestBoundedTraversal_TypeAndFlagFilters(t *testing.T) {
	director := rel("rel-1", "a", "b", 0.9)
	director.Type = entity.RelDirectorOf
	inactive := rel("rel-2", "a", "c", 0.9)
	inactive.Active = false
	unverified := rel("rel-3", "a", "d", 0.9)
	unverified.Verified = false
	s := seedStore(t, director, inactive, unverified)

	got, err := s.BoundedTraversal(context.Background(), "a", 1, RelationshipFilter{}.WithTypes(entity.RelDirectorOf))
	if err != nil {
		t.Fatalf("type filter: %v", err)
	}
	if len(got) != 1 || got[0].ID != "rel-1" {
		t.Errorf("type filter: got %v, want [rel-1]", relIDs(got))
	}

	got, err = s.BoundedTraversal(context.Background(), "a", 1, RelationshipFilter{ActiveOnly: true, VerifiedOnly: true})
	if err != nil {
		t.Fatalf("flag filter: %v", err)
	}
	if len(got) != 1 || got[0].ID != "rel-1" {
		t.Errorf("flag filter: got %v, want [rel-1]", relIDs(got))
	}
}

func TestBoundedTraversal_UnknownEntity(t *testing.T) {
	s := seedStore(t, rel("rel-1", "a", "b", 0.9))

	got, err := s.BoundedTraversal(context.Background(), "ghost", 2, RelationshipFilter{})
	if err != nil {
		t.Fatalf("unknown entity should not error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("unknown entity should yield no relationships, got %v", relIDs(got))
	}
}

func TestLookupEntity_NotFound(t *testing.T) {
	s := NewMemStore()

	_, err := s.LookupEntity(context.Background(), "ghost")
	if err == nil {
		t.Fatal("expected error for unknown entity")
	}
	if !IsNotFound(err) {
		t.Errorf("expected ErrEntityNotFound, got %v", err)
	}

	var se *StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StoreError, got %T", err)
	}
	if se.ID != "ghost" {
		t.Errorf("error should carry the entity id, got %q", se.ID)
	}
}

func TestBatchLookupEntities_SkipsUnknown(t *testing.T) {
	s := seedStore(t, rel("rel-1", "a", "b", 0.9))

	found, err := s.BatchLookupEntities(context.Background(), []string{"a", "ghost", "b"})
	if err != nil {
		t.Fatalf("BatchLookupEntities: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(found))
	}
	if _, ok := found["ghost"]; ok {
		t.Error("unknown id must be absent, not zero-valued")
	}
}

func TestClosedStore_AllReadsFail(t *testing.T) {
	s := seedStore(t, rel("rel-1", "a", "b", 0.9))
	s.Close()

	if _, err := s.BoundedTraversal(context.Background(), "a", 1, RelationshipFilter{}); !IsUnavailable(err) {
		t.Errorf("BoundedTraversal on closed store: %v", err)
	}
	if _, err := s.LookupEntity(context.Background(), "a"); !IsUnavailable(err) {
		t.Errorf("LookupEntity on closed store: %v", err)
	}
	if _, err := s.BatchLookupEntities(context.Background(), []string{"a"}); !IsUnavailable(err) {
		t.Errorf("BatchLookupEntities on closed store: %v", err)
	}
}

func TestBoundedTraversal_CancelledContext(t *testing.T) {
	s := seedStore(t, rel("rel-1", "a", "b", 0.9))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.BoundedTraversal(ctx, "a", 1, RelationshipFilter{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRelationshipFilter_ZeroValueAdmitsAll(t *testing.T) {
	r := rel("rel-1", "a", "b", 0.0)
	r.Active = false
	r.Verified = false
	if !(RelationshipFilter{}).Match(r) {
		t.Error("zero-value filter must admit every relationship")
	}
}
