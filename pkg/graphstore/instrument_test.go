package graphstore

import (
	"context"
	"testing"
	"time"

	"github.com/trestleaml/networkengine/pkg/entity"
)

type callLog struct {
	ops  []string
	errs []error
}

func (c *callLog) RecordStoreCall(op string, d time.Duration, err error) {
	c.ops = append(c.ops, op)
	c.errs = append(c.errs, err)
}

func instrumentedFixture(t *testing.T) (*InstrumentedStore, *callLog, *MemStore) {
	t.Helper()
	mem := NewMemStore()
	mem.PutEntity(entity.Entity{ID: "a", Type: entity.TypeIndividual})
	mem.PutEntity(entity.Entity{ID: "b", Type: entity.TypeIndividual})
	if err := mem.PutRelationship(entity.Relationship{
		ID: "r1", SourceID: "a", TargetID: "b",
		Type: entity.RelBusinessAssociate, Confidence: 0.8, Active: true,
	}); err != nil {
		t.Fatalf("PutRelationship: %v", err)
	}
	rec := &callLog{}
	return Instrument(mem, rec), rec, mem
}

func TestInstrument_RecordsEveryCall(t *testing.T) {
	store, rec, _ := instrumentedFixture(t)
	ctx := context.Background()

	if _, err := store.LookupEntity(ctx, "a"); err != nil {
		t.Fatalf("LookupEntity: %v", err)
	}
	if _, err := store.BatchLookupEntities(ctx, []string{"a", "b"}); err != nil {
		t.Fatalf("BatchLookupEntities: %v", err)
	}
	rels, err := store.BoundedTraversal(ctx, "a", 2, RelationshipFilter{})
	if err != nil {
		t.Fatalf("BoundedTraversal: %v", err)
	}
	if len(rels) != 1 {
		t.Errorf("traversal returned %d relationships, want 1", len(rels))
	}

	want := []string{"lookup_entity", "batch_lookup_entities", "bounded_traversal"}
	if len(rec.ops) != len(want) {
		t.Fatalf("recorded %d calls, want %d: %v", len(rec.ops), len(want), rec.ops)
	}
	for i, op := range want {
		if rec.ops[i] != op {
			t.Errorf("call %d = %s, want %s", i, rec.ops[i], op)
		}
		if rec.errs[i] != nil {
			t.Errorf("call %d recorded error %v, want nil", i, rec.errs[i])
		}
	}
}

func TestInstrument_BackendFailureRecorded(t *testing.T) {
	store, rec, mem := instrumentedFixture(t)
	mem.Close()

	if _, err := store.BoundedTraversal(context.Background(), "a", 2, RelationshipFilter{}); err == nil {
		t.Fatal("expected error from closed store")
	}
	if len(rec.errs) != 1 || rec.errs[0] == nil {
		t.Fatalf("recorded errors = %v, want one non-nil", rec.errs)
	}
	if !IsUnavailable(rec.errs[0]) {
		t.Errorf("recorded error %v should classify as unavailable", rec.errs[0])
	}
}

func TestInstrument_NotFoundIsNotAFailure(t *testing.T) {
	store, rec, _ := instrumentedFixture(t)

	if _, err := store.LookupEntity(context.Background(), "ghost"); !IsNotFound(err) {
		t.Fatalf("err = %v, want not-found", err)
	}
	if len(rec.errs) != 1 || rec.errs[0] != nil {
		t.Errorf("recorded errors = %v; an unknown id must not count as a failure", rec.errs)
	}
}
