package httpstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/trestleaml/networkengine/pkg/entity"
	"github.com/trestleaml/networkengine/pkg/graphstore"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestStore(t *testing.T, handler http.HandlerFunc) *Store {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	s, err := New(server.URL, testSecret, "network-engine-test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNew_RejectsShortSecret(t *testing.T) {
	if _, err := New("http://localhost", "short", "svc"); err != ErrShortSecret {
		t.Errorf("expected ErrShortSecret, got %v", err)
	}
}

func TestLookupEntity_SendsBearerToken(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") || len(auth) < 20 {
			t.Errorf("missing bearer token, got %q", auth)
		}
		json.NewEncoder(w).Encode(entityPayload{
			EntityID:   "ent-1",
			Name:       "Acme Ltd",
			EntityType: "organization",
			RiskScore:  0.72,
			RiskLevel:  "high",
		})
	})

	e, err := s.LookupEntity(context.Background(), "ent-1")
	if err != nil {
		t.Fatalf("LookupEntity: %v", err)
	}
	if e.Name != "Acme Ltd" || e.Type != entity.TypeOrganization || e.RiskLevel != entity.RiskHigh {
		t.Errorf("payload not mapped: %+v", e)
	}
}

func TestLookupEntity_NotFound(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := s.LookupEntity(context.Background(), "ghost")
	if !graphstore.IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestLookupEntity_ServerErrorIsUnavailable(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := s.LookupEntity(context.Background(), "ent-1")
	if !graphstore.IsUnavailable(err) {
		t.Errorf("expected unavailable error, got %v", err)
	}
}

func TestBoundedTraversal_ForwardsFilter(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/graph/traverse" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req traverseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.EntityID != "ent-1" || req.MaxDepth != 2 {
			t.Errorf("traversal parameters not forwarded: %+v", req)
		}
		if req.Filter.MinConfidence != 0.5 || !req.Filter.ActiveOnly {
			t.Errorf("filter not forwarded: %+v", req.Filter)
		}
		json.NewEncoder(w).Encode(traverseResponse{
			Relationships: []relationshipPayload{
				{RelationshipID: "rel-1", SourceID: "ent-1", TargetID: "ent-2", Type: "director_of", Confidence: 0.9, Verified: true, Active: true},
			},
		})
	})

	rels, err := s.BoundedTraversal(context.Background(), "ent-1", 2, graphstore.RelationshipFilter{
		MinConfidence: 0.5,
		ActiveOnly:    true,
	})
	if err != nil {
		t.Fatalf("BoundedTraversal: %v", err)
	}
	if len(rels) != 1 || rels[0].Type != entity.RelDirectorOf {
		t.Errorf("relationships not mapped: %+v", rels)
	}
}

func TestBatchLookupEntities_MapsByID(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		var req batchLookupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.EntityIDs) != 2 {
			t.Errorf("expected 2 ids, got %v", req.EntityIDs)
		}
		json.NewEncoder(w).Encode(batchLookupResponse{
			Entities: []entityPayload{{EntityID: "a", Name: "A"}},
		})
	})

	found, err := s.BatchLookupEntities(context.Background(), []string{"a", "ghost"})
	if err != nil {
		t.Fatalf("BatchLookupEntities: %v", err)
	}
	if len(found) != 1 || found["a"].Name != "A" {
		t.Errorf("unexpected result: %+v", found)
	}
}

func TestTokenSource_ReusesUnexpiredToken(t *testing.T) {
	ts, err := newTokenSource(testSecret, "svc")
	if err != nil {
		t.Fatalf("newTokenSource: %v", err)
	}

	first, err := ts.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	second, err := ts.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if first != second {
		t.Error("token should be reused while fresh")
	}
}
