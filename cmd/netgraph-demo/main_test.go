package main

import (
	"context"
	"testing"

	"github.com/trestleaml/networkengine/pkg/analysis"
	"github.com/trestleaml/networkengine/pkg/config"
	"github.com/trestleaml/networkengine/pkg/graphstore"
	"github.com/trestleaml/networkengine/pkg/logging"
)

func TestNewStore_MemoryBackendSeeded(t *testing.T) {
	store, cleanup, err := newStore(context.Background(), config.Default())
	if err != nil {
		t.Fatalf("newStore: %v", err)
	}
	defer cleanup()

	mem, ok := store.(*graphstore.MemStore)
	if !ok {
		t.Fatalf("backend = %T, want *graphstore.MemStore", store)
	}
	if mem.EntityCount() != 11 || mem.RelationshipCount() != 14 {
		t.Errorf("fixture = %d entities / %d relationships, want 11/14",
			mem.EntityCount(), mem.RelationshipCount())
	}
}

func TestNewStore_UnknownBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Store.Backend = "bolt"
	if _, _, err := newStore(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestBuildService_ConfigDrivesAnalysis(t *testing.T) {
	ctx := context.Background()
	svc, trail, cleanup, err := buildService(ctx, config.Default(), logging.NewNopLogger())
	if err != nil {
		t.Fatalf("buildService: %v", err)
	}
	defer cleanup()

	req := analysis.Request{CenterEntityID: "meridian-holdings", RequestedBy: "test"}
	resp, err := svc.Analyze(ctx, req)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(resp.Nodes) == 0 {
		t.Fatal("expected a populated graph from the seeded fixture")
	}

	// The default config enables the cache, so the identical request is
	// served from it.
	again, err := svc.Analyze(ctx, req)
	if err != nil {
		t.Fatalf("Analyze (cached): %v", err)
	}
	if !again.FromCache {
		t.Error("second run should come from the configured cache")
	}

	if len(trail.Recent(10)) == 0 {
		t.Error("expected audit events from the configured trail")
	}
}

func TestBuildService_EvidenceWiring(t *testing.T) {
	cfg := config.Default()
	cfg.Evidence.Enabled = true
	cfg.Evidence.Bucket = "evidence-test"
	cfg.Evidence.Endpoint = "http://127.0.0.1:9000"
	cfg.Evidence.AccessKey = "demo"
	cfg.Evidence.SecretKey = "demo-secret"

	svc, _, cleanup, err := buildService(context.Background(), cfg, logging.NewNopLogger())
	if err != nil {
		t.Fatalf("buildService with evidence: %v", err)
	}
	defer cleanup()
	if svc == nil {
		t.Fatal("expected a service")
	}
}
