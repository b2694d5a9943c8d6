package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/trestleaml/networkengine/pkg/analysis"
	"github.com/trestleaml/networkengine/pkg/audit"
	"github.com/trestleaml/networkengine/pkg/cache"
	"github.com/trestleaml/networkengine/pkg/config"
	"github.com/trestleaml/networkengine/pkg/entity"
	"github.com/trestleaml/networkengine/pkg/evidence"
	"github.com/trestleaml/networkengine/pkg/graphstore"
	"github.com/trestleaml/networkengine/pkg/graphstore/httpstore"
	"github.com/trestleaml/networkengine/pkg/graphstore/pgstore"
	"github.com/trestleaml/networkengine/pkg/logging"
	"github.com/trestleaml/networkengine/pkg/metrics"
	"github.com/trestleaml/networkengine/pkg/network"
)

func main() {
	configPath := flag.String("config", "", "engine config file (defaults plus NETWORKENGINE_* env when empty)")
	flag.Parse()

	fmt.Printf("🔥 Network Engine Demo\n")
	fmt.Printf("======================\n\n")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger := logging.NewJSONLogger(os.Stderr, logging.ParseLevel(cfg.Logging.Level))

	ctx := context.Background()
	svc, trail, cleanup, err := buildService(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to assemble engine: %v", err)
	}
	defer cleanup()
	fmt.Printf("✅ Engine assembled (store=%s cache=%v evidence=%v)\n\n",
		cfg.Store.Backend, cfg.Cache.Enabled, cfg.Evidence.Enabled)

	banner("Test 1: Full Network Analysis")
	resp := runAnalysis(ctx, svc)

	banner("Test 2: Network Statistics")
	printStatistics(resp)

	banner("Test 3: Centrality Ranking")
	printCentrality(resp)

	banner("Test 4: Communities")
	printCommunities(resp)

	banner("Test 5: Hub Detection")
	printHubs(resp)

	banner("Test 6: Risk Propagation")
	printPropagation(resp)

	banner("Test 7: Shortest Path")
	runPathSearch(ctx, svc)

	banner("Test 8: Cached Re-run")
	runCachedAnalysis(ctx, svc)

	banner("Test 9: Audit Trail")
	printAuditTrail(trail)

	fmt.Printf("\n✅ Demo completed successfully!\n")
}

func banner(title string) {
	fmt.Printf("\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Printf("📊 %s\n", title)
	fmt.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
}

// newStore builds the graph store the config selects. The memory backend
// is seeded with the demo fixture so the binary works out of the box.
func newStore(ctx context.Context, cfg *config.Config) (graphstore.GraphStore, func(), error) {
	switch cfg.Store.Backend {
	case "memory":
		mem := graphstore.NewMemStore()
		if err := seedShellCompanyRing(mem); err != nil {
			return nil, nil, err
		}
		return mem, func() {}, nil
	case "postgres":
		pg, err := pgstore.New(ctx, cfg.Store.Postgres.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, func() { _ = pg.Close() }, nil
	case "http":
		name := cfg.Store.HTTP.ServiceName
		if name == "" {
			name = "netgraph-demo"
		}
		hs, err := httpstore.New(cfg.Store.HTTP.BaseURL, cfg.Store.HTTP.Secret, name)
		if err != nil {
			return nil, nil, err
		}
		return hs, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// buildService wires the service and its optional collaborators from
// configuration.
func buildService(ctx context.Context, cfg *config.Config, logger logging.Logger) (*analysis.Service, *audit.Trail, func(), error) {
	store, cleanup, err := newStore(ctx, cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	registry := metrics.NewRegistry()
	trail := audit.NewTrail(cfg.Audit.BufferSize)
	opts := []analysis.ServiceOption{
		analysis.WithLogger(logger),
		analysis.WithMetrics(registry),
		analysis.WithAuditTrail(trail),
		analysis.WithTimeout(cfg.Analysis.Timeout),
	}

	if cfg.Cache.Enabled {
		opts = append(opts, analysis.WithCache(cache.New(cfg.Cache.MaxSize,
			cache.WithTTL(cfg.Cache.TTL),
			cache.WithRecorder(registry))))
	}
	if cfg.Evidence.Enabled {
		archive, err := evidence.NewStore(ctx, evidence.Params{
			Bucket:    cfg.Evidence.Bucket,
			Prefix:    cfg.Evidence.Prefix,
			Endpoint:  cfg.Evidence.Endpoint,
			Region:    cfg.Evidence.Region,
			AccessKey: cfg.Evidence.AccessKey,
			SecretKey: cfg.Evidence.SecretKey,
		}, logger)
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		opts = append(opts, analysis.WithArchiver(archive))
	}

	return analysis.NewService(store, opts...), trail, cleanup, nil
}

func demoRequest() analysis.Request {
	return analysis.Request{
		CenterEntityID:         "meridian-holdings",
		RequestedBy:            "demo",
		MaxDepth:               3,
		IncludeCentrality:      true,
		IncludeCommunities:     true,
		IncludeHubs:            true,
		IncludeRiskPropagation: true,
		MinHubConnections:      3,
	}
}

func runAnalysis(ctx context.Context, svc *analysis.Service) *analysis.Response {
	start := time.Now()
	resp, err := svc.Analyze(ctx, demoRequest())
	if err != nil {
		log.Fatalf("❌ Analysis failed: %v", err)
	}

	fmt.Printf("Analysis ID:  %s\n", resp.AnalysisID)
	fmt.Printf("Center:       %s\n", resp.CenterEntityID)
	fmt.Printf("Entities:     %d\n", len(resp.Nodes))
	fmt.Printf("Edges:        %d\n", len(resp.Edges))
	fmt.Printf("Truncated:    %v\n", resp.Truncated)
	fmt.Printf("Elapsed:      %s\n", time.Since(start).Round(time.Microsecond))
	for _, w := range resp.Warnings {
		fmt.Printf("⚠️  %s\n", w)
	}
	return resp
}

func printStatistics(resp *analysis.Response) {
	s := resp.Statistics
	fmt.Printf("Density:          %.3f\n", s.Density)
	fmt.Printf("Avg confidence:   %.2f\n", s.AvgConfidence)
	fmt.Printf("Verified ratio:   %.2f\n", s.VerifiedRatio)
	fmt.Printf("Risk bands:       low=%d medium=%d high=%d critical=%d\n",
		s.RiskDistribution[entity.RiskLow],
		s.RiskDistribution[entity.RiskMedium],
		s.RiskDistribution[entity.RiskHigh],
		s.RiskDistribution[entity.RiskCritical])

	// Entities whose network risk rose past their own base risk.
	type lifted struct {
		id         string
		base, with float64
	}
	var lifts []lifted
	for _, n := range resp.Nodes {
		if net := resp.NetworkRiskScores[n.Entity.ID]; net > n.Entity.RiskScore+0.001 {
			lifts = append(lifts, lifted{n.Entity.ID, n.Entity.RiskScore, net})
		}
	}
	sort.Slice(lifts, func(i, j int) bool { return lifts[i].with > lifts[j].with })
	fmt.Printf("\nNetwork risk lifts (base → networked):\n")
	for _, l := range lifts {
		fmt.Printf("  %-24s %.2f → %.2f  [%s]\n", l.id, l.base, l.with, entity.RiskLevelFromScore(l.with))
	}
}

func printCentrality(resp *analysis.Response) {
	for i, r := range resp.Centrality.TopEntities {
		m := resp.Centrality.Metrics[r.EntityID]
		fmt.Printf("  %d. %-24s composite=%.3f degree=%d\n", i+1, r.EntityID, r.Score, m.Degree)
		if i == 4 {
			break
		}
	}
}

func printCommunities(resp *analysis.Response) {
	fmt.Printf("Confidence floor: %.2f\n", resp.Communities.ConfidenceFloor)
	for _, c := range resp.Communities.Communities {
		fmt.Printf("  %s: %d members, density %.2f, avg risk %.2f, dominant type %s\n",
			c.ID, c.Size, c.Density, c.AvgRiskScore, c.DominantType)
		fmt.Printf("    members: %v\n", c.EntityIDs)
	}
}

func printHubs(resp *analysis.Response) {
	for _, h := range resp.Hubs {
		fmt.Printf("  ◉ %-24s degree=%d influence=%.1f risk=%s\n",
			h.EntityID, h.Degree, h.InfluenceScore, h.RiskLevel)
	}
}

func printPropagation(resp *analysis.Response) {
	p := resp.PropagatedRisk
	fmt.Printf("Seed %s carries base risk %.2f\n", p.SourceID, p.SeedRisk)

	ids := make([]string, 0, len(p.Scores))
	for id := range p.Scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return p.Scores[ids[i]] > p.Scores[ids[j]] })
	for _, id := range ids {
		fmt.Printf("  %-24s %.4f at depth %d via %d edge(s)\n",
			id, p.Scores[id], p.Depths[id], len(p.Paths[id]))
	}
	if len(ids) == 0 {
		fmt.Printf("  (no entity received a propagated score above the floor)\n")
	}
}

func runPathSearch(ctx context.Context, svc *analysis.Service) {
	result, err := svc.FindPath(ctx, "viktor-reyes", "coastal-imports", network.DefaultPathOptions())
	if err != nil {
		log.Fatalf("❌ Path search failed: %v", err)
	}
	if !result.Found {
		fmt.Printf("No path within the hop limit\n")
		return
	}
	fmt.Printf("Found a %d-hop path:\n", result.Hops)
	for i, n := range result.Nodes {
		fmt.Printf("  %s (%s)", n.Name, n.RiskLevel)
		if i < len(result.Edges) {
			fmt.Printf("\n    └─[%s @ %.2f]→\n", result.Edges[i].Type, result.Edges[i].Confidence)
		}
	}
	fmt.Println()
}

func runCachedAnalysis(ctx context.Context, svc *analysis.Service) {
	start := time.Now()
	resp, err := svc.Analyze(ctx, demoRequest())
	if err != nil {
		log.Fatalf("❌ Cached analysis failed: %v", err)
	}
	fmt.Printf("From cache: %v (served in %s)\n", resp.FromCache, time.Since(start).Round(time.Microsecond))
}

func printAuditTrail(trail *audit.Trail) {
	for _, e := range trail.Recent(10) {
		fmt.Printf("  %s  %-18s %-16s center=%s\n",
			e.Timestamp.Format("15:04:05.000"), e.Kind, e.Outcome, e.CenterEntityID)
	}
}

// seedShellCompanyRing loads a typical layering structure: a holding
// company fanned out over shell subsidiaries, the individuals controlling
// them, and a handful of low-risk bystanders.
func seedShellCompanyRing(store *graphstore.MemStore) error {
	org := func(id, name string, risk float64) entity.Entity {
		return entity.Entity{ID: id, Name: name, Type: entity.TypeOrganization,
			RiskScore: risk, RiskLevel: entity.RiskLevelFromScore(risk)}
	}
	person := func(id, name string, risk float64) entity.Entity {
		return entity.Entity{ID: id, Name: name, Type: entity.TypeIndividual,
			RiskScore: risk, RiskLevel: entity.RiskLevelFromScore(risk)}
	}
	link := func(id, src, dst string, t entity.RelationshipType, conf float64, verified bool) entity.Relationship {
		return entity.Relationship{ID: id, SourceID: src, TargetID: dst, Type: t,
			Strength: entity.StrengthLikely, Confidence: conf, Verified: verified, Active: true}
	}

	entities := []entity.Entity{
		org("meridian-holdings", "Meridian Holdings Ltd", 0.82),
		org("aurora-trade", "Aurora Trade SA", 0.65),
		org("coastal-imports", "Coastal Imports LLC", 0.58),
		org("brightline-consult", "Brightline Consulting", 0.45),
		org("pacific-freight", "Pacific Freight Co", 0.2),
		person("viktor-reyes", "Viktor Reyes", 0.9),
		person("elena-marsh", "Elena Marsh", 0.7),
		person("tomas-keller", "Tomas Keller", 0.35),
		person("ines-fontaine", "Ines Fontaine", 0.15),
		person("harold-quinn", "Harold Quinn", 0.1),
		person("dana-osei", "Dana Osei", 0.1),
	}

	relationships := []entity.Relationship{
		// Control structure around the holding company.
		link("e01", "viktor-reyes", "meridian-holdings", entity.RelUBOOf, 0.95, true),
		link("e02", "meridian-holdings", "aurora-trade", entity.RelParentOfSubsidiary, 0.9, true),
		link("e03", "meridian-holdings", "coastal-imports", entity.RelParentOfSubsidiary, 0.85, true),
		link("e04", "meridian-holdings", "brightline-consult", entity.RelParentOfSubsidiary, 0.8, false),
		link("e05", "elena-marsh", "aurora-trade", entity.RelDirectorOf, 0.9, true),
		link("e06", "elena-marsh", "coastal-imports", entity.RelDirectorOf, 0.85, true),
		link("e07", "viktor-reyes", "elena-marsh", entity.RelBusinessAssociateSuspected, 0.75, false),
		// Second ring.
		link("e08", "tomas-keller", "brightline-consult", entity.RelDirectorOf, 0.8, true),
		link("e09", "aurora-trade", "pacific-freight", entity.RelBusinessAssociate, 0.7, true),
		link("e10", "coastal-imports", "pacific-freight", entity.RelBusinessAssociate, 0.65, true),
		// Bystanders at the edge of the network.
		link("e11", "ines-fontaine", "pacific-freight", entity.RelDirectorOf, 0.9, true),
		link("e12", "harold-quinn", "tomas-keller", entity.RelHouseholdMember, 0.8, true),
		link("e13", "dana-osei", "elena-marsh", entity.RelProfessionalColleaguePublic, 0.6, true),
		link("e14", "viktor-reyes", "coastal-imports", entity.RelSharedAddress, 0.55, false),
	}

	return store.Seed(entities, relationships)
}
