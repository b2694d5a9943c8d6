package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/trestleaml/networkengine/pkg/audit"
	"github.com/trestleaml/networkengine/pkg/cache"
	"github.com/trestleaml/networkengine/pkg/entity"
	"github.com/trestleaml/networkengine/pkg/graphstore"
	"github.com/trestleaml/networkengine/pkg/logging"
	"github.com/trestleaml/networkengine/pkg/metrics"
	"github.com/trestleaml/networkengine/pkg/network"
	"github.com/trestleaml/networkengine/pkg/visualization"
)

// DefaultTimeout bounds a single analysis when the caller's context
// carries no deadline of its own.
const DefaultTimeout = 30 * time.Second

// Request describes one network analysis around a center entity. Zero
// fields take the documented defaults; Normalize fills them in before
// validation.
type Request struct {
	CenterEntityID string `json:"center_entity_id" validate:"required"`
	RequestedBy    string `json:"requested_by,omitempty"`

	MaxDepth         int     `json:"max_depth" validate:"min=1,max=5"`
	MaxEntities      int     `json:"max_entities" validate:"min=10,max=500"`
	MaxRelationships int     `json:"max_relationships" validate:"min=20,max=2000"`
	MinConfidence    float64 `json:"min_confidence" validate:"min=0,max=1"`

	RelationshipTypes  []entity.RelationshipType `json:"relationship_types,omitempty"`
	IncludeEntityTypes []entity.EntityType       `json:"include_entity_types,omitempty"`
	ExcludeEntityTypes []entity.EntityType       `json:"exclude_entity_types,omitempty"`
	ActiveOnly         bool                      `json:"active_only"`
	VerifiedOnly       bool                      `json:"verified_only"`

	IncludeCentrality      bool `json:"include_centrality"`
	IncludeCommunities     bool `json:"include_communities"`
	IncludeHubs            bool `json:"include_hubs"`
	IncludeRiskPropagation bool `json:"include_risk_propagation"`

	MinCommunitySize   int     `json:"min_community_size" validate:"min=1"`
	Resolution         float64 `json:"resolution" validate:"gt=0"`
	MinHubConnections  int     `json:"min_hub_connections" validate:"min=1"`
	PropagationDepth   int     `json:"propagation_depth" validate:"min=1,max=5"`
	PropagationFactor  float64 `json:"propagation_factor" validate:"gt=0,max=1"`
	MinPropagatedScore float64 `json:"min_propagated_score" validate:"min=0,max=1"`

	LayoutAlgorithm visualization.Algorithm `json:"layout_algorithm" validate:"oneof=force hierarchical circular"`

	// SkipCache forces a fresh computation even when a snapshot exists.
	SkipCache bool `json:"skip_cache,omitempty"`
}

// Normalize returns a copy with defaults substituted for zero fields.
func (r Request) Normalize() Request {
	build := network.DefaultBuildOptions()
	if r.MaxDepth == 0 {
		r.MaxDepth = build.MaxDepth
	}
	if r.MaxEntities == 0 {
		r.MaxEntities = build.MaxEntities
	}
	if r.MaxRelationships == 0 {
		r.MaxRelationships = build.MaxRelationships
	}
	if r.MinConfidence == 0 {
		r.MinConfidence = build.MinConfidence
	}
	if r.MinCommunitySize == 0 {
		r.MinCommunitySize = DefaultCommunityOptions().MinCommunitySize
	}
	if r.Resolution == 0 {
		r.Resolution = DefaultCommunityOptions().Resolution
	}
	if r.MinHubConnections == 0 {
		r.MinHubConnections = DefaultHubOptions().MinConnections
	}
	prop := DefaultPropagationOptions()
	if r.PropagationDepth == 0 {
		r.PropagationDepth = prop.MaxDepth
	}
	if r.PropagationFactor == 0 {
		r.PropagationFactor = prop.Factor
	}
	if r.MinPropagatedScore == 0 {
		r.MinPropagatedScore = prop.MinScore
	}
	if r.LayoutAlgorithm == "" {
		r.LayoutAlgorithm = visualization.AlgorithmForce
	}
	return r
}

// buildOptions maps the request onto subgraph construction options.
func (r Request) buildOptions() network.BuildOptions {
	return network.BuildOptions{
		MaxDepth:           r.MaxDepth,
		MaxEntities:        r.MaxEntities,
		MaxRelationships:   r.MaxRelationships,
		MinConfidence:      r.MinConfidence,
		RelationshipTypes:  r.RelationshipTypes,
		ActiveOnly:         r.ActiveOnly,
		VerifiedOnly:       r.VerifiedOnly,
		IncludeEntityTypes: r.IncludeEntityTypes,
		ExcludeEntityTypes: r.ExcludeEntityTypes,
	}
}

// Response is the complete result envelope of one analysis.
type Response struct {
	AnalysisID     string    `json:"analysis_id"`
	CenterEntityID string    `json:"center_entity_id"`
	GeneratedAt    time.Time `json:"generated_at"`

	Nodes []*network.Node       `json:"nodes"`
	Edges []entity.Relationship `json:"edges"`

	Statistics        *Statistics        `json:"statistics"`
	NetworkRiskScores map[string]float64 `json:"network_risk_scores"`

	Centrality     *CentralityResult `json:"centrality,omitempty"`
	Communities    *CommunityResult  `json:"communities,omitempty"`
	Hubs           []Hub             `json:"hubs,omitempty"`
	PropagatedRisk *PropagationResult `json:"propagated_risk,omitempty"`

	Layout map[string]visualization.Position `json:"layout,omitempty"`

	Truncated bool     `json:"truncated"`
	Warnings  []string `json:"warnings,omitempty"`

	// PartialError is set when the store failed and the response was
	// assembled from whatever survived. The analysis itself succeeded.
	PartialError string `json:"partial_error,omitempty"`

	FromCache bool          `json:"from_cache"`
	Duration  time.Duration `json:"duration_ns"`
}

// SnapshotCache is the slice of the result cache the service needs.
// *cache.AnalysisCache satisfies it.
type SnapshotCache interface {
	Get(key string) ([]byte, bool)
	Put(key, centerID string, payload []byte)
}

// Archiver persists completed snapshots for compliance retention.
// *evidence.Store satisfies it.
type Archiver interface {
	Archive(ctx context.Context, centerID, analysisID string, payload []byte) (string, error)
}

// Service orchestrates subgraph construction, the analyzers, layout,
// caching, audit and evidence retention behind one entry point.
type Service struct {
	store      graphstore.GraphStore
	builder    *network.Builder
	pathfinder *network.PathFinder

	logger   logging.Logger
	registry *metrics.Registry
	cache    SnapshotCache
	trail    *audit.Trail
	archiver Archiver

	validate *validator.Validate
	timeout  time.Duration
	canvas   visualization.Config
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLogger sets the service logger.
func WithLogger(l logging.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// WithMetrics wires analysis metrics into a registry.
func WithMetrics(r *metrics.Registry) ServiceOption {
	return func(s *Service) { s.registry = r }
}

// WithCache enables snapshot caching.
func WithCache(c SnapshotCache) ServiceOption {
	return func(s *Service) { s.cache = c }
}

// WithAuditTrail records analysis activity on the given trail.
func WithAuditTrail(t *audit.Trail) ServiceOption {
	return func(s *Service) { s.trail = t }
}

// WithArchiver enables best-effort evidence retention of completed
// snapshots.
func WithArchiver(a Archiver) ServiceOption {
	return func(s *Service) { s.archiver = a }
}

// WithTimeout overrides the default per-analysis deadline.
func WithTimeout(d time.Duration) ServiceOption {
	return func(s *Service) { s.timeout = d }
}

// WithCanvas overrides the default layout canvas.
func WithCanvas(cfg visualization.Config) ServiceOption {
	return func(s *Service) { s.canvas = cfg }
}

// NewService creates a Service reading from the given store.
func NewService(store graphstore.GraphStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:    store,
		logger:   logging.NewNopLogger(),
		validate: validator.New(),
		timeout:  DefaultTimeout,
		canvas:   visualization.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	// With metrics wired, every backend call goes through the timing
	// decorator.
	if s.registry != nil {
		s.store = graphstore.Instrument(store, s.registry)
	}
	s.builder = network.NewBuilder(s.store)
	s.pathfinder = network.NewPathFinder(s.store)
	s.logger = s.logger.With(logging.Component("analysis"))
	return s
}

// Analyze runs the full pipeline for one request: validate, consult the
// cache, build the subgraph, run the requested analyzers concurrently,
// compute the layout, then record, cache and archive the result.
//
// A store failure during construction is not fatal: the response carries
// whatever could be salvaged (the center entity alone, or nothing) with
// PartialError set. Only an invalid request or a dead context aborts.
func (s *Service) Analyze(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	req = req.Normalize()

	if err := s.validate.Struct(req); err != nil {
		s.record(&audit.Event{
			Kind:           audit.KindNetworkAnalysis,
			Outcome:        audit.OutcomeInvalidRequest,
			RequestedBy:    req.RequestedBy,
			CenterEntityID: req.CenterEntityID,
			ErrorMessage:   err.Error(),
		})
		if s.registry != nil {
			s.registry.RecordAnalysis("invalid_request", time.Since(start), 0, 0, false)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	key := cache.Fingerprint(req.CenterEntityID, req)
	if s.cache != nil && !req.SkipCache {
		if payload, ok := s.cache.Get(key); ok {
			var resp Response
			if err := json.Unmarshal(payload, &resp); err == nil {
				resp.FromCache = true
				s.record(&audit.Event{
					Kind:           audit.KindNetworkAnalysis,
					Outcome:        audit.OutcomeCacheHit,
					RequestedBy:    req.RequestedBy,
					CenterEntityID: req.CenterEntityID,
					ParametersHash: key,
					AnalysisID:     resp.AnalysisID,
				})
				s.logger.Debug("analysis served from cache",
					logging.CenterID(req.CenterEntityID),
					logging.AnalysisID(resp.AnalysisID))
				return &resp, nil
			}
		}
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	resp := &Response{
		AnalysisID:     uuid.New().String(),
		CenterEntityID: req.CenterEntityID,
		GeneratedAt:    start.UTC(),
	}

	g, err := s.buildGraph(ctx, req, resp)
	if err != nil {
		return nil, err
	}

	if err := s.runAnalyzers(g, req, resp); err != nil {
		return nil, err
	}

	resp.Statistics = ComputeStatistics(g)
	resp.NetworkRiskScores = NetworkRiskScores(g)
	resp.Nodes = g.NodeList()
	resp.Edges = g.Edges()
	resp.Duration = time.Since(start)

	s.finish(ctx, key, req, resp)
	return resp, nil
}

// buildGraph constructs the subgraph, degrading to a center-only or
// empty graph when the store fails mid-flight.
func (s *Service) buildGraph(ctx context.Context, req Request, resp *Response) (*network.Graph, error) {
	buildStart := time.Now()
	built, err := s.builder.Build(ctx, req.CenterEntityID, req.buildOptions())
	if s.registry != nil {
		s.registry.RecordPhase("build", time.Since(buildStart))
	}
	if err == nil {
		resp.Truncated = built.Truncated
		resp.Warnings = built.Warnings
		return built.Graph, nil
	}

	if errors.Is(err, network.ErrInvalidOptions) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	// The traversal failed. Salvage the center entity if it can still be
	// resolved, otherwise return an empty graph; either way the caller
	// gets a response, not an error.
	s.logger.Error("subgraph construction failed",
		logging.CenterID(req.CenterEntityID),
		logging.Error(err))
	resp.PartialError = err.Error()
	s.record(&audit.Event{
		Kind:           audit.KindNetworkAnalysis,
		Outcome:        audit.OutcomeStoreUnavailable,
		RequestedBy:    req.RequestedBy,
		CenterEntityID: req.CenterEntityID,
		AnalysisID:     resp.AnalysisID,
		ErrorMessage:   err.Error(),
	})
	if s.registry != nil {
		s.registry.RecordAnalysis("store_unavailable", time.Since(resp.GeneratedAt), 0, 0, false)
	}

	g := network.NewGraph(req.CenterEntityID, req.MaxDepth)
	center, lookupErr := s.store.LookupEntity(ctx, req.CenterEntityID)
	if lookupErr == nil {
		norm, _ := center.Normalize()
		g.AddNode(norm, 0)
	} else {
		resp.Warnings = append(resp.Warnings, "center entity unresolvable, graph left empty")
	}
	return g, nil
}

// analyzerJob is one unit of the concurrent fan-out.
type analyzerJob struct {
	phase string
	run   func() error
}

// runAnalyzers fans the requested analyzers out over the immutable graph
// and merges their outputs into the response.
func (s *Service) runAnalyzers(g *network.Graph, req Request, resp *Response) error {
	var jobs []analyzerJob

	if req.IncludeCentrality {
		jobs = append(jobs, analyzerJob{"centrality", func() error {
			result, err := AnalyzeCentrality(g, DefaultCentralityOptions())
			if err != nil {
				return err
			}
			resp.Centrality = result
			return nil
		}})
	}
	if req.IncludeCommunities {
		jobs = append(jobs, analyzerJob{"communities", func() error {
			result, err := DetectCommunities(g, CommunityOptions{
				MinCommunitySize: req.MinCommunitySize,
				Resolution:       req.Resolution,
			})
			if err != nil {
				return err
			}
			resp.Communities = result
			return nil
		}})
	}
	if req.IncludeHubs {
		jobs = append(jobs, analyzerJob{"hubs", func() error {
			hubs, err := DetectHubs(g, HubOptions{
				MinConnections:      req.MinHubConnections,
				ConnectionTypes:     req.RelationshipTypes,
				IncludeRiskAnalysis: true,
			})
			if err != nil {
				return err
			}
			resp.Hubs = hubs
			return nil
		}})
	}
	if req.IncludeRiskPropagation && g.Has(req.CenterEntityID) {
		jobs = append(jobs, analyzerJob{"propagation", func() error {
			result, err := PropagateRisk(g, req.CenterEntityID, PropagationOptions{
				MaxDepth:          req.PropagationDepth,
				Factor:            req.PropagationFactor,
				MinScore:          req.MinPropagatedScore,
				RelationshipTypes: req.RelationshipTypes,
			})
			if err != nil {
				return err
			}
			resp.PropagatedRisk = result
			if s.registry != nil {
				s.registry.RecordPropagation(len(result.Scores))
			}
			return nil
		}})
	}
	jobs = append(jobs, analyzerJob{"layout", func() error {
		edges := make([]visualization.Edge, 0, g.EdgeCount())
		for _, e := range g.Edges() {
			edges = append(edges, visualization.Edge{SourceID: e.SourceID, TargetID: e.TargetID})
		}
		layout, err := visualization.Compute(req.LayoutAlgorithm, s.canvas, g.CenterID, g.NodeIDs(), edges)
		if err != nil {
			return err
		}
		resp.Layout = layout
		return nil
	}})

	// Each job writes a distinct response field, so no locking beyond the
	// error slot is needed.
	var wg sync.WaitGroup
	errs := make([]error, len(jobs))
	for i, job := range jobs {
		wg.Add(1)
		go func(i int, job analyzerJob) {
			defer wg.Done()
			phaseStart := time.Now()
			errs[i] = job.run()
			if s.registry != nil {
				s.registry.RecordPhase(job.phase, time.Since(phaseStart))
			}
		}(i, job)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}

	// Fold centrality metrics into the node records so renderers need
	// only one list.
	if resp.Centrality != nil {
		for id, m := range resp.Centrality.Metrics {
			if n := g.Node(id); n != nil {
				n.Centrality = m
			}
		}
	}
	return nil
}

// finish records, caches and archives a completed response. All three are
// best-effort: the response is already assembled.
func (s *Service) finish(ctx context.Context, key string, req Request, resp *Response) {
	// Degraded runs were already recorded as store_unavailable when the
	// build failed.
	if s.registry != nil && resp.PartialError == "" {
		s.registry.RecordAnalysis("success", resp.Duration, len(resp.Nodes), len(resp.Edges), resp.Truncated)
	}
	if resp.PartialError == "" {
		s.record(&audit.Event{
			Kind:           audit.KindNetworkAnalysis,
			Outcome:        audit.OutcomeSuccess,
			RequestedBy:    req.RequestedBy,
			CenterEntityID: req.CenterEntityID,
			ParametersHash: key,
			AnalysisID:     resp.AnalysisID,
			Duration:       resp.Duration,
			Entities:       len(resp.Nodes),
			Relationships:  len(resp.Edges),
		})
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		s.logger.Error("response marshal failed", logging.Error(err))
		return
	}

	// Degraded responses are not cached: the next request should retry
	// the store.
	if s.cache != nil && resp.PartialError == "" {
		s.cache.Put(key, req.CenterEntityID, payload)
	}
	if s.archiver != nil {
		if _, err := s.archiver.Archive(ctx, req.CenterEntityID, resp.AnalysisID, payload); err != nil {
			s.logger.Warn("evidence archive failed",
				logging.AnalysisID(resp.AnalysisID),
				logging.Error(err))
		}
	}

	s.logger.Info("analysis complete",
		logging.CenterID(req.CenterEntityID),
		logging.AnalysisID(resp.AnalysisID),
		logging.Nodes(len(resp.Nodes)),
		logging.Edges(len(resp.Edges)),
		logging.Bool("truncated", resp.Truncated),
		logging.Latency(resp.Duration))
}

// FindPath searches for the shortest relationship path between two
// entities, recording the outcome.
func (s *Service) FindPath(ctx context.Context, sourceID, targetID string, opts network.PathOptions) (*network.PathResult, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := s.pathfinder.FindPath(ctx, sourceID, targetID, opts)
	if s.registry != nil {
		found, hops := false, 0
		if result != nil {
			found, hops = result.Found, result.Hops
		}
		s.registry.RecordPathSearch(found, hops, err)
	}

	event := &audit.Event{
		Kind:           audit.KindPathSearch,
		Outcome:        audit.OutcomeSuccess,
		CenterEntityID: sourceID,
		TargetEntityID: targetID,
		Duration:       time.Since(start),
	}
	switch {
	case errors.Is(err, network.ErrInvalidOptions):
		event.Outcome = audit.OutcomeInvalidRequest
		event.ErrorMessage = err.Error()
	case err != nil:
		event.Outcome = audit.OutcomeStoreUnavailable
		event.ErrorMessage = err.Error()
	case result.Found:
		event.Entities = len(result.Nodes)
		event.Relationships = result.Hops
	}
	s.record(event)

	if err != nil {
		return nil, err
	}
	s.logger.Debug("path search complete",
		logging.EntityID(sourceID),
		logging.String("target_entity_id", targetID),
		logging.Bool("found", result.Found),
		logging.Hops(result.Hops))
	return result, nil
}

// record appends to the audit trail when one is configured.
func (s *Service) record(e *audit.Event) {
	if s.trail != nil {
		s.trail.Record(e)
	}
}
