// Package httpstore adapts the entity service REST API to the
// graphstore.GraphStore contract. Requests carry short-lived HS256 service
// tokens; the entity service verifies them with the shared secret.
package httpstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/trestleaml/networkengine/pkg/entity"
	"github.com/trestleaml/networkengine/pkg/graphstore"
)

const defaultTimeout = 10 * time.Second

// Store is an HTTP-backed read-only graph store.
type Store struct {
	baseURL    string
	httpClient *http.Client
	tokens     *tokenSource
}

// New creates an HTTP-backed store. serviceName identifies this caller in
// the tokens it mints.
func New(baseURL, secret, serviceName string) (*Store, error) {
	tokens, err := newTokenSource(secret, serviceName)
	if err != nil {
		return nil, err
	}

	return &Store{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		tokens: tokens,
	}, nil
}

type entityPayload struct {
	EntityID   string  `json:"entity_id"`
	Name       string  `json:"display_name"`
	EntityType string  `json:"entity_type"`
	RiskScore  float64 `json:"risk_score"`
	RiskLevel  string  `json:"risk_level"`
}

func (p entityPayload) toEntity() entity.Entity {
	return entity.Entity{
		ID:        p.EntityID,
		Name:      p.Name,
		Type:      entity.EntityType(p.EntityType),
		RiskScore: p.RiskScore,
		RiskLevel: entity.RiskLevel(p.RiskLevel),
	}
}

type relationshipPayload struct {
	RelationshipID string  `json:"relationship_id"`
	SourceID       string  `json:"source_id"`
	TargetID       string  `json:"target_id"`
	Type           string  `json:"relationship_type"`
	Strength       string  `json:"strength"`
	Confidence     float64 `json:"confidence"`
	Verified       bool    `json:"verified"`
	Active         bool    `json:"active"`
}

func (p relationshipPayload) toRelationship() entity.Relationship {
	return entity.Relationship{
		ID:         p.RelationshipID,
		SourceID:   p.SourceID,
		TargetID:   p.TargetID,
		Type:       entity.RelationshipType(p.Type),
		Strength:   entity.Strength(p.Strength),
		Confidence: p.Confidence,
		Verified:   p.Verified,
		Active:     p.Active,
	}
}

type batchLookupRequest struct {
	EntityIDs []string `json:"entity_ids"`
}

type batchLookupResponse struct {
	Entities []entityPayload `json:"entities"`
}

type traverseRequest struct {
	EntityID string         `json:"entity_id"`
	MaxDepth int            `json:"max_depth"`
	Filter   traverseFilter `json:"filter"`
}

type traverseFilter struct {
	Types         []string `json:"relationship_types,omitempty"`
	MinConfidence float64  `json:"min_confidence,omitempty"`
	ActiveOnly    bool     `json:"active_only,omitempty"`
	VerifiedOnly  bool     `json:"verified_only,omitempty"`
}

type traverseResponse struct {
	Relationships []relationshipPayload `json:"relationships"`
}

// LookupEntity implements graphstore.GraphStore.
func (s *Store) LookupEntity(ctx context.Context, entityID string) (entity.Entity, error) {
	var payload entityPayload
	status, err := s.get(ctx, "/v1/entities/"+url.PathEscape(entityID), &payload)
	if err != nil {
		return entity.Entity{}, graphstore.UnavailableError("LookupEntity", err)
	}
	if status == http.StatusNotFound {
		return entity.Entity{}, graphstore.EntityNotFoundError(entityID)
	}
	if status != http.StatusOK {
		return entity.Entity{}, graphstore.UnavailableError("LookupEntity", fmt.Errorf("unexpected status %d", status))
	}
	return payload.toEntity(), nil
}

// BatchLookupEntities implements graphstore.GraphStore.
func (s *Store) BatchLookupEntities(ctx context.Context, entityIDs []string) (map[string]entity.Entity, error) {
	var resp batchLookupResponse
	status, err := s.post(ctx, "/v1/entities/batch", batchLookupRequest{EntityIDs: entityIDs}, &resp)
	if err != nil {
		return nil, graphstore.UnavailableError("BatchLookupEntities", err)
	}
	if status != http.StatusOK {
		return nil, graphstore.UnavailableError("BatchLookupEntities", fmt.Errorf("unexpected status %d", status))
	}

	found := make(map[string]entity.Entity, len(resp.Entities))
	for _, p := range resp.Entities {
		found[p.EntityID] = p.toEntity()
	}
	return found, nil
}

// BoundedTraversal implements graphstore.GraphStore. The entity service
// performs the walk server-side and returns edges in hop order.
func (s *Store) BoundedTraversal(ctx context.Context, entityID string, maxDepth int, filter graphstore.RelationshipFilter) ([]entity.Relationship, error) {
	types := make([]string, len(filter.Types))
	for i, t := range filter.Types {
		types[i] = string(t)
	}

	req := traverseRequest{
		EntityID: entityID,
		MaxDepth: maxDepth,
		Filter: traverseFilter{
			Types:         types,
			MinConfidence: filter.MinConfidence,
			ActiveOnly:    filter.ActiveOnly,
			VerifiedOnly:  filter.VerifiedOnly,
		},
	}

	var resp traverseResponse
	status, err := s.post(ctx, "/v1/graph/traverse", req, &resp)
	if err != nil {
		return nil, graphstore.UnavailableError("BoundedTraversal", err)
	}
	if status != http.StatusOK {
		return nil, graphstore.UnavailableError("BoundedTraversal", fmt.Errorf("unexpected status %d", status))
	}

	out := make([]entity.Relationship, len(resp.Relationships))
	for i, p := range resp.Relationships {
		out[i] = p.toRelationship()
	}
	return out, nil
}

func (s *Store) get(ctx context.Context, path string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	return s.do(req, out)
}

func (s *Store) post(ctx context.Context, path string, in, out any) (int, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return s.do(req, out)
}

func (s *Store) do(req *http.Request, out any) (int, error) {
	token, err := s.tokens.Token()
	if err != nil {
		return 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
