package pgstore

import (
	"context"
	"errors"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/trestleaml/networkengine/pkg/entity"
	"github.com/trestleaml/networkengine/pkg/graphstore"
)

// LookupEntity retrieves a single entity summary by ID.
func (s *Store) LookupEntity(ctx context.Context, entityID string) (entity.Entity, error) {
	query := `
		SELECT entity_id, COALESCE(display_name, ''), COALESCE(entity_type, ''),
		       COALESCE(risk_score, 0), COALESCE(risk_level, '')
		FROM entities
		WHERE entity_id = $1
	`

	var e entity.Entity
	var entityType, riskLevel string

	err := s.pool.QueryRow(ctx, query, entityID).Scan(
		&e.ID,
		&e.Name,
		&entityType,
		&e.RiskScore,
		&riskLevel,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return entity.Entity{}, graphstore.EntityNotFoundError(entityID)
	}
	if err != nil {
		return entity.Entity{}, graphstore.UnavailableError("LookupEntity", err)
	}

	e.Type = entity.EntityType(entityType)
	e.RiskLevel = entity.RiskLevel(riskLevel)
	return e, nil
}

// BatchLookupEntities retrieves entity summaries in one round trip. Unknown
// ids are absent from the result.
func (s *Store) BatchLookupEntities(ctx context.Context, entityIDs []string) (map[string]entity.Entity, error) {
	query := `
		SELECT entity_id, COALESCE(display_name, ''), COALESCE(entity_type, ''),
		       COALESCE(risk_score, 0), COALESCE(risk_level, '')
		FROM entities
		WHERE entity_id = ANY($1)
	`

	rows, err := s.pool.Query(ctx, query, entityIDs)
	if err != nil {
		return nil, graphstore.UnavailableError("BatchLookupEntities", err)
	}
	defer rows.Close()

	found := make(map[string]entity.Entity, len(entityIDs))
	for rows.Next() {
		var e entity.Entity
		var entityType, riskLevel string

		if err := rows.Scan(&e.ID, &e.Name, &entityType, &e.RiskScore, &riskLevel); err != nil {
			return nil, graphstore.UnavailableError("BatchLookupEntities", err)
		}

		e.Type = entity.EntityType(entityType)
		e.RiskLevel = entity.RiskLevel(riskLevel)
		found[e.ID] = e
	}

	if err := rows.Err(); err != nil {
		return nil, graphstore.UnavailableError("BatchLookupEntities", err)
	}

	return found, nil
}

// BoundedTraversal walks outward hop by hop, issuing one relationship query
// per hop over the current frontier. Confidence and flag filters are pushed
// into SQL; type filters are applied in Go.
func (s *Store) BoundedTraversal(ctx context.Context, entityID string, maxDepth int, filter graphstore.RelationshipFilter) ([]entity.Relationship, error) {
	query := `
		SELECT relationship_id, source_id, target_id,
		       COALESCE(relationship_type, ''), COALESCE(strength, ''),
		       COALESCE(confidence, 0), verified, active
		FROM entity_relationships
		WHERE (source_id = ANY($1) OR target_id = ANY($1))
		  AND confidence >= $2
		  AND (NOT $3 OR active)
		  AND (NOT $4 OR verified)
		ORDER BY relationship_id
	`

	visited := map[string]bool{entityID: true}
	collected := make(map[string]bool)
	frontier := []string{entityID}
	var out []entity.Relationship

	for depth := 1; depth <= maxDepth && len(frontier) > 0; depth++ {
		rows, err := s.pool.Query(ctx, query, frontier, filter.MinConfidence, filter.ActiveOnly, filter.VerifiedOnly)
		if err != nil {
			return nil, graphstore.UnavailableError("BoundedTraversal", err)
		}

		var level []entity.Relationship
		for rows.Next() {
			var r entity.Relationship
			var relType, strength string

			if err := rows.Scan(&r.ID, &r.SourceID, &r.TargetID, &relType, &strength, &r.Confidence, &r.Verified, &r.Active); err != nil {
				rows.Close()
				return nil, graphstore.UnavailableError("BoundedTraversal", err)
			}

			r.Type = entity.RelationshipType(relType)
			r.Strength = entity.Strength(strength)

			if collected[r.ID] || !filter.Match(r) {
				continue
			}
			collected[r.ID] = true
			level = append(level, r)
		}
		rowsErr := rows.Err()
		rows.Close()
		if rowsErr != nil {
			return nil, graphstore.UnavailableError("BoundedTraversal", rowsErr)
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
