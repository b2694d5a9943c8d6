// Package entity defines the domain model shared by the network analysis
// engine: entity summaries, relationship edges, and the closed enumerations
// (entity types, risk levels, relationship types, strengths) the algorithms
// depend on.
//
// Records arriving from the store may be incomplete. Normalize applies the
// documented defaults (risk 0.0, type "unknown") so downstream code never
// branches on missing fields.
package entity

import "fmt"

// EntityType classifies an entity.
type EntityType string

const (
	TypeIndividual   EntityType = "individual"
	TypeOrganization EntityType = "organization"
	TypeUnknown      EntityType = "unknown"
)

// RiskLevel buckets a risk score into the four compliance bands.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskLevelFromScore buckets a [0,1] score using the fixed cutoffs
// used across the platform: >=0.8 critical, >=0.6 high, >=0.4 medium.
func RiskLevelFromScore(score float64) RiskLevel {
	switch {
	case score >= 0.8:
		return RiskCritical
	case score >= 0.6:
		return RiskHigh
	case score >= 0.4:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Elevated reports whether the level triggers high-risk handling.
func (l RiskLevel) Elevated() bool {
	return l == RiskHigh || l == RiskCritical
}

// Valid reports whether the level is one of the four known bands.
func (l RiskLevel) Valid() bool {
	switch l {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// Entity is the store-resolved summary of a single entity.
type Entity struct {
	ID        string     `json:"entity_id"`
	Name      string     `json:"name"`
	Type      EntityType `json:"entity_type"`
	RiskScore float64    `json:"risk_score"`
	RiskLevel RiskLevel  `json:"risk_level"`
}

// Normalize returns a copy with documented defaults substituted for missing
// or malformed fields, plus a description of each substitution for logging.
// Data-quality problems are repaired here, never surfaced as errors.
func (e Entity) Normalize() (Entity, []string) {
	var fixes []string

	if e.Name == "" {
		e.Name = e.ID
		fixes = append(fixes, "name missing, substituted id")
	}
	switch e.Type {
	case TypeIndividual, TypeOrganization, TypeUnknown:
	case "":
		e.Type = TypeUnknown
		fixes = append(fixes, "entity_type missing, defaulted to unknown")
	default:
		fixes = append(fixes, fmt.Sprintf("entity_type %q unrecognised, defaulted to unknown", e.Type))
		e.Type = TypeUnknown
	}
	if e.RiskScore < 0 || e.RiskScore > 1 {
		fixes = append(fixes, fmt.Sprintf("risk_score %.3f out of range, defaulted to 0", e.RiskScore))
		e.RiskScore = 0
	}
	if !e.RiskLevel.Valid() {
		e.RiskLevel = RiskLevelFromScore(e.RiskScore)
		fixes = append(fixes, "risk_level missing, derived from score")
	}

	return e, fixes
}

// Unknown returns a placeholder summary for an id the store could not
// resolve. Callers use it so topology survives lookup failures.
func Unknown(id string) Entity {
	return Entity{
		ID:        id,
		Name:      id,
		Type:      TypeUnknown,
		RiskScore: 0,
		RiskLevel: RiskLow,
	}
}
