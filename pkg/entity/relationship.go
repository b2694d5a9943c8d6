package entity

// RelationshipType names the kind of link between two entities.
type RelationshipType string

const (
	RelConfirmedSameEntity         RelationshipType = "confirmed_same_entity"
	RelBusinessAssociateSuspected  RelationshipType = "business_associate_suspected"
	RelDirectorOf                  RelationshipType = "director_of"
	RelUBOOf                       RelationshipType = "ubo_of"
	RelParentOfSubsidiary          RelationshipType = "parent_of_subsidiary"
	RelBusinessAssociate           RelationshipType = "business_associate"
	RelSharedAddress               RelationshipType = "shared_address"
	RelHouseholdMember             RelationshipType = "household_member"
	RelProfessionalColleaguePublic RelationshipType = "professional_colleague_public"
)

// RiskWeight returns the multiplier applied when risk flows across an edge
// of this type. Identity and control links carry risk almost undiminished,
// social and public links barely at all. Unlisted types weigh 0.5.
func (t RelationshipType) RiskWeight() float64 {
	switch t {
	case RelConfirmedSameEntity, RelBusinessAssociateSuspected:
		return 0.9
	case RelDirectorOf, RelUBOOf, RelParentOfSubsidiary:
		return 0.7
	case RelHouseholdMember, RelProfessionalColleaguePublic:
		return 0.3
	default:
		return 0.5
	}
}

// Strength grades how well a relationship is evidenced.
type Strength string

const (
	StrengthConfirmed Strength = "confirmed"
	StrengthLikely    Strength = "likely"
	StrengthPossible  Strength = "possible"
	StrengthSuspected Strength = "suspected"
)

// Relationship is a directed edge between two entities. Traversal treats
// edges as undirected; direction is preserved for reporting.
type Relationship struct {
	ID         string           `json:"relationship_id"`
	SourceID   string           `json:"source_id"`
	TargetID   string           `json:"target_id"`
	Type       RelationshipType `json:"relationship_type"`
	Strength   Strength         `json:"strength"`
	Confidence float64          `json:"confidence"`
	Verified   bool             `json:"verified"`
	Active     bool             `json:"active"`
}

// SelfLoop reports whether both endpoints are the same entity.
func (r Relationship) SelfLoop() bool {
	return r.SourceID == r.TargetID
}

// Other returns the endpoint opposite id. If id is not an endpoint the
// source is returned.
func (r Relationship) Other(id string) string {
	if r.SourceID == id {
		return r.TargetID
	}
	if r.TargetID == id {
		return r.SourceID
	}
	return r.SourceID
}

// Touches reports whether id is one of the two endpoints.
func (r Relationship) Touches(id string) bool {
	return r.SourceID == id || r.TargetID == id
}
