package analysis

import (
	"container/list"
	"fmt"
	"sort"

	"github.com/trestleaml/networkengine/pkg/entity"
	"github.com/trestleaml/networkengine/pkg/network"
)

// Confidence floor bounds: resolution tunes the floor between these.
const (
	baseConfidenceFloor = 0.7
	minConfidenceFloor  = 0.5
	maxConfidenceFloor  = 0.9
)

// CommunityOptions configures connected-component community detection.
type CommunityOptions struct {
	// Candidates restricts detection to the listed entities. Nil means
	// every node in the graph.
	Candidates []string

	// MinCommunitySize drops components smaller than this.
	MinCommunitySize int

	// Resolution tunes the edge confidence floor. 1.0 keeps the base
	// floor of 0.7; higher resolutions demand stronger edges and so split
	// communities finer.
	Resolution float64
}

// DefaultCommunityOptions returns the standard defaults.
func DefaultCommunityOptions() CommunityOptions {
	return CommunityOptions{
		MinCommunitySize: 3,
		Resolution:       1.0,
	}
}

// Validate checks every option against its documented range.
func (o CommunityOptions) Validate() error {
	if o.MinCommunitySize < 1 {
		return requestError("min_community_size", o.MinCommunitySize, ">= 1")
	}
	if o.Resolution <= 0 {
		return requestError("resolution", o.Resolution, "> 0")
	}
	return nil
}

// floor maps the resolution onto the confidence floor, clamped so extreme
// resolutions stay meaningful.
func (o CommunityOptions) floor() float64 {
	f := baseConfidenceFloor * o.Resolution
	if f < minConfidenceFloor {
		return minConfidenceFloor
	}
	if f > maxConfidenceFloor {
		return maxConfidenceFloor
	}
	return f
}

// Community is one detected cluster of entities.
type Community struct {
	ID           string                  `json:"community_id"`
	EntityIDs    []string                `json:"entity_ids"` // ascending
	Size         int                     `json:"size"`
	Density      float64                 `json:"density"`
	AvgRiskScore float64                 `json:"avg_risk_score"`
	DominantType entity.RelationshipType `json:"dominant_relationship_type"`
}

// CommunityResult holds the detected communities. Entities in no listed
// community were isolated or in a component below the size threshold.
type CommunityResult struct {
	Communities     []Community       `json:"communities"`
	ConfidenceFloor float64           `json:"confidence_floor"`
	Assignments     map[string]string `json:"assignments"` // entity id -> community id
}

// DetectCommunities finds connected components over active edges whose
// confidence clears the resolution-tuned floor. Components smaller than
// MinCommunitySize are discarded, so every candidate belongs to at most
// one returned community.
func DetectCommunities(g *network.Graph, opts CommunityOptions) (*CommunityResult, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	candidates := opts.Candidates
	if candidates == nil {
		candidates = g.NodeIDs()
	} else {
		candidates = append([]string(nil), candidates...)
		sort.Strings(candidates)
	}

	inSet := make(map[string]bool, len(candidates))
	for _, id := range candidates {
		if g.Has(id) {
			inSet[id] = true
		}
	}

	floor := opts.floor()
	qualifies := func(e entity.Relationship) bool {
		return e.Active && e.Confidence >= floor && inSet[e.SourceID] && inSet[e.TargetID]
	}

	// BFS per unvisited candidate over qualifying edges.
	visited := make(map[string]bool, len(candidates))
	var components [][]string
	for _, start := range candidates {
		if visited[start] || !inSet[start] {
			continue
		}
		visited[start] = true

		var members []string
		queue := list.New()
		queue.PushBack(start)

		for queue.Len() > 0 {
			id, ok := queue.Remove(queue.Front()).(string)
			if !ok {
				continue
			}
			members = append(members, id)

			for _, e := range g.EdgesOf(id) {
				if !qualifies(e) {
					continue
				}
				neighbor := e.Other(id)
				if !visited[neighbor] {
					visited[neighbor] = true
					queue.PushBack(neighbor)
				}
			}
		}

		if len(members) < opts.MinCommunitySize {
			continue
		}
		sort.Strings(members)
		components = append(components, members)
	}

	// Largest first; ties broken by the smallest member id.
	sort.SliceStable(components, func(i, j int) bool {
		if len(components[i]) != len(components[j]) {
			return len(components[i]) > len(components[j])
		}
		return components[i][0] < components[j][0]
	})

	assignments := make(map[string]string)
	communities := make([]Community, 0, len(components))
	for i, members := range components {
		id := fmt.Sprintf("community-%d", i+1)
		for _, m := range members {
			assignments[m] = id
		}
		communities = append(communities, Community{
			ID:        id,
			EntityIDs: members,
			Size:      len(members),
		})
	}

	// One pass over the edge list fills per-community edge statistics.
	edgeCounts := make(map[string]int)
	typeCounts := make(map[string]map[entity.RelationshipType]int)
	for _, e := range g.Edges() {
		if !qualifies(e) {
			continue
		}
		cid := assignments[e.SourceID]
		if cid == "" || cid != assignments[e.TargetID] {
			continue
		}
		edgeCounts[cid]++
		if typeCounts[cid] == nil {
			typeCounts[cid] = make(map[entity.RelationshipType]int)
		}
		typeCounts[cid][e.Type]++
	}

	for i := range communities {
		c := &communities[i]

		possible := float64(c.Size*(c.Size-1)) / 2
		if possible > 0 {
			c.Density = float64(edgeCounts[c.ID]) / possible
		}

		total := 0.0
		for _, m := range c.EntityIDs {
			total += g.Node(m).Entity.RiskScore
		}
		c.AvgRiskScore = total / float64(c.Size)

		c.DominantType = dominantType(typeCounts[c.ID])
	}

	return &CommunityResult{
		Communities:     communities,
		ConfidenceFloor: floor,
		Assignments:     assignments,
	}, nil
}

// dominantType returns the most frequent relationship type, breaking ties
// by the lexicographically smallest type name.
func dominantType(counts map[entity.RelationshipType]int) entity.RelationshipType {
	var best entity.RelationshipType
	bestCount := 0
	for t, c := range counts {
		if c > bestCount || (c == bestCount && (best == "" || t < best)) {
			best = t
			bestCount = c
		}
	}
	return best
}
