// Package network builds bounded subgraphs around a center entity and
// finds shortest relationship paths between entities. Graphs are built
// once from store data and treated as immutable by the analysis layer.
package network

import (
	"sort"

	"github.com/trestleaml/networkengine/pkg/entity"
)

// CentralityMetrics holds the per-node centrality scores computed by the
// analysis layer. Closeness and betweenness are degree-derived estimates,
// not exact values.
type CentralityMetrics struct {
	Degree             int     `json:"degree"`
	NormalizedDegree   float64 `json:"normalized_degree"`
	WeightedDegree     float64 `json:"weighted_degree"`
	RiskWeightedDegree float64 `json:"risk_weighted_degree"`
	HighConfidence     int     `json:"high_confidence_connections"`
	CompositeScore     float64 `json:"composite_score"`
	Closeness          float64 `json:"closeness_centrality"`
	Betweenness        float64 `json:"betweenness_centrality"`
}

// Node is a single entity inside a built subgraph.
type Node struct {
	Entity entity.Entity `json:"entity"`

	// Hop is the undirected distance from the center entity.
	Hop int `json:"hop"`

	// ConnectionCount is the node's degree within this subgraph.
	ConnectionCount int `json:"connection_count"`

	// IsCenter marks the entity the subgraph was built around.
	IsCenter bool `json:"is_center"`

	// Centrality is populated on demand by the analysis layer.
	Centrality *CentralityMetrics `json:"centrality,omitempty"`
}

// Graph is a bounded subgraph centred on one entity. Edges keep the
// discovery order of the traversal that produced them.
type Graph struct {
	CenterID string
	Depth    int

	nodes     map[string]*Node
	nodeOrder []string // discovery order, center first
	edges     []entity.Relationship
	adjacency map[string][]int // node id -> indexes into edges
}

// NewGraph creates an empty graph for the given center and traversal depth.
func NewGraph(centerID string, depth int) *Graph {
	g := &Graph{
		CenterID:  centerID,
		Depth:     depth,
		nodes:     make(map[string]*Node),
		adjacency: make(map[string][]int),
	}
	return g
}

// AddNode inserts a node at the given hop distance. Re-adding an existing
// id updates its entity summary but keeps its first hop.
func (g *Graph) AddNode(e entity.Entity, hop int) {
	if n, ok := g.nodes[e.ID]; ok {
		n.Entity = e
		return
	}
	g.nodes[e.ID] = &Node{Entity: e, Hop: hop, IsCenter: e.ID == g.CenterID}
	g.nodeOrder = append(g.nodeOrder, e.ID)
}

// AddEdge appends a relationship whose endpoints are already nodes.
// Self loops and edges touching unknown nodes are ignored.
func (g *Graph) AddEdge(r entity.Relationship) {
	if r.SelfLoop() {
		return
	}
	if _, ok := g.nodes[r.SourceID]; !ok {
		return
	}
	if _, ok := g.nodes[r.TargetID]; !ok {
		return
	}
	idx := len(g.edges)
	g.edges = append(g.edges, r)
	g.adjacency[r.SourceID] = append(g.adjacency[r.SourceID], idx)
	g.adjacency[r.TargetID] = append(g.adjacency[r.TargetID], idx)
	g.nodes[r.SourceID].ConnectionCount++
	g.nodes[r.TargetID].ConnectionCount++
}

// Has reports whether the entity is part of the graph.
func (g *Graph) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns the node for id, or nil when absent.
func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// NodeIDs returns all node ids in ascending order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NodeList returns nodes ordered by hop distance, then id. This is the
// order responses render nodes in.
func (g *Graph) NodeList() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, id := range g.nodeOrder {
		out = append(out, g.nodes[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Hop != out[j].Hop {
			return out[i].Hop < out[j].Hop
		}
		return out[i].Entity.ID < out[j].Entity.ID
	})
	return out
}

// Edges returns the edge list in discovery order. Callers must not mutate it.
func (g *Graph) Edges() []entity.Relationship {
	return g.edges
}

// EdgesOf returns every edge touching id, in discovery order.
func (g *Graph) EdgesOf(id string) []entity.Relationship {
	idxs := g.adjacency[id]
	out := make([]entity.Relationship, len(idxs))
	for i, idx := range idxs {
		out[i] = g.edges[idx]
	}
	return out
}

// Degree returns the number of edges touching id.
func (g *Graph) Degree(id string) int {
	return len(g.adjacency[id])
}

// OutDegree returns the number of edges leaving id.
func (g *Graph) OutDegree(id string) int {
	count := 0
	for _, idx := range g.adjacency[id] {
		if g.edges[idx].SourceID == id {
			count++
		}
	}
	return count
}

// InDegree returns the number of edges arriving at id.
func (g *Graph) InDegree(id string) int {
	count := 0
	for _, idx := range g.adjacency[id] {
		if g.edges[idx].TargetID == id {
			count++
		}
	}
	return count
}

// Neighbors returns the distinct entities adjacent to id, in the order
// their connecting edges were discovered.
func (g *Graph) Neighbors(id string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, idx := range g.adjacency[id] {
		other := g.edges[idx].Other(id)
		if !seen[other] {
			seen[other] = true
			out = append(out, other)
		}
	}
	return out
}

// Density returns the ratio of present to possible undirected edges.
func (g *Graph) Density() float64 {
	n := len(g.nodes)
	if n < 2 {
		return 0
	}
	possible := float64(n*(n-1)) / 2
	return float64(len(g.edges)) / possible
}
