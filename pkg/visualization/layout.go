// Package visualization computes 2-D position hints for rendering a
// network graph. Layouts are cosmetic: they never change which nodes or
// edges a graph contains. Identical inputs always produce identical
// positions, so cached responses stay stable.
package visualization

import (
	"fmt"
	"hash/fnv"
	"sort"
)

// Position is a 2-D coordinate on the render canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge is the undirected endpoint pair a layout needs; everything else
// about a relationship is irrelevant to positioning.
type Edge struct {
	SourceID string
	TargetID string
}

// Algorithm selects a layout strategy.
type Algorithm string

const (
	AlgorithmForce        Algorithm = "force"
	AlgorithmHierarchical Algorithm = "hierarchical"
	AlgorithmCircular     Algorithm = "circular"
)

// Valid reports whether the algorithm is one of the supported three.
func (a Algorithm) Valid() bool {
	switch a {
	case AlgorithmForce, AlgorithmHierarchical, AlgorithmCircular:
		return true
	}
	return false
}

// Config bounds the render canvas.
type Config struct {
	Width      float64
	Height     float64
	Iterations int // iterative algorithms only
	Padding    float64
}

// DefaultConfig returns the standard canvas.
func DefaultConfig() Config {
	return Config{
		Width:      800,
		Height:     600,
		Iterations: 50,
		Padding:    50,
	}
}

// Layout computes positions for a set of nodes and their edges.
type Layout interface {
	ComputeLayout(nodeIDs []string, edges []Edge) (map[string]Position, error)
}

// Compute runs the named algorithm over the graph. CenterID, when one of
// the nodes, anchors the hierarchical layout's root and the circular
// layout's middle.
func Compute(alg Algorithm, cfg Config, centerID string, nodeIDs []string, edges []Edge) (map[string]Position, error) {
	var l Layout
	switch alg {
	case AlgorithmForce:
		l = NewForceDirectedLayout(cfg)
	case AlgorithmHierarchical:
		l = NewHierarchicalLayout(cfg, centerID)
	case AlgorithmCircular:
		l = NewCircularLayout(cfg, centerID)
	default:
		return nil, fmt.Errorf("unknown layout algorithm %q", alg)
	}
	return l.ComputeLayout(nodeIDs, edges)
}

// sortedCopy returns the node ids in ascending order so every layout
// iterates them in the same order on every run.
func sortedCopy(nodeIDs []string) []string {
	out := append([]string(nil), nodeIDs...)
	sort.Strings(out)
	return out
}

// layoutSeed hashes the node set into the deterministic seed the
// force-directed layout initializes its positions from.
func layoutSeed(nodeIDs []string) int64 {
	h := fnv.New64a()
	for _, id := range nodeIDs {
		h.Write([]byte(id))
		h.Write([]byte{0})
	}
	return int64(h.Sum64())
}

// adjacencySet builds an undirected neighbour lookup restricted to known
// nodes.
func adjacencySet(nodeIDs []string, edges []Edge) map[string]map[string]bool {
	known := make(map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		known[id] = true
	}
	adj := make(map[string]map[string]bool, len(nodeIDs))
	for _, id := range nodeIDs {
		adj[id] = make(map[string]bool)
	}
	for _, e := range edges {
		if !known[e.SourceID] || !known[e.TargetID] || e.SourceID == e.TargetID {
			continue
		}
		adj[e.SourceID][e.TargetID] = true
		adj[e.TargetID][e.SourceID] = true
	}
	return adj
}
