package visualization

import (
	"math"
	"math/rand"
)

// ForceDirectedLayout spreads nodes by simulated repulsion between every
// pair and attraction along edges (Fruchterman-Reingold style).
type ForceDirectedLayout struct {
	config Config
}

// NewForceDirectedLayout creates a force-directed layout.
func NewForceDirectedLayout(config Config) *ForceDirectedLayout {
	if config.Iterations == 0 {
		config.Iterations = 50
	}
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &ForceDirectedLayout{config: config}
}

// ComputeLayout implements Layout. Initial positions come from a PRNG
// seeded by the node set, so the same graph always lands the same way.
func (fdl *ForceDirectedLayout) ComputeLayout(nodeIDs []string, edges []Edge) (map[string]Position, error) {
	nodeIDs = sortedCopy(nodeIDs)
	if len(nodeIDs) == 0 {
		return map[string]Position{}, nil
	}
	if len(nodeIDs) == 1 {
		return map[string]Position{
			nodeIDs[0]: {X: fdl.config.Width / 2, Y: fdl.config.Height / 2},
		}, nil
	}

	rng := rand.New(rand.NewSource(layoutSeed(nodeIDs)))
	positions := make(map[string]Position, len(nodeIDs))
	for _, id := range nodeIDs {
		positions[id] = Position{
			X: rng.Float64()*(fdl.config.Width-2*fdl.config.Padding) + fdl.config.Padding,
			Y: rng.Float64()*(fdl.config.Height-2*fdl.config.Padding) + fdl.config.Padding,
		}
	}

	adj := adjacencySet(nodeIDs, edges)

	// Optimal pairwise distance for the canvas area.
	k := math.Sqrt((fdl.config.Width * fdl.config.Height) / float64(len(nodeIDs)))
	temperature := fdl.config.Width / 10.0

	for iter := 0; iter < fdl.config.Iterations; iter++ {
		forces := make(map[string]Position, len(nodeIDs))

		// Repulsion between all pairs.
		for i, a := range nodeIDs {
			for j := i + 1; j < len(nodeIDs); j++ {
				b := nodeIDs[j]
				dx := positions[a].X - positions[b].X
				dy := positions[a].Y - positions[b].Y
				dist := math.Sqrt(dx*dx + dy*dy)
				if dist < 0.01 {
					dist = 0.01
				}

				force := (k * k) / dist
				fx := (dx / dist) * force
				fy := (dy / dist) * force

				forces[a] = Position{X: forces[a].X + fx, Y: forces[a].Y + fy}
				forces[b] = Position{X: forces[b].X - fx, Y: forces[b].Y - fy}
			}
		}

		// Attraction along edges.
		for _, a := range nodeIDs {
			for b := range adj[a] {
				dx := positions[a].X - positions[b].X
				dy := positions[a].Y - positions[b].Y
				dist := math.Sqrt(dx*dx + dy*dy)
				if dist < 0.01 {
					continue
				}

				force := (dist * dist) / k
				forces[a] = Position{
					X: forces[a].X - (dx/dist)*force,
					Y: forces[a].Y - (dy/dist)*force,
				}
			}
		}

		// Apply with cooling so the simulation settles.
		cool := 1.0 - float64(iter)/float64(fdl.config.Iterations)
		for _, id := range nodeIDs {
			fx, fy := forces[id].X, forces[id].Y
			force := math.Sqrt(fx*fx + fy*fy)
			if force > 0 {
				step := math.Min(force, temperature) * cool
				positions[id] = Position{
					X: positions[id].X + (fx/force)*step,
					Y: positions[id].Y + (fy/force)*step,
				}
			}
		}
		temperature *= 0.95
	}

	return normalizePositions(positions, fdl.config.Width, fdl.config.Height, fdl.config.Padding), nil
}
