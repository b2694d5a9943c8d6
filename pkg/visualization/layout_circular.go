package visualization

import "math"

// CircularLayout places the center entity in the middle and every other
// node evenly around a circle, in ascending id order.
type CircularLayout struct {
	config   Config
	centerID string
}

// NewCircularLayout creates a circular layout anchored on centerID.
func NewCircularLayout(config Config, centerID string) *CircularLayout {
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &CircularLayout{config: config, centerID: centerID}
}

// ComputeLayout implements Layout.
func (cl *CircularLayout) ComputeLayout(nodeIDs []string, edges []Edge) (map[string]Position, error) {
	positions := make(map[string]Position)
	if len(nodeIDs) == 0 {
		return positions, nil
	}

	centerX := cl.config.Width / 2
	centerY := cl.config.Height / 2

	ring := make([]string, 0, len(nodeIDs))
	for _, id := range sortedCopy(nodeIDs) {
		if id == cl.centerID {
			positions[id] = Position{X: centerX, Y: centerY}
			continue
		}
		ring = append(ring, id)
	}
	if len(ring) == 0 {
		return positions, nil
	}

	radius := math.Min(centerX, centerY) - cl.config.Padding
	angleStep := 2 * math.Pi / float64(len(ring))
	for i, id := range ring {
		angle := float64(i) * angleStep
		positions[id] = Position{
			X: centerX + radius*math.Cos(angle),
			Y: centerY + radius*math.Sin(angle),
		}
	}

	return positions, nil
}
