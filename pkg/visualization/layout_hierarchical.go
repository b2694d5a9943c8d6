package visualization

// HierarchicalLayout arranges nodes in rows by distance from the root:
// the center entity on top, its direct connections below, and so on.
type HierarchicalLayout struct {
	config   Config
	centerID string
}

// NewHierarchicalLayout creates a hierarchical layout rooted at centerID.
func NewHierarchicalLayout(config Config, centerID string) *HierarchicalLayout {
	if config.Padding == 0 {
		config.Padding = 50
	}
	return &HierarchicalLayout{config: config, centerID: centerID}
}

// ComputeLayout implements Layout. Rows come from an undirected BFS over
// the edges; nodes unreachable from the root share a final row.
func (hl *HierarchicalLayout) ComputeLayout(nodeIDs []string, edges []Edge) (map[string]Position, error) {
	positions := make(map[string]Position)
	sorted := sortedCopy(nodeIDs)
	if len(sorted) == 0 {
		return positions, nil
	}

	root := hl.centerID
	if _, ok := indexOf(sorted, root); !ok {
		root = sorted[0]
	}

	adj := adjacencySet(sorted, edges)

	visited := map[string]bool{root: true}
	levels := [][]string{{root}}
	current := []string{root}
	for len(current) > 0 {
		var next []string
		for _, id := range current {
			for _, nb := range sortedKeys(adj[id]) {
				if !visited[nb] {
					visited[nb] = true
					next = append(next, nb)
				}
			}
		}
		if len(next) == 0 {
			break
		}
		levels = append(levels, next)
		current = next
	}

	// Disconnected leftovers share a trailing row.
	var orphans []string
	for _, id := range sorted {
		if !visited[id] {
			orphans = append(orphans, id)
		}
	}
	if len(orphans) > 0 {
		levels = append(levels, orphans)
	}

	levelHeight := (hl.config.Height - 2*hl.config.Padding) / float64(len(levels))
	for levelIdx, level := range levels {
		y := hl.config.Padding + float64(levelIdx)*levelHeight + levelHeight/2
		spacing := (hl.config.Width - 2*hl.config.Padding) / float64(len(level)+1)
		for nodeIdx, id := range level {
			positions[id] = Position{
				X: hl.config.Padding + spacing*float64(nodeIdx+1),
				Y: y,
			}
		}
	}

	return positions, nil
}

func indexOf(ids []string, id string) (int, bool) {
	for i, v := range ids {
		if v == id {
			return i, true
		}
	}
	return 0, false
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return sortedCopy(out)
}
