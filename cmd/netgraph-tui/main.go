package main

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/trestleaml/networkengine/pkg/analysis"
	"github.com/trestleaml/networkengine/pkg/audit"
	"github.com/trestleaml/networkengine/pkg/cache"
	"github.com/trestleaml/networkengine/pkg/entity"
	"github.com/trestleaml/networkengine/pkg/graphstore"
	"github.com/trestleaml/networkengine/pkg/metrics"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginLeft(2).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#FF00FF")).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#666666")).
				Padding(0, 2)

	contentStyle = lipgloss.NewStyle().
			MarginLeft(2).
			MarginTop(1)

	statsBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(1, 2).
			MarginRight(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	riskStyles = map[entity.RiskLevel]lipgloss.Style{
		entity.RiskLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		entity.RiskMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")),
		entity.RiskHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("#FF8800")),
		entity.RiskCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true),
	}

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

type view int

const (
	dashboardView view = iota
	entitiesView
	hubsView
	communitiesView
	propagationView
	viewCount
)

type keyMap struct {
	Tab      key.Binding
	ShiftTab key.Binding
	Enter    key.Binding
	Quit     key.Binding
	Up       key.Binding
	Down     key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "analyze"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Enter, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.Enter},
		{k.Up, k.Down},
		{k.Quit},
	}
}

type model struct {
	svc         *analysis.Service
	trail       *audit.Trail
	currentView view
	centerInput textinput.Model
	entityTable table.Model
	hubTable    table.Model
	help        help.Model
	keys        keyMap
	width       int
	height      int
	message     string
	messageErr  bool
	result      *analysis.Response
}

func initialModel(svc *analysis.Service, trail *audit.Trail) model {
	ti := textinput.New()
	ti.Placeholder = "meridian-holdings"
	ti.CharLimit = 64
	ti.Width = 40
	ti.Focus()

	entityColumns := []table.Column{
		{Title: "Entity", Width: 24},
		{Title: "Type", Width: 14},
		{Title: "Hop", Width: 4},
		{Title: "Degree", Width: 7},
		{Title: "Base Risk", Width: 10},
		{Title: "Network Risk", Width: 12},
	}
	et := table.New(
		table.WithColumns(entityColumns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	hubColumns := []table.Column{
		{Title: "Hub", Width: 24},
		{Title: "Degree", Width: 7},
		{Title: "Avg Conf", Width: 9},
		{Title: "Types", Width: 6},
		{Title: "Influence", Width: 10},
		{Title: "Risk", Width: 9},
	}
	ht := table.New(
		table.WithColumns(hubColumns),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#00FFFF")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(lipgloss.Color("#FF00FF")).
		Bold(false)
	et.SetStyles(s)
	ht.SetStyles(s)

	return model{
		svc:         svc,
		trail:       trail,
		currentView: dashboardView,
		centerInput: ti,
		entityTable: et,
		hubTable:    ht,
		help:        help.New(),
		keys:        keys,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Tab):
			m.currentView = (m.currentView + 1) % viewCount
			m.syncFocus()

		case key.Matches(msg, m.keys.ShiftTab):
			if m.currentView == 0 {
				m.currentView = viewCount - 1
			} else {
				m.currentView--
			}
			m.syncFocus()

		case key.Matches(msg, m.keys.Enter):
			if m.currentView == dashboardView {
				m.runAnalysis()
			}
		}
	}

	switch m.currentView {
	case dashboardView:
		m.centerInput, cmd = m.centerInput.Update(msg)
		cmds = append(cmds, cmd)
	case entitiesView:
		m.entityTable, cmd = m.entityTable.Update(msg)
		cmds = append(cmds, cmd)
	case hubsView:
		m.hubTable, cmd = m.hubTable.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *model) syncFocus() {
	if m.currentView == dashboardView {
		m.centerInput.Focus()
	} else {
		m.centerInput.Blur()
	}
}

func (m *model) runAnalysis() {
	center := strings.TrimSpace(m.centerInput.Value())
	if center == "" {
		center = m.centerInput.Placeholder
	}

	start := time.Now()
	resp, err := m.svc.Analyze(context.Background(), analysis.Request{
		CenterEntityID:         center,
		RequestedBy:            "tui",
		MaxDepth:               3,
		IncludeCentrality:      true,
		IncludeCommunities:     true,
		IncludeHubs:            true,
		IncludeRiskPropagation: true,
		MinHubConnections:      3,
	})
	if err != nil {
		m.message = fmt.Sprintf("Analysis error: %v", err)
		m.messageErr = true
		return
	}

	m.result = resp
	m.message = fmt.Sprintf("Analyzed %d entities in %s (cached: %v)",
		len(resp.Nodes), time.Since(start).Round(time.Microsecond), resp.FromCache)
	m.messageErr = false
	m.refreshTables()
}

func (m *model) refreshTables() {
	entityRows := make([]table.Row, 0, len(m.result.Nodes))
	for _, n := range m.result.Nodes {
		degree := 0
		if n.Centrality != nil {
			degree = n.Centrality.Degree
		}
		entityRows = append(entityRows, table.Row{
			n.Entity.ID,
			string(n.Entity.Type),
			fmt.Sprintf("%d", n.Hop),
			fmt.Sprintf("%d", degree),
			fmt.Sprintf("%.2f", n.Entity.RiskScore),
			fmt.Sprintf("%.2f", m.result.NetworkRiskScores[n.Entity.ID]),
		})
	}
	m.entityTable.SetRows(entityRows)

	hubRows := make([]table.Row, 0, len(m.result.Hubs))
	for _, h := range m.result.Hubs {
		hubRows = append(hubRows, table.Row{
			h.EntityID,
			fmt.Sprintf("%d", h.Degree),
			fmt.Sprintf("%.2f", h.AvgConfidence),
			fmt.Sprintf("%d", h.DistinctTypes),
			fmt.Sprintf("%.1f", h.InfluenceScore),
			string(h.RiskLevel),
		})
	}
	m.hubTable.SetRows(hubRows)
}

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("🕸  Network Engine - Investigator Console"))
	s.WriteString("\n\n")
	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch m.currentView {
	case dashboardView:
		s.WriteString(m.renderDashboard())
	case entitiesView:
		s.WriteString(m.renderEntities())
	case hubsView:
		s.WriteString(m.renderHubs())
	case communitiesView:
		s.WriteString(m.renderCommunities())
	case propagationView:
		s.WriteString(m.renderPropagation())
	}

	if m.message != "" {
		s.WriteString("\n\n")
		if m.messageErr {
			s.WriteString(errorStyle.Render("✗ " + m.message))
		} else {
			s.WriteString(successStyle.Render("✓ " + m.message))
		}
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))

	return s.String()
}

func (m model) renderTabs() string {
	tabs := []string{"Dashboard", "Entities", "Hubs", "Communities", "Propagation"}
	var renderedTabs []string

	for i, tab := range tabs {
		if view(i) == m.currentView {
			renderedTabs = append(renderedTabs, activeTabStyle.Render(tab))
		} else {
			renderedTabs = append(renderedTabs, inactiveTabStyle.Render(tab))
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)
}

func (m model) renderDashboard() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("New Investigation"))
	s.WriteString("\n\n")
	s.WriteString("Center entity id:\n\n")
	s.WriteString(m.centerInput.View())
	s.WriteString("\n\n")

	if m.result != nil {
		stats := m.result.Statistics
		summary := fmt.Sprintf(`📊 Last Analysis
━━━━━━━━━━━━━━━
Center:     %s
Entities:   %d
Edges:      %d
Density:    %.3f
Avg Conf:   %.2f
Truncated:  %v`,
			m.result.CenterEntityID,
			stats.TotalEntities,
			stats.TotalRelationships,
			stats.Density,
			stats.AvgConfidence,
			m.result.Truncated,
		)

		risks := fmt.Sprintf(`⚠️  Risk Bands
━━━━━━━━━━━━━━━
Critical:   %d
High:       %d
Medium:     %d
Low:        %d`,
			stats.RiskDistribution[entity.RiskCritical],
			stats.RiskDistribution[entity.RiskHigh],
			stats.RiskDistribution[entity.RiskMedium],
			stats.RiskDistribution[entity.RiskLow],
		)

		s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			statsBoxStyle.Render(summary),
			statsBoxStyle.Render(risks),
		))
	} else {
		s.WriteString(helpStyle.Render("Press Enter to analyze the network around the center entity"))
	}

	if recent := m.trail.Recent(5); len(recent) > 0 {
		s.WriteString("\n\n")
		s.WriteString(headerStyle.Render("Recent Activity"))
		s.WriteString("\n")
		for _, e := range recent {
			s.WriteString(fmt.Sprintf("\n  %s  %-18s %-16s %s",
				e.Timestamp.Format("15:04:05"), e.Kind, e.Outcome, e.CenterEntityID))
		}
	}

	return contentStyle.Render(s.String())
}

func (m model) renderEntities() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Entity Browser"))
	s.WriteString("\n\n")
	if m.result == nil {
		s.WriteString(helpStyle.Render("Run an analysis first"))
	} else {
		s.WriteString(m.entityTable.View())
	}
	return contentStyle.Render(s.String())
}

func (m model) renderHubs() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Hub Detection"))
	s.WriteString("\n\n")
	if m.result == nil {
		s.WriteString(helpStyle.Render("Run an analysis first"))
	} else if len(m.result.Hubs) == 0 {
		s.WriteString(helpStyle.Render("No entity cleared the connection threshold"))
	} else {
		s.WriteString(m.hubTable.View())
	}
	return contentStyle.Render(s.String())
}

func (m model) renderCommunities() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Communities"))
	s.WriteString("\n\n")

	if m.result == nil || m.result.Communities == nil {
		s.WriteString(helpStyle.Render("Run an analysis first"))
		return contentStyle.Render(s.String())
	}

	cr := m.result.Communities
	s.WriteString(fmt.Sprintf("Confidence floor: %.2f\n\n", cr.ConfidenceFloor))
	for _, c := range cr.Communities {
		header := fmt.Sprintf("%s — %d members, density %.2f, avg risk %.2f",
			c.ID, c.Size, c.Density, c.AvgRiskScore)
		s.WriteString(riskStyles[entity.RiskLevelFromScore(c.AvgRiskScore)].Render(header))
		s.WriteString("\n")
		s.WriteString(fmt.Sprintf("  %s\n\n", strings.Join(c.EntityIDs, ", ")))
	}
	if len(cr.Communities) == 0 {
		s.WriteString(helpStyle.Render("No community reached the minimum size"))
	}

	return contentStyle.Render(s.String())
}

func (m model) renderPropagation() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("Risk Propagation"))
	s.WriteString("\n\n")

	if m.result == nil || m.result.PropagatedRisk == nil {
		s.WriteString(helpStyle.Render("Run an analysis first"))
		return contentStyle.Render(s.String())
	}

	p := m.result.PropagatedRisk
	s.WriteString(fmt.Sprintf("Seed %s (base risk %.2f)\n\n", p.SourceID, p.SeedRisk))

	ids := make([]string, 0, len(p.Scores))
	for id := range p.Scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return p.Scores[ids[i]] > p.Scores[ids[j]] })

	for _, id := range ids {
		bar := strings.Repeat("█", int(p.Scores[id]*40))
		s.WriteString(fmt.Sprintf("  %-24s %.4f %s (depth %d)\n", id, p.Scores[id], bar, p.Depths[id]))
	}
	if len(ids) == 0 {
		s.WriteString(helpStyle.Render("Nothing received a propagated score above the floor"))
	}

	return contentStyle.Render(s.String())
}

func main() {
	store := graphstore.NewMemStore()
	if err := seedDemoNetwork(store); err != nil {
		log.Fatalf("Failed to seed fixture: %v", err)
	}

	trail := audit.NewTrail(100)
	svc := analysis.NewService(store,
		analysis.WithMetrics(metrics.NewRegistry()),
		analysis.WithCache(cache.New(64)),
		analysis.WithAuditTrail(trail),
	)

	p := tea.NewProgram(initialModel(svc, trail), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running program: %v", err)
	}
}

// seedDemoNetwork loads the same layering fixture the demo command uses.
func seedDemoNetwork(store *graphstore.MemStore) error {
	org := func(id, name string, risk float64) entity.Entity {
		return entity.Entity{ID: id, Name: name, Type: entity.TypeOrganization,
			RiskScore: risk, RiskLevel: entity.RiskLevelFromScore(risk)}
	}
	person := func(id, name string, risk float64) entity.Entity {
		return entity.Entity{ID: id, Name: name, Type: entity.TypeIndividual,
			RiskScore: risk, RiskLevel: entity.RiskLevelFromScore(risk)}
	}
	link := func(id, src, dst string, t entity.RelationshipType, conf float64) entity.Relationship {
		return entity.Relationship{ID: id, SourceID: src, TargetID: dst, Type: t,
			Strength: entity.StrengthLikely, Confidence: conf, Verified: true, Active: true}
	}

	return store.Seed(
		[]entity.Entity{
			org("meridian-holdings", "Meridian Holdings Ltd", 0.82),
			org("aurora-trade", "Aurora Trade SA", 0.65),
			org("coastal-imports", "Coastal Imports LLC", 0.58),
			org("brightline-consult", "Brightline Consulting", 0.45),
			org("pacific-freight", "Pacific Freight Co", 0.2),
			person("viktor-reyes", "Viktor Reyes", 0.9),
			person("elena-marsh", "Elena Marsh", 0.7),
			person("tomas-keller", "Tomas Keller", 0.35),
			person("ines-fontaine", "Ines Fontaine", 0.15),
			person("harold-quinn", "Harold Quinn", 0.1),
		},
		[]entity.Relationship{
			link("e01", "viktor-reyes", "meridian-holdings", entity.RelUBOOf, 0.95),
			link("e02", "meridian-holdings", "aurora-trade", entity.RelParentOfSubsidiary, 0.9),
			link("e03", "meridian-holdings", "coastal-imports", entity.RelParentOfSubsidiary, 0.85),
			link("e04", "meridian-holdings", "brightline-consult", entity.RelParentOfSubsidiary, 0.8),
			link("e05", "elena-marsh", "aurora-trade", entity.RelDirectorOf, 0.9),
			link("e06", "elena-marsh", "coastal-imports", entity.RelDirectorOf, 0.85),
			link("e07", "viktor-reyes", "elena-marsh", entity.RelBusinessAssociateSuspected, 0.75),
			link("e08", "tomas-keller", "brightline-consult", entity.RelDirectorOf, 0.8),
			link("e09", "aurora-trade", "pacific-freight", entity.RelBusinessAssociate, 0.7),
			link("e10", "coastal-imports", "pacific-freight", entity.RelBusinessAssociate, 0.65),
			link("e11", "ines-fontaine", "pacific-freight", entity.RelDirectorOf, 0.9),
			link("e12", "harold-quinn", "tomas-keller", entity.RelHouseholdMember, 0.8),
		},
	)
}
