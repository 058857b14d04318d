package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dd0wney/cluso-pathview/pkg/scenario"
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

	explainBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.DoubleBorder()).
			BorderForeground(lipgloss.Color("#FFFF00")).
			Padding(1, 2).
			Width(80)

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#B91C1C")).
			Bold(true).
			Padding(0, 1).
			MarginLeft(2)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1).
			MarginLeft(2)
)

func (m model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("Attack Path Dashboard"))
	s.WriteString("\n\n")

	if m.state.Error != "" {
		s.WriteString(bannerStyle.Render("✗ " + m.state.Error + "  (x to dismiss)"))
		s.WriteString("\n\n")
	}

	s.WriteString(m.renderTabs())
	s.WriteString("\n\n")

	switch m.currentView {
	case dashboardView:
		s.WriteString(m.renderDashboard())
	case pathsView:
		s.WriteString(m.renderPaths())
	case graphView:
		s.WriteString(m.renderGraph())
	case scenariosView:
		s.WriteString(m.renderScenarios())
	case focusView:
		s.WriteString(m.renderFocus())
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
	var renderedTabs []string
	for i, tab := range tabNames {
		if view(i) == m.currentView {
			renderedTabs = append(renderedTabs, activeTabStyle.Render(tab))
		} else {
			renderedTabs = append(renderedTabs, inactiveTabStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, renderedTabs...)
}

func (m model) renderDashboard() string {
	st := m.state
	uptime := time.Since(m.startTime).Round(time.Second)

	status := "idle"
	switch {
	case st.DatasetUploading:
		status = "replacing dataset"
	case st.Loading:
		status = "analyzing"
	}

	graphContent := fmt.Sprintf(`Graph
───────────────
Dataset:   v%d
Nodes:     %d
Edges:     %d
Clusters:  %d
Start:     %s
Status:    %s
Uptime:    %s`,
		st.DatasetVersion,
		m.vm.Stats.Nodes,
		m.vm.Stats.Edges,
		m.vm.Stats.Clusters,
		strings.Join(st.StartOptions, ", "),
		status,
		uptime,
	)

	analysisContent := "Analysis\n───────────────\nNot run yet. Press r."
	if a := st.Analysis; a != nil {
		analysisContent = fmt.Sprintf(`Analysis
───────────────
Paths:       %d
Global risk: %.1f
Shortest:    %d hops
Critical:    %d edges
Selected:    %s
Highlight:   %s`,
			a.TotalPaths,
			a.GlobalRisk,
			a.ShortestHops,
			len(a.CriticalEdges),
			orDash(st.SelectedPathID),
			m.vm.Highlight,
		)
	}

	anim := st.Animation
	viewContent := fmt.Sprintf(`View
───────────────
Cluster:     %v
Expanded:    %s
Focus:       %s (r=%d)
Animation:   %s %s
Step:        %d/%d
Speed:       %d ms`,
		st.ClusterView,
		orDash(strings.Join(st.Expanded(), ", ")),
		orDash(st.Focus.Node),
		st.Focus.Radius,
		anim.Status,
		anim.PathID,
		anim.Step+1,
		anim.Total,
		anim.SpeedMS,
	)

	boxes := []string{
		statsBoxStyle.Render(graphContent),
		statsBoxStyle.Render(analysisContent),
		statsBoxStyle.Render(viewContent),
	}
	out := lipgloss.JoinHorizontal(lipgloss.Top, boxes...)

	if sim := st.Scenario; sim != nil {
		offensive := sim.Delta.RiskReductionPercent < 0
		if hl := st.ScenarioHighlight; hl != nil {
			if p, err := scenario.Find(scenario.Presets(), hl.ScenarioID); err == nil {
				offensive = p.Category == scenario.Offensive
			}
		}
		badge := scenario.ImpactBadge(sim.Delta.RiskReductionPercent, offensive)
		simContent := fmt.Sprintf(`Scenario: %s
───────────────
Paths:  %s
Risk:   %.1f → %.1f (%s)
Impact: %s`,
			st.ScenarioLabel,
			scenario.DeltaLabel(sim.Before.TotalPaths, sim.After.TotalPaths),
			sim.Before.GlobalRisk,
			sim.After.GlobalRisk,
			scenario.Trend(sim.Before.GlobalRisk, sim.After.GlobalRisk),
			badge.Label,
		)
		out = lipgloss.JoinVertical(lipgloss.Left, out, statsBoxStyle.Render(simContent))
	}

	return contentStyle.Render(out)
}

func (m model) renderPaths() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("Attack Paths"))
	s.WriteString("\n\n")
	if m.state.Analysis == nil {
		s.WriteString("No analysis loaded. Press r to run one.")
		return contentStyle.Render(s.String())
	}
	s.WriteString(m.pathTable.View())

	if m.state.ShowExplanation {
		s.WriteString("\n\n")
		s.WriteString(explainBoxStyle.Render(m.state.Explanation))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("enter select • a animate • e explain • space pause • [ ] speed"))
	return contentStyle.Render(s.String())
}

func (m model) renderGraph() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("Graph View"))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%d nodes, %d edges, %d highlighted\n\n",
		m.vm.Stats.Nodes, m.vm.Stats.Edges, m.vm.Stats.Highlighted))
	s.WriteString(m.nodeTable.View())

	s.WriteString("\n\n")
	s.WriteString(m.renderEdges(8))

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("◆ high value ★ highlighted ▶ animating · dimmed • enter focus/expand • c cluster • v high value"))
	return contentStyle.Render(s.String())
}

// renderEdges lists the marked edges, up to limit lines
func (m model) renderEdges(limit int) string {
	var s strings.Builder
	shown := 0
	for _, e := range m.vm.Edges {
		if !e.Highlighted && !e.Removed && !e.AnimActive {
			continue
		}
		if shown == limit {
			s.WriteString("  ...\n")
			break
		}
		mark := lipgloss.NewStyle().Foreground(lipgloss.Color(e.Style.Stroke)).Render("━━")
		fmt.Fprintf(&s, "  %s %s ─[%s]→ %s\n", mark, e.Source, e.Label, e.Target)
		shown++
	}
	if shown == 0 {
		return "  no highlighted edges\n"
	}
	return s.String()
}

func (m model) renderScenarios() string {
	var s strings.Builder
	s.WriteString(m.presetList.View())
	if item, ok := m.presetList.SelectedItem().(presetItem); ok && item.preset.Detail != "" {
		s.WriteString("\n")
		s.WriteString(helpStyle.Render(item.preset.Detail))
	}
	return contentStyle.Render(s.String())
}

func (m model) renderFocus() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render("Neighborhood Focus"))
	s.WriteString("\n\n")
	s.WriteString("Focus on node (empty to clear):\n\n")
	s.WriteString(m.focusInput.View())
	s.WriteString("\n\n")

	f := m.state.Focus
	switch {
	case f.Node == "":
		s.WriteString("No focus. Showing the full graph.")
	case f.Pending:
		s.WriteString(fmt.Sprintf("Resolving %s at radius %d...", f.Node, f.Radius))
	case f.Resolved:
		s.WriteString(fmt.Sprintf("%s: %d nodes within %d hops", f.Node, f.Nodes, f.Radius))
	default:
		s.WriteString(fmt.Sprintf("%s: no neighborhood, showing the full graph", f.Node))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("enter apply • esc leave input • + / - radius"))
	return contentStyle.Render(s.String())
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
