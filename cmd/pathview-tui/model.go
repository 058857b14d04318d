package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dd0wney/cluso-pathview/pkg/controller"
	"github.com/dd0wney/cluso-pathview/pkg/pubsub"
	"github.com/dd0wney/cluso-pathview/pkg/scenario"
	"github.com/dd0wney/cluso-pathview/pkg/viewmodel"
)

type view int

const (
	dashboardView view = iota
	pathsView
	graphView
	scenariosView
	focusView
	viewCount
)

var tabNames = []string{"Dashboard", "Paths", "Graph", "Scenarios", "Focus"}

// speedSteps are the playback delays in milliseconds, slowest first
var speedSteps = []int{2000, 1000, 500, 250}

type keyMap struct {
	Tab       key.Binding
	ShiftTab  key.Binding
	Enter     key.Binding
	Quit      key.Binding
	Reload    key.Binding
	Analyze   key.Binding
	Cluster   key.Binding
	Animate   key.Binding
	Pause     key.Binding
	Stop      key.Binding
	Slower    key.Binding
	Faster    key.Binding
	Explain   key.Binding
	Radius    key.Binding
	RadiusDn  key.Binding
	Reset     key.Binding
	Clear     key.Binding
	HighValue key.Binding
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
		key.WithHelp("enter", "select"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Reload: key.NewBinding(
		key.WithKeys("L"),
		key.WithHelp("L", "reload graph"),
	),
	Analyze: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "run analysis"),
	),
	Cluster: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "cluster view"),
	),
	Animate: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "animate path"),
	),
	Pause: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "pause/resume"),
	),
	Stop: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "stop"),
	),
	Slower: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "slower"),
	),
	Faster: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "faster"),
	),
	Explain: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "explain path"),
	),
	Radius: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "radius up"),
	),
	RadiusDn: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "radius down"),
	),
	Reset: key.NewBinding(
		key.WithKeys("R"),
		key.WithHelp("R", "reset dataset"),
	),
	Clear: key.NewBinding(
		key.WithKeys("x", "esc"),
		key.WithHelp("x", "dismiss"),
	),
	HighValue: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "high value only"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Enter, k.Analyze, k.Animate, k.Cluster, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.Enter, k.Quit},
		{k.Reload, k.Analyze, k.Explain, k.Reset},
		{k.Animate, k.Pause, k.Stop, k.Slower, k.Faster},
		{k.Cluster, k.HighValue, k.Radius, k.RadiusDn, k.Clear},
	}
}

// presetItem adapts a scenario preset to the list component
type presetItem struct {
	preset scenario.Preset
}

func (i presetItem) Title() string {
	return fmt.Sprintf("[%s] %s", i.preset.ID, i.preset.Label)
}

func (i presetItem) Description() string {
	return fmt.Sprintf("%s · %s", i.preset.Category, i.preset.Desc)
}

func (i presetItem) FilterValue() string { return i.preset.Label }

// changeMsg carries a controller change for one subscription
type changeMsg struct {
	sub    *pubsub.Subscription[controller.Change]
	change controller.Change
}

// closedMsg reports that a subscription ended
type closedMsg struct{}

// actionMsg reports the outcome of a backend-bound action
type actionMsg struct {
	op  string
	err error
}

func waitForChange(sub *pubsub.Subscription[controller.Change]) tea.Cmd {
	return func() tea.Msg {
		ch, ok := <-sub.Channel()
		if !ok {
			return closedMsg{}
		}
		return changeMsg{sub: sub, change: ch}
	}
}

type model struct {
	ctx   context.Context
	ctrl  *controller.Controller
	subs  []*pubsub.Subscription[controller.Change]
	state controller.State
	vm    *viewmodel.Model

	currentView view
	pathTable   table.Model
	nodeTable   table.Model
	presetList  list.Model
	focusInput  textinput.Model
	help        help.Model
	keys        keyMap

	width      int
	height     int
	message    string
	messageErr bool
	startTime  time.Time
}

func initialModel(ctx context.Context, ctrl *controller.Controller) (model, error) {
	var subs []*pubsub.Subscription[controller.Change]
	for _, topic := range []pubsub.Topic{pubsub.TopicState, pubsub.TopicAnimation} {
		sub, err := ctrl.Subscribe(ctx, topic)
		if err != nil {
			for _, s := range subs {
				s.Unsubscribe()
			}
			return model{}, err
		}
		subs = append(subs, sub)
	}

	ti := textinput.New()
	ti.Placeholder = "node name, e.g. DC01"
	ti.CharLimit = 256
	ti.Width = 40

	pathTable := newTable([]table.Column{
		{Title: "Path", Width: 8},
		{Title: "Hops", Width: 5},
		{Title: "Risk", Width: 6},
		{Title: "Score", Width: 6},
		{Title: "Impact", Width: 10},
		{Title: "Route", Width: 60},
	})
	nodeTable := newTable([]table.Column{
		{Title: "ID", Width: 16},
		{Title: "Label", Width: 20},
		{Title: "Type", Width: 9},
		{Title: "Flags", Width: 12},
		{Title: "Position", Width: 14},
	})

	items := make([]list.Item, 0)
	for _, p := range scenario.Presets() {
		items = append(items, presetItem{preset: p})
	}
	presets := list.New(items, list.NewDefaultDelegate(), 80, 18)
	presets.Title = "What-if scenarios"
	presets.SetShowHelp(false)
	presets.SetFilteringEnabled(false)
	presets.SetShowStatusBar(false)

	m := model{
		ctx:         ctx,
		ctrl:        ctrl,
		subs:        subs,
		currentView: dashboardView,
		pathTable:   pathTable,
		nodeTable:   nodeTable,
		presetList:  presets,
		focusInput:  ti,
		help:        help.New(),
		keys:        keys,
		startTime:   time.Now(),
	}
	m.refresh()
	return m, nil
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
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
	t.SetStyles(s)
	return t
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.do("load graph", m.ctrl.LoadGraph)}
	for _, sub := range m.subs {
		cmds = append(cmds, waitForChange(sub))
	}
	return tea.Batch(cmds...)
}

// do runs a blocking controller call off the UI goroutine
func (m model) do(op string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return actionMsg{op: op, err: fn(ctx)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.presetList.SetSize(msg.Width-4, max(msg.Height-12, 6))

	case changeMsg:
		m.refresh()
		return m, waitForChange(msg.sub)

	case closedMsg:
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.setMessage(fmt.Sprintf("%s failed: %v", msg.op, msg.err), true)
		} else {
			m.setMessage(msg.op+" done", false)
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.currentView == focusView && m.focusInput.Focused() {
			if handled, c := m.handleFocusInput(msg); handled {
				return m, c
			}
			m.focusInput, cmd = m.focusInput.Update(msg)
			return m, cmd
		}
		if c, handled := m.handleKey(msg); handled {
			return m, c
		}
	}

	switch m.currentView {
	case pathsView:
		m.pathTable, cmd = m.pathTable.Update(msg)
		cmds = append(cmds, cmd)
	case graphView:
		m.nodeTable, cmd = m.nodeTable.Update(msg)
		cmds = append(cmds, cmd)
	case scenariosView:
		m.presetList, cmd = m.presetList.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m *model) switchView(v view) {
	m.currentView = v
	if v == focusView {
		m.focusInput.Focus()
	} else {
		m.focusInput.Blur()
	}
}

// handleFocusInput intercepts the keys that leave or submit the focus prompt
func (m *model) handleFocusInput(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return true, tea.Quit
	case "tab":
		m.switchView((m.currentView + 1) % viewCount)
		return true, nil
	case "shift+tab":
		m.switchView((m.currentView + viewCount - 1) % viewCount)
		return true, nil
	case "esc":
		m.focusInput.Blur()
		return true, nil
	case "enter":
		name := strings.TrimSpace(m.focusInput.Value())
		return true, m.do("focus "+displayName(name), func(ctx context.Context) error {
			m.ctrl.SetFocusNode(ctx, name)
			return nil
		})
	}
	return false, nil
}

func displayName(name string) string {
	if name == "" {
		return "(cleared)"
	}
	return name
}

func (m *model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit, true

	case key.Matches(msg, m.keys.Tab):
		m.switchView((m.currentView + 1) % viewCount)
		return nil, true

	case key.Matches(msg, m.keys.ShiftTab):
		m.switchView((m.currentView + viewCount - 1) % viewCount)
		return nil, true

	case key.Matches(msg, m.keys.Enter):
		return m.activate(), true

	case key.Matches(msg, m.keys.Reload):
		return m.do("load graph", m.ctrl.LoadGraph), true

	case key.Matches(msg, m.keys.Analyze):
		return m.do("analysis", func(ctx context.Context) error {
			return m.ctrl.RunAnalysis(ctx, nil, "")
		}), true

	case key.Matches(msg, m.keys.Cluster):
		m.ctrl.ToggleClusterView()
		m.refresh()
		return nil, true

	case key.Matches(msg, m.keys.HighValue):
		on := !m.state.NodeFilters.HighValueOnly
		m.ctrl.SetNodeFilters(controller.NodeFilterPatch{HighValueOnly: controller.Bool(on)})
		m.refresh()
		return nil, true

	case key.Matches(msg, m.keys.Animate):
		id := m.targetPath()
		if id == "" {
			m.setMessage("no path selected", true)
			return nil, true
		}
		m.report("animate "+id, m.ctrl.StartAnimation(id))
		return nil, true

	case key.Matches(msg, m.keys.Pause):
		if m.state.Animation.Playing {
			m.ctrl.PauseAnimation()
		} else if m.state.Animation.PathID != "" {
			m.report("resume", m.ctrl.ResumeAnimation())
		}
		m.refresh()
		return nil, true

	case key.Matches(msg, m.keys.Stop):
		m.ctrl.StopAnimation()
		m.refresh()
		return nil, true

	case key.Matches(msg, m.keys.Slower):
		m.report("speed", m.ctrl.SetAnimationSpeed(stepSpeed(m.state.Animation.SpeedMS, -1)))
		return nil, true

	case key.Matches(msg, m.keys.Faster):
		m.report("speed", m.ctrl.SetAnimationSpeed(stepSpeed(m.state.Animation.SpeedMS, 1)))
		return nil, true

	case key.Matches(msg, m.keys.Explain):
		if m.state.ShowExplanation {
			m.ctrl.CloseExplanation()
			m.refresh()
			return nil, true
		}
		id := m.targetPath()
		if id == "" {
			m.setMessage("no path selected", true)
			return nil, true
		}
		return m.do("explain "+id, func(ctx context.Context) error {
			return m.ctrl.LoadExplanation(ctx, id)
		}), true

	case key.Matches(msg, m.keys.Radius), key.Matches(msg, m.keys.RadiusDn):
		delta := 1
		if key.Matches(msg, m.keys.RadiusDn) {
			delta = -1
		}
		radius := m.state.Focus.Radius + delta
		return m.do(fmt.Sprintf("radius %d", radius), func(ctx context.Context) error {
			return m.ctrl.SetFocusRadius(ctx, radius)
		}), true

	case key.Matches(msg, m.keys.Reset):
		return m.do("reset dataset", m.ctrl.ResetDataset), true

	case key.Matches(msg, m.keys.Clear):
		m.ctrl.ClearError()
		m.message = ""
		m.refresh()
		return nil, true
	}
	return nil, false
}

// activate performs the enter action of the current view
func (m *model) activate() tea.Cmd {
	switch m.currentView {
	case pathsView:
		if row := m.pathTable.SelectedRow(); row != nil {
			m.ctrl.SelectPath(row[0])
			m.refresh()
		}
	case graphView:
		if row := m.nodeTable.SelectedRow(); row != nil {
			if n, ok := m.vm.Node(row[0]); ok && n.IsCluster {
				m.ctrl.ToggleSubnet(n.SubnetID)
				m.refresh()
				return nil
			}
			name := row[0]
			return m.do("focus "+name, func(ctx context.Context) error {
				m.ctrl.SetFocusNode(ctx, name)
				return nil
			})
		}
	case scenariosView:
		if item, ok := m.presetList.SelectedItem().(presetItem); ok {
			id := item.preset.ID
			return m.do("scenario "+id, func(ctx context.Context) error {
				return m.ctrl.RunPreset(ctx, id)
			})
		}
	}
	return nil
}

// targetPath is the highlighted row on the paths tab, else the selected path
func (m *model) targetPath() string {
	if m.currentView == pathsView {
		if row := m.pathTable.SelectedRow(); row != nil {
			return row[0]
		}
	}
	return m.state.SelectedPathID
}

func (m *model) report(op string, err error) {
	if err != nil {
		m.setMessage(fmt.Sprintf("%s failed: %v", op, err), true)
	}
	m.refresh()
}

func (m *model) setMessage(msg string, isErr bool) {
	m.message = msg
	m.messageErr = isErr
}

// stepSpeed moves one notch along speedSteps; dir > 0 is faster
func stepSpeed(current, dir int) int {
	idx := 1
	for i, s := range speedSteps {
		if s == current {
			idx = i
		}
	}
	idx += dir
	idx = max(0, min(idx, len(speedSteps)-1))
	return speedSteps[idx]
}

// refresh re-reads controller state and rebuilds the tables
func (m *model) refresh() {
	m.state = m.ctrl.Snapshot()
	m.vm = m.ctrl.View()

	rows := make([]table.Row, 0)
	if a := m.state.Analysis; a != nil {
		for _, p := range a.Paths {
			rows = append(rows, table.Row{
				p.PathID,
				fmt.Sprintf("%d", p.Hops),
				fmt.Sprintf("%.1f", p.Risk),
				fmt.Sprintf("%.2f", p.NormalizedScore),
				p.ImpactEstimation,
				strings.Join(p.Nodes, " → "),
			})
		}
	}
	m.pathTable.SetRows(rows)

	nodeRows := make([]table.Row, 0, len(m.vm.Nodes))
	for _, n := range m.vm.Nodes {
		nodeRows = append(nodeRows, table.Row{
			n.ID,
			n.Label,
			n.Type,
			nodeFlags(n),
			fmt.Sprintf("%.0f,%.0f", n.Position.X, n.Position.Y),
		})
	}
	m.nodeTable.SetRows(nodeRows)
}

func nodeFlags(n viewmodel.RenderNode) string {
	var b strings.Builder
	if n.HighValue {
		b.WriteString("◆")
	}
	if n.Highlighted {
		b.WriteString("★")
	}
	if n.AnimActive {
		b.WriteString("▶")
	}
	if n.Dimmed {
		b.WriteString("·")
	}
	if n.IsCluster {
		fmt.Fprintf(&b, "[%d]", n.MemberCount)
	}
	return b.String()
}
