package viz

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/forcelayout/internal/graph"
	"github.com/san-kum/forcelayout/internal/layout"
	"github.com/san-kum/forcelayout/internal/metrics"
)

const (
	defaultCols     = 72
	defaultRows     = 22
	panelWidth      = 50
	historyCapacity = 300
	// unitsPerDot converts canvas dots to layout units for the engine's
	// canvas size.
	unitsPerDot = 4
)

// tunables are the properties the live view can nudge, in display order.
var tunables = []string{"speed", "springRestLength", "springDampening", "charge", "theta", "maxDisplacement"}

type TickMsg time.Time

type Options struct {
	Recorder *metrics.Recorder
	Theme    string
	Interval time.Duration
	Device   string
}

// Model is the live layout view. Each frame runs one engine tick and redraws
// the canvas from the engine's output.
type Model struct {
	engine   *layout.Engine
	recorder *metrics.Recorder
	renderer *TerminalRenderer
	initial  *graph.Graph
	baseline map[string]any
	theme    Theme
	st       styles
	interval time.Duration
	device   string

	running  bool
	showHelp bool
	selected int
	prev     []float64
	movement []float64
	err      error
}

// NewModel builds the view around an engine that already has a variant and a
// graph. Reset restores the graph as it is now.
func NewModel(engine *layout.Engine, opts Options) Model {
	if opts.Interval <= 0 {
		opts.Interval = time.Second / 30
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NewRecorder(0)
	}
	var initial *graph.Graph
	if g := engine.Graph(); g != nil {
		initial = g.Clone()
	}
	theme := ThemeByName(opts.Theme)
	m := Model{
		engine:   engine,
		recorder: opts.Recorder,
		renderer: NewTerminalRenderer(defaultCols, defaultRows),
		initial:  initial,
		baseline: engine.Properties().Map(),
		theme:    theme,
		st:       newStyles(theme),
		interval: opts.Interval,
		device:   opts.Device,
		running:  true,
		movement: make([]float64, 0, historyCapacity),
	}
	m.prev, _ = engine.Positions()
	m.draw()
	return m
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return m.tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "s":
			if !m.running {
				m.step()
				m.draw()
			}
		case "r":
			m.reset()
		case "tab":
			m.selected = (m.selected + 1) % len(tunables)
		case "up", "k":
			m.adjust(1.1)
		case "down", "j":
			m.adjust(1 / 1.1)
		case "v":
			cur, _ := m.engine.Variant()
			m.selectVariant(layout.Variants()[(int(cur)+1)%len(layout.Variants())])
		case "1", "2", "3", "4", "5":
			if i := int(key[0] - '1'); i < len(layout.Variants()) {
				m.selectVariant(layout.Variants()[i])
			}
		case "t":
			m.theme = NextTheme(m.theme.Name)
			m.st = newStyles(m.theme)
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		cols := max(msg.Width-panelWidth, 20)
		rows := max(msg.Height-4, 8)
		m.renderer.Canvas.Resize(cols, rows)
		w, h := m.renderer.Canvas.Dots()
		m.engine.OnCanvasSizeChanged(float64(w*unitsPerDot), float64(h*unitsPerDot))
		m.draw()
	case TickMsg:
		if m.running {
			m.step()
		}
		m.draw()
		return m, m.tick()
	}
	return m, nil
}

// step runs one engine tick unless the layout has converged.
func (m *Model) step() {
	if m.engine.Converged() {
		return
	}
	if err := m.engine.ComputeNextPositions(context.Background()); err != nil {
		m.err = err
		m.running = false
		return
	}
	cur, err := m.engine.Positions()
	if err != nil {
		m.err = err
		return
	}
	var moved float64
	for i := 0; i+1 < len(cur) && i+1 < len(m.prev); i += 2 {
		dx, dy := cur[i]-m.prev[i], cur[i+1]-m.prev[i+1]
		moved = max(moved, dx*dx+dy*dy)
	}
	m.prev = cur
	m.movement = append(m.movement, math.Sqrt(moved))
	if len(m.movement) > historyCapacity {
		m.movement = m.movement[1:]
	}
}

func (m *Model) draw() {
	g := m.engine.Graph()
	if g == nil {
		m.renderer.Canvas.Clear()
		return
	}
	if err := m.renderer.Render(g, m.engine.Output()); err != nil {
		m.err = err
	}
}

func (m *Model) adjust(factor float64) {
	key := tunables[m.selected]
	cur := m.engine.Properties().Map()[key].(float64)
	if cur == 0 {
		cur = 1e-3
	}
	m.err = m.engine.SetProperties(map[string]any{key: cur * factor})
}

func (m *Model) selectVariant(v layout.Variant) {
	if err := m.engine.Select(v); err != nil {
		m.err = err
		return
	}
	m.err = nil
	m.recorder.Reset()
	m.movement = m.movement[:0]
	m.prev, _ = m.engine.Positions()
	m.draw()
}

// reset restores the starting graph and the starting parameters.
func (m *Model) reset() {
	if m.initial == nil {
		return
	}
	m.err = m.engine.SetProperties(m.baseline)
	if err := m.engine.SetGraph(m.initial.Clone()); err != nil {
		m.err = err
	}
	m.recorder.Reset()
	m.movement = m.movement[:0]
	m.prev, _ = m.engine.Positions()
	m.running = true
	m.draw()
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return m.st.bad.Render("ERROR")
	case m.engine.Converged():
		return m.st.good.Render("CONVERGED")
	case !m.running:
		return m.st.warn.Render("PAUSED")
	default:
		return m.st.good.Render("RUNNING")
	}
}

func (m Model) View() string {
	st := m.st
	v, _ := m.engine.Variant()
	g := m.engine.Graph()

	var s strings.Builder
	s.WriteString(st.header.Render("FORCELAYOUT · "+strings.ToUpper(v.String())) + "\n")
	s.WriteString(m.status() + "\n")

	if len(m.movement) > 1 {
		chart := asciigraph.Plot(m.movement, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("movement"))
		s.WriteString(st.graph.Render(chart) + "\n")
	}

	row := func(label, value string) {
		s.WriteString(st.label.Render(label) + st.value.Render(value) + "\n")
	}
	row("Variant", v.Description())
	if m.device != "" {
		row("Device", m.device)
	}
	if g != nil {
		row("Graph", fmt.Sprintf("%s (%d nodes, %d edges)", g.Name, g.NumNodes(), g.NumEdges()))
	}
	row("Tick", fmt.Sprint(m.engine.Tick()))
	row("Algo time", m.recorder.Mean().Round(time.Microsecond).String())
	last := 0.0
	if len(m.movement) > 0 {
		last = m.movement[len(m.movement)-1]
	}
	row("Movement", fmt.Sprintf("%.3f", last))
	if m.engine.Output().DirectRender {
		row("Render", "device texture")
	} else {
		row("Render", "host nodes")
	}

	s.WriteString("\nPARAMETERS\n")
	props := m.engine.Properties().Map()
	for i, k := range tunables {
		val, _ := props[k].(float64)
		base, _ := m.baseline[k].(float64)
		line := fmt.Sprintf("%-16s %s %.3g", k, bar(val, base, 10), val)
		if i == m.selected {
			s.WriteString(st.active.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + st.value.Render(line) + "\n")
		}
	}

	if m.err != nil {
		s.WriteString("\n" + st.bad.Render(m.err.Error()) + "\n")
	}
	s.WriteString(st.help.Render("SP:Pause S:Step R:Reset Q:Quit\nV/1-5:Variant Tab:Param ↑↓:Tune\nT:Theme ?:Help"))

	canvas := st.canvas.Render(m.renderer.String())
	main := lipgloss.JoinHorizontal(lipgloss.Top, canvas, st.panel.Render(s.String()))
	if m.showHelp {
		return helpText() + "\n" + main
	}
	return main
}

// bar draws val relative to twice its starting value.
func bar(val, base float64, width int) string {
	ratio := 0.5
	if base > 0 {
		ratio = min(max(val/(2*base), 0), 1)
	}
	filled := int(ratio * float64(width))
	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", width-filled) + "]"
}

func helpText() string {
	var b strings.Builder
	b.WriteString("KEYS\n")
	b.WriteString("  space    pause or resume\n")
	b.WriteString("  s        single tick while paused\n")
	b.WriteString("  r        restore the starting graph and parameters\n")
	b.WriteString("  v, 1-5   switch variant\n")
	for i, v := range layout.Variants() {
		fmt.Fprintf(&b, "             %d %-13s %s\n", i+1, v, v.Description())
	}
	b.WriteString("  tab      next parameter\n")
	b.WriteString("  up/down  scale parameter by 1.1\n")
	b.WriteString("  t        next theme\n")
	b.WriteString("  q        quit\n")
	return b.String()
}
