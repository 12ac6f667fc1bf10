// Package tui is a live terminal view of a running simulation: energy
// and magnetization charts, a column-averaged spin strip, and a few
// tunable couplings.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/spinsim/msd/internal/msd"
)

const (
	historyCapacity = 600
	chartWidth      = 50
	chartHeight     = 6
)

var (
	headerStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	statsStyle       = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2)
	labelStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(10)
	valueStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeParamStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	stripStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("117")).Padding(1, 2)
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// tunable is one coupling the view lets you adjust while running.
type tunable struct {
	name string
	get  func(p msd.Parameters) float64
	set  func(p *msd.Parameters, v float64)
	step float64 // additive step; 0 means multiplicative 5%
}

var tunables = []tunable{
	{name: "kT",
		get: func(p msd.Parameters) float64 { return p.KT },
		set: func(p *msd.Parameters, v float64) { p.KT = v }},
	{name: "B_x",
		get:  func(p msd.Parameters) float64 { return p.B.X },
		set:  func(p *msd.Parameters, v float64) { p.B.X = v },
		step: 0.05},
	{name: "B_y",
		get:  func(p msd.Parameters) float64 { return p.B.Y },
		set:  func(p *msd.Parameters, v float64) { p.B.Y = v },
		step: 0.05},
	{name: "B_z",
		get:  func(p msd.Parameters) float64 { return p.B.Z },
		set:  func(p *msd.Parameters, v float64) { p.B.Z = v },
		step: 0.05},
}

// Model drives one engine from the bubbletea event loop.
type Model struct {
	engine       *msd.Engine
	stepsPerTick uint64

	running  bool
	selected int
	showHelp bool

	energyHistory []float64
	magHistory    []float64
}

func NewModel(engine *msd.Engine, stepsPerTick uint64) Model {
	if stepsPerTick == 0 {
		stepsPerTick = 1000
	}
	return Model{
		engine:        engine,
		stepsPerTick:  stepsPerTick,
		running:       true,
		energyHistory: make([]float64, 0, historyCapacity),
		magHistory:    make([]float64, 0, historyCapacity),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.engine.Reinitialize(false)
			m.energyHistory = m.energyHistory[:0]
			m.magHistory = m.magHistory[:0]
		case "z":
			m.engine.Randomize(false)
		case "tab":
			m.selected = (m.selected + 1) % len(tunables)
		case "up", "k":
			m.adjustParam(1)
		case "down", "j":
			m.adjustParam(-1)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.engine.Metropolis(m.stepsPerTick)
			r := m.engine.Lattice().Results()
			m.energyHistory = appendCapped(m.energyHistory, r.U)
			m.magHistory = appendCapped(m.magHistory, r.M.Norm())
		}
		return m, tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

func appendCapped(hist []float64, v float64) []float64 {
	hist = append(hist, v)
	if len(hist) > historyCapacity {
		hist = hist[1:]
	}
	return hist
}

func (m *Model) adjustParam(dir int) {
	tun := tunables[m.selected]
	lat := m.engine.Lattice()
	p := lat.Parameters()
	v := tun.get(p)
	if tun.step != 0 {
		v += float64(dir) * tun.step
	} else {
		if v == 0 {
			v = 0.01
		}
		if dir > 0 {
			v *= 1.05
		} else {
			v *= 0.95
		}
	}
	tun.set(&p, v)
	if tun.step != 0 {
		// Only the field changed, so take the cheap path.
		lat.SetB(p.B)
	} else {
		lat.SetParameters(p)
	}
}

func (m Model) View() string {
	lat := m.engine.Lattice()
	r := lat.Results()
	p := lat.Parameters()

	var s strings.Builder
	s.WriteString(headerStyle.Render("MSD LIVE") + "\n")
	status := "RUNNING"
	if !m.running {
		status = "PAUSED"
	}
	s.WriteString(status + "\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory,
			asciigraph.Height(chartHeight), asciigraph.Width(chartWidth),
			asciigraph.Caption("Energy U"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}
	if len(m.magHistory) > 1 {
		chart := asciigraph.Plot(m.magHistory,
			asciigraph.Height(chartHeight), asciigraph.Width(chartWidth),
			asciigraph.Caption("|M|"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(stripStyle.Render("m_z by column\n"+SpinStrip(lat)) + "\n")

	var stats strings.Builder
	stats.WriteString(labelStyle.Render("t") + valueStyle.Render(fmt.Sprintf("%d", r.T)) + "\n")
	stats.WriteString(labelStyle.Render("U") + valueStyle.Render(fmt.Sprintf("%.4f", r.U)) + "\n")
	stats.WriteString(labelStyle.Render("|M|") + valueStyle.Render(fmt.Sprintf("%.4f", r.M.Norm())) + "\n")
	stats.WriteString(labelStyle.Render("|ML|") + valueStyle.Render(fmt.Sprintf("%.4f", r.ML.Norm())) + "\n")
	stats.WriteString(labelStyle.Render("|MR|") + valueStyle.Render(fmt.Sprintf("%.4f", r.MR.Norm())) + "\n")
	stats.WriteString(labelStyle.Render("|Mm|") + valueStyle.Render(fmt.Sprintf("%.4f", r.Mm.Norm())) + "\n")

	stats.WriteString("\nCOUPLINGS\n")
	for i, tun := range tunables {
		line := fmt.Sprintf("%-5s %8.4f", tun.name, tun.get(p))
		if i == m.selected {
			stats.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			stats.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}

	stats.WriteString(helpStyle.Render("\nSP:Pause R:Reset Z:Randomize Q:Quit\nTab:Select ↑↓:Tune ?:Help"))

	main := lipgloss.JoinHorizontal(lipgloss.Top, s.String(), statsStyle.Render(stats.String()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

const helpText = `  Space  - Pause/Resume sampling
  R      - Reinitialize to the ground configuration
  Z      - Re-randomize the state
  Tab    - Select a coupling
  Up/K   - Increase the selected coupling
  Down/J - Decrease the selected coupling
  Q      - Quit
  ?      - Toggle this help`

// SpinStrip renders one glyph per lattice column, darker to brighter
// as the column-averaged z magnetization swings from -1 to +1.
func SpinStrip(lat *msd.Lattice) string {
	ramp := []rune(" .:-=+*#%@")
	g := lat.Geometry()

	sums := make([]float64, g.Width)
	counts := make([]int, g.Width)
	for _, a := range lat.Sites() {
		x, _, _ := lat.Coords(a)
		mag, err := lat.LocalM(a)
		if err != nil {
			continue
		}
		sums[x] += mag.Z
		counts[x]++
	}

	var sb strings.Builder
	for x := 0; x < g.Width; x++ {
		if counts[x] == 0 {
			sb.WriteRune('·')
			continue
		}
		avg := sums[x] / float64(counts[x]) // roughly -1..1 for unit spins
		idx := int((avg + 1) / 2 * float64(len(ramp)-1))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(ramp) {
			idx = len(ramp) - 1
		}
		sb.WriteRune(ramp[idx])
	}
	return sb.String()
}

// Run blocks inside the bubbletea event loop until the user quits.
func Run(engine *msd.Engine, stepsPerTick uint64) error {
	p := tea.NewProgram(NewModel(engine, stepsPerTick))
	_, err := p.Run()
	return err
}
