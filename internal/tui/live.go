// Package tui replays a sampled trajectory in the terminal: an
// asciigraph chart of one state component advancing in time, with the
// run statistics alongside.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/odeint/internal/solver"
)

const (
	chartWidth  = 80
	chartHeight = 14
	windowSize  = 200 // samples visible at once
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(13)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	eventStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Model animates a finished integration run.
type Model struct {
	problem string
	method  string
	result  *solver.Result

	cursor    int
	component int
	playing   bool
	speed     int // frames advanced per tick
	showHelp  bool
}

func NewModel(problem, method string, result *solver.Result) Model {
	return Model{
		problem: problem,
		method:  method,
		result:  result,
		playing: true,
		speed:   1,
	}
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.playing = !m.playing
		case "r":
			m.cursor = 0
			m.playing = true
		case "[":
			m.cursor = clamp(m.cursor-10, 0, m.lastFrame())
		case "]":
			m.cursor = clamp(m.cursor+10, 0, m.lastFrame())
		case "tab":
			if dim := m.dim(); dim > 0 {
				m.component = (m.component + 1) % dim
			}
		case "+", "=":
			m.speed = clamp(m.speed*2, 1, 32)
		case "-", "_":
			m.speed = clamp(m.speed/2, 1, 32)
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.playing {
			m.cursor = clamp(m.cursor+m.speed, 0, m.lastFrame())
			if m.cursor == m.lastFrame() {
				m.playing = false
			}
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) dim() int {
	if len(m.result.States) == 0 {
		return 0
	}
	return len(m.result.States[0])
}

func (m Model) lastFrame() int {
	if len(m.result.Times) == 0 {
		return 0
	}
	return len(m.result.Times) - 1
}

// window returns the chart data up to the cursor, limited to the most
// recent samples so the plot scrolls instead of compressing.
func (m Model) window() []float64 {
	end := m.cursor + 1
	start := end - windowSize
	if start < 0 {
		start = 0
	}
	data := make([]float64, 0, end-start)
	for i := start; i < end; i++ {
		data = append(data, m.result.States[i][m.component])
	}
	return data
}

// eventsBefore counts the events already crossed at the cursor time.
func (m Model) eventsBefore() int {
	t := m.result.Times[m.cursor]
	n := 0
	for _, ev := range m.result.Events {
		if ev.Time <= t {
			n++
		}
	}
	return n
}

func (m Model) View() string {
	if len(m.result.Times) == 0 {
		return "empty trajectory\n"
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%s · %s", m.problem, m.method)) + "\n")

	data := m.window()
	if len(data) >= 2 {
		chart := asciigraph.Plot(data,
			asciigraph.Height(chartHeight),
			asciigraph.Width(chartWidth),
			asciigraph.Caption(fmt.Sprintf("y%d", m.component)))
		b.WriteString(graphStyle.Render(chart) + "\n")
	}

	t := m.result.Times[m.cursor]
	b.WriteString(labelStyle.Render("time") + valueStyle.Render(fmt.Sprintf("%.3f / %.3f", t, m.result.FinalTime)) + "\n")
	state := m.result.States[m.cursor]
	for i, v := range state {
		if i >= 4 {
			break
		}
		b.WriteString(labelStyle.Render(fmt.Sprintf("y%d", i)) + valueStyle.Render(fmt.Sprintf("%+.6f", v)) + "\n")
	}
	b.WriteString(labelStyle.Render("steps") + valueStyle.Render(fmt.Sprintf("%d", m.result.Steps)) + "\n")
	b.WriteString(labelStyle.Render("evaluations") + valueStyle.Render(fmt.Sprintf("%d", m.result.Evaluations)) + "\n")
	if len(m.result.Events) > 0 {
		b.WriteString(labelStyle.Render("events") +
			eventStyle.Render(fmt.Sprintf("%d / %d", m.eventsBefore(), len(m.result.Events))) + "\n")
	}

	status := "playing"
	if !m.playing {
		status = "paused"
	}
	b.WriteString(helpStyle.Render(fmt.Sprintf("%s ×%d · space pause · [/] scrub · tab component · +/- speed · ? help · q quit", status, m.speed)) + "\n")
	if m.showHelp {
		b.WriteString(helpStyle.Render("r restarts the replay; tab cycles the plotted state component") + "\n")
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Run animates the result in an alternate screen until the user quits.
func Run(problem, method string, result *solver.Result) error {
	_, err := tea.NewProgram(NewModel(problem, method, result), tea.WithAltScreen()).Run()
	return err
}
