// Package tui is an interactive trace viewer: every signal of a run drawn
// as a block row, with a scrubber reporting each value at the cursor time.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/bdesim/internal/series"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	onStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	offStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	cursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Italic(true)
)

// Model is the bubbletea model for the viewer.
type Model struct {
	title  string
	traces []*series.BooleanTimeSeries
	start  float64
	end    float64
	cursor float64
	step   float64
	width  int
}

// NewModel builds a viewer over the given signals, which must share a range.
func NewModel(title string, traces []*series.BooleanTimeSeries) Model {
	start := traces[0].Start()
	end := traces[0].End
	return Model{
		title:  title,
		traces: traces,
		start:  start,
		end:    end,
		cursor: start,
		step:   (end - start) / 100,
		width:  80,
	}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "left", "h":
			m.cursor -= m.step
		case "right", "l":
			m.cursor += m.step
		case "shift+left", "H":
			m.cursor -= 10 * m.step
		case "shift+right", "L":
			m.cursor += 10 * m.step
		case "g", "home":
			m.cursor = m.start
		case "G", "end":
			m.cursor = m.end
		}
		if m.cursor < m.start {
			m.cursor = m.start
		}
		if m.cursor > m.end {
			m.cursor = m.end
		}
	}
	return m, nil
}

func (m Model) View() string {
	cols := m.width - 12
	if cols < 20 {
		cols = 20
	}
	cursorCol := int(float64(cols-1) * (m.cursor - m.start) / (m.end - m.start))

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	for _, s := range m.traces {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-8s ", s.Label)))
		idx := 0
		for c := 0; c < cols; c++ {
			t := m.start + (m.end-m.start)*float64(c)/float64(cols-1)
			for idx+1 < len(s.T) && s.T[idx+1] <= t {
				idx++
			}
			cell := offStyle.Render("·")
			if s.Y[idx] {
				cell = onStyle.Render("█")
			}
			if c == cursorCol {
				cell = cursorStyle.Render("|")
			}
			b.WriteString(cell)
		}
		v, err := s.At(m.cursor)
		state := "off"
		if err == nil && v {
			state = "on"
		}
		b.WriteString(fmt.Sprintf("  %s\n", state))
	}

	b.WriteString(fmt.Sprintf("\nt = %.4f\n", m.cursor))
	b.WriteString(hintStyle.Render("←/→ scrub · shift for coarse · g/G ends · q quit"))
	return b.String()
}

// Run starts the viewer and blocks until it exits.
func Run(title string, traces []*series.BooleanTimeSeries) error {
	_, err := tea.NewProgram(NewModel(title, traces)).Run()
	return err
}
