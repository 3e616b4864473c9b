// Package viz renders solved boolean signals in the terminal. It consumes
// series through their time/value arrays and end bound; the engine never
// calls into it.
package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/bdesim/internal/series"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255"))
)

// Plot renders the signals as one stacked step plot: each trace occupies its
// own band of the vertical axis so simultaneous switches line up visually.
func Plot(list []*series.BooleanTimeSeries, width int) string {
	if len(list) == 0 {
		return ""
	}
	if width < 2 {
		width = 72
	}

	start := list[0].Start()
	end := list[0].End
	data := make([][]float64, len(list))
	for k, s := range list {
		row := make([]float64, width)
		offset := 1.5 * float64(len(list)-1-k)
		idx := 0
		for i := 0; i < width; i++ {
			t := start + (end-start)*float64(i)/float64(width-1)
			for idx+1 < len(s.T) && s.T[idx+1] <= t {
				idx++
			}
			if s.Y[idx] {
				row[i] = 1 + offset
			} else {
				row[i] = offset
			}
		}
		data[k] = row
	}

	graph := asciigraph.PlotMany(data,
		asciigraph.Height(3*len(list)),
		asciigraph.Caption(fmt.Sprintf("t in [%g, %g]", start, end)),
	)

	var b strings.Builder
	for k, s := range list {
		if k > 0 {
			b.WriteString("  ")
		}
		b.WriteString(labelStyle.Render(s.Label))
	}
	b.WriteString("\n")
	b.WriteString(graph)
	return b.String()
}

// SwitchTable lists each signal's switch points.
func SwitchTable(list []*series.BooleanTimeSeries) string {
	var b strings.Builder
	for _, s := range list {
		b.WriteString(labelStyle.Render(s.Label))
		b.WriteString(dimStyle.Render(fmt.Sprintf("  (%d points, end %g)\n", len(s.T), s.End)))
		for i := range s.T {
			b.WriteString(fmt.Sprintf("  %10.4f  %s\n", s.T[i], valueStyle.Render(onOff(s.Y[i]))))
		}
	}
	return b.String()
}

// Summary renders a run header with its metrics.
func Summary(title string, metrics map[string]float64, keys []string) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("  %s %s\n",
			headerStyle.Render(fmt.Sprintf("%-16s", k)),
			valueStyle.Render(fmt.Sprintf("%.6f", metrics[k]))))
	}
	return b.String()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
