// Package tui implements the interactive parameter explorer: adjust the
// process parameters and watch the stationary density respond.
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/diffgrid/internal/analysis"
	"github.com/san-kum/diffgrid/internal/config"
	"github.com/san-kum/diffgrid/internal/stationary"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
)

var processInfo = map[string]string{
	"ou":  "mean-reverting gaussian",
	"cir": "square-root process",
}

type param struct {
	name string
	step float64
	get  func(*config.Config) float64
	set  func(*config.Config, float64)
}

var params = []param{
	{"target", 0.25,
		func(c *config.Config) float64 { return c.Target },
		func(c *config.Config, v float64) { c.Target = v }},
	{"speed", 0.05,
		func(c *config.Config) float64 { return c.Speed },
		func(c *config.Config, v float64) {
			if v > 0 {
				c.Speed = v
			}
		}},
	{"volatility", 0.1,
		func(c *config.Config) float64 { return c.Volatility },
		func(c *config.Config, v float64) {
			if v > 0 {
				c.Volatility = v
			}
		}},
	{"grid length", 25,
		func(c *config.Config) float64 { return float64(c.GridLength) },
		func(c *config.Config, v float64) {
			if v >= 2 {
				c.GridLength = int(v)
			}
		}},
	{"delta", 0.001,
		func(c *config.Config) float64 { return c.Delta },
		func(c *config.Config, v float64) {
			if v >= 0 {
				c.Delta = v
			}
		}},
}

type model struct {
	cfg    *config.Config
	cursor int

	x       []float64
	density []float64
	moments analysis.Moments
	warning string
	errMsg  string

	width  int
	height int
}

// NewExplorer returns the bubbletea model for the explorer, seeded with
// cfg and solved once so the first frame already shows a density.
func NewExplorer(cfg *config.Config) tea.Model {
	m := model{cfg: cfg, width: 80, height: 24}
	m.solve()
	return m
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(params)-1 {
				m.cursor++
			}
		case "left", "h":
			p := params[m.cursor]
			p.set(m.cfg, p.get(m.cfg)-p.step)
			m.solve()
		case "right", "l":
			p := params[m.cursor]
			p.set(m.cfg, p.get(m.cfg)+p.step)
			m.solve()
		case "tab":
			if m.cfg.Process == "ou" {
				m.cfg.Process = "cir"
				if m.cfg.Target <= 0 {
					m.cfg.Target = 1.0
				}
			} else {
				m.cfg.Process = "ou"
			}
			m.solve()
		case "enter", "r":
			m.solve()
		}
	}
	return m, nil
}

func (m *model) solve() {
	m.errMsg = ""
	p, err := m.cfg.BuildProcess()
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	var psi []float64
	if m.cfg.Delta > 0 {
		psi = make([]float64, p.Len())
		for i := range psi {
			psi[i] = 1 / float64(p.Len())
		}
	}
	res, err := stationary.ForProcess(p, m.cfg.Delta, psi)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.x = p.X
	m.density = res.Density
	m.warning = res.Warning
	m.moments = analysis.DensityMoments(p.X, res.Density)
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(cyan.Render("diffgrid explorer"))
	b.WriteString(dim.Render(fmt.Sprintf("  %s (%s)\n\n", m.cfg.Process, processInfo[m.cfg.Process])))

	for i, p := range params {
		marker := "  "
		style := white
		if i == m.cursor {
			marker = magenta.Render("> ")
			style = magenta
		}
		b.WriteString(fmt.Sprintf("%s%s %s\n", marker,
			dim.Render(fmt.Sprintf("%-12s", p.name)),
			style.Render(fmt.Sprintf("%.4g", p.get(m.cfg)))))
	}
	b.WriteString("\n")

	switch {
	case m.errMsg != "":
		b.WriteString(yellow.Render("error: " + m.errMsg))
		b.WriteString("\n")
	case len(m.density) > 1:
		plotWidth := m.width - 14
		if plotWidth < 20 {
			plotWidth = 20
		}
		plotHeight := m.height - len(params) - 9
		if plotHeight < 5 {
			plotHeight = 5
		}
		plot := asciigraph.Plot(m.density,
			asciigraph.Width(plotWidth),
			asciigraph.Height(plotHeight))
		b.WriteString(plot)
		b.WriteString("\n\n")
		b.WriteString(green.Render(fmt.Sprintf("  mean=%.4f  var=%.4f  skew=%.4f",
			m.moments.Mean, m.moments.Variance, m.moments.Skewness)))
		b.WriteString("\n")
		if m.warning != "" {
			b.WriteString(yellow.Render("  warning: " + m.warning))
			b.WriteString("\n")
		}
	}

	b.WriteString(dim.Render("\n  up/down select  left/right adjust  tab process  q quit\n"))
	return b.String()
}

// Run starts the explorer and blocks until it exits.
func Run(cfg *config.Config) error {
	_, err := tea.NewProgram(NewExplorer(cfg), tea.WithAltScreen()).Run()
	return err
}
