package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/loadorder/pkg/module"
	"github.com/matzehuels/loadorder/pkg/solver"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PlanModel - Interactive load order browser
// =============================================================================

// PlanModel is the bubbletea model for browsing a resolved load order.
// The table lists modules in load order; the panel below it shows the
// selected module's specs and graph neighbours.
type PlanModel struct {
	Plan   *solver.Plan
	Cursor int
	Height int
	Offset int
}

// NewPlanModel creates a plan browser positioned on the first module.
func NewPlanModel(p *solver.Plan) PlanModel {
	return PlanModel{
		Plan:   p,
		Height: 15,
	}
}

func (m PlanModel) Init() tea.Cmd {
	return nil
}

func (m PlanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	n := len(m.Plan.Order)
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < n-1 {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = max(n-1, 0)
		}
	case tea.WindowSizeMsg:
		// Leave room for the title and the detail panel.
		m.Height = max(msg.Height-16, 5)
	}
	m.scroll()
	return m, nil
}

// scroll keeps the cursor inside the visible window.
func (m *PlanModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m PlanModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Load Order"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  g/G first/last  q quit"))
	b.WriteString("\n\n")

	if len(m.Plan.Order) == 0 {
		b.WriteString(listDimStyle.Render("  no modules"))
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Plan.Order))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		d := m.Plan.Order[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{
			cursor,
			fmt.Sprint(i + 1),
			d.ID(),
			d.Version().String(),
			fmt.Sprint(m.Plan.Graph.OutDegree(d.Key())),
			fmt.Sprint(m.Plan.Graph.InDegree(d.Key())),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Module", "Version", "Deps", "Dependents").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col == 1 || col >= 4 {
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(m.detail(m.Plan.Order[m.Cursor]))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Plan.Order))))

	return b.String()
}

// detail renders the declared specs and resolved edges of d.
func (m PlanModel) detail(d module.Descriptor) string {
	var b strings.Builder
	label := lipgloss.NewStyle().Foreground(colorGray).Width(12)

	line := func(key, value string) {
		if value == "" {
			value = listDimStyle.Render("—")
		}
		b.WriteString("  " + label.Render(key) + " " + value + "\n")
	}

	b.WriteString("\n  " + listSelectedStyle.Render(d.String()) + "\n")
	for _, rel := range module.Relations {
		line(string(rel), d.Specs(rel).String())
	}
	line("loads after", strings.Join(m.neighbours(d.Key(), m.Plan.Graph.Children(d.Key()), true), ", "))
	line("needed by", strings.Join(m.neighbours(d.Key(), m.Plan.Graph.Parents(d.Key()), false), ", "))
	return b.String()
}

// neighbours names each adjacent module with the relation of the edge
// that links it to key.
func (m PlanModel) neighbours(key string, ids []string, outgoing bool) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		from, to := key, id
		if !outgoing {
			from, to = id, key
		}
		name := id
		if dep, ok := solver.Descriptor(m.Plan.Graph, id); ok {
			name = dep.ID()
		}
		if e, ok := m.Plan.Graph.Edge(from, to); ok {
			if rel, ok := e.Meta[solver.MetaRelation].(module.Relation); ok {
				name += StyleDim.Render(" (" + string(rel) + ")")
			}
		}
		out = append(out, name)
	}
	return out
}

// runPlanTUI shows p in a full-screen browser until the user quits.
func runPlanTUI(p *solver.Plan) error {
	_, err := tea.NewProgram(NewPlanModel(p), tea.WithAltScreen()).Run()
	return err
}
