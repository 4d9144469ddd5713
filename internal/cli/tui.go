package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/archflow/pkg/graph"
	"github.com/matzehuels/archflow/pkg/store"
)

// =============================================================================
// WorkflowListModel - Interactive workflow selection
// =============================================================================

// WorkflowListModel is the bubbletea model for interactive workflow
// selection. Typing filters the list like the workflow search box.
type WorkflowListModel struct {
	All      []graph.Workflow
	Visible  []graph.Workflow
	Query    string
	Cursor   int
	Offset   int
	Height   int
	Selected *graph.Workflow
}

// NewWorkflowListModel creates a new workflow list model.
func NewWorkflowListModel(wfs []graph.Workflow) WorkflowListModel {
	return WorkflowListModel{All: wfs, Visible: wfs, Height: 10}
}

func (m WorkflowListModel) Init() tea.Cmd {
	return nil
}

func (m WorkflowListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case tea.KeyDown:
			if m.Cursor < len(m.Visible)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case tea.KeyEnter:
			if len(m.Visible) == 0 {
				return m, nil
			}
			wf := m.Visible[m.Cursor]
			m.Selected = &wf
			return m, tea.Quit
		case tea.KeyBackspace:
			if r := []rune(m.Query); len(r) > 0 {
				m.Query = string(r[:len(r)-1])
				m.filter()
			}
		case tea.KeySpace:
			m.Query += " "
			m.filter()
		case tea.KeyRunes:
			m.Query += string(msg.Runes)
			m.filter()
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-10, 3)
	}
	return m, nil
}

// filter applies the query with the same matching rule as List.
func (m *WorkflowListModel) filter() {
	m.Visible = m.Visible[:0:0]
	for _, wf := range m.All {
		if store.Matches(wf, m.Query) {
			m.Visible = append(m.Visible, wf)
		}
	}
	m.Cursor, m.Offset = 0, 0
}

func (m WorkflowListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Workflow"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  ⏎ select  type to search  esc quit"))
	b.WriteString("\n\n")
	b.WriteString(StyleHighlight.Render("search: ") + m.Query + "\n")

	if len(m.Visible) == 0 {
		b.WriteString("\n" + StyleDim.Render("  no matching workflows") + "\n")
		return b.String()
	}

	end := min(m.Offset+m.Height, len(m.Visible))
	b.WriteString(workflowTable(m.Visible[m.Offset:end], m.Cursor-m.Offset))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Visible))))

	return b.String()
}
