package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/archflow/pkg/graph"
)

// Terminal palette (ANSI 256).
var (
	colorAccent = lipgloss.Color("37")
	colorOK     = lipgloss.Color("71")
	colorWarn   = lipgloss.Color("214")
	colorFail   = lipgloss.Color("203")
	colorLink   = lipgloss.Color("74")
	colorText   = lipgloss.Color("254")
	colorMuted  = lipgloss.Color("246")
	colorFaint  = lipgloss.Color("241")
)

var (
	StyleTitle     = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)
	StyleLink      = lipgloss.NewStyle().Foreground(colorLink).Underline(true)
	StyleDim       = lipgloss.NewStyle().Foreground(colorFaint)
	StyleValue     = lipgloss.NewStyle().Foreground(colorText)
	StyleWarning   = lipgloss.NewStyle().Foreground(colorWarn)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorAccent)
	styleCommand     = lipgloss.NewStyle().Foreground(colorLink)
	styleHeader      = lipgloss.NewStyle().Foreground(colorMuted).Bold(true)
	styleKey         = lipgloss.NewStyle().Foreground(colorMuted).Width(12)
)

// status is the leading mark of a one-line status message.
type status struct {
	mark  string
	style lipgloss.Style
}

var (
	statusOK   = status{"✓", lipgloss.NewStyle().Foreground(colorOK)}
	statusFail = status{"✗", lipgloss.NewStyle().Foreground(colorFail)}
	statusWarn = status{"!", lipgloss.NewStyle().Foreground(colorWarn)}
	statusInfo = status{"›", lipgloss.NewStyle().Foreground(colorMuted)}
)

func (s status) print(msg string) {
	fmt.Println(s.style.Render(s.mark) + " " + msg)
}

func printSuccess(format string, args ...any) { statusOK.print(fmt.Sprintf(format, args...)) }
func printError(format string, args ...any)   { statusFail.print(fmt.Sprintf(format, args...)) }
func printInfo(format string, args ...any)    { statusInfo.print(fmt.Sprintf(format, args...)) }

func printWarning(format string, args ...any) {
	statusWarn.print(StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented, dimmed line under a status message.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile points at a file that was written.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render("→") + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// docStats counts the visible parts of a document.
type docStats struct {
	nodes, groups, edges, hidden int
}

func statsOf(doc *graph.Document) docStats {
	var s docStats
	for i := range doc.Nodes {
		switch {
		case doc.Nodes[i].Hidden:
			s.hidden++
		case doc.Nodes[i].IsGroup():
			s.groups++
		default:
			s.nodes++
		}
	}
	s.edges = len(doc.Edges)
	return s
}

// String renders the non-zero counts, e.g. "3 nodes · 1 group · 2 edges".
func (s docStats) String() string {
	var parts []string
	add := func(n int, noun string) {
		if n == 0 {
			return
		}
		if n != 1 {
			noun += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, noun))
	}
	add(s.nodes, "node")
	add(s.groups, "group")
	add(s.edges, "edge")
	add(s.hidden, "hidden node")
	if len(parts) == 0 {
		return "empty"
	}
	return strings.Join(parts, " · ")
}

// printStats prints document statistics on a single line.
func printStats(doc *graph.Document) {
	fmt.Println("  " + StyleDim.Render(statsOf(doc).String()))
}

// workflowTable renders workflows as a rounded table. The cursor row, if
// any, is highlighted; pass -1 for none.
func workflowTable(wfs []graph.Workflow, cursor int) string {
	rows := make([][]string, len(wfs))
	for i, wf := range wfs {
		rows[i] = []string{wf.ID, wf.Name, truncate(wf.Description, 48), formatRelativeTime(wf.UpdatedAt, time.Now())}
	}

	cell := lipgloss.NewStyle().Padding(0, 1)
	colStyle := []lipgloss.Style{
		cell.Foreground(colorFaint),
		cell.Foreground(colorText),
		cell.Foreground(colorMuted),
		cell.Foreground(colorFaint),
	}
	selected := cell.Foreground(colorOK).Bold(true)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(StyleDim).
		Headers("ID", "Name", "Description", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch row {
			case -1:
				return styleHeader
			case cursor:
				return selected
			}
			return colStyle[col]
		}).
		Render()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// formatRelativeTime renders t relative to now at the coarsest useful unit,
// switching to a date after a week.
func formatRelativeTime(t, now time.Time) string {
	if t.IsZero() {
		return "—"
	}
	age := now.Sub(t)
	if age < time.Minute {
		return "just now"
	}
	for _, u := range []struct {
		limit, size time.Duration
		suffix      string
	}{
		{time.Hour, time.Minute, "m"},
		{24 * time.Hour, time.Hour, "h"},
		{7 * 24 * time.Hour, 24 * time.Hour, "d"},
	} {
		if age < u.limit {
			return fmt.Sprintf("%d%s ago", age/u.size, u.suffix)
		}
	}
	return t.Format("Jan 2, 2006")
}
