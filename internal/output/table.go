package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/planwatch/internal/project"
	"github.com/twiced-technology-gmbh/planwatch/internal/task"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)

	// Status colors aligned with the TUI palette.
	statusStyles = map[string]lipgloss.Style{
		"todo":        lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		"in-progress": lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
		"review":      lipgloss.NewStyle().Foreground(lipgloss.Color("62")),
		"done":        lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	}
)

// TaskTable renders a list of tasks as a formatted table.
func TaskTable(w io.Writer, tasks []*task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	const pad = 2
	const dateW = 12
	idW, statusW, titleW, durW := 10, 8, 7, 5
	for _, t := range tasks {
		statusW = max(statusW, len(t.Status)+pad)
		titleW = max(titleW, min(len(t.Title)+pad, 50)) //nolint:mnd // max title column width
		durW = max(durW, len(strconv.Itoa(t.EstimatedDuration))+pad)
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s %-*s %s",
		idW, "ID", statusW, "STATUS", titleW, "TITLE",
		dateW, "START", dateW, "END", durW, "DAYS", "DEPS")
	fmt.Fprintln(w, headerStyle.Render(strings.TrimRight(header, " ")))

	for _, t := range tasks {
		title := t.Title
		const maxTitle = 48
		if len(title) > maxTitle {
			title = title[:maxTitle-3] + "..."
		}
		if t.IsDelayedByDependencies {
			title += " " + warnStyle.Render("!")
		}

		row := fmt.Sprintf("%-*s %s %s %s %s %-*d %s",
			idW, t.ShortID(),
			padRight(styledValue(t.Status, statusStyles), statusW),
			padRight(title, titleW),
			padRight(dateOrDash(t.Start.String()), dateW),
			padRight(dateOrDash(t.End.String()), dateW),
			durW, t.EstimatedDuration,
			depsDisplay(t))
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// TaskDetail renders a single task with full detail. The body is rendered
// as markdown.
func TaskDetail(w io.Writer, t *task.Task, width int) {
	titleLine := fmt.Sprintf("Task %s: %s", t.ShortID(), t.Title)
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("─", lipgloss.Width(titleLine)))

	printField(w, "ID", t.ID)
	printField(w, "Status", styledValue(t.Status, statusStyles))
	printField(w, "Assignees", stringOrDash(strings.Join(t.Assignees, ", ")))
	printField(w, "Start", dateOrDash(t.Start.String()))
	printField(w, "End", dateOrDash(t.End.String()))
	printField(w, "Duration", strconv.Itoa(t.EstimatedDuration)+" working day(s)")
	if t.WorkingDays != nil {
		printField(w, "Work days", t.WorkingDays.String())
	}
	if t.HasConstraint() {
		ct := t.ConstraintType
		if ct == "" {
			ct = task.ConstraintSNET
		}
		printField(w, "Constraint", ct+" "+t.ConstraintDate.String())
	}
	printField(w, "Depends on", depsDisplay(t))
	if t.IsDelayedByDependencies {
		printField(w, "Delayed", warnStyle.Render("yes, dependencies push the start past the constraint"))
	}
	if t.Completed {
		done := "yes"
		if !t.OriginalEnd.IsZero() {
			done += " (planned end " + t.OriginalEnd.String() + ")"
		}
		printField(w, "Completed", done)
	}
	printField(w, "Created", t.Created.Format("2006-01-02 15:04"))
	printField(w, "Updated", t.Updated.Format("2006-01-02 15:04"))

	if body := RenderMarkdown(t.Body, width); body != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, body)
	}
}

// OverviewTable renders a project summary as a formatted dashboard.
func OverviewTable(w io.Writer, s project.Overview) {
	fmt.Fprintln(w, lipgloss.NewStyle().Bold(true).Render(s.ProjectName))
	fmt.Fprintf(w, "Total: %d tasks, %d completed, %d delayed\n", s.TotalTasks, s.Completed, s.Delayed)
	if !s.Start.IsZero() {
		fmt.Fprintf(w, "Span:  %s .. %s (%d days)\n", s.Start, s.End, s.SpanDays)
	}
	fmt.Fprintln(w)

	header := fmt.Sprintf("%-16s %6s %8s", "STATUS", "COUNT", "DELAYED")
	fmt.Fprintln(w, headerStyle.Render(header))

	for _, ss := range s.Statuses {
		const statusColW = 16
		name := styledValue(ss.Status, statusStyles)
		if ss.Pinned {
			name += dimStyle.Render("*")
		}
		fmt.Fprintf(w, "%s %6d %8d\n", padRight(name, statusColW), ss.Count, ss.Delayed)
	}
}

// GroupedTable renders a grouped view with per-group status breakdowns.
func GroupedTable(w io.Writer, gs project.GroupedSummary) {
	if len(gs.Groups) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	for i, g := range gs.Groups {
		if i > 0 {
			fmt.Fprintln(w)
		}
		title := fmt.Sprintf("%s (%d tasks)", g.Key, g.Total)
		fmt.Fprint(w, lipgloss.NewStyle().Bold(true).Render(title))
		if !g.Start.IsZero() {
			fmt.Fprint(w, dimStyle.Render(fmt.Sprintf("  %s .. %s", g.Start, g.End)))
		}
		fmt.Fprintln(w)

		for _, ss := range g.Statuses {
			if ss.Count == 0 {
				continue
			}
			const groupStatusW = 16
			fmt.Fprintf(w, "  %s %d\n",
				padRight(styledValue(ss.Status, statusStyles), groupStatusW), ss.Count)
		}
	}
}

// LogTable renders activity log entries.
func LogTable(w io.Writer, entries []project.LogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No activity recorded.")
		return
	}
	header := fmt.Sprintf("%-17s %-9s %-9s %s", "TIME", "ACTION", "TASK", "DETAIL")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, e := range entries {
		id := task.ShortID(e.TaskID)
		if id == "" {
			id = dimStyle.Render("--")
		}
		fmt.Fprintf(w, "%-17s %-9s %s %s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04"), e.Action, padRight(id, 9), e.Detail) //nolint:mnd // column width
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, format+"\n", args...)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

// padRight pads s with spaces to the given visible width, accounting for ANSI
// escape codes that are invisible but consume bytes.
func padRight(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func stringOrDash(s string) string {
	if s == "" {
		return dimStyle.Render("--")
	}
	return s
}

func dateOrDash(s string) string {
	return stringOrDash(s)
}

func depsDisplay(t *task.Task) string {
	if len(t.Dependencies) == 0 {
		return dimStyle.Render("--")
	}
	short := make([]string, len(t.Dependencies))
	for i, id := range t.Dependencies {
		short[i] = task.ShortID(id)
	}
	return strings.Join(short, ",")
}

// styledValue renders s using a matching style from the map, or returns s unchanged.
func styledValue(s string, styles map[string]lipgloss.Style) string {
	if st, ok := styles[s]; ok {
		return st.Render(s)
	}
	return s
}
