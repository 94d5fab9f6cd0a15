package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/twiced-technology-gmbh/planwatch/internal/project"
	"github.com/twiced-technology-gmbh/planwatch/internal/task"
)

// TaskCompact renders a list of tasks in one-line-per-record compact format.
func TaskCompact(w io.Writer, tasks []*task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	for _, t := range tasks {
		fmt.Fprintln(w, formatTaskLine(t))
	}
}

// TaskDetailCompact renders a single task with detail in compact format.
func TaskDetailCompact(w io.Writer, t *task.Task) {
	line := formatTaskLine(t)
	if t.HasConstraint() {
		line += " constraint:" + t.ConstraintDate.String()
	}
	if t.WorkingDays != nil {
		line += " days:" + t.WorkingDays.String()
	}
	fmt.Fprintln(w, line)

	ts := "  created:" + t.Created.Format("2006-01-02") +
		" updated:" + t.Updated.Format("2006-01-02")
	if t.Completed && !t.OriginalEnd.IsZero() {
		ts += " planned-end:" + t.OriginalEnd.String()
	}
	fmt.Fprintln(w, ts)

	if t.Body != "" {
		for _, bodyLine := range strings.Split(t.Body, "\n") {
			fmt.Fprintln(w, "  "+bodyLine)
		}
	}
}

// OverviewCompact renders a project summary in compact format.
func OverviewCompact(w io.Writer, s project.Overview) {
	fmt.Fprintf(w, "%s (%d tasks)\n", s.ProjectName, s.TotalTasks)
	if !s.Start.IsZero() {
		fmt.Fprintf(w, "span: %s..%s %dd\n", s.Start, s.End, s.SpanDays)
	}

	for _, ss := range s.Statuses {
		line := "  " + ss.Status + ": " + strconv.Itoa(ss.Count)
		if ss.Delayed > 0 {
			line += " (" + strconv.Itoa(ss.Delayed) + " delayed)"
		}
		fmt.Fprintln(w, line)
	}
}

// GroupedCompact renders one line per group.
func GroupedCompact(w io.Writer, gs project.GroupedSummary) {
	for _, g := range gs.Groups {
		parts := make([]string, 0, len(g.Statuses))
		for _, ss := range g.Statuses {
			if ss.Count > 0 {
				parts = append(parts, ss.Status+"="+strconv.Itoa(ss.Count))
			}
		}
		line := g.Key + " (" + strconv.Itoa(g.Total) + "): " + strings.Join(parts, " ")
		if !g.Start.IsZero() {
			line += " " + g.Start.String() + ".." + g.End.String()
		}
		fmt.Fprintln(w, line)
	}
}

// LogCompact renders activity log entries one per line.
func LogCompact(w io.Writer, entries []project.LogEntry) {
	for _, e := range entries {
		line := e.Timestamp.Local().Format("2006-01-02T15:04") + " " + e.Action
		if e.TaskID != "" {
			line += " " + task.ShortID(e.TaskID)
		}
		if e.Detail != "" {
			line += " " + e.Detail
		}
		fmt.Fprintln(w, line)
	}
}

// formatTaskLine builds the one-line representation of a task.
func formatTaskLine(t *task.Task) string {
	line := t.ShortID() + " [" + t.Status + "] " + t.Title +
		" " + t.Start.String() + ".." + t.End.String() +
		" " + strconv.Itoa(t.EstimatedDuration) + "d"

	if len(t.Assignees) > 0 {
		line += " @" + strings.Join(t.Assignees, ",@")
	}
	if len(t.Dependencies) > 0 {
		short := make([]string, len(t.Dependencies))
		for i, id := range t.Dependencies {
			short[i] = task.ShortID(id)
		}
		line += " after:" + strings.Join(short, ",")
	}
	if t.IsDelayedByDependencies {
		line += " delayed"
	}
	if t.Completed {
		line += " done"
	}

	return line
}
