package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/planwatch/internal/date"
	"github.com/twiced-technology-gmbh/planwatch/internal/task"
)

// Chart glyphs.
const (
	GlyphWork   = "█"
	GlyphOffDay = "░"
	GlyphToday  = "│"
	GlyphEmpty  = " "
	GlyphDelay  = "!"
)

var (
	barStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	doneBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34"))
	offDayStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	todayStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// GanttOptions controls the chart geometry.
type GanttOptions struct {
	// DayWidth is the number of columns per calendar day (minimum 1).
	DayWidth int
	// Workdays is the project calendar used for tasks without their own.
	Workdays date.Weekdays
	// Today is marked with a vertical line when it falls inside the range.
	Today date.Date
	// LabelWidth caps the task label column.
	LabelWidth int
}

// Window is the calendar range a chart covers.
type Window struct {
	From date.Date
	Days int
}

// ChartWindow returns the range from the earliest start to the latest end.
// Tasks without a start are ignored. The zero Window means nothing to draw.
func ChartWindow(tasks []*task.Task) Window {
	var from, to date.Date
	for _, t := range tasks {
		if t.Start.IsZero() {
			continue
		}
		if from.IsZero() || t.Start.Before(from.Time) {
			from = t.Start
		}
		to = date.Max(to, t.End, t.Start)
	}
	if from.IsZero() {
		return Window{}
	}
	return Window{From: from, Days: date.CalendarDaysBetween(from, to) + 1}
}

// Cell is one calendar day of a chart row.
type Cell int

// Cell kinds.
const (
	CellEmpty Cell = iota
	CellWork
	CellOffDay
	CellToday
)

// BarCells lays out t over win: offset and length come from calendar days,
// days inside the bar that are not working days are shaded.
func BarCells(t *task.Task, win Window, w date.Weekdays, today date.Date) []Cell {
	cells := make([]Cell, win.Days)
	if !today.IsZero() {
		if i := date.CalendarDaysBetween(win.From, today); i >= 0 && i < win.Days {
			cells[i] = CellToday
		}
	}
	if t.Start.IsZero() {
		return cells
	}
	end := t.End
	if end.IsZero() || end.Before(t.Start.Time) {
		end = t.Start
	}
	offset := date.CalendarDaysBetween(win.From, t.Start)
	length := date.CalendarDaysBetween(t.Start, end) + 1
	for i := range length {
		col := offset + i
		if col < 0 || col >= win.Days {
			continue
		}
		if date.IsWorkingDay(t.Start.AddDays(i), w) {
			cells[col] = CellWork
		} else {
			cells[col] = CellOffDay
		}
	}
	return cells
}

// RenderBar draws cells with dayWidth columns per day.
func RenderBar(cells []Cell, dayWidth int, completed bool) string {
	dayWidth = max(1, dayWidth)
	bar := barStyle
	if completed {
		bar = doneBarStyle
	}
	var b strings.Builder
	for _, c := range cells {
		switch c {
		case CellWork:
			b.WriteString(bar.Render(strings.Repeat(GlyphWork, dayWidth)))
		case CellOffDay:
			b.WriteString(offDayStyle.Render(strings.Repeat(GlyphOffDay, dayWidth)))
		case CellToday:
			b.WriteString(todayStyle.Render(GlyphToday) + strings.Repeat(GlyphEmpty, dayWidth-1))
		default:
			b.WriteString(strings.Repeat(GlyphEmpty, dayWidth))
		}
	}
	return b.String()
}

// Gantt renders tasks as a text Gantt chart, one row per task in the given
// order, with a date ruler on top.
func Gantt(w io.Writer, tasks []*task.Task, opts GanttOptions) {
	win := ChartWindow(tasks)
	if win.Days == 0 {
		Messagef(w, "No scheduled tasks.")
		return
	}
	dayWidth := max(1, opts.DayWidth)
	labelW := opts.LabelWidth
	if labelW <= 0 {
		labelW = 32 //nolint:mnd // default label column
	}

	labels := make([]string, len(tasks))
	width := 0
	for i, t := range tasks {
		labels[i] = t.ShortID() + " " + t.Title
		width = max(width, min(lipgloss.Width(labels[i]), labelW))
	}

	fmt.Fprintln(w, headerStyle.Render(strings.Repeat(" ", width+1)+Ruler(win, dayWidth)))
	for i, t := range tasks {
		label := truncate(labels[i], width)
		cells := BarCells(t, win, t.WorkingDays.Or(opts.Workdays), opts.Today)
		row := padRight(label, width) + " " + RenderBar(cells, dayWidth, t.Completed)
		if t.IsDelayedByDependencies {
			row += " " + warnStyle.Render(GlyphDelay)
		}
		fmt.Fprintln(w, strings.TrimRight(row, " "))
	}
}

// Ruler returns the date header for win: the day of month every week, at
// the column where that day starts, and the month name on the first day.
func Ruler(win Window, dayWidth int) string {
	dayWidth = max(1, dayWidth)
	cols := []rune(strings.Repeat(" ", win.Days*dayWidth))
	const step = 7
	for i := 0; i < win.Days; i++ {
		d := win.From.AddDays(i)
		var mark string
		switch {
		case d.Day() == 1 || i == 0:
			mark = d.Format("Jan 2")
		case i%step == 0:
			mark = d.Format("2")
		default:
			continue
		}
		at := i * dayWidth
		for j, r := range mark {
			if at+j < len(cols) {
				cols[at+j] = r
			}
		}
	}
	return strings.TrimRight(string(cols), " ")
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if width <= 1 {
		return string(r[:min(len(r), max(0, width))])
	}
	return string(r[:min(len(r), width-1)]) + "…"
}
