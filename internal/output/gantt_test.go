package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/planwatch/internal/date"
	"github.com/twiced-technology-gmbh/planwatch/internal/task"
)

func TestChartWindow(t *testing.T) {
	assert.Equal(t, Window{From: day(1), Days: 5}, ChartWindow(sample()))
	assert.Equal(t, Window{}, ChartWindow([]*task.Task{{ID: "x"}}))
	assert.Equal(t, Window{}, ChartWindow(nil))
}

func TestBarCells(t *testing.T) {
	// Friday 5th to Monday 8th on a five-day week.
	tk := &task.Task{Start: day(5), End: day(8)}
	win := Window{From: day(5), Days: 6}

	cells := BarCells(tk, win, date.MondayToFriday(), day(9))
	assert.Equal(t, []Cell{CellWork, CellOffDay, CellOffDay, CellWork, CellToday, CellEmpty}, cells)

	cells = BarCells(tk, win, date.AllWeekdays(), date.Date{})
	assert.Equal(t, []Cell{CellWork, CellWork, CellWork, CellWork, CellEmpty, CellEmpty}, cells)
}

func TestBarCells_ClipsToWindow(t *testing.T) {
	tk := &task.Task{Start: day(3), End: day(12)}
	cells := BarCells(tk, Window{From: day(5), Days: 3}, nil, date.Date{})
	assert.Equal(t, []Cell{CellWork, CellWork, CellWork}, cells)
}

func TestRenderBar(t *testing.T) {
	cells := []Cell{CellWork, CellOffDay, CellOffDay, CellWork, CellToday, CellEmpty}
	assert.Equal(t, "██░░░░██│   ", RenderBar(cells, 2, false))
	assert.Equal(t, "█░░█│ ", RenderBar(cells, 0, true))
}

func TestRuler(t *testing.T) {
	assert.Equal(t, "Jan 5  12", Ruler(Window{From: day(5), Days: 10}, 1))
	assert.Equal(t, "Jan 30    Feb 1", Ruler(Window{From: day(30), Days: 3}, 5))
}

func TestGantt(t *testing.T) {
	var buf bytes.Buffer
	Gantt(&buf, sample(), GanttOptions{DayWidth: 1, Workdays: date.AllWeekdays()})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Repeat(" ", 16)+"Jan 1", lines[0])
	assert.Equal(t, "aaaaaaaa Design ███", lines[1])
	assert.Equal(t, "bbbbbbbb Build     ██ !", lines[2])
}

func TestGantt_EmptyWritesToWriter(t *testing.T) {
	var buf bytes.Buffer
	Gantt(&buf, nil, GanttOptions{DayWidth: 1})
	assert.Equal(t, "No scheduled tasks.\n", buf.String())
}

func TestGantt_TruncatesLabels(t *testing.T) {
	var buf bytes.Buffer
	tasks := []*task.Task{{ID: "cccccccc", Title: "A rather long task title", Start: day(1), End: day(1)}}
	Gantt(&buf, tasks, GanttOptions{DayWidth: 1, LabelWidth: 12})
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "cccccccc A … █", lines[1])
}
