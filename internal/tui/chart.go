// Package tui implements a terminal Gantt view for planwatch projects.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/twiced-technology-gmbh/planwatch/internal/date"
	"github.com/twiced-technology-gmbh/planwatch/internal/output"
	"github.com/twiced-technology-gmbh/planwatch/internal/project"
	"github.com/twiced-technology-gmbh/planwatch/internal/task"
)

// view represents the current screen state.
type view int

const (
	viewChart view = iota
	viewConfirmDelete
)

// Layout constants.
const (
	labelMin     = 12
	labelMax     = 36
	chartChrome  = 2 // ruler line above, blank line below the rows
	statusChrome = 1
	errorChrome  = 1
	scrollDays   = 7
	tickInterval = time.Minute // refreshes the today marker
)

// Chart is the top-level bubbletea model.
type Chart struct {
	ctx    context.Context
	svc    *project.Service
	tasks  []*task.Task
	cursor int
	rowOff int
	dayOff int // first visible day relative to the project start
	view   view
	width  int
	height int
	err    error
	keys   keyMap
	help   help.Model

	// Delete confirmation.
	deleteID    string
	deleteTitle string
}

// NewChart creates a Chart for the project behind svc.
func NewChart(ctx context.Context, svc *project.Service) *Chart {
	c := &Chart{ctx: ctx, svc: svc, keys: defaultKeys(), help: help.New()}
	c.loadTasks()
	return c
}

// Init implements tea.Model.
func (c *Chart) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (c *Chart) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return c.handleKey(msg)
	case tea.MouseMsg:
		return c.handleMouse(msg)
	case tea.WindowSizeMsg:
		c.width = msg.Width
		c.height = msg.Height
		c.help.Width = msg.Width
		c.ensureVisible()
		return c, nil
	case ReloadMsg:
		c.loadTasks()
		return c, nil
	case TickMsg:
		return c, tickCmd()
	case ErrMsg:
		c.err = msg.Err
		return c, nil
	}
	return c, nil
}

// View implements tea.Model.
func (c *Chart) View() string {
	if c.width == 0 {
		return "Loading..."
	}
	if c.view == viewConfirmDelete {
		return c.viewDeleteConfirm()
	}
	return c.viewChart()
}

// WatchPaths returns the paths that should be watched for changes.
func (c *Chart) WatchPaths() []string {
	return append(c.svc.Store().Paths(), c.svc.Config().ConfigPath())
}

// Selected returns the task under the cursor, or nil.
func (c *Chart) Selected() *task.Task {
	if c.cursor >= 0 && c.cursor < len(c.tasks) {
		return c.tasks[c.cursor]
	}
	return nil
}

// Err returns the last error shown in the status bar.
func (c *Chart) Err() error { return c.err }

func (c *Chart) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return c, tea.Quit
	}
	if c.view == viewConfirmDelete {
		return c.handleDeleteKey(msg)
	}

	switch {
	case key.Matches(msg, c.keys.Quit):
		return c, tea.Quit
	case key.Matches(msg, c.keys.Up):
		if c.cursor > 0 {
			c.cursor--
			c.ensureVisible()
		}
	case key.Matches(msg, c.keys.Down):
		if c.cursor < len(c.tasks)-1 {
			c.cursor++
			c.ensureVisible()
		}
	case key.Matches(msg, c.keys.Left):
		c.dayOff -= scrollDays
	case key.Matches(msg, c.keys.Right):
		c.dayOff += scrollDays
	case key.Matches(msg, c.keys.Today):
		c.scrollToToday()
	case key.Matches(msg, c.keys.Toggle):
		c.toggleSelected()
	case key.Matches(msg, c.keys.Delete):
		if t := c.Selected(); t != nil {
			c.deleteID, c.deleteTitle = t.ID, t.Title
			c.view = viewConfirmDelete
		}
	case key.Matches(msg, c.keys.Recompute):
		if _, err := c.svc.Recompute(c.ctx, false); err != nil {
			c.err = err
		}
		c.loadTasks()
	case key.Matches(msg, c.keys.Help):
		c.help.ShowAll = !c.help.ShowAll
		c.ensureVisible()
	}
	return c, nil
}

func (c *Chart) handleDeleteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, c.keys.Confirm):
		if _, err := c.svc.Delete(c.ctx, c.deleteID); err != nil {
			c.err = fmt.Errorf("deleting task %s: %w", task.ShortID(c.deleteID), err)
		}
		c.view = viewChart
		c.loadTasks()
	case key.Matches(msg, c.keys.Cancel):
		c.view = viewChart
	}
	return c, nil
}

// handleMouse selects the clicked row; the wheel moves the cursor.
func (c *Chart) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if c.view != viewChart {
		return c, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return c.handleKey(tea.KeyMsg{Type: tea.KeyUp})
	case tea.MouseButtonWheelDown:
		return c.handleKey(tea.KeyMsg{Type: tea.KeyDown})
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return c, nil
		}
		row := c.rowOff + msg.Y - 1 // ruler line
		if msg.Y >= 1 && row < len(c.tasks) && row < c.rowOff+c.visibleRows() {
			c.cursor = row
		}
	}
	return c, nil
}

func (c *Chart) toggleSelected() {
	t := c.Selected()
	if t == nil {
		return
	}
	var err error
	if t.Completed {
		_, err = c.svc.Reopen(c.ctx, t.ID)
	} else {
		_, err = c.svc.Complete(c.ctx, t.ID)
	}
	c.err = err
	c.loadTasks()
}

// loadTasks reads the project and keeps the cursor on the same task when it
// still exists.
func (c *Chart) loadTasks() {
	var selectedID string
	if t := c.Selected(); t != nil {
		selectedID = t.ID
	}

	tasks, _, err := c.svc.List(c.ctx, project.ListOptions{SortBy: project.SortStart})
	if err != nil {
		c.err = err
		return
	}
	c.tasks = tasks

	for i, t := range tasks {
		if t.ID == selectedID {
			c.cursor = i
		}
	}
	c.cursor = max(0, min(c.cursor, len(c.tasks)-1))
	c.ensureVisible()
}

func (c *Chart) scrollToToday() {
	full := output.ChartWindow(c.tasks)
	if full.Days == 0 {
		c.dayOff = 0
		return
	}
	const lead = 4 // show a few days of context before today
	c.dayOff = date.CalendarDaysBetween(full.From, c.svc.Today()) - c.visibleDays()/lead
}

func (c *Chart) ensureVisible() {
	rows := c.visibleRows()
	switch {
	case c.cursor >= c.rowOff+rows:
		c.rowOff = c.cursor - rows + 1
	case c.cursor < c.rowOff:
		c.rowOff = c.cursor
	}
	c.rowOff = max(0, c.rowOff)
}

func (c *Chart) dayWidth() int {
	return max(1, c.svc.Config().DayWidth())
}

func (c *Chart) labelWidth() int {
	const fraction = 3
	return max(labelMin, min(labelMax, c.width/fraction))
}

func (c *Chart) visibleDays() int {
	return max(1, (c.width-c.labelWidth()-1)/c.dayWidth())
}

func (c *Chart) visibleRows() int {
	if c.height == 0 {
		return max(1, len(c.tasks))
	}
	chrome := chartChrome + statusChrome + lipgloss.Height(c.help.View(c.keys))
	if c.err != nil {
		chrome += errorChrome
	}
	return max(1, c.height-chrome)
}

// window returns the visible slice of the calendar.
func (c *Chart) window() output.Window {
	from := output.ChartWindow(c.tasks).From
	if from.IsZero() {
		from = c.svc.Today()
	}
	return output.Window{From: from.AddDays(c.dayOff), Days: c.visibleDays()}
}

// --- Messages ---

// ReloadMsg is sent by the file watcher to trigger a refresh.
type ReloadMsg struct{}

// ErrMsg reports a background error, such as a failing file watcher.
type ErrMsg struct{ Err error }

// TickMsg is sent periodically to move the today marker.
type TickMsg struct{}

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg { return TickMsg{} })
}

// --- Styles ---

var (
	rulerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62"))

	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	doneLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	delayStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)

	statusBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	dialogPadY = 1
	dialogPadX = 2

	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(dialogPadY, dialogPadX)
)

// --- View rendering ---

func (c *Chart) viewChart() string {
	win := c.window()
	labelW := c.labelWidth()
	dw := c.dayWidth()
	today := c.svc.Today()
	workdays := c.svc.Config().Workdays()

	lines := []string{rulerStyle.Render(strings.Repeat(" ", labelW+1) + output.Ruler(win, dw))}

	if len(c.tasks) == 0 {
		lines = append(lines, dimStyle.Render("  No tasks. Add one with 'planwatch create'."))
	}
	end := min(len(c.tasks), c.rowOff+c.visibleRows())
	for i := c.rowOff; i < end; i++ {
		t := c.tasks[i]
		cells := output.BarCells(t, win, t.WorkingDays.Or(workdays), today)
		lines = append(lines, c.renderLabel(t, i == c.cursor, labelW)+" "+output.RenderBar(cells, dw, t.Completed))
	}

	body := strings.Join(lines, "\n")
	if c.height > 0 {
		target := c.height - statusChrome - lipgloss.Height(c.help.View(c.keys)) - 1
		if c.err != nil {
			target -= errorChrome
		}
		if n := lipgloss.Height(body); n < target {
			body += strings.Repeat("\n", target-n)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, body, "", c.renderStatusBar(), c.help.View(c.keys))
}

func (c *Chart) renderLabel(t *task.Task, selected bool, width int) string {
	marker := " "
	switch {
	case t.IsDelayedByDependencies:
		marker = delayStyle.Render("!")
	case t.Completed:
		marker = "✓"
	}
	text := truncate(t.ShortID()+" "+t.Title, width-2) //nolint:mnd // marker and gap
	pad := strings.Repeat(" ", max(0, width-2-lipgloss.Width(text)))

	style := labelStyle
	switch {
	case selected:
		style = selectedStyle
	case t.Completed:
		style = doneLabelStyle
	}
	return marker + " " + style.Render(text+pad)
}

func (c *Chart) renderStatusBar() string {
	status := fmt.Sprintf(" %s | %d tasks", c.svc.Config().Project.Name, len(c.tasks))
	if t := c.Selected(); t != nil {
		status += fmt.Sprintf(" | %s %s..%s (%dd) %s",
			t.ShortID(), t.Start, t.End, t.EstimatedDuration, t.Status)
		if t.IsDelayedByDependencies {
			status += ", delayed"
		}
	}
	status = truncate(status, c.width)

	if c.err != nil {
		errStr := errorStyle.Render(truncate("Error: "+c.err.Error(), c.width))
		return errStr + "\n" + statusBarStyle.Render(status)
	}
	return statusBarStyle.Render(status)
}

func (c *Chart) viewDeleteConfirm() string {
	content := errorStyle.Render("Delete task?") + "\n\n" +
		fmt.Sprintf("  %s: %s", task.ShortID(c.deleteID), c.deleteTitle) + "\n" +
		dimStyle.Render("  Dependent tasks lose this dependency.") + "\n\n" +
		dimStyle.Render("y:yes  n:no")

	return dialogStyle.Render(content)
}

func truncate(s string, maxLen int) string {
	if maxLen < 4 { //nolint:mnd // minimum length for truncation
		maxLen = 4
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	// Slice by runes to avoid breaking multi-byte UTF-8 characters.
	runes := []rune(s)
	target := min(maxLen-3, len(runes)) //nolint:mnd // room for "..."
	// Trim runes from the end until the display width fits.
	for target > 0 && lipgloss.Width(string(runes[:target])) > maxLen-3 {
		target--
	}
	return string(runes[:target]) + "..."
}
