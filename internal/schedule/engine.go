// Package schedule computes task dates from durations, working-day calendars,
// constraint dates and dependencies.
package schedule

import (
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/twiced-technology-gmbh/planwatch/internal/date"
	"github.com/twiced-technology-gmbh/planwatch/internal/task"
)

// ErrCycle is matched by every error Run returns for cyclic input.
var ErrCycle = errors.New("dependency cycle detected")

// CycleError reports the dependency cycle that stopped a scheduling run.
type CycleError struct {
	// Path is a closed walk of task ids: the first and last entries match.
	Path []string
}

func (e *CycleError) Error() string {
	if len(e.Path) == 0 {
		return ErrCycle.Error()
	}
	return ErrCycle.Error() + ": " + strings.Join(e.Path, " -> ")
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// Engine schedules task sets. An Engine holds no mutable state and is safe
// for concurrent use.
type Engine struct {
	workdays date.Weekdays
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithDefaultWorkdays sets the calendar used by tasks without their own.
// A nil set leaves the default of every day.
func WithDefaultWorkdays(w date.Weekdays) Option {
	return func(e *Engine) {
		if w != nil {
			e.workdays = w.Clone()
		}
	}
}

// WithClock sets the source of "today" for tasks with no start date.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the logger that receives per-task debug records.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New returns an Engine. Without options every day is a working day and
// today comes from the system clock.
func New(opts ...Option) *Engine {
	e := &Engine{
		workdays: date.AllWeekdays(),
		now:      time.Now,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DefaultWorkdays returns a copy of the engine's fallback calendar.
func (e *Engine) DefaultWorkdays() date.Weekdays {
	return e.workdays.Clone()
}

// Run schedules a copy of tasks and returns it in dependency order. Each
// task starts on the first working day not before its constraint date (or,
// without one and without dependencies, its current start) and not before
// the day after any predecessor ends.
//
// The input is never modified. On a cycle Run returns a *CycleError and no
// tasks.
func (e *Engine) Run(tasks []*task.Task) ([]*task.Task, error) {
	work := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if t == nil {
			continue
		}
		c := t.Clone()
		c.Dependencies = dedupe(c.Dependencies)
		work = append(work, c)
	}

	a := newArena(work)
	if path := a.findCycle(); path != nil {
		e.logger.Debug("schedule aborted", "cycle", path)
		return nil, &CycleError{Path: path}
	}

	today := date.Normalize(e.now())
	order := a.topoOrder()
	out := make([]*task.Task, 0, len(order))
	for _, id := range order {
		t := a.byID[id]
		e.place(t, a, today)
		out = append(out, t)
	}
	return out, nil
}

// place computes and stores the dates of t. Predecessors must already be placed.
func (e *Engine) place(t *task.Task, a *arena, today date.Date) {
	w := t.WorkingDays.Or(e.workdays)

	var candidates []date.Date
	switch {
	case t.HasConstraint():
		candidates = append(candidates, t.ConstraintDate)
	case len(t.Dependencies) == 0:
		candidates = append(candidates, startOr(t.Start, today))
	}
	for _, dep := range t.Dependencies {
		if p, ok := a.byID[dep]; ok {
			candidates = append(candidates, p.End.AddDays(1))
		}
	}
	// Only dangling dependencies: keep the task where it is.
	if len(candidates) == 0 {
		candidates = append(candidates, startOr(t.Start, today))
	}

	start := date.NextWorkingDay(date.Max(candidates...), w)
	t.Start = start
	t.End = date.AddWorkingDuration(start, t.EstimatedDuration, w)
	t.IsDelayedByDependencies = t.HasConstraint() && start.After(t.ConstraintDate.Time)

	e.logger.Debug("task placed",
		"id", t.ID,
		"start", t.Start.String(),
		"end", t.End.String(),
		"delayed", t.IsDelayedByDependencies)
}

func startOr(d, today date.Date) date.Date {
	if d.IsZero() {
		return today
	}
	return d
}

func dedupe(ids []string) []string {
	if len(ids) < 2 {
		return ids
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
