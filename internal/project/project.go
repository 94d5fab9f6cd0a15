// Package project runs task mutations through the scheduler and persists
// the result.
package project

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/twiced-technology-gmbh/planwatch/internal/config"
	"github.com/twiced-technology-gmbh/planwatch/internal/date"
	"github.com/twiced-technology-gmbh/planwatch/internal/logging"
	"github.com/twiced-technology-gmbh/planwatch/internal/schedule"
	"github.com/twiced-technology-gmbh/planwatch/internal/store"
	"github.com/twiced-technology-gmbh/planwatch/internal/task"
)

// Service owns a project's task set. Every mutation takes the store lock,
// reloads all tasks, applies the change, reschedules the whole set and
// commits it. Nothing is written when any step fails.
type Service struct {
	cfg    *config.Config
	store  store.Store
	engine *schedule.Engine
	log    *slog.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the diagnostic logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New returns a Service for cfg backed by st.
func New(cfg *config.Config, st store.Store, opts ...Option) *Service {
	s := &Service{
		cfg:   cfg,
		store: st,
		log:   logging.Discard(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = schedule.New(
		schedule.WithDefaultWorkdays(cfg.Workdays()),
		schedule.WithClock(s.now),
		schedule.WithLogger(s.log),
	)
	return s
}

// Config returns the project config.
func (s *Service) Config() *config.Config { return s.cfg }

// Store returns the backing store.
func (s *Service) Store() store.Store { return s.store }

// Today returns the current date from the service clock.
func (s *Service) Today() date.Date { return date.Normalize(s.now()) }

// Result is the outcome of a scheduling run.
type Result struct {
	// Tasks is the full task set in schedule order.
	Tasks []*task.Task `json:"tasks"`
	// Changed lists the tasks that were written (or would be, on a dry run).
	Changed []*task.Task `json:"changed"`
	// Deleted lists removed task ids.
	Deleted []string `json:"deleted,omitempty"`
	// Warnings are records that could not be read and were left untouched.
	Warnings []task.ReadWarning `json:"-"`
}

// Find returns the task with the given id or id prefix.
func (r *Result) Find(id string) *task.Task {
	t, _ := task.ResolveID(r.Tasks, id)
	return t
}

// changeSet is what a mutation does to the loaded tasks.
type changeSet struct {
	tasks   []*task.Task
	touched map[string]bool
	deleted []string
	action  string
	taskID  string
	detail  string
}

func (c *changeSet) touch(t *task.Task) { c.touched[t.ID] = true }

// Load reads the current task set without taking the lock.
func (s *Service) Load(ctx context.Context) ([]*task.Task, []task.ReadWarning, error) {
	return s.store.Load(ctx)
}

// Get resolves ref against the current task set.
func (s *Service) Get(ctx context.Context, ref string) (*task.Task, error) {
	tasks, _, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return task.ResolveID(tasks, ref)
}

// NewTask returns a task with a fresh id and the project defaults.
func (s *Service) NewTask(title string) *task.Task {
	now := s.now()
	return &task.Task{
		ID:                uuid.NewString(),
		Title:             title,
		Status:            s.cfg.Defaults.Status,
		EstimatedDuration: s.cfg.Defaults.Duration,
		Start:             date.Normalize(now),
		Created:           now,
		Updated:           now,
	}
}

// Save creates t or replaces the stored task with the same id, then
// reschedules. New tasks are ordered after existing ones.
func (s *Service) Save(ctx context.Context, t *task.Task) (*Result, error) {
	if err := task.ValidateDuration(t.EstimatedDuration); err != nil {
		return nil, err
	}
	if t.DependsOn(t.ID) {
		return nil, task.ValidateSelfReference(t.ID)
	}

	return s.mutate(ctx, func(c *changeSet) error {
		if err := task.ValidateStatus(t.Status, s.cfg.StatusNames()); err != nil {
			return err
		}
		idx := slices.IndexFunc(c.tasks, func(o *task.Task) bool { return o.ID == t.ID })
		// Ids already stored may dangle; only newly added ones must resolve.
		added := t.Dependencies
		if idx >= 0 {
			stored := c.tasks[idx].Dependencies
			added = slices.DeleteFunc(slices.Clone(t.Dependencies), func(id string) bool {
				return slices.Contains(stored, id)
			})
		}
		others := slices.DeleteFunc(slices.Clone(c.tasks), func(o *task.Task) bool { return o.ID == t.ID })
		if err := task.ValidateDependencyIDs(others, t.ID, added); err != nil {
			return err
		}

		rec := t.Clone()
		if rec.Created.IsZero() {
			rec.Created = s.now()
		}
		if idx >= 0 {
			rec.File = c.tasks[idx].File
			c.tasks[idx] = rec
			c.action, c.detail = "edit", rec.Title
		} else {
			c.tasks = append(c.tasks, rec)
			c.action, c.detail = "create", rec.Title
		}
		c.touch(rec)
		c.taskID = rec.ID
		return nil
	})
}

// SetStatus moves a task to status. Entering the done status completes the
// task; leaving it reopens the task.
func (s *Service) SetStatus(ctx context.Context, ref, status string) (*Result, error) {
	return s.mutate(ctx, func(c *changeSet) error {
		if err := task.ValidateStatus(status, s.cfg.StatusNames()); err != nil {
			return err
		}
		t, err := task.ResolveID(c.tasks, ref)
		if err != nil {
			return err
		}
		if t.Status == status {
			return task.ValidateNoChanges(t.ID, status)
		}

		old := t.Status
		t.Status = status
		if s.cfg.IsDoneStatus(status) {
			task.MarkComplete(t, s.Today(), t.WorkingDays.Or(s.cfg.Workdays()))
		} else {
			task.Reopen(t)
		}
		c.touch(t)
		c.action, c.taskID, c.detail = "status", t.ID, old+" -> "+status
		return nil
	})
}

// Complete moves a task to the done status.
func (s *Service) Complete(ctx context.Context, ref string) (*Result, error) {
	return s.SetStatus(ctx, ref, s.cfg.DoneStatus())
}

// Reopen moves a completed task back to the default status.
func (s *Service) Reopen(ctx context.Context, ref string) (*Result, error) {
	return s.SetStatus(ctx, ref, s.cfg.Defaults.Status)
}

// Delete removes a task, drops it from every dependency list and
// reschedules the rest.
func (s *Service) Delete(ctx context.Context, ref string) (*Result, error) {
	return s.mutate(ctx, func(c *changeSet) error {
		t, err := task.ResolveID(c.tasks, ref)
		if err != nil {
			return err
		}
		c.tasks = slices.DeleteFunc(c.tasks, func(o *task.Task) bool { return o.ID == t.ID })
		for _, dep := range task.StripDependency(c.tasks, t.ID) {
			c.touch(dep)
		}
		c.deleted = append(c.deleted, t.ID)
		c.action, c.taskID, c.detail = "delete", t.ID, t.Title
		return nil
	})
}

// Recompute reschedules the stored tasks. With dryRun nothing is written.
func (s *Service) Recompute(ctx context.Context, dryRun bool) (*Result, error) {
	if dryRun {
		tasks, warnings, err := s.store.Load(ctx)
		if err != nil {
			return nil, err
		}
		res, err := s.schedule(tasks, &changeSet{tasks: cloneAll(tasks), touched: map[string]bool{}})
		if err != nil {
			return nil, err
		}
		res.Warnings = warnings
		return res, nil
	}
	return s.mutate(ctx, func(c *changeSet) error {
		c.action, c.detail = "schedule", "recomputed"
		return nil
	})
}

// mutate is the lock, load, change, schedule, commit cycle.
func (s *Service) mutate(ctx context.Context, fn func(*changeSet) error) (*Result, error) {
	unlock, err := s.store.Lock(ctx)
	if err != nil {
		return nil, fmt.Errorf("locking project: %w", err)
	}
	defer func() {
		if err := unlock(); err != nil {
			s.log.Warn("releasing project lock", logging.Err(err))
		}
	}()

	loaded, warnings, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		s.log.Warn("skipping unreadable task", "file", w.File, logging.Err(w.Err))
	}

	c := &changeSet{tasks: cloneAll(loaded), touched: map[string]bool{}}
	if err := fn(c); err != nil {
		return nil, err
	}

	res, err := s.schedule(loaded, c)
	if err != nil {
		s.log.Info("mutation rejected", "action", c.action, logging.Err(err))
		return nil, err
	}
	res.Warnings = warnings

	if len(res.Changed) > 0 || len(res.Deleted) > 0 {
		if err := s.store.Commit(ctx, res.Changed, res.Deleted); err != nil {
			return nil, fmt.Errorf("saving tasks: %w", err)
		}
	}
	s.log.Debug("mutation committed",
		"action", c.action,
		"changed", len(res.Changed),
		"deleted", len(res.Deleted))

	if c.action != "" {
		detail := c.detail
		if c.action == "schedule" {
			detail = fmt.Sprintf("%d task(s) moved", len(res.Changed))
		}
		if err := AppendLog(s.cfg.Dir(), LogEntry{
			Timestamp: s.now(),
			Action:    c.action,
			TaskID:    c.taskID,
			Detail:    detail,
		}); err != nil {
			s.log.Warn("writing activity log", logging.Err(err))
		}
	}
	return res, nil
}

// schedule runs the engine over c.tasks and works out which tasks differ
// from before.
func (s *Service) schedule(before []*task.Task, c *changeSet) (*Result, error) {
	out, err := s.engine.Run(c.tasks)
	if err != nil {
		var cycErr *schedule.CycleError
		if errors.As(err, &cycErr) {
			return nil, task.ValidateCycle(cycErr.Path)
		}
		return nil, err
	}

	prev := make(map[string]*task.Task, len(before))
	for _, t := range before {
		prev[t.ID] = t
	}

	now := s.now()
	var changed []*task.Task
	for _, t := range out {
		p, existed := prev[t.ID]
		if existed && !c.touched[t.ID] && sameSchedule(p, t) {
			continue
		}
		t.Updated = now
		changed = append(changed, t)
	}
	return &Result{Tasks: out, Changed: changed, Deleted: c.deleted}, nil
}

func sameSchedule(a, b *task.Task) bool {
	return a.Start.Equal(b.Start.Time) &&
		a.End.Equal(b.End.Time) &&
		a.IsDelayedByDependencies == b.IsDelayedByDependencies
}

func cloneAll(tasks []*task.Task) []*task.Task {
	out := make([]*task.Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}
