package project

import (
	"context"

	"github.com/twiced-technology-gmbh/planwatch/internal/date"
	"github.com/twiced-technology-gmbh/planwatch/internal/task"
)

// ListOptions controls how tasks are listed.
type ListOptions struct {
	Filter  FilterOptions
	SortBy  string
	Reverse bool
	Limit   int
}

// List loads all tasks, applies filters and sorting.
// Uses lenient parsing: malformed records are skipped and returned as warnings.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]*task.Task, []task.ReadWarning, error) {
	if err := ValidateSortField(opts.SortBy); err != nil {
		return nil, nil, err
	}
	allTasks, warnings, err := s.store.Load(ctx)
	if err != nil {
		return nil, nil, err
	}

	tasks := Filter(allTasks, opts.Filter)

	sortField := opts.SortBy
	if sortField == "" {
		sortField = SortStart
	}
	Sort(tasks, sortField, opts.Reverse, s.cfg)

	if opts.Limit > 0 && len(tasks) > opts.Limit {
		tasks = tasks[:opts.Limit]
	}

	return tasks, warnings, nil
}

// StatusSummary holds metrics for a single status.
type StatusSummary struct {
	Status  string `json:"status"`
	Count   int    `json:"count"`
	Delayed int    `json:"delayed"`
	Pinned  bool   `json:"pinned,omitempty"`
}

// Overview is the aggregate project overview.
type Overview struct {
	ProjectName string          `json:"project_name"`
	TotalTasks  int             `json:"total_tasks"`
	Completed   int             `json:"completed"`
	Delayed     int             `json:"delayed"`
	Start       date.Date       `json:"start"`
	End         date.Date       `json:"end"`
	SpanDays    int             `json:"span_days"`
	Statuses    []StatusSummary `json:"statuses"`
}

// Summary computes a project overview from tasks.
func (s *Service) Summary(tasks []*task.Task) Overview {
	names := s.cfg.StatusNames()
	byStatus := make(map[string]*StatusSummary, len(names))
	statuses := make([]StatusSummary, len(names))
	for i, name := range names {
		statuses[i] = StatusSummary{Status: name, Pinned: s.cfg.IsPinned(name)}
		byStatus[name] = &statuses[i]
	}

	ov := Overview{ProjectName: s.cfg.Project.Name, TotalTasks: len(tasks)}
	for _, t := range tasks {
		if ss, ok := byStatus[t.Status]; ok {
			ss.Count++
			if t.IsDelayedByDependencies {
				ss.Delayed++
			}
		}
		if t.Completed {
			ov.Completed++
		}
		if t.IsDelayedByDependencies {
			ov.Delayed++
		}
		if ov.Start.IsZero() || (!t.Start.IsZero() && t.Start.Before(ov.Start.Time)) {
			ov.Start = t.Start
		}
		ov.End = date.Max(ov.End, t.End)
	}
	if !ov.Start.IsZero() && !ov.End.IsZero() {
		ov.SpanDays = date.CalendarDaysBetween(ov.Start, ov.End) + 1
	}
	ov.Statuses = statuses
	return ov
}
