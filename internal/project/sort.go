package project

import (
	"cmp"
	"slices"
	"strings"

	"github.com/twiced-technology-gmbh/planwatch/internal/clierr"
	"github.com/twiced-technology-gmbh/planwatch/internal/config"
	"github.com/twiced-technology-gmbh/planwatch/internal/task"
)

// Sort fields accepted by Sort.
const (
	SortStart    = "start"
	SortEnd      = "end"
	SortTitle    = "title"
	SortStatus   = "status"
	SortCreated  = "created"
	SortDuration = "duration"
	// SortSchedule keeps the dependency order produced by the scheduler.
	SortSchedule = "schedule"
)

// SortFields lists the valid --sort values.
var SortFields = []string{SortStart, SortEnd, SortTitle, SortStatus, SortCreated, SortDuration, SortSchedule}

// ValidateSortField checks a --sort value.
func ValidateSortField(field string) error {
	if field == "" || slices.Contains(SortFields, field) {
		return nil
	}
	return clierr.Newf(clierr.InvalidSortField, "invalid sort field %q; valid: %s",
		field, strings.Join(SortFields, ", ")).
		WithDetails(map[string]any{"field": field, "allowed": SortFields})
}

// Sort sorts tasks by the given field. Status uses the config order, not
// alphabetical. Equal keys fall back to start date, then title.
func Sort(tasks []*task.Task, field string, reverse bool, cfg *config.Config) {
	if field == SortSchedule {
		if reverse {
			slices.Reverse(tasks)
		}
		return
	}
	slices.SortStableFunc(tasks, func(a, b *task.Task) int {
		c := compareTasks(a, b, field, cfg)
		if c == 0 {
			c = cmp.Or(a.Start.Compare(b.Start.Time), cmp.Compare(a.Title, b.Title))
		}
		if reverse {
			return -c
		}
		return c
	})
}

func compareTasks(a, b *task.Task, field string, cfg *config.Config) int {
	switch field {
	case SortEnd:
		return a.End.Compare(b.End.Time)
	case SortTitle:
		return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
	case SortStatus:
		return cmp.Compare(cfg.StatusIndex(a.Status), cfg.StatusIndex(b.Status))
	case SortCreated:
		return a.Created.Compare(b.Created)
	case SortDuration:
		return cmp.Compare(a.EstimatedDuration, b.EstimatedDuration)
	default:
		return a.Start.Compare(b.Start.Time)
	}
}
