package project

import (
	"slices"
	"strings"

	"github.com/twiced-technology-gmbh/planwatch/internal/task"
)

// FilterOptions defines which tasks to include.
type FilterOptions struct {
	Statuses        []string
	ExcludeStatuses []string
	Assignee        string
	Search          string // case-insensitive substring match across title and body
	Delayed         *bool  // nil=no filter, true=only tasks pushed past their constraint
	Completed       *bool
}

// Filter returns tasks matching all specified criteria (AND logic).
func Filter(tasks []*task.Task, opts FilterOptions) []*task.Task {
	var result []*task.Task
	for _, t := range tasks {
		if matchesFilter(t, opts) {
			result = append(result, t)
		}
	}
	return result
}

func matchesFilter(t *task.Task, opts FilterOptions) bool {
	if len(opts.Statuses) > 0 && !slices.Contains(opts.Statuses, t.Status) {
		return false
	}
	if slices.Contains(opts.ExcludeStatuses, t.Status) {
		return false
	}
	if opts.Assignee != "" && !slices.Contains(t.Assignees, opts.Assignee) {
		return false
	}
	if opts.Delayed != nil && t.IsDelayedByDependencies != *opts.Delayed {
		return false
	}
	if opts.Completed != nil && t.Completed != *opts.Completed {
		return false
	}
	if opts.Search != "" && !matchesSearch(t, opts.Search) {
		return false
	}
	return true
}

// matchesSearch performs case-insensitive substring matching across title and body.
func matchesSearch(t *task.Task, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Body), q)
}
