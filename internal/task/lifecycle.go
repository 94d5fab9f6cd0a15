package task

import (
	"slices"

	"github.com/twiced-technology-gmbh/planwatch/internal/date"
)

// MarkComplete flags t as completed on today. The planned end and duration
// are kept in OriginalEnd and OriginalDuration so Reopen can restore them.
// When the task has already started, the end moves to today and the
// duration becomes the working days actually spent.
func MarkComplete(t *Task, today date.Date, w date.Weekdays) {
	if t.Completed {
		return
	}
	t.Completed = true
	t.OriginalEnd = t.End
	d := t.EstimatedDuration
	t.OriginalDuration = &d

	if !today.Before(t.Start.Time) {
		t.End = today
		t.EstimatedDuration = date.WorkingDaysBetween(t.Start, today, w)
	}
}

// Reopen clears the completed flag and restores the planned end and
// duration saved by MarkComplete, when both are present.
func Reopen(t *Task) {
	if !t.Completed {
		return
	}
	t.Completed = false
	if !t.OriginalEnd.IsZero() && t.OriginalDuration != nil {
		t.End = t.OriginalEnd
		t.EstimatedDuration = *t.OriginalDuration
	}
	t.OriginalEnd = date.Date{}
	t.OriginalDuration = nil
}

// StripDependency removes id from every task's dependency list and returns
// the tasks that changed.
func StripDependency(tasks []*Task, id string) []*Task {
	var changed []*Task
	for _, t := range tasks {
		if !t.DependsOn(id) {
			continue
		}
		t.Dependencies = slices.DeleteFunc(t.Dependencies, func(dep string) bool { return dep == id })
		changed = append(changed, t)
	}
	return changed
}

// Dependents returns the tasks that list id as a dependency.
func Dependents(tasks []*Task, id string) []*Task {
	var out []*Task
	for _, t := range tasks {
		if t.DependsOn(id) {
			out = append(out, t)
		}
	}
	return out
}
