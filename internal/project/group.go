package project

import (
	"slices"
	"strings"

	"github.com/twiced-technology-gmbh/planwatch/internal/clierr"
	"github.com/twiced-technology-gmbh/planwatch/internal/config"
	"github.com/twiced-technology-gmbh/planwatch/internal/date"
	"github.com/twiced-technology-gmbh/planwatch/internal/task"
)

// Group-by fields accepted by GroupBy.
const (
	GroupAssignee = "assignee"
	GroupStatus   = "status"
)

const unassigned = "(unassigned)"

// GroupFields lists the valid --group-by values.
var GroupFields = []string{GroupAssignee, GroupStatus}

// GroupedSummary holds tasks grouped by a field.
type GroupedSummary struct {
	Groups []GroupSummary `json:"groups"`
}

// GroupSummary is one group within a grouped view. Start and End span the
// group's scheduled work.
type GroupSummary struct {
	Key      string          `json:"key"`
	Statuses []StatusSummary `json:"statuses"`
	Total    int             `json:"total"`
	Start    date.Date       `json:"start"`
	End      date.Date       `json:"end"`
}

// ValidateGroupField checks a --group-by value.
func ValidateGroupField(field string) error {
	if field == "" || slices.Contains(GroupFields, field) {
		return nil
	}
	return clierr.Newf(clierr.InvalidInput, "invalid --group-by field %q; valid: %s",
		field, strings.Join(GroupFields, ", "))
}

// GroupBy groups tasks by field. A task with several assignees counts in
// each of their groups.
func GroupBy(tasks []*task.Task, field string, cfg *config.Config) GroupedSummary {
	groups := make(map[string][]*task.Task)
	for _, t := range tasks {
		for _, key := range groupKeys(t, field) {
			groups[key] = append(groups[key], t)
		}
	}

	result := GroupedSummary{Groups: make([]GroupSummary, 0, len(groups))}
	for _, key := range sortGroupKeys(groups, field, cfg) {
		members := groups[key]
		g := GroupSummary{
			Key:      key,
			Statuses: groupStatusSummary(members, cfg),
			Total:    len(members),
		}
		for _, t := range members {
			if g.Start.IsZero() || (!t.Start.IsZero() && t.Start.Before(g.Start.Time)) {
				g.Start = t.Start
			}
			g.End = date.Max(g.End, t.End)
		}
		result.Groups = append(result.Groups, g)
	}
	return result
}

func groupKeys(t *task.Task, field string) []string {
	switch field {
	case GroupAssignee:
		if len(t.Assignees) == 0 {
			return []string{unassigned}
		}
		return t.Assignees
	case GroupStatus:
		return []string{t.Status}
	default:
		return []string{"(all)"}
	}
}

func sortGroupKeys(groups map[string][]*task.Task, field string, cfg *config.Config) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}

	switch field {
	case GroupStatus:
		slices.SortStableFunc(keys, func(a, b string) int {
			return cfg.StatusIndex(a) - cfg.StatusIndex(b)
		})
	default:
		// Unassigned sorts last.
		slices.SortFunc(keys, func(a, b string) int {
			switch {
			case a == unassigned:
				return 1
			case b == unassigned:
				return -1
			default:
				return strings.Compare(a, b)
			}
		})
	}
	return keys
}

func groupStatusSummary(tasks []*task.Task, cfg *config.Config) []StatusSummary {
	counts := make(map[string]int)
	delayed := make(map[string]int)
	for _, t := range tasks {
		counts[t.Status]++
		if t.IsDelayedByDependencies {
			delayed[t.Status]++
		}
	}
	names := cfg.StatusNames()
	statuses := make([]StatusSummary, 0, len(names))
	for _, s := range names {
		statuses = append(statuses, StatusSummary{
			Status:  s,
			Count:   counts[s],
			Delayed: delayed[s],
			Pinned:  cfg.IsPinned(s),
		})
	}
	return statuses
}
