package schedule

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/planwatch/internal/date"
	"github.com/twiced-technology-gmbh/planwatch/internal/task"
)

var fixedNow = time.Date(2024, time.January, 10, 15, 0, 0, 0, time.UTC)

func d(month time.Month, day int) date.Date {
	return date.New(2024, month, day)
}

func newEngine(opts ...Option) *Engine {
	return New(append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)...)
}

func byID(tasks []*task.Task) map[string]*task.Task {
	m := make(map[string]*task.Task, len(tasks))
	for _, t := range tasks {
		m[t.ID] = t
	}
	return m
}

func TestRun_ConstraintAndDependency(t *testing.T) {
	tasks := []*task.Task{
		{ID: "B", EstimatedDuration: 2, Dependencies: []string{"A"}},
		{ID: "A", EstimatedDuration: 3, ConstraintDate: d(time.January, 1), WorkingDays: date.AllWeekdays()},
	}

	out, err := newEngine().Run(tasks)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].ID)
	assert.Equal(t, "B", out[1].ID)

	got := byID(out)
	assert.Equal(t, d(time.January, 1), got["A"].Start)
	assert.Equal(t, d(time.January, 3), got["A"].End)
	assert.Equal(t, d(time.January, 4), got["B"].Start)
	assert.Equal(t, d(time.January, 5), got["B"].End)
	assert.False(t, got["A"].IsDelayedByDependencies)
	assert.False(t, got["B"].IsDelayedByDependencies)
}

func TestRun_DelayedPastConstraint(t *testing.T) {
	tasks := []*task.Task{
		{ID: "A", EstimatedDuration: 3, ConstraintDate: d(time.January, 1)},
		{ID: "C", EstimatedDuration: 2, ConstraintDate: d(time.January, 2), Dependencies: []string{"A"}},
	}

	out, err := newEngine().Run(tasks)
	require.NoError(t, err)

	c := byID(out)["C"]
	assert.Equal(t, d(time.January, 4), c.Start)
	assert.Equal(t, d(time.January, 5), c.End)
	assert.True(t, c.IsDelayedByDependencies)
}

func TestRun_WeekendSnap(t *testing.T) {
	tasks := []*task.Task{
		{ID: "A", EstimatedDuration: 2, Start: d(time.January, 6), WorkingDays: date.MondayToFriday()},
	}

	out, err := newEngine().Run(tasks)
	require.NoError(t, err)
	assert.Equal(t, d(time.January, 8), out[0].Start)
	assert.Equal(t, d(time.January, 9), out[0].End)
}

func TestRun_WeekendConstraintCountsAsDelay(t *testing.T) {
	tasks := []*task.Task{
		{ID: "A", EstimatedDuration: 1, ConstraintDate: d(time.January, 6), WorkingDays: date.MondayToFriday()},
	}
	out, err := newEngine().Run(tasks)
	require.NoError(t, err)
	assert.Equal(t, d(time.January, 8), out[0].Start)
	assert.True(t, out[0].IsDelayedByDependencies)
}

func TestRun_DefaultWorkdaysInjected(t *testing.T) {
	tasks := []*task.Task{
		{ID: "own", EstimatedDuration: 2, Start: d(time.January, 6), WorkingDays: date.AllWeekdays()},
		{ID: "inherit", EstimatedDuration: 2, Start: d(time.January, 6)},
		{ID: "every", EstimatedDuration: 2, Start: d(time.January, 6), WorkingDays: date.Weekdays{}},
	}

	out, err := newEngine(WithDefaultWorkdays(date.MondayToFriday())).Run(tasks)
	require.NoError(t, err)
	got := byID(out)
	assert.Equal(t, d(time.January, 7), got["own"].End)
	assert.Equal(t, d(time.January, 8), got["inherit"].Start)
	assert.Equal(t, d(time.January, 9), got["inherit"].End)
	assert.Equal(t, d(time.January, 6), got["every"].Start, "explicit empty set means every day")
	assert.Equal(t, d(time.January, 7), got["every"].End)
}

func TestRun_BlankStartUsesClock(t *testing.T) {
	out, err := newEngine().Run([]*task.Task{{ID: "A", EstimatedDuration: 1}})
	require.NoError(t, err)
	assert.Equal(t, date.Normalize(fixedNow), out[0].Start)
	assert.Equal(t, date.Normalize(fixedNow), out[0].End)
}

func TestRun_OnlyDanglingDependencies(t *testing.T) {
	tasks := []*task.Task{
		{ID: "A", EstimatedDuration: 2, Start: d(time.February, 1), Dependencies: []string{"gone"}},
		{ID: "B", EstimatedDuration: 2, Dependencies: []string{"gone"}},
	}
	out, err := newEngine().Run(tasks)
	require.NoError(t, err)
	got := byID(out)
	assert.Equal(t, d(time.February, 1), got["A"].Start, "keeps its own start")
	assert.Equal(t, d(time.February, 2), got["A"].End)
	assert.Equal(t, date.Normalize(fixedNow), got["B"].Start, "blank start falls back to today")
}

func TestRun_NonPositiveDuration(t *testing.T) {
	out, err := newEngine().Run([]*task.Task{{ID: "A", EstimatedDuration: 0, Start: d(time.March, 3)}})
	require.NoError(t, err)
	assert.Equal(t, out[0].Start, out[0].End)
}

func TestRun_LatestPredecessorWins(t *testing.T) {
	tasks := []*task.Task{
		{ID: "short", EstimatedDuration: 1, Start: d(time.January, 1)},
		{ID: "long", EstimatedDuration: 10, Start: d(time.January, 1)},
		{ID: "join", EstimatedDuration: 1, Dependencies: []string{"short", "long"}, Start: d(time.December, 1)},
	}
	out, err := newEngine().Run(tasks)
	require.NoError(t, err)
	join := byID(out)["join"]
	assert.Equal(t, d(time.January, 11), join.Start, "own start is ignored when there are dependencies")
}

func TestRun_Cycle(t *testing.T) {
	tests := []struct {
		name  string
		tasks []*task.Task
		path  []string
	}{
		{"self", []*task.Task{node("A", "A")}, []string{"A", "A"}},
		{"three", []*task.Task{node("A", "B"), node("B", "C"), node("C", "A")}, []string{"A", "B", "C", "A"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := newEngine().Run(tt.tasks)
			assert.Nil(t, out)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCycle))

			var cycErr *CycleError
			require.ErrorAs(t, err, &cycErr)
			assert.Equal(t, tt.path, cycErr.Path)
			assert.Contains(t, err.Error(), "A -> ")
		})
	}
}

func TestRun_DoesNotMutateInput(t *testing.T) {
	a := &task.Task{ID: "A", EstimatedDuration: 3, Start: d(time.January, 6), Dependencies: []string{"B", "B"}}
	b := &task.Task{ID: "B", EstimatedDuration: 1, Start: d(time.January, 1)}
	snapshotA, snapshotB := a.Clone(), b.Clone()

	out, err := newEngine(WithDefaultWorkdays(date.MondayToFriday())).Run([]*task.Task{a, b})
	require.NoError(t, err)

	assert.Equal(t, snapshotA, a)
	assert.Equal(t, snapshotB, b)
	for _, o := range out {
		assert.NotSame(t, a, o)
		assert.NotSame(t, b, o)
	}
	assert.Equal(t, []string{"B"}, byID(out)["A"].Dependencies, "duplicates removed in the copy")
}

func TestRun_DuplicateIDLaterWins(t *testing.T) {
	tasks := []*task.Task{
		{ID: "A", EstimatedDuration: 1, Start: d(time.January, 1)},
		{ID: "B", EstimatedDuration: 1, Start: d(time.January, 2)},
		{ID: "A", EstimatedDuration: 5, Start: d(time.January, 1)},
	}
	out, err := newEngine().Run(tasks)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "A", out[0].ID)
	assert.Equal(t, d(time.January, 5), out[0].End)
}

func TestRun_SkipsNil(t *testing.T) {
	out, err := newEngine().Run([]*task.Task{nil, {ID: "A", EstimatedDuration: 1, Start: d(time.May, 1)}})
	require.NoError(t, err)
	require.Len(t, out, 1)
}

// randomPlan builds an acyclic task set: each task may only depend on tasks
// created before it.
func randomPlan(r *rand.Rand, n int) []*task.Task {
	sets := []date.Weekdays{nil, date.AllWeekdays(), date.MondayToFriday(), {time.Tuesday, time.Saturday}, {}}
	tasks := make([]*task.Task, n)
	for i := range n {
		t := &task.Task{
			ID:                fmt.Sprintf("t%03d", i),
			EstimatedDuration: r.IntN(8),
			Start:             d(time.January, 1).AddDays(r.IntN(60)),
			WorkingDays:       sets[r.IntN(len(sets))],
		}
		if r.IntN(3) == 0 {
			t.ConstraintDate = d(time.January, 1).AddDays(r.IntN(90))
		}
		for range r.IntN(4) {
			if i == 0 {
				break
			}
			t.Dependencies = append(t.Dependencies, fmt.Sprintf("t%03d", r.IntN(i)))
		}
		if r.IntN(10) == 0 {
			t.Dependencies = append(t.Dependencies, "missing")
		}
		tasks[i] = t
	}
	// Shuffle so input order is not already topological.
	r.Shuffle(len(tasks), func(i, j int) { tasks[i], tasks[j] = tasks[j], tasks[i] })
	return tasks
}

func TestRun_Properties(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	defaults := date.MondayToFriday()
	eng := newEngine(WithDefaultWorkdays(defaults))

	for round := range 25 {
		tasks := randomPlan(r, 40)
		out, err := eng.Run(tasks)
		require.NoError(t, err, "round %d", round)
		require.Len(t, out, len(tasks))

		pos := make(map[string]int, len(out))
		for i, o := range out {
			pos[o.ID] = i
		}
		got := byID(out)
		for _, o := range out {
			w := o.WorkingDays.Or(defaults)
			assert.True(t, date.IsWorkingDay(o.Start, w), "start on working day: %s", o.ID)
			assert.True(t, date.IsWorkingDay(o.End, w), "end on working day: %s", o.ID)
			assert.False(t, o.End.Before(o.Start.Time))

			for _, dep := range o.Dependencies {
				p, ok := got[dep]
				if !ok {
					continue
				}
				assert.Less(t, pos[dep], pos[o.ID], "topological order")
				assert.True(t, o.Start.After(p.End.Time), "%s starts after %s ends", o.ID, dep)
			}
			if o.HasConstraint() {
				assert.False(t, o.Start.Before(o.ConstraintDate.Time))
			} else {
				assert.False(t, o.IsDelayedByDependencies)
			}
		}

		again, err := eng.Run(out)
		require.NoError(t, err)
		for i := range out {
			assert.Equal(t, out[i].Start, again[i].Start)
			assert.Equal(t, out[i].End, again[i].End)
			assert.Equal(t, out[i].IsDelayedByDependencies, again[i].IsDelayedByDependencies)
		}
	}
}

func TestRun_ConcurrentEngines(t *testing.T) {
	tasks := []*task.Task{{ID: "A", EstimatedDuration: 3, Start: d(time.January, 5)}}
	weekdays := newEngine(WithDefaultWorkdays(date.MondayToFriday()))
	everyDay := newEngine()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			out, err := weekdays.Run(tasks)
			assert.NoError(t, err)
			assert.Equal(t, d(time.January, 9), out[0].End)
		}()
		go func() {
			defer wg.Done()
			out, err := everyDay.Run(tasks)
			assert.NoError(t, err)
			assert.Equal(t, d(time.January, 7), out[0].End)
		}()
	}
	wg.Wait()
}
