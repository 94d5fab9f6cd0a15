package project

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/planwatch/internal/clierr"
	"github.com/twiced-technology-gmbh/planwatch/internal/config"
	"github.com/twiced-technology-gmbh/planwatch/internal/task"
)

func TestGroupBy_Assignee(t *testing.T) {
	cfg := config.NewDefault("test")
	tasks := []*task.Task{
		{ID: "a", Status: "todo", Assignees: []string{"bob", "alice"}, Start: day(time.January, 8), End: day(time.January, 9)},
		{ID: "b", Status: "done", Assignees: []string{"alice"}, Start: day(time.January, 10), End: day(time.January, 12)},
		{ID: "c", Status: "todo", Start: day(time.January, 1), End: day(time.January, 2), IsDelayedByDependencies: true},
	}

	gs := GroupBy(tasks, GroupAssignee, cfg)
	require.Len(t, gs.Groups, 3)

	keys := make([]string, len(gs.Groups))
	for i, g := range gs.Groups {
		keys[i] = g.Key
	}
	assert.Equal(t, []string{"alice", "bob", "(unassigned)"}, keys)

	alice := gs.Groups[0]
	assert.Equal(t, 2, alice.Total)
	assert.Equal(t, day(time.January, 8), alice.Start)
	assert.Equal(t, day(time.January, 12), alice.End)
	assert.Equal(t, []StatusSummary{
		{Status: "todo", Count: 1, Pinned: true},
		{Status: "in-progress", Count: 0, Pinned: true},
		{Status: "done", Count: 1},
	}, alice.Statuses)

	assert.Equal(t, 1, gs.Groups[2].Statuses[0].Delayed)
}

func TestGroupBy_StatusOrder(t *testing.T) {
	cfg := config.NewDefault("test")
	tasks := []*task.Task{
		{ID: "a", Status: "done"},
		{ID: "b", Status: "todo"},
		{ID: "c", Status: "in-progress"},
	}

	gs := GroupBy(tasks, GroupStatus, cfg)
	require.Len(t, gs.Groups, 3)
	assert.Equal(t, "todo", gs.Groups[0].Key)
	assert.Equal(t, "in-progress", gs.Groups[1].Key)
	assert.Equal(t, "done", gs.Groups[2].Key)
}

func TestValidateGroupField(t *testing.T) {
	require.NoError(t, ValidateGroupField(""))
	require.NoError(t, ValidateGroupField(GroupAssignee))
	assert.Equal(t, clierr.InvalidInput, errCode(t, ValidateGroupField("tag")))
}
