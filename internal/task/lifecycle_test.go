package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/planwatch/internal/date"
)

func TestMarkComplete_AfterStart(t *testing.T) {
	tk := &Task{
		EstimatedDuration: 10,
		Start:             date.New(2024, time.January, 1),
		End:               date.New(2024, time.January, 12),
	}
	today := date.New(2024, time.January, 3)

	MarkComplete(tk, today, date.MondayToFriday())

	assert.True(t, tk.Completed)
	assert.Equal(t, today, tk.End)
	assert.Equal(t, 3, tk.EstimatedDuration)
	assert.Equal(t, date.New(2024, time.January, 12), tk.OriginalEnd)
	require.NotNil(t, tk.OriginalDuration)
	assert.Equal(t, 10, *tk.OriginalDuration)
}

func TestMarkComplete_BeforeStart(t *testing.T) {
	tk := &Task{
		EstimatedDuration: 2,
		Start:             date.New(2024, time.March, 4),
		End:               date.New(2024, time.March, 5),
	}
	MarkComplete(tk, date.New(2024, time.March, 1), date.AllWeekdays())

	assert.True(t, tk.Completed)
	assert.Equal(t, date.New(2024, time.March, 5), tk.End, "future task keeps its plan")
	assert.Equal(t, 2, tk.EstimatedDuration)
}

func TestReopen_RestoresPlan(t *testing.T) {
	tk := &Task{
		EstimatedDuration: 10,
		Start:             date.New(2024, time.January, 1),
		End:               date.New(2024, time.January, 12),
	}
	MarkComplete(tk, date.New(2024, time.January, 3), date.MondayToFriday())
	MarkComplete(tk, date.New(2024, time.January, 9), date.MondayToFriday())
	assert.Equal(t, 3, tk.EstimatedDuration, "second completion is a no-op")

	Reopen(tk)

	assert.False(t, tk.Completed)
	assert.Equal(t, date.New(2024, time.January, 12), tk.End)
	assert.Equal(t, 10, tk.EstimatedDuration)
	assert.True(t, tk.OriginalEnd.IsZero())
	assert.Nil(t, tk.OriginalDuration)
}

func TestReopen_WithoutBookkeeping(t *testing.T) {
	tk := &Task{Completed: true, EstimatedDuration: 5, End: date.New(2024, time.May, 5)}
	Reopen(tk)
	assert.False(t, tk.Completed)
	assert.Equal(t, 5, tk.EstimatedDuration)
	assert.Equal(t, date.New(2024, time.May, 5), tk.End)
}

func TestStripDependency(t *testing.T) {
	a := &Task{ID: "a"}
	b := &Task{ID: "b", Dependencies: []string{"a", "c", "a"}}
	c := &Task{ID: "c", Dependencies: []string{"b"}}

	assert.Equal(t, []*Task{b}, Dependents([]*Task{a, b, c}, "a"))

	changed := StripDependency([]*Task{a, b, c}, "a")

	assert.Equal(t, []*Task{b}, changed)
	assert.Equal(t, []string{"c"}, b.Dependencies)
	assert.Equal(t, []string{"b"}, c.Dependencies)
}
