package cmd

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twiced-technology-gmbh/planwatch/internal/clierr"
	"github.com/twiced-technology-gmbh/planwatch/internal/config"
	"github.com/twiced-technology-gmbh/planwatch/internal/date"
	"github.com/twiced-technology-gmbh/planwatch/internal/project"
	"github.com/twiced-technology-gmbh/planwatch/internal/store"
	"github.com/twiced-technology-gmbh/planwatch/internal/task"
)

func jan(d int) date.Date { return date.New(2024, time.January, d) }

// testService opens a files-backed project on a Monday-to-Friday calendar
// whose clock reads Wednesday 2024-01-10.
func testService(t *testing.T) *project.Service {
	t.Helper()
	cfg, err := config.Init(filepath.Join(t.TempDir(), config.DefaultDir), "test")
	require.NoError(t, err)
	cfg.WorkingDays = date.MondayToFriday()

	st, err := store.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	now := time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)
	return project.New(cfg, st, project.WithClock(func() time.Time { return now }))
}

func parsed(t *testing.T, add func(*cobra.Command), args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	add(c)
	require.NoError(t, c.Flags().Parse(args))
	return c
}

func TestApplyCreateFlags_ConstraintPolicy(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()
	res, err := svc.Save(ctx, svc.NewTask("Foundation"))
	require.NoError(t, err)
	dep := res.Tasks[0]

	tests := []struct {
		name     string
		args     []string
		wantDeps []string
		wantDate date.Date
		wantType string
	}{
		{
			name:     "no deps pins today",
			wantDate: jan(10),
			wantType: task.ConstraintSNET,
		},
		{
			name:     "no deps pins start",
			args:     []string{"--start", "2024-01-15"},
			wantDate: jan(15),
			wantType: task.ConstraintSNET,
		},
		{
			name:     "deps leave the start free",
			args:     []string{"--start", "2024-01-15", "--after", dep.ShortID()},
			wantDeps: []string{dep.ID},
		},
		{
			name:     "deps with pin",
			args:     []string{"--start", "2024-01-20", "--after", dep.ID, "--pin"},
			wantDeps: []string{dep.ID},
			wantDate: jan(20),
			wantType: task.ConstraintSNET,
		},
		{
			name:     "deps with constraint type",
			args:     []string{"--start", "2024-01-22", "--depends-on", dep.ID, "--constraint-type", "MSO"},
			wantDeps: []string{dep.ID},
			wantDate: jan(22),
			wantType: task.ConstraintMSO,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := parsed(t, addCreateFlags, tt.args...)
			tk := svc.NewTask("New")
			require.NoError(t, applyCreateFlags(ctx, c, svc, tk))

			assert.Equal(t, tt.wantDeps, tk.Dependencies)
			assert.Equal(t, tt.wantDate, tk.ConstraintDate)
			assert.Equal(t, tt.wantType, tk.ConstraintType)
		})
	}
}

func TestApplyCreateFlags_UnknownDependency(t *testing.T) {
	svc := testService(t)
	c := parsed(t, addCreateFlags, "--after", "ffffffff")
	err := applyCreateFlags(context.Background(), c, svc, svc.NewTask("New"))
	assert.Equal(t, clierr.DependencyNotFound, errCode(t, err))
}

func TestApplyCalendarFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		task     task.Task
		wantDur  int
		wantFrom date.Date
		wantDate date.Date
		wantType string
	}{
		{
			name:     "end within the week",
			args:     []string{"--end", "2024-01-12"},
			task:     task.Task{Start: jan(8), EstimatedDuration: 2},
			wantDur:  5,
			wantFrom: jan(8),
		},
		{
			name:     "end skips the weekend",
			args:     []string{"--end", "2024-01-16"},
			task:     task.Task{Start: jan(8), EstimatedDuration: 2},
			wantDur:  7,
			wantFrom: jan(8),
		},
		{
			name:     "end uses the task calendar",
			args:     []string{"--end", "2024-01-14"},
			task:     task.Task{Start: jan(8), EstimatedDuration: 2, WorkingDays: date.AllWeekdays()},
			wantDur:  7,
			wantFrom: jan(8),
		},
		{
			name:     "end measured from the new start",
			args:     []string{"--end", "2024-01-19", "--start", "2024-01-15"},
			task:     task.Task{Start: jan(8), EstimatedDuration: 2},
			wantDur:  5,
			wantFrom: jan(15),
			wantDate: jan(15),
			wantType: task.ConstraintSNET,
		},
		{
			name:     "start with deps and no constraint stays unpinned",
			args:     []string{"--start", "2024-01-15"},
			task:     task.Task{Start: jan(8), EstimatedDuration: 2, Dependencies: []string{"dep"}},
			wantDur:  2,
			wantFrom: jan(15),
		},
		{
			name: "start with deps moves an existing constraint",
			args: []string{"--start", "2024-01-15"},
			task: task.Task{
				Start: jan(8), EstimatedDuration: 2, Dependencies: []string{"dep"},
				ConstraintDate: jan(1), ConstraintType: task.ConstraintMSO,
			},
			wantDur:  2,
			wantFrom: jan(15),
			wantDate: jan(15),
			wantType: task.ConstraintMSO,
		},
	}

	svc := testService(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := parsed(t, addEditFlags, tt.args...)
			tk := tt.task
			changed, err := applyCalendarFlags(c, svc, &tk)
			require.NoError(t, err)
			assert.True(t, changed)

			assert.Equal(t, tt.wantDur, tk.EstimatedDuration)
			assert.Equal(t, tt.wantFrom, tk.Start)
			assert.Equal(t, tt.wantDate, tk.ConstraintDate)
			assert.Equal(t, tt.wantType, tk.ConstraintType)
		})
	}
}

func TestApplyCalendarFlags_Errors(t *testing.T) {
	svc := testService(t)

	tk := &task.Task{Start: jan(8), EstimatedDuration: 2}
	_, err := applyCalendarFlags(parsed(t, addEditFlags, "--end", "2024-01-05"), svc, tk)
	assert.Equal(t, clierr.InvalidDate, errCode(t, err))
	assert.Equal(t, 2, tk.EstimatedDuration)

	_, err = applyCalendarFlags(parsed(t, addEditFlags, "--duration", "3", "--end", "2024-01-12"), svc, tk)
	assert.Equal(t, clierr.StatusConflict, errCode(t, err))

	changed, err := applyCalendarFlags(parsed(t, addEditFlags, "--title", "x"), svc, tk)
	require.NoError(t, err)
	assert.False(t, changed)
}
