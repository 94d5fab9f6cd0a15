package cmd

import (
	"context"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/planwatch/internal/clierr"
	"github.com/twiced-technology-gmbh/planwatch/internal/date"
	"github.com/twiced-technology-gmbh/planwatch/internal/output"
	"github.com/twiced-technology-gmbh/planwatch/internal/project"
	"github.com/twiced-technology-gmbh/planwatch/internal/task"
)

var editCmd = &cobra.Command{
	Use:   "edit ID[,ID,...]",
	Short: "Edit a task",
	Long: `Modifies fields of an existing task and reschedules the project.
Only specified fields are changed; use 'planwatch status' to move a task. Multiple IDs can be provided as a
comma-separated list.

--end sets the duration to the working days between the start and the given
date. Changing --working-days keeps the duration and moves the end instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	addEditFlags(editCmd)
	rootCmd.AddCommand(editCmd)
}

func addEditFlags(c *cobra.Command) {
	f := c.Flags()
	f.String("title", "", "new title")
	f.StringSlice("assignees", nil, "replace assignees")
	f.IntP("duration", "d", 0, "new duration in working days")
	f.String("start", "", "new start date (YYYY-MM-DD)")
	f.String("end", "", "new end date; recomputes the duration (YYYY-MM-DD)")
	f.String("constraint-date", "", "set the start-no-earlier-than date (YYYY-MM-DD)")
	f.String("constraint-type", "", "set the constraint type ("+strings.Join(task.ConstraintTypes, ", ")+")")
	f.Bool("clear-constraint", false, "remove the constraint date")
	f.StringSlice("add-dep", nil, "add dependency task IDs")
	f.StringSlice("remove-dep", nil, "remove dependency task IDs")
	f.Bool("clear-deps", false, "remove all dependencies")
	f.String("working-days", "", "task calendar, e.g. mon-fri; \"default\" uses the project calendar")
	f.String("body", "", "new body text (replaces entire body)")
	f.StringP("append-body", "a", "", "append text to task body")
	f.BoolP("timestamp", "t", false, "prefix a timestamp line when appending")
	f.SetNormalizeFunc(normalizeTaskFlags)
}

func runEdit(cmd *cobra.Command, args []string) error {
	refs, err := parseRefs(args[0])
	if err != nil {
		return err
	}

	svc, closeFn, err := openProject()
	if err != nil {
		return err
	}
	defer closeFn()

	// Single ID: full output.
	if len(refs) == 1 {
		return editSingleTask(cmd, svc, refs[0])
	}

	return runBatch(refs, func(ref string) error {
		_, _, err := executeEdit(cmd, svc, ref)
		return err
	})
}

// editSingleTask handles a single task edit with full output.
func editSingleTask(cmd *cobra.Command, svc *project.Service, ref string) error {
	t, res, err := executeEdit(cmd, svc, ref)
	if err != nil {
		return err
	}
	printWarnings(res.Warnings)

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, res.Find(t.ID))
	}

	updated := res.Find(t.ID)
	output.Messagef(os.Stdout, "Updated task %s: %s (%s .. %s)",
		updated.ShortID(), updated.Title, updated.Start, updated.End)
	reportSchedule(res, t.ID)
	return nil
}

// executeEdit performs the core edit: resolve, apply, save.
func executeEdit(cmd *cobra.Command, svc *project.Service, ref string) (*task.Task, *project.Result, error) {
	ctx := cmd.Context()
	t, err := svc.Get(ctx, ref)
	if err != nil {
		return nil, nil, err
	}

	changed, err := applyEditFlags(ctx, cmd, svc, t)
	if err != nil {
		return nil, nil, err
	}
	if !changed {
		return nil, nil, clierr.New(clierr.NoChanges, "no changes specified")
	}

	res, err := svc.Save(ctx, t)
	if err != nil {
		return nil, nil, err
	}
	return t, res, nil
}

func applyEditFlags(ctx context.Context, cmd *cobra.Command, svc *project.Service, t *task.Task) (bool, error) {
	changed, err := applySimpleEditFlags(cmd, t)
	if err != nil {
		return false, err
	}

	// Dependencies first: the start policy depends on whether any remain.
	for _, fn := range []func() (bool, error){
		func() (bool, error) { return applyDepFlags(ctx, cmd, svc, t) },
		func() (bool, error) { return applyCalendarFlags(cmd, svc, t) },
		func() (bool, error) { return applyConstraintFlags(cmd, t) },
	} {
		c, fnErr := fn()
		if fnErr != nil {
			return false, fnErr
		}
		if c {
			changed = true
		}
	}
	return changed, nil
}

func applySimpleEditFlags(cmd *cobra.Command, t *task.Task) (bool, error) {
	changed := false

	if v, _ := cmd.Flags().GetString("title"); v != "" {
		t.Title = v
		changed = true
	}
	if cmd.Flags().Changed("assignees") {
		v, _ := cmd.Flags().GetStringSlice("assignees")
		t.Assignees = v
		changed = true
	}
	bodySet := cmd.Flags().Changed("body")
	appendSet := cmd.Flags().Changed("append-body")
	if bodySet && appendSet {
		return false, clierr.New(clierr.StatusConflict, "cannot use --body and --append-body together")
	}
	if bodySet {
		v, _ := cmd.Flags().GetString("body")
		t.Body = v
		changed = true
	}
	if appendSet {
		v, _ := cmd.Flags().GetString("append-body")
		ts, _ := cmd.Flags().GetBool("timestamp")
		t.Body = appendBody(t.Body, v, ts, time.Now())
		changed = true
	}
	return changed, nil
}

func applyDepFlags(ctx context.Context, cmd *cobra.Command, svc *project.Service, t *task.Task) (bool, error) {
	changed := false

	clearDeps, _ := cmd.Flags().GetBool("clear-deps")
	add, _ := cmd.Flags().GetStringSlice("add-dep")
	if clearDeps && len(add) > 0 {
		return false, clierr.New(clierr.StatusConflict, "cannot use --add-dep and --clear-deps together")
	}
	if clearDeps && len(t.Dependencies) > 0 {
		t.Dependencies = nil
		changed = true
	}
	if len(add) > 0 {
		ids, err := resolveDeps(ctx, svc, add)
		if err != nil {
			return false, err
		}
		if slices.Contains(ids, t.ID) {
			return false, task.ValidateSelfReference(t.ID)
		}
		t.Dependencies = appendUnique(t.Dependencies, ids...)
		changed = true
	}
	if remove, _ := cmd.Flags().GetStringSlice("remove-dep"); len(remove) > 0 {
		deps := make([]*task.Task, len(t.Dependencies))
		for i, id := range t.Dependencies {
			deps[i] = &task.Task{ID: id}
		}
		ids, err := task.ResolveIDs(deps, remove)
		if err != nil {
			return false, err
		}
		t.Dependencies = removeAll(t.Dependencies, ids...)
		changed = true
	}
	return changed, nil
}

// applyCalendarFlags handles --working-days, --duration, --start and --end,
// in that order, so --end measures against the final start and calendar.
func applyCalendarFlags(cmd *cobra.Command, svc *project.Service, t *task.Task) (bool, error) {
	changed := false

	w, ok, err := workingDaysFlag(cmd)
	if err != nil {
		return false, err
	}
	if ok {
		t.WorkingDays = w
		changed = true
	}

	if cmd.Flags().Changed("duration") && cmd.Flags().Changed("end") {
		return false, clierr.New(clierr.StatusConflict, "cannot use --duration and --end together")
	}
	if cmd.Flags().Changed("duration") {
		v, _ := cmd.Flags().GetInt("duration")
		if err := task.ValidateDuration(v); err != nil {
			return false, err
		}
		t.EstimatedDuration = v
		changed = true
	}

	start, ok, err := dateFlag(cmd, "start")
	if err != nil {
		return false, err
	}
	if ok {
		t.Start = start
		// A task without dependencies is held at its start by the constraint.
		if len(t.Dependencies) == 0 || t.HasConstraint() {
			t.ConstraintDate = start
			if t.ConstraintType == "" {
				t.ConstraintType = task.ConstraintSNET
			}
		}
		changed = true
	}

	end, ok, err := dateFlag(cmd, "end")
	if err != nil {
		return false, err
	}
	if ok {
		if end.Before(t.Start.Time) {
			return false, clierr.Newf(clierr.InvalidDate, "end %s is before start %s", end, t.Start).
				WithDetails(map[string]any{"field": "end", "input": end.String(), "start": t.Start.String()})
		}
		t.EstimatedDuration = date.WorkingDaysBetween(t.Start, end, t.WorkingDays.Or(svc.Config().Workdays()))
		changed = true
	}
	return changed, nil
}

func applyConstraintFlags(cmd *cobra.Command, t *task.Task) (bool, error) {
	changed := false

	clearSet, _ := cmd.Flags().GetBool("clear-constraint")
	if clearSet && cmd.Flags().Changed("constraint-date") {
		return false, clierr.New(clierr.StatusConflict, "cannot use --constraint-date and --clear-constraint together")
	}

	d, ok, err := dateFlag(cmd, "constraint-date")
	if err != nil {
		return false, err
	}
	if ok {
		t.ConstraintDate = d
		if t.ConstraintType == "" {
			t.ConstraintType = task.ConstraintSNET
		}
		changed = true
	}

	ct, err := constraintTypeFlag(cmd)
	if err != nil {
		return false, err
	}
	if ct != "" {
		t.ConstraintType = ct
		changed = true
	}

	if clearSet {
		t.ConstraintDate = date.Date{}
		t.ConstraintType = ""
		changed = true
	}
	return changed, nil
}

func appendUnique(slice []string, items ...string) []string {
	for _, item := range items {
		if !slices.Contains(slice, item) {
			slice = append(slice, item)
		}
	}
	return slice
}

func removeAll(slice []string, items ...string) []string {
	return slices.DeleteFunc(slice, func(s string) bool { return slices.Contains(items, s) })
}

// appendBody appends text to the existing body, optionally prefixed with a timestamp line.
func appendBody(existing, text string, addTimestamp bool, now time.Time) string {
	var b strings.Builder

	if existing != "" {
		b.WriteString(strings.TrimRight(existing, "\n"))
		b.WriteString("\n\n")
	}

	if addTimestamp {
		b.WriteString(now.Format("[[2006-01-02]] Mon 15:04"))
		b.WriteByte('\n')
	}

	b.WriteString(text)

	return b.String()
}
