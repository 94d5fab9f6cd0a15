package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/twiced-technology-gmbh/planwatch/internal/date"
	"github.com/twiced-technology-gmbh/planwatch/internal/task"
)

// normalizeTaskFlags maps singular and legacy flag spellings onto the
// canonical names used by create and edit.
func normalizeTaskFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "assignee":
		name = "assignees"
	case "description":
		name = "body"
	case "depends-on", "deps":
		name = "after"
	case "days":
		name = "duration"
	case "workdays":
		name = "working-days"
	}
	return pflag.NormalizedName(name)
}

// dateFlag parses a YYYY-MM-DD flag. ok is false when the flag was not given.
func dateFlag(cmd *cobra.Command, name string) (d date.Date, ok bool, err error) {
	if !cmd.Flags().Changed(name) {
		return date.Date{}, false, nil
	}
	v, _ := cmd.Flags().GetString(name)
	d, err = date.Parse(strings.TrimSpace(v))
	if err != nil {
		return date.Date{}, false, task.ValidateDate(name, v, err)
	}
	return d, true, nil
}

// workingDaysFlag parses --working-days. ok is false when the flag was not
// given; "default" clears a task's own calendar.
func workingDaysFlag(cmd *cobra.Command) (w date.Weekdays, ok bool, err error) {
	if !cmd.Flags().Changed("working-days") {
		return nil, false, nil
	}
	v, _ := cmd.Flags().GetString("working-days")
	if strings.EqualFold(strings.TrimSpace(v), "default") {
		return nil, true, nil
	}
	w, err = date.ParseWeekdays(v)
	if err != nil {
		return nil, false, task.ValidateWorkingDays(v, err)
	}
	return w, true, nil
}

// constraintTypeFlag returns the upper-cased --constraint-type value.
func constraintTypeFlag(cmd *cobra.Command) (string, error) {
	v, _ := cmd.Flags().GetString("constraint-type")
	if v == "" {
		return "", nil
	}
	if err := task.ValidateConstraintType(v); err != nil {
		return "", err
	}
	return strings.ToUpper(v), nil
}
