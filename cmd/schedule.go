package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/planwatch/internal/output"
)

var scheduleCmd = &cobra.Command{
	Use:     "schedule",
	Aliases: []string{"recompute"},
	Short:   "Recompute every task's dates",
	Long: `Reschedules the whole project from its dependencies, constraints and
working-day calendars, and writes tasks whose dates changed. Use this after
editing task files by hand. --dry-run only reports what would move.`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	scheduleCmd.Flags().Bool("dry-run", false, "report changes without writing them")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	svc, closeFn, err := openProject()
	if err != nil {
		return err
	}
	defer closeFn()

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	res, err := svc.Recompute(cmd.Context(), dryRun)
	if err != nil {
		return err
	}
	printWarnings(res.Warnings)

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, map[string]any{
			"dry_run": dryRun,
			"changed": res.Changed,
		})
	case output.FormatCompact:
		output.TaskCompact(os.Stdout, res.Changed)
		return nil
	}

	if len(res.Changed) == 0 {
		output.Messagef(os.Stdout, "Schedule is up to date (%d tasks)", len(res.Tasks))
		return nil
	}
	verb := "Rescheduled"
	if dryRun {
		verb = "Would reschedule"
	}
	output.Messagef(os.Stdout, "%s %d of %d tasks:", verb, len(res.Changed), len(res.Tasks))
	output.TaskTable(os.Stdout, res.Changed)
	return nil
}
