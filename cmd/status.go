package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/planwatch/internal/output"
	"github.com/twiced-technology-gmbh/planwatch/internal/project"
)

var statusCmd = &cobra.Command{
	Use:     "status ID[,ID,...] STATUS",
	Aliases: []string{"move", "mv"},
	Short:   "Change a task's status",
	Long: `Moves one or more tasks to a status. Moving a task to the done status
completes it: its end is set to today and its duration shrinks to the
working days actually spent. Leaving the done status restores the estimate.`,
	Args: cobra.ExactArgs(2), //nolint:mnd // ids and status
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatusChange(args[0], func(svc *project.Service, ref string) (*project.Result, error) {
			return svc.SetStatus(cmd.Context(), ref, args[1])
		})
	},
}

var doneCmd = &cobra.Command{
	Use:   "done ID[,ID,...]",
	Short: "Mark tasks as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatusChange(args[0], func(svc *project.Service, ref string) (*project.Result, error) {
			return svc.Complete(cmd.Context(), ref)
		})
	},
}

var reopenCmd = &cobra.Command{
	Use:   "reopen ID[,ID,...]",
	Short: "Move completed tasks back to the default status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatusChange(args[0], func(svc *project.Service, ref string) (*project.Result, error) {
			return svc.Reopen(cmd.Context(), ref)
		})
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(doneCmd)
	rootCmd.AddCommand(reopenCmd)
}

type statusFunc func(svc *project.Service, ref string) (*project.Result, error)

func runStatusChange(arg string, fn statusFunc) error {
	refs, err := parseRefs(arg)
	if err != nil {
		return err
	}

	svc, closeFn, err := openProject()
	if err != nil {
		return err
	}
	defer closeFn()

	if len(refs) > 1 {
		return runBatch(refs, func(ref string) error {
			_, err := fn(svc, ref)
			return err
		})
	}

	res, err := fn(svc, refs[0])
	if err != nil {
		return err
	}
	printWarnings(res.Warnings)

	t := res.Find(refs[0])
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, t)
	}

	output.Messagef(os.Stdout, "Moved task %s to %s: %s (%s .. %s)",
		t.ShortID(), t.Status, t.Title, t.Start, t.End)
	reportSchedule(res, t.ID)
	return nil
}
