package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/twiced-technology-gmbh/planwatch/internal/clierr"
	"github.com/twiced-technology-gmbh/planwatch/internal/output"
	"github.com/twiced-technology-gmbh/planwatch/internal/project"
	"github.com/twiced-technology-gmbh/planwatch/internal/task"
)

var deleteCmd = &cobra.Command{
	Use:     "delete ID[,ID,...]",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long: `Removes a task, drops it from the dependency lists of other tasks and
reschedules the project. Prompts for confirmation in interactive mode.
Multiple IDs can be provided as a comma-separated list (requires --yes).`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolP("yes", "y", false, "skip confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	refs, err := parseRefs(args[0])
	if err != nil {
		return err
	}

	yes, _ := cmd.Flags().GetBool("yes")

	// Batch mode requires --yes.
	if len(refs) > 1 && !yes {
		return clierr.New(clierr.ConfirmationReq, "batch delete requires --yes")
	}

	svc, closeFn, err := openProject()
	if err != nil {
		return err
	}
	defer closeFn()

	if len(refs) == 1 {
		return deleteSingleTask(cmd.Context(), svc, refs[0], yes)
	}

	// Batch mode (yes is guaranteed true here).
	return runBatch(refs, func(ref string) error {
		t, err := svc.Get(cmd.Context(), ref)
		if err != nil {
			return err
		}
		warnDependents(cmd.Context(), svc, t)
		_, err = svc.Delete(cmd.Context(), t.ID)
		return err
	})
}

// deleteSingleTask handles a single task delete with confirmation and output.
func deleteSingleTask(ctx context.Context, svc *project.Service, ref string, yes bool) error {
	t, err := svc.Get(ctx, ref)
	if err != nil {
		return err
	}

	// Warn if other tasks wait on this one.
	warnDependents(ctx, svc, t)

	// Require confirmation in TTY mode unless --yes.
	if !yes {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return clierr.New(clierr.ConfirmationReq,
				"cannot prompt for confirmation (not a terminal); use --yes")
		}
		fmt.Fprintf(os.Stderr, "Delete task %s %q? [y/N] ", t.ShortID(), t.Title)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		answer = strings.TrimSpace(strings.ToLower(answer))
		if answer != "y" && answer != "yes" {
			fmt.Fprintln(os.Stderr, "Canceled.")
			return nil
		}
	}

	res, err := svc.Delete(ctx, t.ID)
	if err != nil {
		return err
	}
	printWarnings(res.Warnings)

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{
			"status":  "deleted",
			"id":      t.ID,
			"title":   t.Title,
			"changed": res.Changed,
		})
	}

	output.Messagef(os.Stdout, "Deleted task %s: %s", t.ShortID(), t.Title)
	reportSchedule(res, t.ID)
	return nil
}

func warnDependents(ctx context.Context, svc *project.Service, t *task.Task) {
	tasks, _, err := svc.Load(ctx)
	if err != nil {
		return
	}
	for _, d := range task.Dependents(tasks, t.ID) {
		fmt.Fprintf(os.Stderr, "Warning: task %s (%s) depends on %s; the dependency will be removed\n",
			d.ShortID(), d.Title, t.ShortID())
	}
}
