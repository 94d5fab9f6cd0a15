package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/planwatch/internal/output"
	"github.com/twiced-technology-gmbh/planwatch/internal/project"
)

var summaryCmd = &cobra.Command{
	Use:     "summary",
	Aliases: []string{"overview"},
	Short:   "Show a project overview",
	Long: `Shows task counts per status, completed and delayed totals, and the
calendar span from the earliest start to the latest end.

Use --watch to keep the display live-updating as tasks change.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func init() {
	summaryCmd.Flags().BoolP("watch", "w", false, "live-update the summary on changes")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	watch, _ := cmd.Flags().GetBool("watch")
	return renderAndWatch(cmd.Context(), watch, renderSummary)
}

func renderSummary(ctx context.Context, svc *project.Service) error {
	tasks, warnings, err := svc.Load(ctx)
	if err != nil {
		return err
	}
	printWarnings(warnings)

	summary := svc.Summary(tasks)

	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, summary)
	case output.FormatCompact:
		output.OverviewCompact(os.Stdout, summary)
	default:
		output.OverviewTable(os.Stdout, summary)
	}
	return nil
}
