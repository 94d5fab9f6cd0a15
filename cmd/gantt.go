package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/planwatch/internal/output"
	"github.com/twiced-technology-gmbh/planwatch/internal/project"
	"github.com/twiced-technology-gmbh/planwatch/internal/task"
)

var ganttCmd = &cobra.Command{
	Use:     "gantt",
	Aliases: []string{"chart"},
	Short:   "Print the schedule as a Gantt chart",
	Long: `Prints one bar per task, ordered by start date. Non-working days inside a
bar are drawn dimmed, today is marked, and tasks delayed by their
dependencies are flagged with "!".

Use --watch to redraw whenever tasks change.`,
	Args: cobra.NoArgs,
	RunE: runGantt,
}

func init() {
	ganttCmd.Flags().StringSlice("status", nil, "only chart these statuses (comma-separated)")
	ganttCmd.Flags().String("assignee", "", "only chart tasks of this assignee")
	ganttCmd.Flags().Bool("open", false, "hide completed tasks")
	ganttCmd.Flags().Int("day-width", 0, "columns per day (default from config)")
	ganttCmd.Flags().BoolP("watch", "w", false, "redraw the chart on changes")
	rootCmd.AddCommand(ganttCmd)
}

func runGantt(cmd *cobra.Command, _ []string) error {
	watch, _ := cmd.Flags().GetBool("watch")
	return renderAndWatch(cmd.Context(), watch, func(ctx context.Context, svc *project.Service) error {
		return renderGantt(ctx, cmd, svc)
	})
}

func renderGantt(ctx context.Context, cmd *cobra.Command, svc *project.Service) error {
	statuses, _ := cmd.Flags().GetStringSlice("status")
	assignee, _ := cmd.Flags().GetString("assignee")
	filter := project.FilterOptions{Statuses: statuses, Assignee: assignee}
	if open, _ := cmd.Flags().GetBool("open"); open {
		f := false
		filter.Completed = &f
	}

	tasks, warnings, err := svc.List(ctx, project.ListOptions{Filter: filter, SortBy: project.SortStart})
	if err != nil {
		return err
	}
	printWarnings(warnings)

	win := output.ChartWindow(tasks)
	switch outputFormat() {
	case output.FormatJSON:
		if tasks == nil {
			tasks = []*task.Task{}
		}
		return output.JSON(os.Stdout, map[string]any{
			"from":  win.From,
			"days":  win.Days,
			"tasks": tasks,
		})
	case output.FormatCompact:
		output.TaskCompact(os.Stdout, tasks)
		return nil
	}

	dayWidth, _ := cmd.Flags().GetInt("day-width")
	if dayWidth <= 0 {
		dayWidth = svc.Config().DayWidth()
	}
	output.Gantt(os.Stdout, tasks, output.GanttOptions{
		DayWidth:   dayWidth,
		Workdays:   svc.Config().Workdays(),
		Today:      svc.Today(),
		LabelWidth: max(termWidth()/3, 16), //nolint:mnd // a third of the terminal, at least 16 columns
	})
	return nil
}
