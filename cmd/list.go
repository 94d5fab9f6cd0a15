package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/planwatch/internal/output"
	"github.com/twiced-technology-gmbh/planwatch/internal/project"
	"github.com/twiced-technology-gmbh/planwatch/internal/task"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long:    `Lists tasks with optional filtering, sorting, and output format control.`,
	RunE:    runList,
}

func init() {
	listCmd.Flags().StringSlice("status", nil, "filter by status (comma-separated)")
	listCmd.Flags().StringSlice("exclude-status", nil, "hide statuses (comma-separated)")
	listCmd.Flags().String("assignee", "", "filter by assignee")
	listCmd.Flags().StringP("search", "s", "", "search tasks by title or body (case-insensitive)")
	listCmd.Flags().Bool("delayed", false, "show only tasks pushed past their constraint by dependencies")
	listCmd.Flags().Bool("not-delayed", false, "show only tasks not delayed by dependencies")
	listCmd.Flags().Bool("completed", false, "show only completed tasks")
	listCmd.Flags().Bool("open", false, "show only tasks that are not completed")
	listCmd.Flags().String("sort", project.SortStart, "sort field ("+strings.Join(project.SortFields, ", ")+")")
	listCmd.Flags().BoolP("reverse", "r", false, "reverse sort order")
	listCmd.Flags().IntP("limit", "n", 0, "limit number of results")
	listCmd.Flags().String("group-by", "", "group results by field ("+strings.Join(project.GroupFields, ", ")+")")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	groupBy, _ := cmd.Flags().GetString("group-by")
	if err := project.ValidateGroupField(groupBy); err != nil {
		return err
	}

	svc, closeFn, err := openProject()
	if err != nil {
		return err
	}
	defer closeFn()

	statuses, _ := cmd.Flags().GetStringSlice("status")
	exclude, _ := cmd.Flags().GetStringSlice("exclude-status")
	assignee, _ := cmd.Flags().GetString("assignee")
	search, _ := cmd.Flags().GetString("search")
	sortBy, _ := cmd.Flags().GetString("sort")
	reverse, _ := cmd.Flags().GetBool("reverse")
	limit, _ := cmd.Flags().GetInt("limit")

	filter := project.FilterOptions{
		Statuses:        statuses,
		ExcludeStatuses: exclude,
		Assignee:        assignee,
		Search:          search,
		Delayed:         boolFilter(cmd, "delayed", "not-delayed"),
		Completed:       boolFilter(cmd, "completed", "open"),
	}

	tasks, warnings, err := svc.List(cmd.Context(), project.ListOptions{
		Filter:  filter,
		SortBy:  sortBy,
		Reverse: reverse,
		Limit:   limit,
	})
	if err != nil {
		return err
	}
	printWarnings(warnings)

	if groupBy != "" {
		return outputGroupedList(project.GroupBy(tasks, groupBy, svc.Config()))
	}
	return outputTaskList(tasks)
}

// boolFilter turns a pair of opposing flags into a tri-state filter.
func boolFilter(cmd *cobra.Command, yes, no string) *bool {
	if v, _ := cmd.Flags().GetBool(yes); v {
		return &v
	}
	if v, _ := cmd.Flags().GetBool(no); v {
		f := false
		return &f
	}
	return nil
}

func outputGroupedList(grouped project.GroupedSummary) error {
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(os.Stdout, grouped)
	case output.FormatCompact:
		output.GroupedCompact(os.Stdout, grouped)
	default:
		output.GroupedTable(os.Stdout, grouped)
	}
	return nil
}

func outputTaskList(tasks []*task.Task) error {
	format := outputFormat()
	if format == output.FormatJSON {
		if tasks == nil {
			tasks = []*task.Task{}
		}
		return output.JSON(os.Stdout, tasks)
	}
	if format == output.FormatCompact {
		output.TaskCompact(os.Stdout, tasks)
		return nil
	}

	output.TaskTable(os.Stdout, tasks)
	return nil
}
