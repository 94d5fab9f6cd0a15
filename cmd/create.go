package cmd

import (
	"context"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/planwatch/internal/clierr"
	"github.com/twiced-technology-gmbh/planwatch/internal/output"
	"github.com/twiced-technology-gmbh/planwatch/internal/project"
	"github.com/twiced-technology-gmbh/planwatch/internal/task"
)

var createCmd = &cobra.Command{
	Use:     "create [TITLE]",
	Aliases: []string{"add"},
	Short:   "Create a new task",
	Long: `Creates a new task and schedules it.

Title can be provided as a positional argument or via --title flag.
Without dependencies the start date (--start, default today) becomes a
start-no-earlier-than constraint. With --after the task starts when its
dependencies finish; add --pin to also keep it from starting before --start.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCreate,
}

func init() {
	addCreateFlags(createCmd)
	rootCmd.AddCommand(createCmd)
}

func addCreateFlags(c *cobra.Command) {
	f := c.Flags()
	f.String("title", "", "task title (alternative to positional argument)")
	f.String("status", "", "task status (default from config)")
	f.StringSlice("assignees", nil, "comma-separated assignees")
	f.IntP("duration", "d", 0, "estimated duration in working days (default from config)")
	f.String("start", "", "earliest start date (YYYY-MM-DD, default today)")
	f.StringSlice("after", nil, "dependency task IDs (comma-separated)")
	f.Bool("pin", false, "keep the --start date as a constraint even with dependencies")
	f.String("constraint-type", "", "constraint type ("+strings.Join(task.ConstraintTypes, ", ")+")")
	f.String("working-days", "", "task calendar, e.g. mon-fri or sat,sun (default: project calendar)")
	f.String("body", "", "task body/description (markdown)")
	f.SetNormalizeFunc(normalizeTaskFlags)
}

func runCreate(cmd *cobra.Command, args []string) error {
	title, err := resolveCreateTitle(cmd, args)
	if err != nil {
		return err
	}

	svc, closeFn, err := openProject()
	if err != nil {
		return err
	}
	defer closeFn()

	ctx := cmd.Context()
	t := svc.NewTask(title)
	if err := applyCreateFlags(ctx, cmd, svc, t); err != nil {
		return err
	}

	res, err := svc.Save(ctx, t)
	if err != nil {
		return err
	}
	printWarnings(res.Warnings)

	created := res.Find(t.ID)
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, created)
	}

	output.Messagef(os.Stdout, "Created task %s: %s", created.ShortID(), created.Title)
	output.Messagef(os.Stdout, "  Scheduled: %s .. %s (%d working day(s))",
		created.Start, created.End, created.EstimatedDuration)
	if created.IsDelayedByDependencies {
		output.Messagef(os.Stdout, "  Delayed: dependencies push the start past %s", created.ConstraintDate)
	}
	reportSchedule(res, t.ID)
	return nil
}

// resolveCreateTitle returns the task title from either the positional arg or --title flag.
func resolveCreateTitle(cmd *cobra.Command, args []string) (string, error) {
	flagTitle, _ := cmd.Flags().GetString("title")
	hasPositional := len(args) > 0
	hasFlag := flagTitle != ""

	switch {
	case hasPositional && hasFlag:
		return "", clierr.New(clierr.InvalidInput,
			"title provided both as argument and --title flag; use one or the other")
	case hasPositional:
		return args[0], nil
	case hasFlag:
		return flagTitle, nil
	default:
		return "", clierr.New(clierr.InvalidInput, "title is required: provide it as an argument or with --title")
	}
}

func applyCreateFlags(ctx context.Context, cmd *cobra.Command, svc *project.Service, t *task.Task) error {
	if v, _ := cmd.Flags().GetString("status"); v != "" {
		if err := task.ValidateStatus(v, svc.Config().StatusNames()); err != nil {
			return err
		}
		t.Status = v
	}
	if v, _ := cmd.Flags().GetStringSlice("assignees"); len(v) > 0 {
		t.Assignees = v
	}
	if cmd.Flags().Changed("duration") {
		v, _ := cmd.Flags().GetInt("duration")
		if err := task.ValidateDuration(v); err != nil {
			return err
		}
		t.EstimatedDuration = v
	}
	if v, _ := cmd.Flags().GetString("body"); v != "" {
		t.Body = v
	}

	w, ok, err := workingDaysFlag(cmd)
	if err != nil {
		return err
	}
	if ok {
		t.WorkingDays = w
	}

	start, ok, err := dateFlag(cmd, "start")
	if err != nil {
		return err
	}
	if ok {
		t.Start = start
	}

	if refs, _ := cmd.Flags().GetStringSlice("after"); len(refs) > 0 {
		deps, err := resolveDeps(ctx, svc, refs)
		if err != nil {
			return err
		}
		t.Dependencies = deps
	}

	ct, err := constraintTypeFlag(cmd)
	if err != nil {
		return err
	}
	pin, _ := cmd.Flags().GetBool("pin")
	if len(t.Dependencies) == 0 || pin || ct != "" {
		t.ConstraintDate = t.Start
		t.ConstraintType = task.ConstraintSNET
		if ct != "" {
			t.ConstraintType = ct
		}
	}
	return nil
}

// resolveDeps maps dependency references (ids or unique prefixes) to full ids.
func resolveDeps(ctx context.Context, svc *project.Service, refs []string) ([]string, error) {
	tasks, _, err := svc.Load(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		dep, err := task.ResolveID(tasks, ref)
		if err != nil {
			if clierr.CodeOf(err) == clierr.TaskNotFound {
				return nil, task.ValidateDependencyNotFound(ref)
			}
			return nil, err
		}
		if !slices.Contains(ids, dep.ID) {
			ids = append(ids, dep.ID)
		}
	}
	return ids, nil
}
