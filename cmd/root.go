// Package cmd implements the planwatch CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/twiced-technology-gmbh/planwatch/internal/clierr"
	"github.com/twiced-technology-gmbh/planwatch/internal/config"
	"github.com/twiced-technology-gmbh/planwatch/internal/logging"
	"github.com/twiced-technology-gmbh/planwatch/internal/output"
	"github.com/twiced-technology-gmbh/planwatch/internal/project"
	"github.com/twiced-technology-gmbh/planwatch/internal/store"
	"github.com/twiced-technology-gmbh/planwatch/internal/task"
)

// version is set at build time via ldflags.
var version = "dev"

// Viper keys. Each can also be set as PLANWATCH_<KEY>.
const (
	keyDir      = "dir"
	keyOutput   = "output"
	keyLogLevel = "log_level"
)

// Global flags.
var (
	flagJSON    bool
	flagTable   bool
	flagCompact bool
	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   "planwatch",
	Short: "Terminal project planner with a live Gantt chart",
	Long: `planwatch schedules tasks with durations, dependencies and working-day
calendars, and shows the result as a table or a Gantt chart.
Just run planwatch to open the TUI.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE:          runTUI,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if output.ColorDisabled(flagNoColor) {
			output.DisableColor()
		}
	},
}

func init() {
	cobra.OnInitialize(initEnv)

	pf := rootCmd.PersistentFlags()
	pf.BoolVar(&flagJSON, "json", false, "output as JSON")
	pf.BoolVar(&flagTable, "table", false, "output as table")
	pf.BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	pf.BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	pf.String("dir", "", "path to the planwatch project directory")
	pf.String("log-level", "", "diagnostic log level (debug, info, warn, error)")
	pf.BoolVar(&flagNoColor, "no-color", false, "disable color output")

	_ = viper.BindPFlag(keyDir, pf.Lookup("dir"))
	_ = viper.BindPFlag(keyLogLevel, pf.Lookup("log-level"))
}

// initEnv binds PLANWATCH_* environment variables.
func initEnv() {
	viper.SetEnvPrefix("PLANWATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// Execute runs the root command.
func Execute() {
	_, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}

	// Handle SilentError — exit with code, no output.
	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		os.Exit(silent.Code)
	}

	if outputFormat() == output.FormatJSON {
		output.JSONError(os.Stdout, err)
		os.Exit(clierr.As(err).ExitCode())
	}

	fmt.Fprintln(os.Stderr, "Error:", err)
	if clierr.CodeOf(err) != "" {
		os.Exit(clierr.As(err).ExitCode())
	}
	os.Exit(1)
}

// resolveDir returns the project directory from --dir, PLANWATCH_DIR, or by
// walking up from the working directory.
func resolveDir() (string, error) {
	if dir := viper.GetString(keyDir); dir != "" {
		return dir, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting working directory: %w", err)
	}
	return config.FindDir(cwd)
}

// loadConfig finds and loads the project config.
func loadConfig() (*config.Config, error) {
	dir, err := resolveDir()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(dir)
	if errors.Is(err, config.ErrNotFound) {
		return nil, clierr.Newf(clierr.ProjectNotFound, "%v", err).
			WithDetails(map[string]any{"dir": dir})
	}
	return cfg, err
}

// openProject loads the config, opens its store and returns the service.
// The returned close function releases the store.
func openProject() (*project.Service, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	level := viper.GetString(keyLogLevel)
	if level == "" {
		level = cfg.Log.Level
	}
	logger := logging.New(os.Stderr, logging.Options{Level: level, Format: cfg.Log.Format})

	st, err := store.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := st.Close(); err != nil {
			logger.Warn("closing store", logging.Err(err))
		}
	}
	return project.New(cfg, st, project.WithLogger(logger)), closeFn, nil
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagTable, flagCompact, viper.GetString(keyOutput))
}

// printWarnings writes task read warnings to stderr.
func printWarnings(warnings []task.ReadWarning) {
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: skipping malformed task %s: %v\n", w.File, w.Err)
	}
}

// parseRefs splits a comma-separated list of task ids or id prefixes,
// dropping blanks and duplicates.
func parseRefs(arg string) ([]string, error) {
	var refs []string
	for _, part := range strings.Split(arg, ",") {
		part = strings.TrimSpace(part)
		if part == "" || slices.Contains(refs, part) {
			continue
		}
		refs = append(refs, part)
	}
	if len(refs) == 0 {
		return nil, task.ValidateTaskID(arg)
	}
	return refs, nil
}

// runBatch executes fn for each ref and collects results. Returns a SilentError
// with exit code 1 if any operation failed (after outputting results).
func runBatch(refs []string, fn func(string) error) error {
	results := make([]output.BatchResult, 0, len(refs))
	anyFailed := false

	for _, ref := range refs {
		r := output.NewBatchResult(ref, fn(ref))
		if !r.OK {
			anyFailed = true
		}
		results = append(results, r)
	}

	if outputFormat() == output.FormatJSON {
		if err := output.JSON(os.Stdout, results); err != nil {
			return err
		}
	} else {
		var succeeded int
		for _, r := range results {
			if r.OK {
				succeeded++
			} else {
				fmt.Fprintf(os.Stderr, "Error: task %s: %s\n", r.ID, r.Error)
			}
		}
		output.Messagef(os.Stdout, "Completed %d/%d operations", succeeded, len(refs))
	}

	if anyFailed {
		return &clierr.SilentError{Code: 1}
	}
	return nil
}

// reportSchedule prints which tasks the scheduler moved besides the one the
// user touched.
func reportSchedule(res *project.Result, exceptID string) {
	for _, t := range res.Changed {
		if t.ID == exceptID {
			continue
		}
		fmt.Fprintf(os.Stderr, "  rescheduled %s %s: %s..%s\n", t.ShortID(), t.Title, t.Start, t.End)
	}
}
