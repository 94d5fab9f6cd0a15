package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/twiced-technology-gmbh/planwatch/internal/clierr"
	"github.com/twiced-technology-gmbh/planwatch/internal/config"
	"github.com/twiced-technology-gmbh/planwatch/internal/output"
	"github.com/twiced-technology-gmbh/planwatch/internal/task"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new project",
	Long:  `Creates a planwatch directory with config.yml and a tasks/ subdirectory.`,
	RunE:  runInit,
}

func init() {
	initCmd.Flags().String("name", "", "project name (defaults to current directory name)")
	initCmd.Flags().StringSlice("statuses", nil, "comma-separated list of statuses; the last one marks tasks done")
	initCmd.Flags().String("working-days", "", "project calendar, e.g. mon-fri (default: every day)")
	initCmd.Flags().Int("duration", config.DefaultDuration, "default duration for new tasks, in working days")
	initCmd.Flags().String("storage", config.DefaultStorageDriver,
		"storage driver ("+strings.Join(config.Drivers, ", ")+")")
	initCmd.Flags().SetNormalizeFunc(normalizeTaskFlags)
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir := viper.GetString(keyDir)
	if dir == "" {
		dir = config.DefaultDir
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	// Check if already initialized.
	if _, err := os.Stat(filepath.Join(absDir, config.ConfigFileName)); err == nil {
		return clierr.Newf(clierr.ProjectExists, "project already initialized in %s", absDir).
			WithDetails(map[string]any{"dir": absDir})
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		name = filepath.Base(cwd)
	}

	cfg, err := buildInitConfig(cmd, name)
	if err != nil {
		return err
	}

	cfg, err = config.InitWith(absDir, cfg)
	if err != nil {
		return clierr.Newf(clierr.InvalidInput, "%v", err)
	}

	// Output result.
	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]string{
			"status":       "initialized",
			"dir":          absDir,
			"name":         name,
			"config":       cfg.ConfigPath(),
			"tasks":        cfg.TasksPath(),
			"statuses":     strings.Join(cfg.StatusNames(), ","),
			"working_days": cfg.Workdays().String(),
			"storage":      cfg.Storage.Driver,
		})
	}

	output.Messagef(os.Stdout, "Initialized project %q in %s", name, absDir)
	output.Messagef(os.Stdout, "  Config:   %s", cfg.ConfigPath())
	output.Messagef(os.Stdout, "  Tasks:    %s", cfg.TasksPath())
	output.Messagef(os.Stdout, "  Statuses: %s", strings.Join(cfg.StatusNames(), ", "))
	output.Messagef(os.Stdout, "  Calendar: %s", cfg.Workdays())
	output.Messagef(os.Stdout, "  Storage:  %s", cfg.Storage.Driver)
	return nil
}

func buildInitConfig(cmd *cobra.Command, name string) (*config.Config, error) {
	cfg := config.NewDefault(name)

	if statuses, _ := cmd.Flags().GetStringSlice("statuses"); len(statuses) > 0 {
		sc := make([]config.StatusConfig, len(statuses))
		for i, s := range statuses {
			sc[i] = config.StatusConfig{Name: strings.TrimSpace(s)}
		}
		cfg.Statuses = sc
		cfg.Defaults.Status = sc[0].Name
	}

	w, ok, err := workingDaysFlag(cmd)
	if err != nil {
		return nil, err
	}
	if ok && w != nil {
		cfg.WorkingDays = w
	}

	if cmd.Flags().Changed("duration") {
		n, _ := cmd.Flags().GetInt("duration")
		if err := task.ValidateDuration(n); err != nil {
			return nil, err
		}
		cfg.Defaults.Duration = n
	}

	driver, _ := cmd.Flags().GetString("storage")
	if !slices.Contains(config.Drivers, driver) {
		return nil, clierr.Newf(clierr.UnsupportedStorage, "unknown storage driver %q", driver).
			WithDetails(map[string]any{"driver": driver, "allowed": config.Drivers})
	}
	cfg.Storage.Driver = driver

	return cfg, nil
}
