package cmd

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/twiced-technology-gmbh/planwatch/internal/clierr"
	"github.com/twiced-technology-gmbh/planwatch/internal/config"
	"github.com/twiced-technology-gmbh/planwatch/internal/date"
	"github.com/twiced-technology-gmbh/planwatch/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify project configuration",
	Long:  `View the full configuration, get a specific key, or set a writable value.`,
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a configuration value",
	Long: `Sets a writable configuration value. Changing working_days reschedules
every task that uses the project calendar.`,
	Args: cobra.ExactArgs(2), //nolint:mnd // key and value
	RunE: runConfigSet,
}

var configStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Add or remove statuses",
}

var configStatusAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a status before the done status",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigStatusAdd,
}

var configStatusRemoveCmd = &cobra.Command{
	Use:     "remove NAME",
	Aliases: []string{"rm"},
	Short:   "Remove an unused status",
	Args:    cobra.ExactArgs(1),
	RunE:    runConfigStatusRemove,
}

func init() {
	configStatusCmd.AddCommand(configStatusAddCmd)
	configStatusCmd.AddCommand(configStatusRemoveCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configStatusCmd)
	rootCmd.AddCommand(configCmd)
}

// configAccessor describes how to get and set a config key.
type configAccessor struct {
	get        func(*config.Config) any
	set        func(*config.Config, string) error
	writable   bool
	reschedule bool
}

func configAccessors() map[string]configAccessor {
	return map[string]configAccessor{
		"version": {
			get: func(c *config.Config) any { return c.Version },
		},
		"project.name": {
			get:      func(c *config.Config) any { return c.Project.Name },
			set:      func(c *config.Config, v string) error { c.Project.Name = v; return nil },
			writable: true,
		},
		"project.description": {
			get:      func(c *config.Config) any { return c.Project.Description },
			set:      func(c *config.Config, v string) error { c.Project.Description = v; return nil },
			writable: true,
		},
		"tasks_dir": {
			get: func(c *config.Config) any { return c.TasksDir },
		},
		"storage.driver": {
			get: func(c *config.Config) any { return c.Storage.Driver },
		},
		"statuses": {
			get: func(c *config.Config) any { return c.StatusNames() },
		},
		"working_days": {
			get: func(c *config.Config) any { return c.Workdays().String() },
			set: func(c *config.Config, v string) error {
				w, err := date.ParseWeekdays(v)
				if err != nil {
					return clierr.Newf(clierr.InvalidWorkingDays, "invalid working_days %q: %v", v, err)
				}
				c.WorkingDays = w
				return nil
			},
			writable:   true,
			reschedule: true,
		},
		"defaults.status": {
			get: func(c *config.Config) any { return c.Defaults.Status },
			set: func(c *config.Config, v string) error {
				if !slices.Contains(c.StatusNames(), v) {
					return clierr.Newf(clierr.InvalidStatus,
						"invalid default status %q; allowed: %s", v, strings.Join(c.StatusNames(), ", "))
				}
				c.Defaults.Status = v
				return nil
			},
			writable: true,
		},
		"defaults.duration": {
			get:      func(c *config.Config) any { return c.Defaults.Duration },
			set:      intSetter("defaults.duration", func(c *config.Config, n int) { c.Defaults.Duration = n }),
			writable: true,
		},
		"log.level": {
			get: func(c *config.Config) any { return c.Log.Level },
			set: func(c *config.Config, v string) error {
				if !slices.Contains(config.LogLevels, v) {
					return clierr.Newf(clierr.InvalidInput,
						"invalid log.level %q; allowed: %s", v, strings.Join(config.LogLevels, ", "))
				}
				c.Log.Level = v
				return nil
			},
			writable: true,
		},
		"log.format": {
			get: func(c *config.Config) any { return c.Log.Format },
			set: func(c *config.Config, v string) error {
				if !slices.Contains(config.LogFormats, v) {
					return clierr.Newf(clierr.InvalidInput,
						"invalid log.format %q; allowed: %s", v, strings.Join(config.LogFormats, ", "))
				}
				c.Log.Format = v
				return nil
			},
			writable: true,
		},
		"tui.day_width": {
			get:      func(c *config.Config) any { return c.DayWidth() },
			set:      intSetter("tui.day_width", func(c *config.Config, n int) { c.TUI.DayWidth = n }),
			writable: true,
		},
	}
}

func intSetter(key string, apply func(*config.Config, int)) func(*config.Config, string) error {
	return func(c *config.Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return clierr.Newf(clierr.InvalidInput, "invalid %s %q: must be an integer", key, v)
		}
		apply(c, n)
		return nil // validation handles range check
	}
}

// allConfigKeys returns config keys in display order.
func allConfigKeys() []string {
	return []string{
		"version",
		"project.name",
		"project.description",
		"tasks_dir",
		"storage.driver",
		"statuses",
		"working_days",
		"defaults.status",
		"defaults.duration",
		"log.level",
		"log.format",
		"tui.day_width",
	}
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	accessors := configAccessors()

	if outputFormat() == output.FormatJSON {
		m := make(map[string]any, len(accessors))
		for _, key := range allConfigKeys() {
			m[key] = accessors[key].get(cfg)
		}
		return output.JSON(os.Stdout, m)
	}

	// Table mode: key-value pairs.
	for _, key := range allConfigKeys() {
		val := accessors[key].get(cfg)
		fmt.Fprintf(os.Stdout, "%-20s %v\n", key, formatConfigValue(val))
	}
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key := args[0]
	acc, ok := configAccessors()[key]
	if !ok {
		return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key)
	}

	val := acc.get(cfg)

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, val)
	}

	fmt.Fprintln(os.Stdout, formatConfigValue(val))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	acc, ok := configAccessors()[key]
	if !ok {
		return clierr.Newf(clierr.InvalidInput, "unknown config key %q", key)
	}
	if !acc.writable {
		return clierr.Newf(clierr.InvalidInput, "config key %q is read-only", key)
	}

	if err := acc.set(cfg, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return clierr.Newf(clierr.InvalidInput, "%v", err)
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	var moved int
	if acc.reschedule {
		svc, closeFn, err := openProject()
		if err != nil {
			return err
		}
		defer closeFn()
		res, err := svc.Recompute(cmd.Context(), false)
		if err != nil {
			return err
		}
		printWarnings(res.Warnings)
		moved = len(res.Changed)
	}

	if outputFormat() == output.FormatJSON {
		m := map[string]any{"key": key, "value": acc.get(cfg)}
		if acc.reschedule {
			m["rescheduled"] = moved
		}
		return output.JSON(os.Stdout, m)
	}

	output.Messagef(os.Stdout, "Set %s = %v", key, formatConfigValue(acc.get(cfg)))
	if moved > 0 {
		output.Messagef(os.Stdout, "Rescheduled %d task(s)", moved)
	}
	return nil
}

func runConfigStatusAdd(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.AddStatus(strings.TrimSpace(args[0])); err != nil {
		return err
	}
	return saveStatuses(cfg, "Added status %q", args[0])
}

func runConfigStatusRemove(cmd *cobra.Command, args []string) error {
	svc, closeFn, err := openProject()
	if err != nil {
		return err
	}
	defer closeFn()

	tasks, _, err := svc.Load(cmd.Context())
	if err != nil {
		return err
	}
	name := args[0]
	inUse := 0
	for _, t := range tasks {
		if t.Status == name {
			inUse++
		}
	}

	cfg := svc.Config()
	if err := cfg.RemoveStatus(name, inUse); err != nil {
		return err
	}
	return saveStatuses(cfg, "Removed status %q", name)
}

func saveStatuses(cfg *config.Config, format, name string) error {
	if err := cfg.Validate(); err != nil {
		return clierr.Newf(clierr.InvalidInput, "%v", err)
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]any{"statuses": cfg.StatusNames()})
	}
	output.Messagef(os.Stdout, format, name)
	output.Messagef(os.Stdout, "  Statuses: %s", strings.Join(cfg.StatusNames(), ", "))
	return nil
}

func formatConfigValue(val any) string {
	switch v := val.(type) {
	case []string:
		return strings.Join(v, ", ")
	case string:
		if v == "" {
			return "--"
		}
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
