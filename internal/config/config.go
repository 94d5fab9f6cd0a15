package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/planwatch/internal/clierr"
	"github.com/twiced-technology-gmbh/planwatch/internal/date"
)

const fileMode = 0o600

// Sentinel errors.
var (
	ErrNotFound = errors.New("no planwatch project found (run 'planwatch init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config represents the project configuration.
type Config struct {
	Version     int            `yaml:"version"`
	Project     ProjectConfig  `yaml:"project"`
	TasksDir    string         `yaml:"tasks_dir"`
	Storage     StorageConfig  `yaml:"storage"`
	Statuses    []StatusConfig `yaml:"statuses"`
	Defaults    DefaultsConfig `yaml:"defaults"`
	WorkingDays date.Weekdays  `yaml:"working_days"`
	Log         LogConfig      `yaml:"log"`
	TUI         TUIConfig      `yaml:"tui,omitempty"`

	// dir is the absolute path to the project directory (not serialized).
	dir string `yaml:"-"`
}

// ProjectConfig holds project metadata.
type ProjectConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// StorageConfig selects where tasks are persisted.
type StorageConfig struct {
	Driver string `yaml:"driver"`
	// Path is the database file for the sqlite driver, relative to the
	// project directory.
	Path string `yaml:"path,omitempty"`
}

// DefaultsConfig holds default values for new tasks.
type DefaultsConfig struct {
	Status   string `yaml:"status"`
	Duration int    `yaml:"duration"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TUIConfig holds TUI-specific display settings.
type TUIConfig struct {
	DayWidth int `yaml:"day_width,omitempty"`
}

// StatusConfig defines a status and whether it may be removed.
type StatusConfig struct {
	Name   string `yaml:"name" json:"name"`
	Pinned bool   `yaml:"pinned,omitempty" json:"pinned,omitempty"`
}

// UnmarshalYAML allows StatusConfig to be parsed from either a plain string
// (v1 format: "todo") or a mapping ({name: todo, pinned: true}).
func (s *StatusConfig) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		s.Name = value.Value
		return nil
	}
	type plain StatusConfig
	return value.Decode((*plain)(s))
}

// Dir returns the absolute path to the project directory.
func (c *Config) Dir() string {
	return c.dir
}

// SetDir sets the project directory path on the config.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// TasksPath returns the absolute path to the tasks directory.
func (c *Config) TasksPath() string {
	return filepath.Join(c.dir, c.TasksDir)
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// DatabasePath returns the absolute path to the SQLite database.
func (c *Config) DatabasePath() string {
	p := c.Storage.Path
	if p == "" {
		p = DefaultDatabaseFile
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.dir, p)
}

// DayWidth returns the chart columns per day, or DefaultDayWidth when unset.
func (c *Config) DayWidth() int {
	if c.TUI.DayWidth == 0 {
		return DefaultDayWidth
	}
	return c.TUI.DayWidth
}

// Workdays returns the project calendar, falling back to every day.
func (c *Config) Workdays() date.Weekdays {
	return c.WorkingDays.Or(DefaultWorkingDays())
}

// NewDefault creates a Config with default values.
func NewDefault(name string) *Config {
	return &Config{
		Version:     CurrentVersion,
		Project:     ProjectConfig{Name: name},
		TasksDir:    DefaultTasksDir,
		Storage:     StorageConfig{Driver: DefaultStorageDriver},
		Statuses:    append([]StatusConfig{}, DefaultStatuses...),
		WorkingDays: DefaultWorkingDays(),
		Defaults: DefaultsConfig{
			Status:   DefaultStatus,
			Duration: DefaultDuration,
		},
		Log: LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
	}
}

// StatusNames returns the ordered list of status name strings.
func (c *Config) StatusNames() []string {
	names := make([]string, len(c.Statuses))
	for i, s := range c.Statuses {
		names[i] = s.Name
	}
	return names
}

// StatusIndex returns the index of a status in the configured order, or -1.
func (c *Config) StatusIndex(status string) int {
	return slices.Index(c.StatusNames(), status)
}

// IsPinned reports whether status is a pinned status.
func (c *Config) IsPinned(status string) bool {
	for _, s := range c.Statuses {
		if s.Name == status {
			return s.Pinned
		}
	}
	return false
}

// DoneStatus returns the status that marks a task as completed: the last
// configured status.
func (c *Config) DoneStatus() string {
	if len(c.Statuses) == 0 {
		return ""
	}
	return c.Statuses[len(c.Statuses)-1].Name
}

// IsDoneStatus reports whether s is the completed status.
func (c *Config) IsDoneStatus(s string) bool {
	return s != "" && s == c.DoneStatus()
}

// AddStatus inserts a new status just before the done status, keeping done last.
func (c *Config) AddStatus(name string) error {
	if name == "" {
		return clierr.New(clierr.InvalidInput, "status name is required")
	}
	if c.StatusIndex(name) >= 0 {
		return clierr.Newf(clierr.InvalidStatus, "status %q already exists", name).
			WithDetails(map[string]any{"status": name})
	}
	at := max(len(c.Statuses)-1, 0)
	c.Statuses = slices.Insert(c.Statuses, at, StatusConfig{Name: name})
	return nil
}

// RemoveStatus deletes a status. Pinned statuses, the done status and the
// default status cannot be removed; inUse counts tasks currently in it.
func (c *Config) RemoveStatus(name string, inUse int) error {
	idx := c.StatusIndex(name)
	if idx < 0 {
		return clierr.Newf(clierr.InvalidStatus, "invalid status %q", name).
			WithDetails(map[string]any{"status": name, "allowed": c.StatusNames()})
	}
	if c.Statuses[idx].Pinned {
		return clierr.Newf(clierr.PinnedStatus, "status %q is pinned and cannot be removed", name).
			WithDetails(map[string]any{"status": name})
	}
	if c.IsDoneStatus(name) || name == c.Defaults.Status {
		return clierr.Newf(clierr.PinnedStatus, "status %q is required by the project", name).
			WithDetails(map[string]any{"status": name})
	}
	if inUse > 0 {
		return clierr.Newf(clierr.StatusInUse, "status %q is used by %d task(s)", name, inUse).
			WithDetails(map[string]any{"status": name, "count": inUse})
	}
	c.Statuses = slices.Delete(c.Statuses, idx, idx+1)
	return nil
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if c.Project.Name == "" {
		return fmt.Errorf("%w: project.name is required", ErrInvalid)
	}
	if c.TasksDir == "" {
		return fmt.Errorf("%w: tasks_dir is required", ErrInvalid)
	}
	if !slices.Contains(Drivers, c.Storage.Driver) {
		return fmt.Errorf("%w: unknown storage.driver %q", ErrInvalid, c.Storage.Driver)
	}
	names := c.StatusNames()
	if len(names) < 2 { //nolint:mnd // an open and a done status
		return fmt.Errorf("%w: at least 2 statuses are required", ErrInvalid)
	}
	if hasDuplicates(names) {
		return fmt.Errorf("%w: statuses contain duplicates", ErrInvalid)
	}
	if slices.Contains(names, "") {
		return fmt.Errorf("%w: status names must not be empty", ErrInvalid)
	}
	if !slices.Contains(names, c.Defaults.Status) {
		return fmt.Errorf("%w: default status %q not in statuses list", ErrInvalid, c.Defaults.Status)
	}
	if c.IsDoneStatus(c.Defaults.Status) {
		return fmt.Errorf("%w: default status cannot be the done status", ErrInvalid)
	}
	if c.Defaults.Duration < 1 {
		return fmt.Errorf("%w: defaults.duration must be >= 1", ErrInvalid)
	}
	for _, wd := range c.WorkingDays {
		if wd < 0 || wd > 6 { //nolint:mnd // Sunday..Saturday
			return fmt.Errorf("%w: working_days holds invalid weekday %d", ErrInvalid, wd)
		}
	}
	if !slices.Contains(LogLevels, c.Log.Level) {
		return fmt.Errorf("%w: log.level must be one of %v", ErrInvalid, LogLevels)
	}
	if !slices.Contains(LogFormats, c.Log.Format) {
		return fmt.Errorf("%w: log.format must be one of %v", ErrInvalid, LogFormats)
	}
	const maxDayWidth = 6
	if c.TUI.DayWidth < 0 || c.TUI.DayWidth > maxDayWidth {
		return fmt.Errorf("%w: tui.day_width must be between 0 and %d", ErrInvalid, maxDayWidth)
	}
	return nil
}

// Init creates a new project in the given directory with default settings.
// It creates the project directory, tasks subdirectory, and config file.
func Init(dir, name string) (*Config, error) {
	return InitWith(dir, NewDefault(name))
}

// InitWith creates the project directory for a prepared config.
func InitWith(dir string, cfg *Config) (*Config, error) {
	const dirMode = 0o750

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg.SetDir(absDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.TasksPath(), dirMode); err != nil {
		return nil, fmt.Errorf("creating tasks directory: %w", err)
	}
	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to its config file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, fileMode)
}

// Load reads and validates a config from the given project directory.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	path := filepath.Join(absDir, ConfigFileName)
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.dir = absDir

	// Migrate old config versions forward before validating.
	oldVersion := cfg.Version
	if err := migrate(&cfg); err != nil {
		return nil, err
	}

	// Persist migrated config so future loads skip re-migration.
	if cfg.Version != oldVersion {
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("saving migrated config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FindDir walks upward from startDir looking for a project directory
// containing config.yml. Returns the absolute path to the project directory.
func FindDir(startDir string) (string, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	dir := absStart
	for {
		candidate := filepath.Join(dir, DefaultDir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Join(dir, DefaultDir), nil
		}

		// Also check if we're inside the project directory itself.
		candidate = filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", clierr.New(clierr.ProjectNotFound,
				"no planwatch project found (run 'planwatch init' to create one)")
		}
		dir = parent
	}
}

func hasDuplicates(slice []string) bool {
	seen := make(map[string]bool, len(slice))
	for _, s := range slice {
		if seen[s] {
			return true
		}
		seen[s] = true
	}
	return false
}
