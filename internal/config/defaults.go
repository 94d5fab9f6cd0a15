// Package config handles project configuration.
package config

import "github.com/twiced-technology-gmbh/planwatch/internal/date"

const (
	// DefaultDir is the default project directory name.
	DefaultDir = "planwatch"
	// DefaultTasksDir is the default tasks subdirectory name.
	DefaultTasksDir = "tasks"
	// DefaultStatus is the default status for new tasks.
	DefaultStatus = "todo"
	// DefaultDuration is the default estimated duration, in working days.
	DefaultDuration = 1
	// DefaultStorageDriver stores one markdown file per task.
	DefaultStorageDriver = DriverFiles
	// DefaultDatabaseFile is the SQLite file name used when storage.path is empty.
	DefaultDatabaseFile = "planwatch.db"
	// DefaultLogLevel is the level for diagnostic logging.
	DefaultLogLevel = "warn"
	// DefaultLogFormat is the handler used for diagnostic logging.
	DefaultLogFormat = "text"
	// DefaultDayWidth is the number of chart columns drawn per calendar day.
	DefaultDayWidth = 2

	// ConfigFileName is the name of the config file within the project directory.
	ConfigFileName = "config.yml"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 4
)

// Storage drivers.
const (
	DriverFiles  = "files"
	DriverSQLite = "sqlite"
)

// Default slice values for a new project (slices cannot be const).
var (
	DefaultStatuses = []StatusConfig{
		{Name: "todo", Pinned: true},
		{Name: "in-progress", Pinned: true},
		{Name: "done"},
	}

	LogLevels  = []string{"debug", "info", "warn", "error"}
	LogFormats = []string{"text", "json"}
	Drivers    = []string{DriverFiles, DriverSQLite}
)

// DefaultWorkingDays is the calendar for tasks that do not set their own.
func DefaultWorkingDays() date.Weekdays {
	return date.AllWeekdays()
}
