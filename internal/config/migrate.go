package config

import "fmt"

// migrate upgrades a config from its current version to CurrentVersion.
// Each migration function transforms the config one version forward.
// Returns nil if no migration is needed (already at current version).
// Returns an error if the config version is newer than what this binary supports.
func migrate(cfg *Config) error {
	if cfg.Version == CurrentVersion {
		return nil
	}
	if cfg.Version > CurrentVersion {
		return fmt.Errorf(
			"%w: config version %d is newer than supported version %d (upgrade planwatch)",
			ErrInvalid, cfg.Version, CurrentVersion,
		)
	}
	if cfg.Version < 1 {
		return fmt.Errorf("%w: config version %d is invalid", ErrInvalid, cfg.Version)
	}

	// Apply migrations sequentially: v1→v2, v2→v3, etc.
	for cfg.Version < CurrentVersion {
		fn, ok := migrations[cfg.Version]
		if !ok {
			return fmt.Errorf("%w: no migration path from version %d", ErrInvalid, cfg.Version)
		}
		if err := fn(cfg); err != nil {
			return fmt.Errorf("migrating config from v%d: %w", cfg.Version, err)
		}
	}

	return nil
}

// migrations maps each version to the function that migrates it to the next version.
// The migration function must increment cfg.Version after a successful migration.
var migrations = map[int]func(*Config) error{
	1: migrateV1ToV2,
	2: migrateV2ToV3,
	3: migrateV3ToV4,
}

// migrateV1ToV2 adds the project calendar and the default duration. v1
// statuses were plain strings; the first two become pinned.
func migrateV1ToV2(cfg *Config) error { //nolint:unparam // signature must match migrations map type
	if cfg.WorkingDays == nil {
		cfg.WorkingDays = DefaultWorkingDays()
	}
	if cfg.Defaults.Duration == 0 {
		cfg.Defaults.Duration = DefaultDuration
	}
	for i := range cfg.Statuses {
		if i < 2 && i < len(cfg.Statuses)-1 { //nolint:mnd // todo and in-progress
			cfg.Statuses[i].Pinned = true
		}
	}
	cfg.Version = 2
	return nil
}

// migrateV2ToV3 adds the storage section.
func migrateV2ToV3(cfg *Config) error { //nolint:unparam // signature must match migrations map type
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = DefaultStorageDriver
	}
	cfg.Version = 3
	return nil
}

// migrateV3ToV4 adds the log section.
func migrateV3ToV4(cfg *Config) error { //nolint:unparam // signature must match migrations map type
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	cfg.Version = 4
	return nil
}
