package config

import "errors"

// Errors reported while resolving and validating connection settings.
// All of them are wrapped with context, so callers should test with
// [errors.Is].
var (
	// ErrConfigNotFound indicates that the base configuration file does
	// not exist in the resolved configuration directory.
	ErrConfigNotFound = errors.New("configuration file not found")
	// ErrConfigInvalid indicates that a configuration source exists but
	// could not be decoded, or that a decoded value is out of range.
	ErrConfigInvalid = errors.New("configuration is not valid")
	// ErrConfigIncomplete indicates that required keys are missing after
	// every source has been merged.
	ErrConfigIncomplete = errors.New("configuration is incomplete")
	// ErrBadDatabaseURL indicates that a PGDB_RW or PGDB_RO value could
	// not be parsed as a PostgreSQL URL.
	ErrBadDatabaseURL = errors.New("database url is not valid")
	// ErrBadMode indicates a connection mode other than "rw" or "ro".
	ErrBadMode = errors.New("unknown connection mode")
	// ErrHomeDir indicates that no configuration directory could be
	// resolved: PGDB_HOME is unset and the user's home directory is
	// unknown.
	ErrHomeDir = errors.New("configuration directory could not be resolved")
	// ErrHostname indicates that the local hostname could not be read,
	// which makes the per-host override file unresolvable.
	ErrHostname = errors.New("hostname could not be resolved")
)
