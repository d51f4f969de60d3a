package pgdb2

import (
	"database/sql"

	"github.com/rs/zerolog"

	"github.com/rla3rd/pgdb2/config"
	"github.com/rla3rd/pgdb2/internal/logger"
)

// Mode re-exports [config.Mode] so most callers never import the
// config subpackage directly.
type Mode = config.Mode

const (
	ModeReadWrite = config.ModeReadWrite
	ModeReadOnly  = config.ModeReadOnly
)

// Option configures a [Database] during [Open].
type Option func(*Database)

// WithMode selects read-write or read-only sessions. The default is
// read-write.
func WithMode(m Mode) Option {
	return func(d *Database) { d.mode = m }
}

// WithConfigDir pins the configuration directory, overriding both
// PGDB_HOME and the home directory fallback.
func WithConfigDir(dir string) Option {
	return func(d *Database) { d.dir = dir }
}

// WithConfigFile changes the base configuration file name from
// pgdb.json. The per-host override keeps the same naming scheme:
// <name>.<hostname>.
func WithConfigFile(name string) Option {
	return func(d *Database) { d.baseFile = name }
}

// WithConfig supplies a complete connection record and skips file and
// environment loading entirely. The record is used as given: no
// wrapper defaults are filled in, only validation runs.
func WithConfig(cfg config.Config) Option {
	return func(d *Database) { d.cfg = &cfg }
}

// WithLogger routes pgdb2's logging into a caller-owned zerolog
// logger. Without it the wrapper is silent.
func WithLogger(zl zerolog.Logger) Option {
	return func(d *Database) { d.log = logger.Wrap(zl) }
}

// WithDB adopts an already-open handle instead of dialing one from
// the configuration. The caller keeps ownership: [Database.Close]
// leaves an adopted handle open. Mostly useful for tests and for
// sharing one pool between wrappers.
func WithDB(db *sql.DB) Option {
	return func(d *Database) {
		d.db = db
		d.adopted = true
	}
}
