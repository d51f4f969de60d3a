package pgdb2

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/rla3rd/pgdb2/config"
	"github.com/rla3rd/pgdb2/internal/logger"
)

// Database is the wrapper handle. It resolves its configuration once
// at [Open] and then hands out the underlying objects lazily: the
// pooled [Engine], one pinned session connection, and a [Cursor] over
// that connection. Each is created on first request and cached, so
// repeated accessor calls return the same object.
//
// A Database is not safe for concurrent use.
type Database struct {
	mode     Mode
	dir      string
	baseFile string
	cfg      *config.Config
	log      *logger.Logger

	db      *sql.DB
	adopted bool
	engine  *Engine
	conn    *sql.Conn
	cursor  *Cursor
	closed  bool
}

// Open resolves configuration and returns a ready Database. It does
// not touch the network; the first accessor that needs a connection
// dials it.
func Open(opts ...Option) (*Database, error) {
	d := &Database{
		mode:     ModeReadWrite,
		baseFile: config.DefaultBaseFile,
		log:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.cfg == nil {
		loc, err := config.NewLocator(d.dir)
		if err != nil {
			return nil, err
		}
		cfg, err := config.Load(loc, d.baseFile, d.mode)
		if err != nil {
			return nil, err
		}
		d.cfg = cfg
	} else if err := d.cfg.Validate(); err != nil {
		return nil, err
	}

	d.log.Debug().
		Str("func", "Open").
		Str("mode", string(d.mode)).
		Str("source", d.cfg.Source.String()).
		Str("dsn", d.cfg.Redacted()).
		Msg("configuration resolved")

	return d, nil
}

// Mode returns the session mode this Database was opened with.
func (d *Database) Mode() Mode { return d.mode }

// Config returns a copy of the resolved connection record.
func (d *Database) Config() config.Config {
	cfg := *d.cfg
	cfg.Params = maps.Clone(cfg.Params)
	return cfg
}

// Engine returns the pooled handle wrapped with query builders,
// dialing the database on first use.
func (d *Database) Engine(ctx context.Context) (*Engine, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if d.engine != nil {
		return d.engine, nil
	}

	if d.db == nil {
		db, err := openDB(ctx, d.cfg, d.log)
		if err != nil {
			return nil, err
		}
		d.db = db
	}

	d.engine = newEngine(d.db, d.log.WithComponent("engine"))
	return d.engine, nil
}

// Conn returns the pinned session connection, creating the engine
// first if needed. The session is configured once right after
// pinning: the statement timeout is set, and read-only mode makes
// every transaction default to read-only.
func (d *Database) Conn(ctx context.Context) (*sql.Conn, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if d.conn != nil {
		return d.conn, nil
	}

	if _, err := d.Engine(ctx); err != nil {
		return nil, err
	}

	conn, err := d.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("error pinning session connection: %w", err)
	}
	if err := d.setupSession(ctx, conn); err != nil {
		conn.Close()
		return nil, err
	}

	d.conn = conn
	return d.conn, nil
}

// Cursor returns the statement cursor over the pinned connection,
// creating connection and engine first if needed. Requesting a
// cursor on a fresh Database therefore yields a valid
// engine+connection+cursor chain in one call.
func (d *Database) Cursor(ctx context.Context) (*Cursor, error) {
	if d.closed {
		return nil, ErrClosed
	}
	if d.cursor != nil {
		return d.cursor, nil
	}

	conn, err := d.Conn(ctx)
	if err != nil {
		return nil, err
	}

	d.cursor = newCursor(conn, d.log.WithComponent("cursor"))
	return d.cursor, nil
}

// ConnCursor returns the pinned connection and its cursor together.
func (d *Database) ConnCursor(ctx context.Context) (*sql.Conn, *Cursor, error) {
	cur, err := d.Cursor(ctx)
	if err != nil {
		return nil, nil, err
	}
	return d.conn, cur, nil
}

// EngineConnCursor returns all three handles together.
func (d *Database) EngineConnCursor(ctx context.Context) (*Engine, *sql.Conn, *Cursor, error) {
	cur, err := d.Cursor(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return d.engine, d.conn, cur, nil
}

// Close tears down whatever was created: the cursor registry, the
// pinned connection, and the pool. An adopted handle (WithDB) is left
// open for its owner; its pinned session is scrubbed first so the
// owner's pool does not inherit this wrapper's statements or session
// settings. Close is idempotent.
func (d *Database) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true

	var errs []error
	if d.cursor != nil {
		errs = append(errs, d.cursor.Close())
		d.cursor = nil
	}
	if d.conn != nil {
		if d.adopted {
			d.resetSession(context.Background(), d.conn)
		}
		errs = append(errs, d.conn.Close())
		d.conn = nil
	}
	if d.db != nil && !d.adopted {
		errs = append(errs, d.db.Close())
	}
	d.db = nil
	d.engine = nil

	return errors.Join(errs...)
}

func (d *Database) setupSession(ctx context.Context, conn *sql.Conn) error {
	if t := time.Duration(d.cfg.StatementTimeout); t > 0 {
		// The server reads a timeout of 0 as disabled; round up so a
		// sub-millisecond setting does not turn the timeout off.
		ms := (t + time.Millisecond - 1) / time.Millisecond
		stmt := fmt.Sprintf("SET statement_timeout = '%dms'", int64(ms))
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error setting statement_timeout: %w", err)
		}
	}
	if d.mode.ReadOnly() {
		if _, err := conn.ExecContext(ctx, "SET default_transaction_read_only = on"); err != nil {
			return fmt.Errorf("error setting read-only session: %w", err)
		}
	}

	d.log.Debug().
		Str("func", "setupSession").
		Str("mode", string(d.mode)).
		Msg("session configured")
	return nil
}

// resetSession undoes setupSession before an adopted connection goes
// back to its owner's pool: prepared statements are dropped and the
// session settings restored to their defaults. Best effort, the
// connection is released regardless.
func (d *Database) resetSession(ctx context.Context, conn *sql.Conn) {
	stmts := []string{"DEALLOCATE ALL"}
	if time.Duration(d.cfg.StatementTimeout) > 0 {
		stmts = append(stmts, "RESET statement_timeout")
	}
	if d.mode.ReadOnly() {
		stmts = append(stmts, "RESET default_transaction_read_only")
	}

	for _, stmt := range stmts {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			d.log.Debug().Err(err).Str("func", "resetSession").Msg(stmt)
		}
	}
}

// openDB dials the database described by cfg and verifies it with a
// ping.
func openDB(ctx context.Context, cfg *config.Config, log *logger.Logger) (*sql.DB, error) {
	cc, err := pgx.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("error parsing connection settings: %w", err)
	}
	// EXECUTE of a named prepared statement is a utility command and
	// cannot carry extended-protocol parameters, so arguments must be
	// interpolated client-side.
	cc.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	db := stdlib.OpenDB(*cc)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(4)

	if err := db.PingContext(ctx); err != nil {
		log.Err(err).Str("func", "openDB").Msg("error connecting database (ping)")
		db.Close()
		return nil, fmt.Errorf("error connecting database: %w", err)
	}

	log.Info().
		Str("func", "openDB").
		Str("dsn", cfg.Redacted()).
		Msg("connected to database")
	return db, nil
}
