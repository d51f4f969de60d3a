package pgdb2

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"

	"github.com/rla3rd/pgdb2/internal/logger"
)

// Engine wraps the pooled *sql.DB with PostgreSQL-flavored squirrel
// builders, schema reflection and the upsert helper. It is the
// engine-level counterpart of the session-level [Cursor]: statements
// run here may land on any pooled connection.
type Engine struct {
	db  *sql.DB
	sb  squirrel.StatementBuilderType
	log *logger.Logger

	// meta caches reflection results per schema name.
	meta map[string]*Schema
}

func newEngine(db *sql.DB, log *logger.Logger) *Engine {
	return &Engine{
		db:   db,
		sb:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar).RunWith(db),
		log:  log,
		meta: make(map[string]*Schema),
	}
}

// DB exposes the underlying handle for anything the wrapper does not
// cover.
func (e *Engine) DB() *sql.DB { return e.db }

// Ping verifies the pool can still reach the server.
func (e *Engine) Ping(ctx context.Context) error {
	return e.db.PingContext(ctx)
}

// Builder returns the engine's statement builder: dollar
// placeholders, runner already attached.
func (e *Engine) Builder() squirrel.StatementBuilderType { return e.sb }

// Select starts a SELECT over the engine.
func (e *Engine) Select(columns ...string) squirrel.SelectBuilder {
	return e.sb.Select(columns...)
}

// Insert starts an INSERT over the engine.
func (e *Engine) Insert(into string) squirrel.InsertBuilder {
	return e.sb.Insert(into)
}

// Update starts an UPDATE over the engine.
func (e *Engine) Update(table string) squirrel.UpdateBuilder {
	return e.sb.Update(table)
}

// Delete starts a DELETE over the engine.
func (e *Engine) Delete(from string) squirrel.DeleteBuilder {
	return e.sb.Delete(from)
}
