// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The pgdb2 Authors

package pgdb2

import (
	"context"
	"database/sql"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/rla3rd/pgdb2/internal/logger"
)

// Cursor executes statements on the pinned session connection and
// manages named server-side prepared statements on top of it. Names
// are registered per connection; preparing the same SQL twice under
// the same name is a no-op, while reusing a name for different SQL is
// handed to the server, whose duplicate_prepared_statement error
// (42P05) comes back unmodified.
//
// A Cursor is bound to one connection and is not safe for concurrent
// use.
type Cursor struct {
	conn *sql.Conn
	log  *logger.Logger

	// stmts is the name registry; names maps statement SQL back to
	// its auto-assigned name so ExecPrepared can prepare lazily.
	stmts map[string]preparedStmt
	names map[string]string
	seq   int
}

type preparedStmt struct {
	name  string
	query string
	argc  int
}

// execSQL renders the EXECUTE command for this statement with the
// right number of placeholders.
func (ps preparedStmt) execSQL() string {
	if ps.argc == 0 {
		return "EXECUTE " + ps.name
	}
	ph := make([]string, ps.argc)
	for i := range ph {
		ph[i] = "$" + strconv.Itoa(i+1)
	}
	return "EXECUTE " + ps.name + "(" + strings.Join(ph, ", ") + ")"
}

func newCursor(conn *sql.Conn, log *logger.Logger) *Cursor {
	return &Cursor{
		conn:  conn,
		log:   log,
		stmts: make(map[string]preparedStmt),
		names: make(map[string]string),
	}
}

// Exec runs a statement on the cursor's connection.
func (c *Cursor) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return c.conn.ExecContext(ctx, query, args...)
}

// Query runs a query on the cursor's connection.
func (c *Cursor) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.conn.QueryContext(ctx, query, args...)
}

// QueryRow runs a single-row query on the cursor's connection.
func (c *Cursor) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.conn.QueryRowContext(ctx, query, args...)
}

// QueryMaps runs a query and returns every row as a column-to-value
// map, byte slices converted to strings.
func (c *Cursor) QueryMaps(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMaps(rows)
}

// Prepare creates a named server-side prepared statement from query.
// Preparing a name this cursor already holds with the same SQL does
// nothing; any other conflict is the server's call and its error is
// returned as-is.
func (c *Cursor) Prepare(ctx context.Context, name, query string) error {
	if err := validateStatementName(name); err != nil {
		return err
	}
	if ps, ok := c.stmts[name]; ok && ps.query == query {
		c.log.Debug().Str("statement", name).Msg("statement already prepared")
		return nil
	}

	if _, err := c.conn.ExecContext(ctx, "PREPARE "+name+" AS "+query); err != nil {
		return err
	}

	ps := preparedStmt{name: name, query: query, argc: placeholderCount(query)}
	c.stmts[name] = ps
	c.names[query] = name

	c.log.Debug().
		Str("statement", name).
		Int("args", ps.argc).
		Msg("prepared statement")
	return nil
}

// ExecPrepared executes query through its server-side prepared
// statement, preparing it first under an auto-assigned ps_N name when
// this cursor has not seen the SQL before.
func (c *Cursor) ExecPrepared(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ps, err := c.ensurePrepared(ctx, query)
	if err != nil {
		return nil, err
	}
	return c.conn.ExecContext(ctx, ps.execSQL(), args...)
}

// QueryPrepared is ExecPrepared for queries that return rows.
func (c *Cursor) QueryPrepared(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	ps, err := c.ensurePrepared(ctx, query)
	if err != nil {
		return nil, err
	}
	return c.conn.QueryContext(ctx, ps.execSQL(), args...)
}

// QueryMapsPrepared is QueryPrepared with rows collected as maps.
func (c *Cursor) QueryMapsPrepared(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	rows, err := c.QueryPrepared(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMaps(rows)
}

// ExecManyPrepared prepares query once and executes it for every
// argument set in order, stopping at the first error.
func (c *Cursor) ExecManyPrepared(ctx context.Context, query string, argSets [][]any) error {
	ps, err := c.ensurePrepared(ctx, query)
	if err != nil {
		return err
	}
	for _, args := range argSets {
		if _, err := c.conn.ExecContext(ctx, ps.execSQL(), args...); err != nil {
			return err
		}
	}
	return nil
}

// Deallocate drops one named statement on the server and, when that
// succeeds, forgets it locally. Dropping a name the server does not
// hold returns its invalid_sql_statement_name error unmodified.
func (c *Cursor) Deallocate(ctx context.Context, name string) error {
	if err := validateStatementName(name); err != nil {
		return err
	}
	if _, err := c.conn.ExecContext(ctx, "DEALLOCATE "+name); err != nil {
		return err
	}

	if ps, ok := c.stmts[name]; ok {
		// The reverse entry may already point at a newer name prepared
		// for the same SQL; only drop it when it is still ours.
		if c.names[ps.query] == name {
			delete(c.names, ps.query)
		}
		delete(c.stmts, name)
	}
	return nil
}

// DeallocateAll drops every prepared statement this session holds,
// including any prepared outside this cursor, and clears the local
// registry.
func (c *Cursor) DeallocateAll(ctx context.Context) error {
	if _, err := c.conn.ExecContext(ctx, "DEALLOCATE ALL"); err != nil {
		return err
	}

	clear(c.stmts)
	clear(c.names)
	return nil
}

// Prepared lists the statement names this cursor holds, sorted.
func (c *Cursor) Prepared() []string {
	names := make([]string, 0, len(c.stmts))
	for name := range c.stmts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close clears the local registry. The connection itself belongs to
// the Database and stays open; the server frees its statements when
// the session ends.
func (c *Cursor) Close() error {
	clear(c.stmts)
	clear(c.names)
	return nil
}

func (c *Cursor) ensurePrepared(ctx context.Context, query string) (preparedStmt, error) {
	if name, ok := c.names[query]; ok {
		return c.stmts[name], nil
	}

	name := c.nextName()
	if err := c.Prepare(ctx, name, query); err != nil {
		return preparedStmt{}, err
	}
	return c.stmts[name], nil
}

// nextName returns the next free auto-assigned statement name.
func (c *Cursor) nextName() string {
	for {
		c.seq++
		name := "ps_" + strconv.Itoa(c.seq)
		if _, taken := c.stmts[name]; !taken {
			return name
		}
	}
}

var stmtNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// validateStatementName keeps names to plain identifiers, since they
// are spliced into PREPARE/EXECUTE/DEALLOCATE commands verbatim.
func validateStatementName(name string) error {
	if !stmtNameRe.MatchString(name) {
		return ErrBadStatementName
	}
	return nil
}

var placeholderRe = regexp.MustCompile(`\$([0-9]+)`)

// placeholderCount finds the highest $N placeholder in query. Dollar
// signs inside string literals are counted too; statements quoting
// such text should be prepared under an explicit name with Prepare
// and executed through raw EXECUTE SQL instead.
func placeholderCount(query string) int {
	max := 0
	for _, m := range placeholderRe.FindAllStringSubmatch(query, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}
	return max
}

// collectMaps drains rows into column-keyed maps. Byte slices become
// strings so text columns read naturally.
func collectMaps(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		rec := make(map[string]any, len(cols))
		for i, col := range cols {
			v := vals[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			rec[col] = v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
