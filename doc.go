// Package pgdb2 is a thin, configuration-driven wrapper around a
// PostgreSQL client. It exists so that programs spread across many
// hosts can share one way of finding their connection settings and
// one way of opening sessions, instead of each program wiring its
// own.
//
// A [Database] is constructed cheaply with [Open]; nothing touches
// the network until one of the lazy accessors is called:
//
//	db, err := pgdb2.Open(pgdb2.WithMode(pgdb2.ModeReadOnly))
//	if err != nil { ... }
//	defer db.Close()
//
//	cur, err := db.Cursor(ctx)
//	if err != nil { ... }
//	rows, err := cur.QueryMaps(ctx, "select id, name from widgets where id = $1", 7)
//
// Settings come from a JSON file (pgdb.json by default) in the
// directory named by PGDB_HOME or the user's home directory, with an
// optional per-host override file merged on top; a complete database
// URL in PGDB_RW or PGDB_RO bypasses the files entirely. The config
// subpackage documents the details.
//
// The [Engine] accessor exposes the pooled handle plus squirrel query
// builders, schema reflection and an upsert helper. The [Cursor]
// accessor pins one session connection and adds named server-side
// prepared statements on top of it (PREPARE / EXECUTE / DEALLOCATE).
//
// A Database and the handles it returns are not safe for concurrent
// use; give each goroutine its own, the same way database/sql users
// give each goroutine its own rows.
package pgdb2
