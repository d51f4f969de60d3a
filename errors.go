package pgdb2

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrClosed is returned by every accessor once [Database.Close]
	// has run.
	ErrClosed = errors.New("database is closed")
	// ErrBadStatementName rejects prepared statement names that are
	// not plain SQL identifiers.
	ErrBadStatementName = errors.New("prepared statement name is not a valid identifier")
	// ErrNoPrimaryKey is returned by [Engine.Upsert] when no conflict
	// target was given and reflection found no primary key to use.
	ErrNoPrimaryKey = errors.New("no primary key to use as conflict target")
)

// PgErrorCode returns the PostgreSQL error code carried by err, or ""
// when err did not come from the server. Server errors pass through
// this package unmodified, so the code survives any wrapping added on
// the way up.
func PgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	return ""
}

// IsDuplicatePreparedStatement reports whether err is the server's
// 42P05: a PREPARE under a name this session already holds.
func IsDuplicatePreparedStatement(err error) bool {
	return PgErrorCode(err) == pgerrcode.DuplicatePreparedStatement
}

// IsUndefinedPreparedStatement reports whether err is the server's
// 26000: an EXECUTE or DEALLOCATE of a name this session does not
// hold.
func IsUndefinedPreparedStatement(err error) bool {
	return PgErrorCode(err) == pgerrcode.InvalidSQLStatementName
}

// IsRetryable reports whether err is a server error that may clear up
// on its own, so the failed call is worth repeating. That covers
// connection exceptions (class 08), transaction rollbacks such as
// serialization failures and deadlocks (class 40), and the server
// still starting up (57P03). Everything else, constraint violations
// and syntax errors included, is permanent.
//
// See https://www.postgresql.org/docs/current/errcodes-appendix.html
// for the full code list.
func IsRetryable(err error) bool {
	switch PgErrorCode(err) {
	// class 08, connection exceptions
	case pgerrcode.ConnectionException,
		pgerrcode.ConnectionDoesNotExist,
		pgerrcode.ConnectionFailure:
		return true

	// class 40, transaction rollback
	case pgerrcode.TransactionRollback, // 40000
		pgerrcode.SerializationFailure, // 40001
		pgerrcode.DeadlockDetected:     // 40P01
		return true

	// class 57, operator intervention
	case pgerrcode.CannotConnectNow: // 57P03
		return true
	}

	return false
}
