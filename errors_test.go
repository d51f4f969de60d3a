package pgdb2

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
)

func TestPgErrorCode(t *testing.T) {
	err := pgError(pgerrcode.UniqueViolation)
	if got := PgErrorCode(err); got != "23505" {
		t.Errorf("expected 23505, got %q", got)
	}

	// Wrapping on the way up must not hide the code.
	wrapped := fmt.Errorf("saving widget: %w", err)
	if got := PgErrorCode(wrapped); got != "23505" {
		t.Errorf("expected 23505 through the wrap, got %q", got)
	}

	if got := PgErrorCode(errors.New("plain")); got != "" {
		t.Errorf("expected empty code for non-server error, got %q", got)
	}
	if got := PgErrorCode(nil); got != "" {
		t.Errorf("expected empty code for nil, got %q", got)
	}
}

func TestIsDuplicatePreparedStatement(t *testing.T) {
	if !IsDuplicatePreparedStatement(pgError("42P05")) {
		t.Error("expected 42P05 to be recognized")
	}
	if IsDuplicatePreparedStatement(pgError("26000")) {
		t.Error("26000 is not a duplicate statement")
	}
	if IsDuplicatePreparedStatement(errors.New("plain")) {
		t.Error("non-server errors are never duplicates")
	}
}

func TestIsUndefinedPreparedStatement(t *testing.T) {
	if !IsUndefinedPreparedStatement(pgError("26000")) {
		t.Error("expected 26000 to be recognized")
	}
	if IsUndefinedPreparedStatement(pgError("42P05")) {
		t.Error("42P05 is not an unknown statement")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"connection failure", pgError(pgerrcode.ConnectionFailure), true},
		{"connection does not exist", pgError(pgerrcode.ConnectionDoesNotExist), true},
		{"serialization failure", pgError(pgerrcode.SerializationFailure), true},
		{"deadlock", pgError(pgerrcode.DeadlockDetected), true},
		{"cannot connect now", pgError(pgerrcode.CannotConnectNow), true},
		{"wrapped deadlock", fmt.Errorf("upsert: %w", pgError(pgerrcode.DeadlockDetected)), true},
		{"unique violation", pgError(pgerrcode.UniqueViolation), false},
		{"syntax error", pgError(pgerrcode.SyntaxError), false},
		{"duplicate prepared statement", pgError(pgerrcode.DuplicatePreparedStatement), false},
		{"plain error", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
