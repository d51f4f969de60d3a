package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocator_ExplicitDirWins(t *testing.T) {
	// Arrange
	t.Setenv("PGDB_HOME", "/somewhere/else")
	explicit := t.TempDir()

	// Act
	loc, err := NewLocator(explicit)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, explicit, loc.Dir())
}

func TestNewLocator_EnvironmentHome(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	t.Setenv("PGDB_HOME", dir)

	// Act
	loc, err := NewLocator("")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, dir, loc.Dir())
}

func TestNewLocator_FallsBackToUserHome(t *testing.T) {
	// Arrange
	t.Setenv("PGDB_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no user home directory here: %v", err)
	}

	// Act
	loc, err := NewLocator("")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, home, loc.Dir())
}

func TestLocator_Paths(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	loc, err := NewLocator(dir)
	require.NoError(t, err)

	host, err := os.Hostname()
	require.NoError(t, err)

	// Assert
	assert.Equal(t, host, loc.Hostname())
	assert.Equal(t, filepath.Join(dir, "pgdb.json"), loc.BasePath("pgdb.json"))
	assert.Equal(t, filepath.Join(dir, "pgdb.json."+host), loc.HostPath("pgdb.json"))
}

func TestLocator_DatabaseURLPerMode(t *testing.T) {
	// Arrange
	t.Setenv("PGDB_RW", "postgresql://rw@h/db")
	t.Setenv("PGDB_RO", "postgresql://ro@h/db")

	loc, err := NewLocator(t.TempDir())
	require.NoError(t, err)

	// Assert
	assert.Equal(t, "postgresql://rw@h/db", loc.databaseURL(ModeReadWrite))
	assert.Equal(t, "postgresql://ro@h/db", loc.databaseURL(ModeReadOnly))
}
