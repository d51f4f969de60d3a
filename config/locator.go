package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Locator resolves where configuration lives on this machine: the
// configuration directory, the local hostname that selects the
// per-host override file, and the environment snapshot taken at
// construction time.
type Locator struct {
	dir      string
	hostname string
	env      environment
}

// NewLocator resolves the configuration directory and hostname once.
// A non-empty dir wins over everything; otherwise PGDB_HOME is used
// when set, and the current user's home directory when not.
func NewLocator(dir string) (*Locator, error) {
	e, err := parseEnvironment()
	if err != nil {
		return nil, err
	}

	if dir == "" {
		dir = e.Home
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrHomeDir, err)
		}
		dir = home
	}

	hostname, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHostname, err)
	}

	return &Locator{dir: dir, hostname: hostname, env: e}, nil
}

// Dir returns the resolved configuration directory.
func (l *Locator) Dir() string { return l.dir }

// Hostname returns the machine name used to pick the override file.
func (l *Locator) Hostname() string { return l.hostname }

// BasePath returns the path of the base configuration file.
func (l *Locator) BasePath(name string) string {
	return filepath.Join(l.dir, name)
}

// HostPath returns the path of the per-host override file, the base
// name suffixed with the hostname: pgdb.json.db1 on host db1.
func (l *Locator) HostPath(name string) string {
	return filepath.Join(l.dir, name+"."+l.hostname)
}

// databaseURL returns the environment URL for mode, if one was set
// when the locator was built.
func (l *Locator) databaseURL(m Mode) string {
	if m.ReadOnly() {
		return l.env.ReadOnlyURL
	}
	return l.env.ReadWriteURL
}

func (l *Locator) uniqueID() string { return l.env.UniqueID }
