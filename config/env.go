// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The pgdb2 Authors

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// environment is the slice of the process environment pgdb2 reads.
// Everything is optional; empty strings mean "not set".
type environment struct {
	// Home overrides the configuration directory.
	Home string `env:"PGDB_HOME"`
	// ReadWriteURL and ReadOnlyURL carry complete database URLs that
	// take precedence over configuration files for their mode.
	ReadWriteURL string `env:"PGDB_RW"`
	ReadOnlyURL  string `env:"PGDB_RO"`
	// UniqueID tags the default application_name so sessions from the
	// same deployment can be told apart in pg_stat_activity.
	UniqueID string `env:"UNIQUE_ID"`
}

func parseEnvironment() (environment, error) {
	var e environment
	if err := env.Parse(&e); err != nil {
		return environment{}, fmt.Errorf("error parsing environment variables: %w", err)
	}
	return e, nil
}
