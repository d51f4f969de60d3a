package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ParseDatabaseURL turns a postgresql:// URL into a [Config] record.
// The postgres:// and pgsql:// spellings are accepted too. Query
// parameters the record does not model are kept in [Config.Params]
// and flow back out of [Config.DSN] untouched.
func ParseDatabaseURL(raw string) (*Config, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDatabaseURL, err)
	}

	switch u.Scheme {
	case "postgresql", "postgres", "pgsql":
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrBadDatabaseURL, u.Scheme)
	}

	cfg := &Config{
		Host:     u.Hostname(),
		Database: strings.TrimPrefix(u.Path, "/"),
	}

	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("%w: bad port %q", ErrBadDatabaseURL, p)
		}
		cfg.Port = port
	}

	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Password, _ = u.User.Password()
	}

	for key, vals := range u.Query() {
		if len(vals) == 0 || vals[0] == "" {
			continue
		}
		val := vals[0]
		switch key {
		case "sslmode":
			cfg.SSLMode = val
		case "application_name":
			cfg.ApplicationName = val
		case "connect_timeout":
			d, err := parseTimeout(val)
			if err != nil {
				return nil, fmt.Errorf("%w: bad connect_timeout %q", ErrBadDatabaseURL, val)
			}
			cfg.ConnectTimeout = d
		default:
			if cfg.Params == nil {
				cfg.Params = make(map[string]string)
			}
			cfg.Params[key] = val
		}
	}

	return cfg, nil
}

// parseTimeout accepts either the libpq form (whole seconds, "10") or
// a Go duration string ("10s"). JSON records differ: a bare number
// there is nanoseconds, see [Duration].
func parseTimeout(s string) (Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return Duration(time.Duration(secs) * time.Second), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	return Duration(d), nil
}
