// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The pgdb2 Authors

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"net"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Mode selects which kind of database session the wrapper opens.
type Mode string

const (
	// ModeReadWrite is the default mode.
	ModeReadWrite Mode = "rw"
	// ModeReadOnly makes every session default to read-only
	// transactions.
	ModeReadOnly Mode = "ro"
)

// ParseMode converts a user-supplied mode string. The empty string
// means read-write. Anything other than "rw" or "ro" (in any case) is
// rejected with [ErrBadMode].
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", string(ModeReadWrite):
		return ModeReadWrite, nil
	case string(ModeReadOnly):
		return ModeReadOnly, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrBadMode, s)
	}
}

// ReadOnly reports whether sessions opened in this mode must not
// write.
func (m Mode) ReadOnly() bool { return m == ModeReadOnly }

// EnvVar names the environment variable holding a database URL that
// short-circuits file loading for this mode: PGDB_RW or PGDB_RO.
func (m Mode) EnvVar() string {
	return "PGDB_" + strings.ToUpper(string(m))
}

// Config is one merged connection record. Zero values mean "not
// configured": [Config.DSN] leaves those keys out so the driver
// defaults apply.
type Config struct {
	Host     string `json:"host" validate:"required"`
	Port     int    `json:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	Database string `json:"database" validate:"required"`
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
	SSLMode  string `json:"sslmode,omitempty" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`

	ApplicationName string   `json:"application_name,omitempty"`
	ConnectTimeout  Duration `json:"connect_timeout,omitempty"`
	// StatementTimeout is applied per session with SET after a
	// connection is pinned; it is not part of the DSN.
	StatementTimeout Duration `json:"statement_timeout,omitempty"`

	// Params carries any further keys found in a configuration source.
	// They are appended to the DSN untouched.
	Params map[string]string `json:"params,omitempty"`

	// Source records where this record came from. It is provenance
	// only and never round-trips through JSON.
	Source Source `json:"-"`
}

// Validate checks the merged record. Missing required keys are
// reported as [ErrConfigIncomplete], out-of-range values as
// [ErrConfigInvalid].
func (c *Config) Validate() error {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	err := v.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	var missing, invalid []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		} else {
			invalid = append(invalid, fe.Field())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrConfigIncomplete, strings.Join(missing, ", "))
	}
	return fmt.Errorf("%w: bad value for %s", ErrConfigInvalid, strings.Join(invalid, ", "))
}

// DSN renders the record as a postgresql:// URL understood by pgx.
// Keys left unconfigured are omitted rather than defaulted here.
func (c *Config) DSN() string {
	return c.dsn(false)
}

// Redacted is [Config.DSN] with the password masked, safe for logs.
func (c *Config) Redacted() string {
	return c.dsn(true)
}

// Redact returns a copy of the record with the password masked and its
// own Params map, for printing whole records rather than DSNs.
func (c *Config) Redact() Config {
	out := *c
	out.Params = maps.Clone(c.Params)
	if out.Password != "" {
		out.Password = "xxxxx"
	}
	return out
}

func (c *Config) dsn(redact bool) string {
	u := url.URL{
		Scheme: "postgresql",
		Host:   hostPort(c.Host, c.Port),
	}
	if c.Database != "" {
		u.Path = "/" + c.Database
	}
	if c.User != "" {
		switch {
		case c.Password == "":
			u.User = url.User(c.User)
		case redact:
			u.User = url.UserPassword(c.User, "xxxxx")
		default:
			u.User = url.UserPassword(c.User, c.Password)
		}
	}

	q := url.Values{}
	if c.SSLMode != "" {
		q.Set("sslmode", c.SSLMode)
	}
	if c.ApplicationName != "" {
		q.Set("application_name", c.ApplicationName)
	}
	if c.ConnectTimeout > 0 {
		// libpq counts connect_timeout in whole seconds; round up so a
		// sub-second setting does not turn into "wait forever".
		secs := (time.Duration(c.ConnectTimeout) + time.Second - 1) / time.Second
		q.Set("connect_timeout", strconv.Itoa(int(secs)))
	}
	for key, val := range c.Params {
		q.Set(key, val)
	}
	u.RawQuery = q.Encode()

	return u.String()
}

func hostPort(host string, port int) string {
	if port > 0 {
		return net.JoinHostPort(host, strconv.Itoa(port))
	}
	// A bare IPv6 literal still needs brackets inside a URL.
	if strings.Contains(host, ":") {
		return "[" + host + "]"
	}
	return host
}

// Duration wraps time.Duration so JSON records can spell timeouts
// either as strings like "10s" or "10m" or as Go-native nanosecond
// numbers. Bare numbers in database URLs differ: there connect_timeout
// counts whole seconds, following libpq. Strings with a unit suffix
// mean the same thing in both places.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
