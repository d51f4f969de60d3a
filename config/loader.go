package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"dario.cat/mergo"
	"github.com/google/uuid"
)

// DefaultBaseFile is the base configuration file name looked up in
// the configuration directory.
const DefaultBaseFile = "pgdb.json"

// Wrapper-imposed session defaults, applied when the configuration
// does not say otherwise.
const (
	DefaultConnectTimeout   = Duration(10 * time.Second)
	DefaultStatementTimeout = Duration(10 * time.Minute)
)

// Source records which sources produced a [Config].
type Source struct {
	// EnvVar is set when the record came from a PGDB_RW or PGDB_RO
	// URL; the file paths are then empty.
	EnvVar string
	// BasePath is the base file that was read.
	BasePath string
	// HostPath is the per-host override file, empty when none was
	// applied.
	HostPath string
}

func (s Source) String() string {
	switch {
	case s.EnvVar != "":
		return "env " + s.EnvVar
	case s.HostPath != "":
		return s.BasePath + " + " + s.HostPath
	case s.BasePath != "":
		return s.BasePath
	default:
		return "explicit"
	}
}

// Load resolves the connection record for mode. Precedence:
//
//  1. a database URL in PGDB_RW or PGDB_RO, matching mode;
//  2. the base file merged with the per-host override file, override
//     keys winning;
//  3. the base file alone.
//
// A missing base file is [ErrConfigNotFound]. A present but
// unreadable source, base or override, fails loading rather than
// being skipped. The merged record is validated before it is
// returned.
func Load(loc *Locator, baseFile string, mode Mode) (*Config, error) {
	if baseFile == "" {
		baseFile = DefaultBaseFile
	}

	if raw := loc.databaseURL(mode); raw != "" {
		cfg, err := ParseDatabaseURL(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", mode.EnvVar(), err)
		}
		cfg.Source = Source{EnvVar: mode.EnvVar()}
		cfg.applyDefaults(loc)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	basePath := loc.BasePath(baseFile)
	record, err := readRecord(basePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, basePath)
		}
		return nil, err
	}
	src := Source{BasePath: basePath}

	hostPath := loc.HostPath(baseFile)
	override, err := readRecord(hostPath)
	switch {
	case err == nil:
		if err := mergo.Merge(&record, override, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("error merging config records: %w", err)
		}
		src.HostPath = hostPath
	case errors.Is(err, fs.ErrNotExist):
		// No override for this host; the base record stands alone.
	default:
		return nil, err
	}

	cfg, err := decodeRecord(record)
	if err != nil {
		return nil, err
	}
	cfg.Source = src
	cfg.applyDefaults(loc)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// readRecord decodes one JSON file into a flat record. The not-exist
// case stays recognizable through the wrap so Load can tell "absent"
// from "broken".
func readRecord(path string) (map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	defer f.Close()

	var record map[string]any
	if err := json.NewDecoder(f).Decode(&record); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigInvalid, path, err)
	}
	return record, nil
}

// knownKeys are the record keys decoded into [Config] fields; any
// other key is carried through [Config.Params].
var knownKeys = map[string]bool{
	"host":              true,
	"port":              true,
	"database":          true,
	"user":              true,
	"password":          true,
	"sslmode":           true,
	"application_name":  true,
	"connect_timeout":   true,
	"statement_timeout": true,
	"params":            true,
}

func decodeRecord(record map[string]any) (*Config, error) {
	buf, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	var cfg Config
	if err := json.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	for key, val := range record {
		if knownKeys[key] {
			continue
		}
		if cfg.Params == nil {
			cfg.Params = make(map[string]string)
		}
		cfg.Params[key] = paramString(val)
	}
	return &cfg, nil
}

func paramString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// applyDefaults fills the wrapper defaults into a loaded record:
// connect and statement timeouts, and an application_name of the form
// hostname.pid.uid.prog so sessions are attributable from
// pg_stat_activity. uid comes from UNIQUE_ID when set, otherwise a
// fresh random tag.
func (c *Config) applyDefaults(loc *Locator) {
	if c.ConnectTimeout == 0 {
		c.ConnectTimeout = DefaultConnectTimeout
	}
	if c.StatementTimeout == 0 {
		c.StatementTimeout = DefaultStatementTimeout
	}
	if c.ApplicationName == "" {
		uid := loc.uniqueID()
		if uid == "" {
			uid = uuid.NewString()[:8]
		}
		prog := filepath.Base(os.Args[0])
		c.ApplicationName = fmt.Sprintf("%s.%d.%s.%s", loc.Hostname(), os.Getpid(), uid, prog)
	}
}
