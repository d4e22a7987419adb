// Package config loads the quillcms configuration file: which storage backend
// to use, how to reach it, and how the process should log.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/quillcms/quillcms/pkg/store"
)

// Backend names a storage adapter.
type Backend string

const (
	BackendSQLite     Backend = "sqlite"
	BackendPostgreSQL Backend = "postgres"
	BackendSurrealDB  Backend = "surrealdb"
)

// SQLiteConfig locates the hybrid-JSON database file.
type SQLiteConfig struct {
	// Path is the database file; created on first StartUp.
	Path string `yaml:"path"`
}

// PostgreSQLConfig reaches the relational backend.
type PostgreSQLConfig struct {
	// DSN in libpq keyword form, e.g.
	// "host=localhost user=quillcms dbname=quillcms sslmode=disable".
	DSN string `yaml:"dsn"`
}

// RetryConfig tunes the backoff applied to the document backend's calls.
// Zero values fall back to the built-in defaults.
type RetryConfig struct {
	InitialDelay time.Duration `yaml:"initial_delay"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Multiplier   float64       `yaml:"multiplier"`
	MaxRetries   int           `yaml:"max_retries"`
	JitterFactor float64       `yaml:"jitter_factor"`
}

// Policy converts the knobs to a store retry policy; nil when the section is
// absent so the adapter's default applies.
func (r *RetryConfig) Policy() store.RetryPolicy {
	if r == nil {
		return nil
	}
	policy := store.DefaultBackoff()
	if r.InitialDelay > 0 {
		policy.InitialDelay = r.InitialDelay
	}
	if r.MaxDelay > 0 {
		policy.MaxDelay = r.MaxDelay
	}
	if r.Multiplier > 0 {
		policy.Multiplier = r.Multiplier
	}
	if r.MaxRetries > 0 {
		policy.MaxRetries = r.MaxRetries
	}
	if r.JitterFactor > 0 {
		policy.JitterFactor = r.JitterFactor
	}
	return policy
}

// SurrealDBConfig reaches the document backend.
type SurrealDBConfig struct {
	// URL is the WebSocket endpoint, e.g. ws://localhost:8000/rpc.
	URL       string       `yaml:"url"`
	Namespace string       `yaml:"namespace"`
	Database  string       `yaml:"database"`
	Username  string       `yaml:"username,omitempty"`
	Password  string       `yaml:"password,omitempty"`
	Retry     *RetryConfig `yaml:"retry,omitempty"`
}

// Config is the root of the configuration file.
type Config struct {
	// Backend selects the storage adapter.
	Backend Backend `yaml:"backend"`

	SQLite     SQLiteConfig     `yaml:"sqlite,omitempty"`
	PostgreSQL PostgreSQLConfig `yaml:"postgres,omitempty"`
	SurrealDB  SurrealDBConfig  `yaml:"surrealdb,omitempty"`

	// LogLevel is a zerolog level name (trace, debug, info, warn, error);
	// empty means info.
	LogLevel string `yaml:"log_level,omitempty"`
}

// Default is the configuration used when no file is given: a local SQLite
// database in the working directory.
func Default() *Config {
	return &Config{
		Backend: BackendSQLite,
		SQLite:  SQLiteConfig{Path: "quillcms.db"},
	}
}

// Load reads and validates the configuration at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("sqlite backend needs sqlite.path")
		}
	case BackendPostgreSQL:
		if c.PostgreSQL.DSN == "" {
			return fmt.Errorf("postgres backend needs postgres.dsn")
		}
	case BackendSurrealDB:
		if c.SurrealDB.URL == "" {
			return fmt.Errorf("surrealdb backend needs surrealdb.url")
		}
		if c.SurrealDB.Namespace == "" || c.SurrealDB.Database == "" {
			return fmt.Errorf("surrealdb backend needs surrealdb.namespace and surrealdb.database")
		}
	case "":
		return fmt.Errorf("no backend selected")
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}
