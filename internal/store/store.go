package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abhisek/sqldrill/internal/logger"

	// MySQL driver for the primary relational store.
	_ "github.com/go-sql-driver/mysql"
	// Pure Go SQLite driver (no CGO) for local use and tests.
	_ "modernc.org/sqlite"
)

// Config selects the relational backend.
type Config struct {
	// Driver is "mysql" or "sqlite".
	Driver string

	// DSN is the driver connection string. For sqlite this is a file
	// path (or ":memory:" style DSN).
	DSN string

	// MaxOpenConns bounds the pool. Background writers get their own
	// pooled connections, so concurrent statement execution is safe.
	MaxOpenConns int
}

// DefaultConfig returns a Config pointing at a local SQLite file.
func DefaultConfig() (Config, error) {
	p, err := DefaultDBPath()
	if err != nil {
		return Config{}, err
	}
	return Config{Driver: "sqlite", DSN: p, MaxOpenConns: 4}, nil
}

// ConfigFromEnv builds a Config from SQLDRILL_DB_DRIVER / SQLDRILL_DSN,
// falling back to the local SQLite default.
func ConfigFromEnv() (Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}
	if d := os.Getenv("SQLDRILL_DB_DRIVER"); d != "" {
		cfg.Driver = d
	}
	if dsn := os.Getenv("SQLDRILL_DSN"); dsn != "" {
		cfg.DSN = dsn
	}
	return cfg, nil
}

// Validate checks the config names a supported driver.
func (c Config) Validate() error {
	switch c.Driver {
	case "mysql", "sqlite":
		return nil
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Driver)
	}
}

// Store holds the connection pool and provides access to repositories.
type Store struct {
	db      *sql.DB
	driver  string
	log     *logger.Logger
	gateway *Gateway
}

// Open connects to the configured database, applies driver settings and
// creates the schema if it does not exist.
func Open(cfg Config, log *logger.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop()
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	db.SetConnMaxIdleTime(5 * time.Minute)

	if cfg.Driver == "sqlite" {
		if err := applyPragmas(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply pragmas: %w", err)
		}
	}

	gw := NewGateway(db, log)

	s := &Store{db: db, driver: cfg.Driver, log: log, gateway: gw}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return s, nil
}

// Gateway returns the raw query gateway.
func (s *Store) Gateway() *Gateway {
	return s.gateway
}

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// QuestionRepo returns a QuestionRepo backed by this store.
func (s *Store) QuestionRepo() QuestionRepo {
	return &questionRepo{gw: s.gateway}
}

// AttemptRepo returns an AttemptRepo backed by this store.
func (s *Store) AttemptRepo() AttemptRepo {
	return &attemptRepo{gw: s.gateway}
}

// applyPragmas configures SQLite for single-user performance.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// DefaultDBPath resolves the SQLite file path in priority order:
// 1. SQLDRILL_DB environment variable
// 2. $XDG_DATA_HOME/sqldrill/sqldrill.db
// 3. ~/.local/share/sqldrill/sqldrill.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("SQLDRILL_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "sqldrill", "sqldrill.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
