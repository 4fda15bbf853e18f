// ABOUTME: SQLite implementation of LinkStore using database/sql
// ABOUTME: Supports the pure-Go modernc driver and the cgo mattn driver with automatic schema creation

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Driver names accepted by NewSQLiteStore
const (
	DriverModernc = "sqlite"  // modernc.org/sqlite, pure Go
	DriverMattn   = "sqlite3" // github.com/mattn/go-sqlite3, cgo
)

// MemoryPath opens a private in-memory database
const MemoryPath = ":memory:"

const busyTimeout = 5 * time.Second

// SQLiteStore implements LinkStore on a single SQLite database file
type SQLiteStore struct {
	db     *sql.DB
	opts   options
	logger *slog.Logger
}

var _ LinkStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens the database at path with the given driver and creates the
// schema if it doesn't exist. Parent directories are created if needed.
// An empty driver selects DriverModernc.
func NewSQLiteStore(driver, path string, opts ...Option) (*SQLiteStore, error) {
	if driver == "" {
		driver = DriverModernc
	}
	if driver != DriverModernc && driver != DriverMattn {
		return nil, fmt.Errorf("unsupported sqlite driver %q", driver)
	}

	o := newOptions(opts)
	logger := o.logger

	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open(driver, dsn(driver, path))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Each pooled connection to :memory: would get its own empty database
	if path == MemoryPath {
		db.SetMaxOpenConns(1)
	}

	if path != MemoryPath {
		// Enable WAL mode so redirects are not blocked by concurrent writes
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling WAL mode: %w", err)
		}
	}

	s := &SQLiteStore{
		db:     db,
		opts:   o,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "driver", driver, "path", path)
	return s, nil
}

// dsn appends the busy timeout in the syntax each driver understands
func dsn(driver, path string) string {
	if path == MemoryPath {
		return path
	}
	ms := busyTimeout.Milliseconds()
	if driver == DriverMattn {
		return fmt.Sprintf("%s?_busy_timeout=%d", path, ms)
	}
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)", path, ms)
}

// createSchema creates the links table if it doesn't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS links (
			slug       TEXT PRIMARY KEY,
			target     TEXT NOT NULL,
			created_at TEXT NOT NULL
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Put allocates a slug and writes target under it. See LinkStore.Put.
func (s *SQLiteStore) Put(ctx context.Context, custom string, target *url.URL, length int) (string, error) {
	if target == nil {
		return "", errors.New("target is required")
	}

	chosen, err := s.opts.allocate(ctx, custom, length, s.Get)
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO links (slug, target, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			target = excluded.target,
			created_at = excluded.created_at
	`, chosen, target.String(), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return "", fmt.Errorf("writing link %q: %w", chosen, err)
	}

	s.logger.Info("link stored", "slug", chosen)
	return chosen, nil
}

// Get returns the target stored for slug, or ErrNotFound
func (s *SQLiteStore) Get(ctx context.Context, slug string) (*url.URL, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT target FROM links WHERE slug = ?`, slug).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading link %q: %w", slug, err)
	}
	return decodeTarget(slug, raw)
}

// GetLink returns the full record for slug, or ErrNotFound
func (s *SQLiteStore) GetLink(ctx context.Context, slug string) (*Link, error) {
	var raw []byte
	var createdAt string
	err := s.db.QueryRowContext(ctx, `SELECT target, created_at FROM links WHERE slug = ?`, slug).Scan(&raw, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading link %q: %w", slug, err)
	}

	target, err := decodeTarget(slug, raw)
	if err != nil {
		return nil, err
	}
	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("%w: slug %q: created_at: %v", ErrCorrupt, slug, err)
	}

	return &Link{Slug: slug, Target: target, CreatedAt: created}, nil
}

// Ping checks that the database is reachable
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
