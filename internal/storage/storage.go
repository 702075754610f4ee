package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names
const (
	DriverCGO    = "sqlite3"
	DriverPureGo = "sqlite"
)

// ErrNotFound is returned by lookups that match no row
var ErrNotFound = errors.New("not found")

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries holds every statement the reconcilers need. It is embedded by
// both Storage and Tx so the same lookups run inside or outside a transaction.
type queries struct {
	q querier
}

// Storage is the relational store for groups, welcomers and visitor records
type Storage struct {
	queries
	db     *sql.DB
	driver string
	path   string
}

// Tx is a transaction scope over the store
type Tx struct {
	queries
	tx *sql.Tx
}

// NewStorage opens (creating if needed) the SQLite database at path and
// applies the schema. driver selects the cgo or the pure-Go SQLite driver.
func NewStorage(path, driver string) (*Storage, error) {
	if driver == "" {
		driver = DriverCGO
	}
	if driver != DriverCGO && driver != DriverPureGo {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open(driver, dsn(path, driver))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Runs are single-threaded; one connection keeps pragmas and
	// transaction scope on the same handle.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	s := &Storage{
		queries: queries{q: db},
		db:      db,
		driver:  driver,
		path:    path,
	}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return s, nil
}

func dsn(path, driver string) string {
	if driver == DriverPureGo {
		return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	}
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
}

// Close closes the underlying database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Path returns the database file location
func (s *Storage) Path() string {
	return s.path
}

// Driver returns the database/sql driver in use
func (s *Storage) Driver() string {
	return s.driver
}

// WithTx runs fn inside a single transaction. The transaction commits when fn
// returns nil and rolls back otherwise, so a batch is never left half-applied.
func (s *Storage) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&Tx{queries: queries{q: sqlTx}, tx: sqlTx}); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}
