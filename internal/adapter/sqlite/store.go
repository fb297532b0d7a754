package sqlite

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // Register SQLite driver.
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store owns the SQLite database and hands out the per-entity
// repositories backed by it.
type Store struct {
	db *sql.DB
}

// Open opens a SQLite database, runs migrations, and returns a ready store.
func Open(dataSourceName string) (*Store, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	// Enable foreign keys (off by default in SQLite).
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// A single connection serializes writes, which is what makes
	// concurrent status changes for one customer last-writer-wins, and
	// avoids SQLITE_BUSY when sharing the file with the job queue.
	db.SetMaxOpenConns(1)

	return NewFromDB(db)
}

// NewFromDB wraps an existing database connection, runs migrations, and
// returns a ready store. Use this when the *sql.DB has been pre-configured
// (e.g., with otelsql instrumentation).
func NewFromDB(db *sql.DB) (*Store, error) {
	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for use by other adapters
// (e.g., river).
func (s *Store) DB() *sql.DB {
	return s.db
}

// Tenants returns the tenant repository backed by this store.
func (s *Store) Tenants() *TenantRepository {
	return &TenantRepository{db: s.db}
}

// Customers returns the customer repository backed by this store.
func (s *Store) Customers() *CustomerRepository {
	return &CustomerRepository{db: s.db}
}

// Integrations returns the integration repository backed by this store.
func (s *Store) Integrations() *IntegrationRepository {
	return &IntegrationRepository{db: s.db}
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

const timeFormat = "2006-01-02T15:04:05Z"
