package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stephenafamo/bob"
	_ "modernc.org/sqlite"

	"github.com/carson-networks/ledger-forensics/internal/config"
	"github.com/carson-networks/ledger-forensics/internal/storage/sqlconfig"
)

//go:embed migrations
var migrations embed.FS

type Storage struct {
	DB           *sql.DB
	Dialect      sqlconfig.Dialect
	Transactions sqlconfig.ITransactionTable

	exec bob.DB
}

// NewStorage opens the Postgres database described by env.
func NewStorage(env *config.Config) (*Storage, error) {
	db, err := sql.Open("postgres", env.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return newStorage(db, sqlconfig.DialectPostgres), nil
}

// NewSQLiteStorage opens (or creates) the SQLite database file at path.
func NewSQLiteStorage(path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection keeps writers from hitting SQLITE_BUSY
	db.SetMaxOpenConns(1)
	return newStorage(db, sqlconfig.DialectSQLite), nil
}

func newStorage(db *sql.DB, dialect sqlconfig.Dialect) *Storage {
	exec := bob.NewDB(db)
	return &Storage{
		DB:           db,
		Dialect:      dialect,
		Transactions: sqlconfig.NewTransactionsTable(exec, dialect),
		exec:         exec,
	}
}

// Migrate applies every embedded migration for the storage dialect and
// returns the schema version before and after.
func (s *Storage) Migrate() (pre uint, post uint, err error) {
	source, err := iofs.New(migrations, "migrations/"+string(s.Dialect))
	if err != nil {
		return 0, 0, fmt.Errorf("iofs.New: %w", err)
	}

	var driver database.Driver
	switch s.Dialect {
	case sqlconfig.DialectSQLite:
		driver, err = migratesqlite.WithInstance(s.DB, &migratesqlite.Config{})
	default:
		driver, err = postgres.WithInstance(s.DB, &postgres.Config{})
	}
	if err != nil {
		return 0, 0, fmt.Errorf("%s.WithInstance: %w", s.Dialect, err)
	}

	// m.Close is not called: it would close s.DB along with the driver.
	m, err := migrate.NewWithInstance("iofs", source, string(s.Dialect), driver)
	if err != nil {
		return 0, 0, fmt.Errorf("migrate.NewWithInstance: %w", err)
	}

	pre, _, err = m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, 0, fmt.Errorf("m.Version.preMigrationVersion: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return pre, 0, fmt.Errorf("m.Up: %w", err)
	}

	post, _, err = m.Version()
	if err != nil {
		return pre, 0, fmt.Errorf("m.Version.postMigrationVersion: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"dialect":              s.Dialect,
		"preMigrationVersion":  pre,
		"postMigrationVersion": post,
	}).Info("Migration status")

	return pre, post, nil
}

// Write starts a transaction. The caller must Commit or Rollback the
// returned Writer.
func (s *Storage) Write(ctx context.Context) (*Writer, error) {
	tx, err := s.exec.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return NewWriter(tx, s.Dialect), nil
}

func (s *Storage) Close() error {
	return s.DB.Close()
}
