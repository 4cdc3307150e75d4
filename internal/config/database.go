package config

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/Kerhoff/todoapi/internal/repository/sqlstore"
)

//go:embed schema
var schemaFS embed.FS

// schemaSource opens the embedded schema files of a dialect.
var schemaSource = func(dialect sqlstore.Dialect) (source.Driver, error) {
	return iofs.New(schemaFS, "schema/"+string(dialect))
}

// sqlitePragmas are applied to every pooled SQLite connection.
const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"

// Database holds database connection and configuration
type Database struct {
	*sql.DB
	Dialect sqlstore.Dialect
	dsn     string
	logger  *logrus.Logger
}

// ParseDatabaseURL maps a DATABASE_URL onto a dialect and the DSN handed to
// its database/sql driver.
func ParseDatabaseURL(databaseURL string) (sqlstore.Dialect, string, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return sqlstore.Postgres, databaseURL, nil
	case strings.HasPrefix(databaseURL, "sqlite://"), strings.HasPrefix(databaseURL, "file:"):
		path := strings.TrimPrefix(databaseURL, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("DATABASE_URL %q has no sqlite path", databaseURL)
		}
		if strings.Contains(path, ":memory:") || strings.Contains(path, "mode=memory") {
			return "", "", fmt.Errorf("in-memory sqlite is not supported, use a file path")
		}
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return sqlstore.SQLite, path + sep + sqlitePragmas, nil
	default:
		return "", "", fmt.Errorf("unsupported DATABASE_URL scheme in %q", databaseURL)
	}
}

// NewDatabase creates a new database connection
func NewDatabase(databaseURL string, pool PoolConfig, logger *logrus.Logger) (*Database, error) {
	dialect, dsn, err := ParseDatabaseURL(databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(pool.MaxOpenConns)
	db.SetMaxIdleConns(pool.MaxIdleConns)
	db.SetConnMaxLifetime(pool.ConnMaxLifetime)

	// Test connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.WithField("dialect", dialect).Info("Database connection established successfully")

	return &Database{
		DB:      db,
		Dialect: dialect,
		dsn:     dsn,
		logger:  logger,
	}, nil
}

// Migrate creates the todos table if it does not exist yet
func (d *Database) Migrate() error {
	m, err := d.schema()
	if err != nil {
		return err
	}
	defer d.closeSchema(m)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	d.logger.Info("Database schema is up to date")
	return nil
}

// Drop removes the todos table by applying the down schema
func (d *Database) Drop() error {
	m, err := d.schema()
	if err != nil {
		return err
	}
	defer d.closeSchema(m)

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to drop schema: %w", err)
	}

	d.logger.Info("Database schema dropped")
	return nil
}

// schema opens a migrate instance on a dedicated handle so that closing it
// leaves the application pool untouched.
func (d *Database) schema() (*migrate.Migrate, error) {
	src, err := schemaSource(d.Dialect)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded schema: %w", err)
	}

	db, err := sql.Open(d.Dialect.DriverName(), d.dsn)
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("failed to open schema connection: %w", err)
	}

	var driver database.Driver
	switch d.Dialect {
	case sqlstore.Postgres:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	case sqlstore.SQLite:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	default:
		err = fmt.Errorf("unsupported dialect %q", d.Dialect)
	}
	if err != nil {
		_ = src.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, string(d.Dialect), driver)
	if err != nil {
		_ = src.Close()
		_ = driver.Close()
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	m.Log = &migrateLogger{entry: d.logger.WithField("component", "schema")}
	return m, nil
}

func (d *Database) closeSchema(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		d.logger.WithError(srcErr).Warn("failed to close schema source")
	}
	if dbErr != nil {
		d.logger.WithError(dbErr).Warn("failed to close schema connection")
	}
}

// Close closes the database connection
func (d *Database) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}

// migrateLogger adapts logrus to migrate.Logger.
type migrateLogger struct {
	entry *logrus.Entry
}

func (l *migrateLogger) Printf(format string, v ...any) {
	l.entry.Debugf(strings.TrimSuffix(format, "\n"), v...)
}

func (l *migrateLogger) Verbose() bool {
	return l.entry.Logger.IsLevelEnabled(logrus.DebugLevel)
}
