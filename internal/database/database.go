package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"ducksnap/internal/config"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Open connects to PostgreSQL through the pgx stdlib driver and applies the pool limits.
func Open(ctx context.Context, databaseURL string, development bool, logger zerolog.Logger) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, config.ErrMissingDatabaseURL
	}

	db, err := sql.Open("pgx", NormalizeDSN(databaseURL, development))
	if err != nil {
		return nil, fmt.Errorf("open db connection: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	logger.Info().Msg("Database connection successful")

	// Set reasonable connection pool limits
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}

// NormalizeDSN disables SSL for local development and, elsewhere, switches to
// the simple query protocol so transaction poolers such as pgbouncer work.
func NormalizeDSN(dsn string, development bool) string {
	isURL := strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
	add := func(kv string) {
		switch {
		case !isURL:
			dsn += " " + kv
		case strings.Contains(dsn, "?"):
			dsn += "&" + kv
		default:
			dsn += "?" + kv
		}
	}

	if development && !strings.Contains(dsn, "sslmode") {
		add("sslmode=disable")
	}
	if !development && !strings.Contains(dsn, "default_query_exec_mode") {
		add("default_query_exec_mode=simple_protocol")
	}
	return dsn
}

// Migrate applies all pending embedded migrations.
func Migrate(db *sql.DB, logger zerolog.Logger) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("load embedded migrations: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create postgres migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info().Msg("No migrations to apply")
			return nil
		}
		return fmt.Errorf("migration up failed: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("get migration version: %w", err)
	}
	logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("Migrations applied")
	return nil
}
