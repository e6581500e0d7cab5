// Package postgres opens the relational result store and applies its schema.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"bigfive/internal/platform/config"
)

// Open connects with the pgx database/sql driver. It returns nil when no
// URL is configured.
func Open(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	db, err := sql.Open("pgx", cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxIdleTime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return db, nil
}

// MigrateRuns creates the runs table when missing.
func MigrateRuns(ctx context.Context, db *sql.DB, table string) error {
	stmt := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	hash text PRIMARY KEY,
	results jsonb NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now()
)`, pq.QuoteIdentifier(table))
	if _, err := db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("migrate %s: %w", table, err)
	}
	return nil
}

// MigrateResults creates the result records table and its hash index.
func MigrateResults(ctx context.Context, db *sql.DB, table string) error {
	t := pq.QuoteIdentifier(table)
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	id uuid PRIMARY KEY,
	suite_hash text NOT NULL DEFAULT '',
	record jsonb NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now()
)`, t),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (suite_hash, created_at)`, pq.QuoteIdentifier(table+"_suite_hash_idx"), t),
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", table, err)
		}
	}
	return nil
}
