// Package postgres opens the shared SQL connection pool and applies the
// store schema on startup.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"casegate/internal/platform/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS rule_overrides (
    case_id       TEXT        NOT NULL,
    rule_id       TEXT        NOT NULL,
    override_id   TEXT        NOT NULL,
    reason        TEXT        NOT NULL,
    overridden_by TEXT        NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (case_id, rule_id)
);

CREATE TABLE IF NOT EXISTS change_requests (
    id         TEXT        NOT NULL,
    collection TEXT        NOT NULL,
    record     JSONB       NOT NULL,
    sort_key   TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (collection, id)
);

CREATE INDEX IF NOT EXISTS change_requests_sort
    ON change_requests (collection, sort_key DESC);
`

// Open connects to PostgreSQL, verifies the connection, and ensures the
// schema exists.
func Open(ctx context.Context, cfg config.PostgresConfig) (*sql.DB, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return db, nil
}
