// Package migrations creates the PostgreSQL schema used by the proxy store.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

// statements run in order; each is idempotent.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS nft_proxies (
		address        TEXT PRIMARY KEY,
		implementation TEXT NOT NULL,
		state          JSONB NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS nft_proxies_created_at_idx ON nft_proxies (created_at)`,
	`CREATE TABLE IF NOT EXISTS nft_proxy_upgrades (
		id             BIGSERIAL PRIMARY KEY,
		address        TEXT NOT NULL REFERENCES nft_proxies (address),
		implementation TEXT NOT NULL,
		upgraded_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS nft_proxy_upgrades_address_idx ON nft_proxy_upgrades (address)`,
}

// Apply executes every migration statement against db.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}

// Count reports how many statements Apply runs.
func Count() int {
	return len(statements)
}
