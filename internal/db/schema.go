package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The price-history foreign key references watchlist(stock_symbol) so that
// appends for untracked symbols are rejected at the store, even when they
// race a concurrent removal.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS watchlist (
		id            BIGSERIAL PRIMARY KEY,
		stock_symbol  TEXT NOT NULL UNIQUE,
		short_name    TEXT NOT NULL DEFAULT '',
		data          JSONB,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS stockprices (
		id            BIGSERIAL PRIMARY KEY,
		stock_symbol  TEXT NOT NULL REFERENCES watchlist(stock_symbol),
		price         NUMERIC(12,2) NOT NULL,
		timestamp     TIMESTAMPTZ NOT NULL,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (stock_symbol, timestamp)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stockprices_symbol_ts
		ON stockprices (stock_symbol, timestamp)`,
}

// Migrate creates the schema if it does not exist yet. Statements are
// idempotent, so running at every startup is safe.
func Migrate(ctx context.Context, p *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := p.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
