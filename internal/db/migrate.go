package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS trades (
		id           BIGSERIAL PRIMARY KEY,
		symbol       TEXT NOT NULL,
		side         TEXT NOT NULL CHECK (side IN ('buy', 'sell')),
		quantity     BIGINT NOT NULL CHECK (quantity > 0),
		entry_price  NUMERIC(14,2) NOT NULL,
		entry_date   TIMESTAMPTZ NOT NULL,
		trading_day  DATE NOT NULL,
		exit_price   NUMERIC(14,2),
		exit_date    TIMESTAMPTZ,
		status       TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'closed')),
		pnl          NUMERIC(14,2),
		pnl_percent  NUMERIC(8,2),
		notes        TEXT NOT NULL DEFAULT '',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_trades_entry_date ON trades(entry_date DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_trades_trading_day ON trades(trading_day)`,

	`CREATE TABLE IF NOT EXISTS journal_entries (
		id          BIGSERIAL PRIMARY KEY,
		entry_date  DATE NOT NULL,
		title       TEXT NOT NULL,
		content     TEXT NOT NULL DEFAULT '',
		tags        TEXT[] NOT NULL DEFAULT '{}',
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_journal_date ON journal_entries(entry_date DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_journal_tags ON journal_entries USING GIN(tags)`,

	`CREATE TABLE IF NOT EXISTS strategies (
		id           BIGSERIAL PRIMARY KEY,
		name         TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		content      TEXT NOT NULL DEFAULT '',
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS settings (
		id                INT PRIMARY KEY CHECK (id = 1),
		theme             TEXT NOT NULL,
		refresh_interval  INT NOT NULL,
		auto_sync_broker  BOOLEAN NOT NULL,
		trade_alerts      BOOLEAN NOT NULL,
		price_alerts      BOOLEAN NOT NULL,
		ai_insights       BOOLEAN NOT NULL,
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS analysis_runs (
		id              UUID PRIMARY KEY,
		source          TEXT NOT NULL,
		symbols         TEXT[] NOT NULL,
		time_range      TEXT NOT NULL,
		summary         TEXT NOT NULL,
		insights        TEXT[] NOT NULL,
		recommendation  TEXT NOT NULL,
		confidence      DOUBLE PRECISION NOT NULL,
		duration_ms     BIGINT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_analysis_created ON analysis_runs(created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_analysis_symbols ON analysis_runs USING GIN(symbols)`,
}

// Migrate creates any missing tables and indexes. It is safe to run on
// every start.
func Migrate(ctx context.Context, p *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := p.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	fmt.Printf("[DB] Schema ready (%d statements)\n", len(schema))
	return nil
}
