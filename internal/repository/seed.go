package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kjannette/tradedesk-backend/internal/sample"
)

// SeedSamples fills empty trade, journal and strategy tables from the
// catalog. Tables that already hold rows are left alone.
func SeedSamples(ctx context.Context, pool *pgxpool.Pool, cat *sample.Catalog) error {
	trades := NewTradeRepo(pool)
	journal := NewJournalRepo(pool)
	strategies := NewStrategyRepo(pool)

	if n, err := trades.Count(ctx); err != nil {
		return fmt.Errorf("count trades: %w", err)
	} else if n == 0 {
		seed, err := cat.Trades()
		if err != nil {
			return err
		}
		for i := range seed {
			if _, err := trades.Record(ctx, &seed[i]); err != nil {
				return fmt.Errorf("seed trade %s: %w", seed[i].Symbol, err)
			}
		}
		fmt.Printf("[DB] Seeded %d trades\n", len(seed))
	}

	if n, err := journal.Count(ctx); err != nil {
		return fmt.Errorf("count journal: %w", err)
	} else if n == 0 {
		seed := cat.JournalEntries()
		for i := range seed {
			if _, err := journal.Create(ctx, &seed[i]); err != nil {
				return fmt.Errorf("seed journal %q: %w", seed[i].Title, err)
			}
		}
		fmt.Printf("[DB] Seeded %d journal entries\n", len(seed))
	}

	if n, err := strategies.Count(ctx); err != nil {
		return fmt.Errorf("count strategies: %w", err)
	} else if n == 0 {
		for i := range cat.Strategies {
			s := cat.Strategies[i]
			if _, err := strategies.Create(ctx, &s); err != nil {
				return fmt.Errorf("seed strategy %q: %w", s.Name, err)
			}
		}
		fmt.Printf("[DB] Seeded %d strategies\n", len(cat.Strategies))
	}

	return nil
}
