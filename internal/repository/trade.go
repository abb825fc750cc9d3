package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kjannette/tradedesk-backend/internal/models"
	"github.com/shopspring/decimal"
)

const tradeColumns = `id, symbol, side, quantity, entry_price, entry_date,
	exit_price, exit_date, status, pnl, pnl_percent, notes, created_at`

type TradeRepo struct {
	pool *pgxpool.Pool
}

func NewTradeRepo(pool *pgxpool.Pool) *TradeRepo {
	return &TradeRepo{pool: pool}
}

// Record inserts t. Trades carrying an exit are stored closed with their
// computed P&L.
func (r *TradeRepo) Record(ctx context.Context, t *models.Trade) (*models.Trade, error) {
	if t.EntryDate.IsZero() {
		t.EntryDate = time.Now()
	}
	if t.Status == "" {
		t.Status = models.StatusOpen
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO trades
		 (symbol, side, quantity, entry_price, entry_date, trading_day,
		  exit_price, exit_date, status, pnl, pnl_percent, notes)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		 RETURNING `+tradeColumns,
		t.Symbol, t.Side, t.Quantity, t.EntryPrice, t.EntryDate, TradingDay(t.EntryDate),
		t.ExitPrice, t.ExitDate, t.Status, t.PnL, t.PnLPercent, t.Notes,
	)
	return scanTrade(row)
}

func (r *TradeRepo) Get(ctx context.Context, id int64) (*models.Trade, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = $1`, id)
	t, err := scanTrade(row)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

// List returns the most recent trades. An empty status returns all.
func (r *TradeRepo) List(ctx context.Context, status string, limit int) ([]models.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades`
	args := []any{}
	if status != "" {
		args = append(args, status)
		query += " WHERE status = $1"
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY entry_date DESC, id DESC LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTrades(rows)
}

// Close settles an open trade inside a transaction so two concurrent
// closes cannot both succeed.
func (r *TradeRepo) Close(ctx context.Context, id int64, exitPrice decimal.Decimal, at time.Time) (*models.Trade, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	t, err := scanTrade(tx.QueryRow(ctx, `SELECT `+tradeColumns+` FROM trades WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err)
	}
	if err := t.Close(exitPrice, at); err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx,
		`UPDATE trades
		 SET exit_price = $2, exit_date = $3, status = $4, pnl = $5, pnl_percent = $6
		 WHERE id = $1
		 RETURNING `+tradeColumns,
		id, t.ExitPrice, t.ExitDate, t.Status, t.PnL, t.PnLPercent,
	)
	closed, err := scanTrade(row)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return closed, nil
}

func (r *TradeRepo) Stats(ctx context.Context) (*models.TradeStats, error) {
	var s models.TradeStats
	err := r.pool.QueryRow(ctx,
		`SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'open'),
			COUNT(*) FILTER (WHERE status = 'closed'),
			COUNT(*) FILTER (WHERE pnl > 0),
			COUNT(*) FILTER (WHERE pnl < 0),
			COALESCE(SUM(pnl), 0)
		 FROM trades`,
	).Scan(&s.TotalTrades, &s.OpenTrades, &s.Closed, &s.Winners, &s.Losers, &s.RealizedPnL)
	if err != nil {
		return nil, err
	}
	if s.Closed > 0 {
		s.WinRate = float64(s.Winners) / float64(s.Closed) * 100
	}
	return &s, nil
}

// CountToday counts trades opened on the current IST trading day.
func (r *TradeRepo) CountToday(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM trades WHERE trading_day = $1`,
		TradingDayNow(),
	).Scan(&count)
	return count, err
}

func (r *TradeRepo) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM trades`).Scan(&count)
	return count, err
}

// --- scan helpers ---

func scanTrade(row scannable) (*models.Trade, error) {
	var t models.Trade
	err := row.Scan(
		&t.ID, &t.Symbol, &t.Side, &t.Quantity, &t.EntryPrice, &t.EntryDate,
		&t.ExitPrice, &t.ExitDate, &t.Status, &t.PnL, &t.PnLPercent, &t.Notes, &t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTrades(rows rowsIter) ([]models.Trade, error) {
	out := []models.Trade{}
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}
