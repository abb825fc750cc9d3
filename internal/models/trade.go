package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	SideBuy  = "buy"
	SideSell = "sell"

	StatusOpen   = "open"
	StatusClosed = "closed"
)

var (
	ErrTradeClosed  = errors.New("trade already closed")
	ErrInvalidTrade = errors.New("invalid trade")
)

var hundred = decimal.NewFromInt(100)

type Trade struct {
	ID         int64               `json:"id"`
	Symbol     string              `json:"symbol"`
	Side       string              `json:"side"` // "buy" or "sell"
	Quantity   int64               `json:"quantity"`
	EntryPrice decimal.Decimal     `json:"entryPrice"`
	EntryDate  time.Time           `json:"entryDate"`
	ExitPrice  decimal.NullDecimal `json:"exitPrice"`
	ExitDate   *time.Time          `json:"exitDate,omitempty"`
	Status     string              `json:"status"`
	PnL        decimal.NullDecimal `json:"pnl"`
	PnLPercent decimal.NullDecimal `json:"pnlPercent"`
	Notes      string              `json:"notes"`
	CreatedAt  time.Time           `json:"createdAt"`
}

type TradeStats struct {
	TotalTrades int64           `json:"totalTrades"`
	OpenTrades  int64           `json:"openTrades"`
	Closed      int64           `json:"closedTrades"`
	Winners     int64           `json:"winners"`
	Losers      int64           `json:"losers"`
	RealizedPnL decimal.Decimal `json:"realizedPnl"`
	WinRate     float64         `json:"winRate"` // percent of closed trades
}

// Normalize upper-cases the symbol and lower-cases the side.
func (t *Trade) Normalize() {
	t.Symbol = strings.ToUpper(strings.TrimSpace(t.Symbol))
	t.Side = strings.ToLower(strings.TrimSpace(t.Side))
	t.Notes = strings.TrimSpace(t.Notes)
}

func (t *Trade) Validate() error {
	if t.Symbol == "" {
		return fmt.Errorf("%w: symbol is required", ErrInvalidTrade)
	}
	if t.Side != SideBuy && t.Side != SideSell {
		return fmt.Errorf("%w: side %q, expected buy|sell", ErrInvalidTrade, t.Side)
	}
	if t.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidTrade)
	}
	if !t.EntryPrice.IsPositive() {
		return fmt.Errorf("%w: entry price must be positive", ErrInvalidTrade)
	}
	return nil
}

// PositionValue is the capital committed at entry.
func (t *Trade) PositionValue() decimal.Decimal {
	return t.EntryPrice.Mul(decimal.NewFromInt(t.Quantity))
}

// Close settles the trade at exitPrice and computes realised P&L. Short
// (sell) trades profit when the exit is below the entry.
func (t *Trade) Close(exitPrice decimal.Decimal, at time.Time) error {
	if t.Status == StatusClosed {
		return ErrTradeClosed
	}
	if !exitPrice.IsPositive() {
		return fmt.Errorf("%w: exit price must be positive", ErrInvalidTrade)
	}
	if at.Before(t.EntryDate) {
		return fmt.Errorf("%w: exit date precedes entry date", ErrInvalidTrade)
	}

	perShare := exitPrice.Sub(t.EntryPrice)
	if t.Side == SideSell {
		perShare = perShare.Neg()
	}
	pnl := perShare.Mul(decimal.NewFromInt(t.Quantity))

	pct := decimal.Zero
	if cost := t.PositionValue(); !cost.IsZero() {
		pct = pnl.Div(cost).Mul(hundred).Round(2)
	}

	t.ExitPrice = decimal.NewNullDecimal(exitPrice)
	t.ExitDate = &at
	t.PnL = decimal.NewNullDecimal(pnl.Round(2))
	t.PnLPercent = decimal.NewNullDecimal(pct)
	t.Status = StatusClosed
	return nil
}

func (t *Trade) IsProfit() bool {
	return t.PnL.Valid && t.PnL.Decimal.IsPositive()
}
