package risk

import (
	"context"
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// ErrBlocked is wrapped by every limit violation so callers can tell a
// refused trade apart from a failed lookup.
var ErrBlocked = errors.New("trade blocked")

// DailyTradeCounter abstracts the trade-counting dependency so Guardian
// can be tested without a real database.
type DailyTradeCounter interface {
	CountToday(ctx context.Context) (int, error)
}

// Limits holds the journal's risk thresholds from config.
// A zero value for any field means that check is disabled.
type Limits struct {
	MaxDailyTrades   int
	MaxPositionValue decimal.Decimal
}

type Guardian struct {
	limits  Limits
	counter DailyTradeCounter
}

func NewGuardian(limits Limits, counter DailyTradeCounter) *Guardian {
	return &Guardian{limits: limits, counter: counter}
}

func (g *Guardian) Limits() Limits { return g.limits }

// PreTradeCheck validates per-trade constraints before a trade is recorded.
// Returns nil if the trade is allowed, an error wrapping ErrBlocked if not.
func (g *Guardian) PreTradeCheck(ctx context.Context, positionValue decimal.Decimal) error {
	if g.limits.MaxPositionValue.IsPositive() && positionValue.GreaterThan(g.limits.MaxPositionValue) {
		return fmt.Errorf("%w: position value ₹%s exceeds max ₹%s", ErrBlocked,
			humanize.CommafWithDigits(positionValue.InexactFloat64(), 2),
			humanize.CommafWithDigits(g.limits.MaxPositionValue.InexactFloat64(), 2))
	}

	if g.limits.MaxDailyTrades > 0 && g.counter != nil {
		count, err := g.counter.CountToday(ctx)
		if err != nil {
			return fmt.Errorf("unable to verify daily trade count: %w", err)
		}
		if count >= g.limits.MaxDailyTrades {
			return fmt.Errorf("%w: daily limit of %d trades reached (%d opened today)",
				ErrBlocked, g.limits.MaxDailyTrades, count)
		}
	}

	return nil
}
