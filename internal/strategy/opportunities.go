package strategy

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/kjannette/tradedesk-backend/internal/models"
)

// DefaultThreshold is the percent move that makes a mover interesting.
const DefaultThreshold = 5.0

// NewStrategyTemplate seeds the content of a strategy created without one.
const NewStrategyTemplate = "# New Trading Strategy\n\n## Rules:\n\n### Buy Conditions:\n- \n\n### Sell Conditions:\n- \n\n## Risk Management:\n- "

type Opportunities struct {
	Threshold float64        `json:"threshold"`
	Buy       []models.Mover `json:"buyOpportunities"`
	Sell      []models.Mover `json:"sellOpportunities"`
}

// Scan splits movers into mean-reversion candidates: anything down at
// least threshold percent is a buy, anything up at least threshold percent
// is a sell. Buys are ordered by largest drop, sells by largest gain.
func Scan(movers []models.Mover, threshold float64) (*Opportunities, error) {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) || threshold <= 0 {
		return nil, fmt.Errorf("threshold must be a positive number, got %v", threshold)
	}

	out := &Opportunities{
		Threshold: threshold,
		Buy:       []models.Mover{},
		Sell:      []models.Mover{},
	}
	for _, m := range movers {
		switch {
		case m.Change <= -threshold:
			out.Buy = append(out.Buy, m)
		case m.Change >= threshold:
			out.Sell = append(out.Sell, m)
		}
	}

	slices.SortStableFunc(out.Buy, func(a, b models.Mover) int { return cmp.Compare(a.Change, b.Change) })
	slices.SortStableFunc(out.Sell, func(a, b models.Mover) int { return cmp.Compare(b.Change, a.Change) })
	return out, nil
}
