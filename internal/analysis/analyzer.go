package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNoSymbols        = errors.New("no symbols selected")
	ErrInvalidTimeRange = errors.New("invalid time range")
)

type TimeRange string

const (
	Day   TimeRange = "day"
	Week  TimeRange = "week"
	Month TimeRange = "month"
	Year  TimeRange = "year"
)

// TimeRanges lists the supported ranges in ascending horizon order.
var TimeRanges = []TimeRange{Day, Week, Month, Year}

func ParseTimeRange(s string) (TimeRange, error) {
	tr := TimeRange(strings.ToLower(strings.TrimSpace(s)))
	if !tr.Valid() {
		return "", fmt.Errorf("%w: %q, expected day|week|month|year", ErrInvalidTimeRange, s)
	}
	return tr, nil
}

func (tr TimeRange) Valid() bool {
	switch tr {
	case Day, Week, Month, Year:
		return true
	}
	return false
}

type Recommendation string

const (
	Buy  Recommendation = "buy"
	Sell Recommendation = "sell"
	Hold Recommendation = "hold"
)

func (r Recommendation) Valid() bool {
	return r == Buy || r == Sell || r == Hold
}

type Request struct {
	Symbols   []string  `json:"symbols"`
	TimeRange TimeRange `json:"timeRange"`
}

// Validate enforces the precondition every caller must check before
// handing a request to an Analyzer.
func (r Request) Validate() error {
	if len(r.Symbols) == 0 {
		return ErrNoSymbols
	}
	for _, s := range r.Symbols {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: blank symbol", ErrNoSymbols)
		}
	}
	if !r.TimeRange.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidTimeRange, r.TimeRange)
	}
	return nil
}

type Response struct {
	Summary        string         `json:"summary"`
	Insights       []string       `json:"insights"`
	Recommendation Recommendation `json:"recommendation"`
	Confidence     float64        `json:"confidence"` // 0-1
}

// Analyzer produces a market narrative and advisory tag for a set of
// instruments. The simulated Stub and the DeepSeek client both satisfy it.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (*Response, error)
}

// AnalyzerFunc adapts a plain function to the Analyzer interface.
type AnalyzerFunc func(ctx context.Context, req Request) (*Response, error)

func (f AnalyzerFunc) Analyze(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}
