package analysis

import (
	"fmt"
	"math"
	"strings"
)

type narrative struct {
	summary  string
	insights []string
}

var sensexLongNarrative = narrative{
	summary: "Sensex has shown resilience amidst global economic challenges.",
	insights: []string{
		"Domestic factors overshadowing global concerns",
		"Valuation getting stretched but supported by earnings growth",
		"Potential for further upside with some intermittent corrections",
	},
}

var indexNarratives = map[Subject]map[TimeRange]narrative{
	SubjectNifty50: {
		Day: {
			summary: "Nifty 50 shows minor intraday fluctuations with support around 22,650 levels.",
			insights: []string{
				"Volume activity indicates institutional buying at lower levels",
				"IT and Banking sectors showing divergent intraday patterns",
				"Intraday resistance levels identified at 22,780",
			},
		},
		Week: {
			summary: "Nifty 50 has formed a bullish pattern over the past week, breaking above key resistance levels.",
			insights: []string{
				"Weekly momentum indicators suggest continued upward momentum",
				"Financials and IT sectors leading the weekly gains",
				"Volume pattern confirms the strength of the current rally",
			},
		},
		Month: {
			summary: "Nifty 50 is showing signs of consolidation after the recent month-long rally.",
			insights: []string{
				"Monthly RSI approaching overbought territory",
				"Potential for profit booking in the near term",
				"Key support levels established at 22,000",
			},
		},
		Year: {
			summary: "Nifty 50 has maintained its upward trajectory throughout the year despite global challenges.",
			insights: []string{
				"Yearly trend remains firmly bullish",
				"Corrections have been shallow, indicating strong market structure",
				"Foreign institutional investment remains positive for Indian equities",
			},
		},
	},
	SubjectSensex: {
		Day: {
			summary: "Sensex is trading flat with mixed sector performance.",
			insights: []string{
				"Heavyweight stocks showing resistance at current levels",
				"Low intraday volatility suggests indecision",
				"Support established at 74,500 levels",
			},
		},
		Week: {
			summary: "Sensex has outperformed global indices over the past week.",
			insights: []string{
				"Banking stocks driving the weekly performance",
				"Technical indicators suggest sustained momentum",
				"Break above 75,000 could trigger further buying",
			},
		},
		Month: sensexLongNarrative,
		Year:  sensexLongNarrative,
	},
}

// either draws once and returns a when the draw exceeds threshold.
func (s *Stub) either(threshold float64, a, b string) string {
	if s.rnd.Float64() > threshold {
		return a
	}
	return b
}

func (s *Stub) singleNarrative(symbol string, tr TimeRange) narrative {
	if HorizonOf(tr) == ShortHorizon {
		summary := fmt.Sprintf("%s is showing %s in recent %s trading.",
			symbol, s.either(0.5, "strength", "weakness"), tr)
		ma := fmt.Sprintf("%s %s key moving averages", symbol, s.either(0.5, "above", "below"))
		volume := fmt.Sprintf("Volume analysis suggests %s", s.either(0.5, "accumulation", "distribution"))
		relative := fmt.Sprintf("Relative strength compared to sector is %s", s.either(0.5, "positive", "negative"))
		return narrative{summary: summary, insights: []string{ma, volume, relative}}
	}

	summary := fmt.Sprintf("%s has been in a %s over the %s.",
		symbol, s.either(0.6, "strong uptrend", "consolidation phase"), tr)
	fundamentals := fmt.Sprintf("Fundamental metrics are %s", s.either(0.6, "improving", "deteriorating"))
	technical := fmt.Sprintf("Technical structure remains %s on %s chart", s.either(0.5, "bullish", "bearish"), tr)
	sector := fmt.Sprintf("%s %s its sector", symbol, s.either(0.5, "outperforming", "underperforming"))
	return narrative{summary: summary, insights: []string{fundamentals, technical, sector}}
}

func (s *Stub) basketNarrative(symbols []string, tr TimeRange) narrative {
	n := len(symbols)
	bullish := int(math.Floor(float64(n) * s.rnd.Float64()))
	return narrative{
		summary: fmt.Sprintf("Analysis for %s over %s time frame shows mixed signals.",
			strings.Join(symbols, ", "), tr),
		insights: []string{
			fmt.Sprintf("%d out of %d stocks show bullish patterns", bullish, n),
			fmt.Sprintf("Sector rotation evident with %s stocks leading", s.either(0.5, "defensive", "growth")),
			"Correlation analysis suggests diversification benefits across selected stocks",
		},
	}
}
