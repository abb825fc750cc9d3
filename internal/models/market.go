package models

// SymbolOption is an instrument the dashboard offers for analysis.
type SymbolOption struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
	Index bool   `json:"index" yaml:"index"`
}

type IndexQuote struct {
	Name   string  `json:"name" yaml:"name"`
	Value  float64 `json:"value" yaml:"value"`
	Change float64 `json:"change" yaml:"change"` // percent
}

func (q IndexQuote) IsUp() bool { return q.Change >= 0 }

type SeriesPoint struct {
	Time  string  `json:"time" yaml:"time"`
	Value float64 `json:"value" yaml:"value"`
}

type IntradaySeries struct {
	Index  string        `json:"index" yaml:"index"`
	Points []SeriesPoint `json:"points" yaml:"points"`
}

type Quote struct {
	Symbol string  `json:"symbol" yaml:"symbol"`
	Name   string  `json:"name" yaml:"name"`
	Price  float64 `json:"price" yaml:"price"`
	Change float64 `json:"change" yaml:"change"` // percent
}

func (q Quote) IsUp() bool { return q.Change >= 0 }

// Mover is a quote with the window its change was measured over.
type Mover struct {
	Quote     `yaml:",inline"`
	Timeframe string `json:"timeframe" yaml:"timeframe"`
}

type InsightCard struct {
	Type        string `json:"type" yaml:"type"`
	Title       string `json:"title" yaml:"title"`
	Symbol      string `json:"symbol" yaml:"symbol"`
	Description string `json:"description" yaml:"description"`
	Confidence  int    `json:"confidence" yaml:"confidence"` // percent
	Timeframe   string `json:"timeframe" yaml:"timeframe"`
	Trend       string `json:"trend" yaml:"trend"`
}

type EquityPoint struct {
	Date  string  `json:"date" yaml:"date"`
	Value float64 `json:"value" yaml:"value"`
}
