// Package sample holds the dashboard's reference data: instrument lists,
// index quotes, the watchlist and the seed rows for a fresh database.
package sample

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kjannette/tradedesk-backend/internal/models"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

type seedTrade struct {
	Symbol     string `yaml:"symbol"`
	Side       string `yaml:"side"`
	Quantity   int64  `yaml:"quantity"`
	EntryPrice string `yaml:"entry_price"`
	EntryDate  string `yaml:"entry_date"`
	ExitPrice  string `yaml:"exit_price"`
	ExitDate   string `yaml:"exit_date"`
	Notes      string `yaml:"notes"`
}

type seedJournal struct {
	Date    string   `yaml:"date"`
	Title   string   `yaml:"title"`
	Content string   `yaml:"content"`
	Tags    []string `yaml:"tags"`
}

type Catalog struct {
	Symbols     []models.SymbolOption `yaml:"symbols"`
	Indices     []models.IndexQuote   `yaml:"indices"`
	Intraday    models.IntradaySeries `yaml:"intraday"`
	Watchlist   []models.Quote        `yaml:"watchlist"`
	Insights    []models.InsightCard  `yaml:"insights"`
	Movers      []models.Mover        `yaml:"movers"`
	Performance []models.EquityPoint  `yaml:"performance"`
	Strategies  []models.Strategy     `yaml:"strategies"`

	SeedTrades  []seedTrade   `yaml:"trades"`
	SeedJournal []seedJournal `yaml:"journal"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog, parsed once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(catalogYAML)
	})
	return defaultCatalog, defaultErr
}

// Load parses the embedded catalog without caching.
func Load() (*Catalog, error) {
	return Parse(catalogYAML)
}

func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	var errs []string

	if len(c.Symbols) == 0 {
		errs = append(errs, "no symbols")
	}
	seen := make(map[string]bool, len(c.Symbols))
	for i, s := range c.Symbols {
		if s.Value == "" || s.Label == "" {
			errs = append(errs, fmt.Sprintf("symbols[%d]: value and label are required", i))
		}
		if seen[s.Value] {
			errs = append(errs, fmt.Sprintf("symbols[%d]: duplicate %s", i, s.Value))
		}
		seen[s.Value] = true
	}
	for i, q := range c.Watchlist {
		if q.Symbol == "" || q.Price <= 0 {
			errs = append(errs, fmt.Sprintf("watchlist[%d]: symbol and positive price are required", i))
		}
	}
	for i, s := range c.Strategies {
		if strings.TrimSpace(s.Name) == "" {
			errs = append(errs, fmt.Sprintf("strategies[%d]: name is required", i))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// SymbolValues returns the analysable symbols in catalog order.
func (c *Catalog) SymbolValues() []string {
	out := make([]string, len(c.Symbols))
	for i, s := range c.Symbols {
		out[i] = s.Value
	}
	return out
}

// Trades converts the seed trades, closing those that carry an exit.
func (c *Catalog) Trades() ([]models.Trade, error) {
	out := make([]models.Trade, 0, len(c.SeedTrades))
	for i, s := range c.SeedTrades {
		entryPrice, err := decimal.NewFromString(s.EntryPrice)
		if err != nil {
			return nil, fmt.Errorf("trades[%d]: entry_price: %w", i, err)
		}
		entryDate, err := time.Parse(time.RFC3339, s.EntryDate)
		if err != nil {
			return nil, fmt.Errorf("trades[%d]: entry_date: %w", i, err)
		}

		t := models.Trade{
			Symbol:     s.Symbol,
			Side:       s.Side,
			Quantity:   s.Quantity,
			EntryPrice: entryPrice,
			EntryDate:  entryDate,
			Status:     models.StatusOpen,
			Notes:      s.Notes,
		}
		t.Normalize()
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("trades[%d]: %w", i, err)
		}

		if s.ExitPrice != "" {
			exitPrice, err := decimal.NewFromString(s.ExitPrice)
			if err != nil {
				return nil, fmt.Errorf("trades[%d]: exit_price: %w", i, err)
			}
			exitDate, err := time.Parse(time.RFC3339, s.ExitDate)
			if err != nil {
				return nil, fmt.Errorf("trades[%d]: exit_date: %w", i, err)
			}
			if err := t.Close(exitPrice, exitDate); err != nil {
				return nil, fmt.Errorf("trades[%d]: %w", i, err)
			}
		}
		out = append(out, t)
	}
	return out, nil
}

func (c *Catalog) JournalEntries() []models.JournalEntry {
	out := make([]models.JournalEntry, 0, len(c.SeedJournal))
	for _, s := range c.SeedJournal {
		e := models.JournalEntry{Date: s.Date, Title: s.Title, Content: s.Content, Tags: s.Tags}
		e.Normalize()
		out = append(out, e)
	}
	return out
}
