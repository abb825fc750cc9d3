package models

import (
	"fmt"
	"slices"
	"time"
)

const (
	ThemeSystem = "system"
	ThemeLight  = "light"
	ThemeDark   = "dark"
)

// RefreshIntervals are the allowed auto-refresh periods in seconds; 0
// means manual refresh only.
var RefreshIntervals = []int{30, 60, 300, 0}

type Settings struct {
	Theme                  string    `json:"theme"`
	RefreshIntervalSeconds int       `json:"refreshIntervalSeconds"`
	AutoSyncBroker         bool      `json:"autoSyncBroker"`
	TradeAlerts            bool      `json:"tradeAlerts"`
	PriceAlerts            bool      `json:"priceAlerts"`
	AIInsights             bool      `json:"aiInsights"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

func DefaultSettings() Settings {
	return Settings{
		Theme:                  ThemeSystem,
		RefreshIntervalSeconds: 60,
		TradeAlerts:            true,
		PriceAlerts:            true,
		AIInsights:             true,
	}
}

func (s Settings) Validate() error {
	switch s.Theme {
	case ThemeSystem, ThemeLight, ThemeDark:
	default:
		return fmt.Errorf("invalid theme %q, expected system|light|dark", s.Theme)
	}
	if !slices.Contains(RefreshIntervals, s.RefreshIntervalSeconds) {
		return fmt.Errorf("invalid refresh interval %d, expected one of %v", s.RefreshIntervalSeconds, RefreshIntervals)
	}
	return nil
}
