package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	// Secrets (from .env)
	DeepSeekAPIKey  string
	WebhookURL      string
	BotName         string
	APIKey          string
	CORSAllowOrigin string

	// HTTP
	APIPort int

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	DBMaxConns int

	// Analysis
	DeepSeekModel         string
	DeepSeekBaseURL       string
	DeepSeekCacheMinutes  int
	AnalysisDelayMillis   int
	MaxConcurrentAnalyses int

	// Watchlist scheduler
	SchedulerEnabled bool
	WatchlistCron    string
	WatchlistSymbols []string
	AlertConfidence  float64
	RunOnStart       bool

	// Risk Management
	MaxDailyTrades   int
	MaxPositionValue string

	SeedSampleData bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// Secrets
		DeepSeekAPIKey:  envStr("DEEPSEEK_API_KEY", ""),
		WebhookURL:      envStr("WEBHOOK_URL", ""),
		BotName:         envStr("BOT_NAME", "TradeDesk"),
		APIKey:          envStr("API_KEY", ""),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),

		APIPort: envInt("API_PORT", 3001),

		// Database
		DBHost:     envStr("DB_HOST", "localhost"),
		DBPort:     envInt("DB_PORT", 5432),
		DBName:     envStr("DB_NAME", "tradedesk"),
		DBUser:     envStr("DB_USER", ""),
		DBPassword: envStr("DB_PASSWORD", ""),
		DBMaxConns: envInt("DB_MAX_CONNS", 20),

		// Analysis
		DeepSeekModel:         envStr("DEEPSEEK_MODEL", "deepseek-chat"),
		DeepSeekBaseURL:       envStr("DEEPSEEK_BASE_URL", "https://api.deepseek.com"),
		DeepSeekCacheMinutes:  envInt("DEEPSEEK_CACHE_MINUTES", 10),
		AnalysisDelayMillis:   envInt("ANALYSIS_DELAY_MS", 1500),
		MaxConcurrentAnalyses: envInt("MAX_CONCURRENT_ANALYSES", 4),

		// Scheduler
		SchedulerEnabled: envBool("SCHEDULER_ENABLED", true),
		WatchlistCron:    envStr("WATCHLIST_CRON", "0 */15 9-15 * * 1-5"),
		WatchlistSymbols: envList("WATCHLIST_SYMBOLS", nil),
		AlertConfidence:  envFloat("ALERT_CONFIDENCE", 0.8),
		RunOnStart:       envBool("RUN_ON_START", false),

		// Risk
		MaxDailyTrades:   envInt("MAX_DAILY_TRADES", 20),
		MaxPositionValue: envStr("MAX_POSITION_VALUE", "500000"),

		SeedSampleData: envBool("SEED_SAMPLE_DATA", true),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Sprintf("API_PORT %d is out of range", c.APIPort))
	}
	if c.DBMaxConns <= 0 {
		errs = append(errs, "DB_MAX_CONNS must be positive")
	}
	if c.AnalysisDelayMillis < 0 {
		errs = append(errs, "ANALYSIS_DELAY_MS cannot be negative")
	}
	if c.MaxConcurrentAnalyses <= 0 {
		errs = append(errs, "MAX_CONCURRENT_ANALYSES must be positive")
	}
	if c.AlertConfidence < 0 || c.AlertConfidence > 1 {
		errs = append(errs, "ALERT_CONFIDENCE must be between 0 and 1")
	}
	if c.MaxDailyTrades < 0 {
		errs = append(errs, "MAX_DAILY_TRADES cannot be negative")
	}
	if v, err := decimal.NewFromString(c.MaxPositionValue); err != nil {
		errs = append(errs, fmt.Sprintf("MAX_POSITION_VALUE %q is not a number", c.MaxPositionValue))
	} else if v.IsNegative() {
		errs = append(errs, "MAX_POSITION_VALUE cannot be negative")
	}

	if c.DeepSeekAPIKey == "" {
		fmt.Println("[WARN] DEEPSEEK_API_KEY not set, using the simulated analyzer")
	}
	if c.MaxDailyTrades == 0 && c.MaxPositionValue == "0" {
		fmt.Println("[WARN] MAX_DAILY_TRADES and MAX_POSITION_VALUE are both 0, no per-trade limits active")
	}
	if c.APIKey == "" {
		fmt.Println("[WARN] API_KEY not set, REST API has no authentication")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// PositionLimit is MAX_POSITION_VALUE as a decimal. Zero when unparseable;
// Validate reports that case.
func (c *Config) PositionLimit() decimal.Decimal {
	v, err := decimal.NewFromString(c.MaxPositionValue)
	if err != nil {
		return decimal.Zero
	}
	return v
}

func (c *Config) AnalysisDelay() time.Duration {
	return time.Duration(c.AnalysisDelayMillis) * time.Millisecond
}

func (c *Config) DeepSeekCacheTTL() time.Duration {
	return time.Duration(c.DeepSeekCacheMinutes) * time.Minute
}

func (c *Config) Print() {
	fmt.Println("=== TradeDesk Configuration ===")
	fmt.Printf("API Port: %d\n", c.APIPort)
	fmt.Printf("API Auth: %s\n", boolLabel(c.APIKey != "", "enabled", "disabled"))
	fmt.Printf("CORS Origin: %s\n", c.CORSAllowOrigin)
	fmt.Println("--------------------------------------")
	fmt.Println("Analysis:")
	if c.DeepSeekAPIKey != "" {
		fmt.Printf("  Backend: DeepSeek (%s, key %s...)\n", c.DeepSeekModel, truncKey(c.DeepSeekAPIKey))
		fmt.Printf("  Cache: %d min\n", c.DeepSeekCacheMinutes)
	} else {
		fmt.Printf("  Backend: simulated (%d ms delay)\n", c.AnalysisDelayMillis)
	}
	fmt.Printf("  Max Concurrent: %d\n", c.MaxConcurrentAnalyses)
	fmt.Println("--------------------------------------")
	fmt.Println("Watchlist Scheduler:")
	fmt.Printf("  Enabled: %v\n", c.SchedulerEnabled)
	fmt.Printf("  Cron: %s\n", c.WatchlistCron)
	if len(c.WatchlistSymbols) > 0 {
		fmt.Printf("  Symbols: %s\n", strings.Join(c.WatchlistSymbols, ", "))
	} else {
		fmt.Println("  Symbols: catalog watchlist")
	}
	fmt.Printf("  Alert Confidence: %.0f%%\n", c.AlertConfidence*100)
	fmt.Println("--------------------------------------")
	fmt.Println("Risk:")
	fmt.Printf("  Max Daily Trades: %d\n", c.MaxDailyTrades)
	fmt.Printf("  Max Position Value: ₹%s\n", c.MaxPositionValue)
	fmt.Printf("Webhook: %s\n", boolLabel(c.WebhookURL != "", "configured", "not set"))
	fmt.Println("======================================")
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(v)
		return v == "true" || v == "1" || v == "yes"
	}
	return fallback
}

// envList splits a comma-separated value, upper-casing symbols and
// dropping blanks.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.ToUpper(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func truncKey(key string) string {
	if len(key) > 6 {
		return key[:6]
	}
	return key
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
