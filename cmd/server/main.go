package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kjannette/tradedesk-backend/internal/analysis"
	"github.com/kjannette/tradedesk-backend/internal/api"
	"github.com/kjannette/tradedesk-backend/internal/config"
	"github.com/kjannette/tradedesk-backend/internal/db"
	"github.com/kjannette/tradedesk-backend/internal/external"
	"github.com/kjannette/tradedesk-backend/internal/models"
	"github.com/kjannette/tradedesk-backend/internal/notifications"
	"github.com/kjannette/tradedesk-backend/internal/repository"
	"github.com/kjannette/tradedesk-backend/internal/risk"
	"github.com/kjannette/tradedesk-backend/internal/sample"
	"github.com/kjannette/tradedesk-backend/internal/scheduler"
	"github.com/kjannette/tradedesk-backend/internal/stream"
)

const banner = `
╔══════════════════════════════════════╗
║     TradeDesk Analysis Server v0.3   ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	catalog, err := sample.Default()
	if err != nil {
		fmt.Fprintf(os.Stderr, "sample catalog error: %v\n", err)
		os.Exit(1)
	}

	// Database
	fmt.Printf("\n[DB] Connecting to %s:%d/%s ...\n", cfg.DBHost, cfg.DBPort, cfg.DBName)
	pool, err := db.Connect(ctx, cfg.DSN(), int32(cfg.DBMaxConns))
	if err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Connection failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		pool.Close()
		fmt.Println("[DB] Connection pool closed")
	}()

	if _, err := db.Check(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Test query failed: %v\n", err)
		os.Exit(1)
	}
	if err := db.Migrate(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "[DB] Migration failed: %v\n", err)
		os.Exit(1)
	}
	if cfg.SeedSampleData {
		if err := repository.SeedSamples(ctx, pool, catalog); err != nil {
			fmt.Fprintf(os.Stderr, "[DB] Seeding sample data failed: %v\n", err)
		}
	}

	// Analyzer: DeepSeek when a key is configured, otherwise the simulated one
	var analyzer analysis.Analyzer
	source := models.SourceStub
	if cfg.DeepSeekAPIKey != "" {
		analyzer = external.NewDeepSeekClient(cfg.DeepSeekAPIKey, external.DeepSeekOptions{
			BaseURL:  cfg.DeepSeekBaseURL,
			Model:    cfg.DeepSeekModel,
			CacheTTL: cfg.DeepSeekCacheTTL(),
		})
		source = models.SourceDeepSeek
	} else {
		analyzer = analysis.NewStub(analysis.WithDelay(cfg.AnalysisDelay()))
	}
	fmt.Printf("[ANALYSIS] Using %s analyzer\n", source)

	notify := notifications.NewSender(cfg.WebhookURL, cfg.BotName)

	hub := stream.NewHub(cfg.CORSAllowOrigin)
	go hub.Run(ctx)

	// 1. API server
	srv := api.NewServer(pool, analyzer, catalog, api.Options{
		Port:                  cfg.APIPort,
		APIKey:                cfg.APIKey,
		CORSOrigin:            cfg.CORSAllowOrigin,
		AnalyzerSource:        source,
		MaxConcurrentAnalyses: int64(cfg.MaxConcurrentAnalyses),
		Limits: risk.Limits{
			MaxDailyTrades:   cfg.MaxDailyTrades,
			MaxPositionValue: cfg.PositionLimit(),
		},
		Hub:      hub,
		Notifier: notify,
	})
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fmt.Fprintf(os.Stderr, "[API] Server error: %v\n", err)
			os.Exit(1)
		}
	}()

	// 2. Watchlist scheduler
	symbols := cfg.WatchlistSymbols
	if len(symbols) == 0 {
		for _, q := range catalog.Watchlist {
			symbols = append(symbols, q.Symbol)
		}
	}
	watch := scheduler.NewWatchlistScheduler(
		analyzer,
		repository.NewAnalysisRepo(pool),
		repository.NewSettingsRepo(pool),
		hub,
		notify,
		scheduler.WatchlistConfig{
			Cron:            cfg.WatchlistCron,
			Symbols:         symbols,
			TimeRange:       analysis.Day,
			AlertConfidence: cfg.AlertConfidence,
			MaxParallel:     cfg.MaxConcurrentAnalyses,
			MarketHoursOnly: true,
		},
	)
	if cfg.SchedulerEnabled {
		if err := watch.Start(); err != nil {
			fmt.Fprintf(os.Stderr, "[WATCHLIST] Start failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		fmt.Println("[WATCHLIST] Skipped - scheduler disabled")
	}
	if cfg.RunOnStart {
		go func() {
			runs, err := watch.RunNow(ctx)
			if err != nil {
				fmt.Printf("[WATCHLIST] Initial run failed: %v\n", err)
				return
			}
			fmt.Printf("[WATCHLIST] Initial run analysed %d symbols\n", len(runs))
		}()
	}

	fmt.Println("\nAll services started successfully")

	// Wait for shutdown signal
	<-ctx.Done()
	fmt.Println("\nShutting down gracefully...")

	watch.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "[API] Shutdown error: %v\n", err)
	}
	fmt.Println("[API] Server closed")
	fmt.Println("Shutdown complete")
}
