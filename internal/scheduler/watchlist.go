package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kjannette/tradedesk-backend/internal/analysis"
	"github.com/kjannette/tradedesk-backend/internal/models"
	"github.com/kjannette/tradedesk-backend/internal/repository"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// DefaultCron fires every 15 minutes from 09:00 to 15:45 IST on weekdays.
// Runs outside the 09:15-15:30 session are skipped.
const DefaultCron = "0 */15 9-15 * * 1-5"

type RunStore interface {
	Record(ctx context.Context, run *models.AnalysisRun) error
}

type SettingsSource interface {
	Get(ctx context.Context) (models.Settings, error)
}

type Broadcaster interface {
	Broadcast(kind string, data any)
}

type Notifier interface {
	NotifyAnalysis(run *models.AnalysisRun)
}

type WatchlistConfig struct {
	Cron            string
	Symbols         []string
	TimeRange       analysis.TimeRange
	AlertConfidence float64 // alert on buy/sell at or above this confidence
	MaxParallel     int
	MarketHoursOnly bool
	RunTimeout      time.Duration
}

// WatchlistScheduler analyses each watchlist symbol on a cron schedule,
// records the runs, pushes them to live dashboards and raises alerts for
// confident buy/sell calls.
type WatchlistScheduler struct {
	analyzer analysis.Analyzer
	store    RunStore
	settings SettingsSource
	hub      Broadcaster
	notifier Notifier
	cfg      WatchlistConfig
	now      func() time.Time

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

func NewWatchlistScheduler(a analysis.Analyzer, store RunStore, settings SettingsSource, hub Broadcaster, n Notifier, cfg WatchlistConfig) *WatchlistScheduler {
	if cfg.Cron == "" {
		cfg.Cron = DefaultCron
	}
	if cfg.TimeRange == "" {
		cfg.TimeRange = analysis.Day
	}
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = 4
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 2 * time.Minute
	}
	return &WatchlistScheduler{
		analyzer: a,
		store:    store,
		settings: settings,
		hub:      hub,
		notifier: n,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *WatchlistScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		fmt.Println("[WATCHLIST] Already running")
		return nil
	}

	c := cron.New(
		cron.WithSeconds(),
		cron.WithLocation(repository.IST),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	if _, err := c.AddFunc(s.cfg.Cron, s.tick); err != nil {
		return fmt.Errorf("register watchlist job %q: %w", s.cfg.Cron, err)
	}
	c.Start()

	s.cron = c
	s.running = true
	fmt.Printf("[WATCHLIST] Started (%q, %d symbols, %s range)\n", s.cfg.Cron, len(s.cfg.Symbols), s.cfg.TimeRange)
	return nil
}

func (s *WatchlistScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	fmt.Println("[WATCHLIST] Stopped")
}

func (s *WatchlistScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *WatchlistScheduler) tick() {
	if s.cfg.MarketHoursOnly && !repository.MarketOpen(s.now()) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RunTimeout)
	defer cancel()
	if _, err := s.RunNow(ctx); err != nil {
		fmt.Printf("[WATCHLIST] Run failed: %v\n", err)
	}
}

// RunNow analyses every watchlist symbol once. Per-symbol failures are
// logged and skipped; an error is returned only if every symbol failed.
func (s *WatchlistScheduler) RunNow(ctx context.Context) ([]*models.AnalysisRun, error) {
	if len(s.cfg.Symbols) == 0 {
		return nil, nil
	}
	fmt.Printf("[WATCHLIST] Analysing %d symbols...\n", len(s.cfg.Symbols))

	alerts := s.alertsEnabled(ctx)
	runs := make([]*models.AnalysisRun, len(s.cfg.Symbols))
	errs := make([]error, len(s.cfg.Symbols))

	var g errgroup.Group
	g.SetLimit(s.cfg.MaxParallel)
	for i, sym := range s.cfg.Symbols {
		g.Go(func() error {
			run, err := s.analyse(ctx, sym, alerts)
			if err != nil {
				fmt.Printf("[WATCHLIST] %s: %v\n", sym, err)
				errs[i] = fmt.Errorf("%s: %w", sym, err)
				return nil
			}
			runs[i] = run
			return nil
		})
	}
	g.Wait()

	out := make([]*models.AnalysisRun, 0, len(runs))
	for _, r := range runs {
		if r != nil {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		return nil, errors.Join(errs...)
	}
	fmt.Printf("[WATCHLIST] Completed %d/%d analyses\n", len(out), len(s.cfg.Symbols))
	return out, nil
}

func (s *WatchlistScheduler) analyse(ctx context.Context, symbol string, alerts bool) (*models.AnalysisRun, error) {
	req := analysis.Request{Symbols: []string{symbol}, TimeRange: s.cfg.TimeRange}
	started := s.now()

	resp, err := s.analyzer.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}

	run := models.NewAnalysisRun(req, resp, models.SourceScheduler, started)
	if s.store != nil {
		if err := s.store.Record(ctx, run); err != nil {
			fmt.Printf("[WATCHLIST] Warning: could not record %s: %v\n", symbol, err)
		}
	}
	if s.hub != nil {
		s.hub.Broadcast("analysis", run)
	}
	if alerts && s.notifier != nil && run.Actionable(s.cfg.AlertConfidence) {
		s.notifier.NotifyAnalysis(run)
	}
	return run, nil
}

// alertsEnabled follows the AI insights toggle; alerts stay on if the
// settings cannot be read.
func (s *WatchlistScheduler) alertsEnabled(ctx context.Context) bool {
	if s.settings == nil {
		return true
	}
	st, err := s.settings.Get(ctx)
	if err != nil {
		fmt.Printf("[WATCHLIST] Warning: could not load settings: %v\n", err)
		return true
	}
	return st.AIInsights
}
