package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kjannette/tradedesk-backend/internal/analysis"
	"github.com/kjannette/tradedesk-backend/internal/models"
	"github.com/kjannette/tradedesk-backend/internal/repository"
	"github.com/kjannette/tradedesk-backend/internal/risk"
	"github.com/kjannette/tradedesk-backend/internal/sample"
	"github.com/kjannette/tradedesk-backend/internal/stream"
	"golang.org/x/sync/semaphore"
)

const (
	maxQueryLimit = 1000
	maxBodyBytes  = 1 << 20
)

// AnalysisStore records and lists analysis runs.
type AnalysisStore interface {
	Record(ctx context.Context, run *models.AnalysisRun) error
	Recent(ctx context.Context, symbol string, limit int) ([]models.AnalysisRun, error)
}

type Notifier interface {
	NotifyAnalysis(run *models.AnalysisRun)
	NotifyTrade(t *models.Trade)
}

type Options struct {
	Port                  int
	APIKey                string
	CORSOrigin            string
	AnalyzerSource        string // "stub" or "deepseek"
	MaxConcurrentAnalyses int64
	Limits                risk.Limits
	Hub                   *stream.Hub
	Notifier              Notifier
}

type Server struct {
	pool         *pgxpool.Pool
	analyzer     analysis.Analyzer
	source       string
	catalog      *sample.Catalog
	analyses     AnalysisStore
	tradeRepo    *repository.TradeRepo
	journalRepo  *repository.JournalRepo
	strategyRepo *repository.StrategyRepo
	settingsRepo *repository.SettingsRepo
	guardian     *risk.Guardian
	hub          *stream.Hub
	notifier     Notifier
	slots        *semaphore.Weighted
	httpServer   *http.Server
	apiKey       string
}

func NewServer(pool *pgxpool.Pool, analyzer analysis.Analyzer, catalog *sample.Catalog, opts Options) *Server {
	if opts.MaxConcurrentAnalyses <= 0 {
		opts.MaxConcurrentAnalyses = 4
	}
	if opts.AnalyzerSource == "" {
		opts.AnalyzerSource = models.SourceStub
	}

	tradeRepo := repository.NewTradeRepo(pool)
	s := &Server{
		pool:         pool,
		analyzer:     analyzer,
		source:       opts.AnalyzerSource,
		catalog:      catalog,
		analyses:     repository.NewAnalysisRepo(pool),
		tradeRepo:    tradeRepo,
		journalRepo:  repository.NewJournalRepo(pool),
		strategyRepo: repository.NewStrategyRepo(pool),
		settingsRepo: repository.NewSettingsRepo(pool),
		guardian:     risk.NewGuardian(opts.Limits, tradeRepo),
		hub:          opts.Hub,
		notifier:     opts.Notifier,
		slots:        semaphore.NewWeighted(opts.MaxConcurrentAnalyses),
		apiKey:       opts.APIKey,
	}

	// Analysis can legitimately take longer than the default write timeout
	// when a hosted model is slow.
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", opts.Port),
		Handler:      s.routes(opts.CORSOrigin),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
	}

	return s
}

func (s *Server) routes(corsOrigin string) http.Handler {
	mux := http.NewServeMux()

	// Analysis routes
	mux.HandleFunc("POST /v1/analysis", s.handleAnalyze)
	mux.HandleFunc("GET /v1/analysis/history", s.handleAnalysisHistory)
	mux.HandleFunc("GET /v1/analysis/symbols", s.handleAnalysisSymbols)

	// Market routes
	mux.HandleFunc("GET /v1/market/overview", s.handleMarketOverview)
	mux.HandleFunc("GET /v1/watchlist", s.handleWatchlist)
	mux.HandleFunc("GET /v1/insights", s.handleInsights)
	mux.HandleFunc("GET /v1/performance", s.handlePerformance)
	mux.HandleFunc("GET /v1/opportunities", s.handleOpportunities)

	// Trade routes
	mux.HandleFunc("GET /v1/trades", s.handleListTrades)
	mux.HandleFunc("POST /v1/trades", s.handleCreateTrade)
	mux.HandleFunc("GET /v1/trades/stats", s.handleTradeStats)
	mux.HandleFunc("GET /v1/trades/{id}", s.handleGetTrade)
	mux.HandleFunc("POST /v1/trades/{id}/close", s.handleCloseTrade)

	// Journal routes
	mux.HandleFunc("GET /v1/journal", s.handleListJournal)
	mux.HandleFunc("POST /v1/journal", s.handleCreateJournal)
	mux.HandleFunc("GET /v1/journal/{id}", s.handleGetJournal)
	mux.HandleFunc("PUT /v1/journal/{id}", s.handleUpdateJournal)
	mux.HandleFunc("DELETE /v1/journal/{id}", s.handleDeleteJournal)

	// Strategy routes
	mux.HandleFunc("GET /v1/strategies", s.handleListStrategies)
	mux.HandleFunc("POST /v1/strategies", s.handleCreateStrategy)
	mux.HandleFunc("GET /v1/strategies/{id}", s.handleGetStrategy)
	mux.HandleFunc("PUT /v1/strategies/{id}", s.handleUpdateStrategy)
	mux.HandleFunc("DELETE /v1/strategies/{id}", s.handleDeleteStrategy)

	// Settings
	mux.HandleFunc("GET /v1/settings", s.handleGetSettings)
	mux.HandleFunc("PUT /v1/settings", s.handlePutSettings)

	// Live analysis events
	if s.hub != nil {
		mux.HandleFunc("GET /v1/stream", s.hub.ServeWS)
	}

	// Health check (no auth required)
	mux.HandleFunc("GET /health", s.handleHealth)

	return s.authMiddleware(corsMiddleware(mux, corsOrigin))
}

func (s *Server) Start() error {
	fmt.Printf("[API] REST API server started on http://localhost%s\n", s.httpServer.Addr)
	fmt.Printf("[API] Health check: http://localhost%s/health\n", s.httpServer.Addr)
	fmt.Printf("[API] Analyzer: %s\n", s.source)
	if s.apiKey != "" {
		fmt.Println("[API] Authentication: enabled (Bearer token)")
	} else {
		fmt.Println("[API] Authentication: disabled (no API_KEY configured)")
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- middleware ---

// authMiddleware requires the API key as a Bearer token. Browsers cannot
// set headers on a WebSocket handshake, so the stream also accepts
// ?token=.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || r.URL.Path == "/health" || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		if r.URL.Path == "/v1/stream" && r.URL.Query().Get("token") == s.apiKey {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- request helpers ---

func parseLimit(r *http.Request, defaultLimit int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return defaultLimit
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > maxQueryLimit {
		return maxQueryLimit
	}
	return n
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil && id > 0
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Printf("[API] Error encoding %d response: %v\n", status, err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
