package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kjannette/tradedesk-backend/internal/analysis"
	"github.com/kjannette/tradedesk-backend/internal/external"
	"github.com/kjannette/tradedesk-backend/internal/models"
)

type analysisRequestJSON struct {
	Symbols   []string `json:"symbols"`
	TimeRange string   `json:"timeRange"`
}

// handleAnalyze runs one analysis. An empty selection is rejected here so
// the analyzer is never invoked for it.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var body analysisRequestJSON
	if !decodeBody(w, r, &body) {
		return
	}

	symbols := make([]string, 0, len(body.Symbols))
	for _, sym := range body.Symbols {
		if sym = strings.TrimSpace(sym); sym != "" {
			symbols = append(symbols, sym)
		}
	}
	if len(symbols) == 0 {
		writeError(w, http.StatusBadRequest, "no stocks selected")
		return
	}

	tr := analysis.Day
	if body.TimeRange != "" {
		parsed, err := analysis.ParseTimeRange(body.TimeRange)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		tr = parsed
	}
	req := analysis.Request{Symbols: symbols, TimeRange: tr}

	if !s.slots.TryAcquire(1) {
		writeError(w, http.StatusTooManyRequests, "too many analyses in progress, try again shortly")
		return
	}
	defer s.slots.Release(1)

	started := time.Now()
	resp, err := s.analyzer.Analyze(r.Context(), req)
	if err != nil {
		status, msg := analysisErrorStatus(err)
		fmt.Printf("[ANALYSIS] %s over %s failed: %v\n", strings.Join(symbols, ","), tr, err)
		writeError(w, status, msg)
		return
	}

	run := models.NewAnalysisRun(req, resp, s.source, started)
	fmt.Printf("[ANALYSIS] %s over %s: %s (%.0f%%) in %dms\n",
		strings.Join(symbols, ","), tr, run.Recommendation, run.Confidence*100, run.DurationMillis)

	if s.analyses != nil {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second)
		if err := s.analyses.Record(ctx, run); err != nil {
			fmt.Printf("[ANALYSIS] Warning: could not record run %s: %v\n", run.ID, err)
		}
		cancel()
	}
	if s.hub != nil {
		s.hub.Broadcast("analysis", run)
	}

	writeJSON(w, http.StatusOK, run)
}

func analysisErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, analysis.ErrNoSymbols):
		return http.StatusBadRequest, "no stocks selected"
	case errors.Is(err, analysis.ErrInvalidTimeRange):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, external.ErrRateLimited):
		return http.StatusTooManyRequests, "analysis backend is rate limited, try again shortly"
	case errors.Is(err, external.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "analysis backend unavailable"
	case errors.Is(err, external.ErrMalformedResponse), errors.Is(err, external.ErrUnauthorized):
		return http.StatusBadGateway, "analysis failed"
	default:
		return http.StatusInternalServerError, "analysis failed"
	}
}

func (s *Server) handleAnalysisHistory(w http.ResponseWriter, r *http.Request) {
	symbol := strings.TrimSpace(r.URL.Query().Get("symbol"))
	runs, err := s.analyses.Recent(r.Context(), symbol, parseLimit(r, 50))
	if err != nil {
		fmt.Printf("Error fetching analysis history: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch analysis history")
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

type symbolsResponse struct {
	Symbols    []models.SymbolOption `json:"symbols"`
	TimeRanges []analysis.TimeRange  `json:"timeRanges"`
}

func (s *Server) handleAnalysisSymbols(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, symbolsResponse{
		Symbols:    s.catalog.Symbols,
		TimeRanges: analysis.TimeRanges,
	})
}
