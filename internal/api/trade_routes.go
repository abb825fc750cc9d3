package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/kjannette/tradedesk-backend/internal/models"
	"github.com/kjannette/tradedesk-backend/internal/repository"
	"github.com/kjannette/tradedesk-backend/internal/risk"
	"github.com/shopspring/decimal"
)

type tradeJSON struct {
	models.Trade
	Held string `json:"held"` // e.g. "3 days" or "2 hours"
}

func toTradeJSON(t models.Trade, now time.Time) tradeJSON {
	end := now
	if t.ExitDate != nil {
		end = *t.ExitDate
	}
	return tradeJSON{Trade: t, Held: humanize.RelTime(t.EntryDate, end, "", "")}
}

type createTradeRequest struct {
	Symbol     string          `json:"symbol"`
	Side       string          `json:"side"`
	Quantity   int64           `json:"quantity"`
	EntryPrice decimal.Decimal `json:"entryPrice"`
	EntryDate  *time.Time      `json:"entryDate"`
	Notes      string          `json:"notes"`
}

type closeTradeRequest struct {
	ExitPrice decimal.Decimal `json:"exitPrice"`
	ExitDate  *time.Time      `json:"exitDate"`
}

func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	switch status {
	case "", "all":
		status = ""
	case models.StatusOpen, models.StatusClosed:
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid status %q, expected open|closed|all", status))
		return
	}

	trades, err := s.tradeRepo.List(r.Context(), status, parseLimit(r, 100))
	if err != nil {
		fmt.Printf("Error fetching trades: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch trades")
		return
	}

	now := time.Now()
	out := make([]tradeJSON, len(trades))
	for i, t := range trades {
		out[i] = toTradeJSON(t, now)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTrade(w http.ResponseWriter, r *http.Request) {
	var req createTradeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	t := &models.Trade{
		Symbol:     req.Symbol,
		Side:       req.Side,
		Quantity:   req.Quantity,
		EntryPrice: req.EntryPrice,
		Status:     models.StatusOpen,
		Notes:      req.Notes,
	}
	if req.EntryDate != nil {
		t.EntryDate = *req.EntryDate
	}
	t.Normalize()
	if err := t.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.guardian.PreTradeCheck(r.Context(), t.PositionValue()); err != nil {
		if errors.Is(err, risk.ErrBlocked) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		fmt.Printf("Error running pre-trade check: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to run risk checks")
		return
	}

	recorded, err := s.tradeRepo.Record(r.Context(), t)
	if err != nil {
		fmt.Printf("Error recording trade: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to record trade")
		return
	}
	s.announceTrade(r, recorded)
	writeJSON(w, http.StatusCreated, toTradeJSON(*recorded, time.Now()))
}

func (s *Server) handleGetTrade(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid trade id")
		return
	}

	t, err := s.tradeRepo.Get(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "trade not found")
		return
	}
	if err != nil {
		fmt.Printf("Error fetching trade %d: %v\n", id, err)
		writeError(w, http.StatusInternalServerError, "failed to fetch trade")
		return
	}
	writeJSON(w, http.StatusOK, toTradeJSON(*t, time.Now()))
}

func (s *Server) handleCloseTrade(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid trade id")
		return
	}

	var req closeTradeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	at := time.Now()
	if req.ExitDate != nil {
		at = *req.ExitDate
	}

	t, err := s.tradeRepo.Close(r.Context(), id, req.ExitPrice, at)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "trade not found")
		return
	case errors.Is(err, models.ErrTradeClosed):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, models.ErrInvalidTrade):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		fmt.Printf("Error closing trade %d: %v\n", id, err)
		writeError(w, http.StatusInternalServerError, "failed to close trade")
		return
	}
	s.announceTrade(r, t)
	writeJSON(w, http.StatusOK, toTradeJSON(*t, time.Now()))
}

func (s *Server) handleTradeStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.tradeRepo.Stats(r.Context())
	if err != nil {
		fmt.Printf("Error fetching trade stats: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch trade stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// announceTrade pushes the trade to dashboards and, if trade alerts are
// on, to the webhook.
func (s *Server) announceTrade(r *http.Request, t *models.Trade) {
	if s.hub != nil {
		s.hub.Broadcast("trade", t)
	}
	if s.notifier == nil {
		return
	}
	settings, err := s.settingsRepo.Get(r.Context())
	if err != nil || settings.TradeAlerts {
		s.notifier.NotifyTrade(t)
	}
}
