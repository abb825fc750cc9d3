package api

import (
	"net/http"
	"strconv"

	"github.com/kjannette/tradedesk-backend/internal/models"
	"github.com/kjannette/tradedesk-backend/internal/strategy"
)

type marketOverviewResponse struct {
	Indices  []models.IndexQuote   `json:"indices"`
	Intraday models.IntradaySeries `json:"intraday"`
}

func (s *Server) handleMarketOverview(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, marketOverviewResponse{
		Indices:  s.catalog.Indices,
		Intraday: s.catalog.Intraday,
	})
}

func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Watchlist)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Insights)
}

type performanceResponse struct {
	Points        []models.EquityPoint `json:"points"`
	StartValue    float64              `json:"startValue"`
	EndValue      float64              `json:"endValue"`
	ChangePercent float64              `json:"changePercent"`
}

func (s *Server) handlePerformance(w http.ResponseWriter, r *http.Request) {
	resp := performanceResponse{Points: s.catalog.Performance}
	if n := len(resp.Points); n > 0 {
		resp.StartValue = resp.Points[0].Value
		resp.EndValue = resp.Points[n-1].Value
		if resp.StartValue != 0 {
			resp.ChangePercent = (resp.EndValue - resp.StartValue) / resp.StartValue * 100
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOpportunities(w http.ResponseWriter, r *http.Request) {
	threshold := strategy.DefaultThreshold
	if v := r.URL.Query().Get("threshold"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid threshold")
			return
		}
		threshold = t
	}

	opps, err := strategy.Scan(s.catalog.Movers, threshold)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, opps)
}
