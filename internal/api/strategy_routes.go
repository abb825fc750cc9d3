package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kjannette/tradedesk-backend/internal/models"
	"github.com/kjannette/tradedesk-backend/internal/repository"
	"github.com/kjannette/tradedesk-backend/internal/strategy"
)

type strategyRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Content     string `json:"content"`
}

func (s *Server) handleListStrategies(w http.ResponseWriter, r *http.Request) {
	list, err := s.strategyRepo.List(r.Context())
	if err != nil {
		fmt.Printf("Error fetching strategies: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch strategies")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateStrategy(w http.ResponseWriter, r *http.Request) {
	var req strategyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	st := models.Strategy{Name: req.Name, Description: req.Description, Content: req.Content}
	if strings.TrimSpace(st.Content) == "" {
		st.Content = strategy.NewStrategyTemplate
	}
	if err := st.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.strategyRepo.Create(r.Context(), &st)
	if err != nil {
		fmt.Printf("Error creating strategy: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to create strategy")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetStrategy(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid strategy id")
		return
	}
	st, err := s.strategyRepo.Get(r.Context(), id)
	if !strategyResult(w, id, err) {
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleUpdateStrategy(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid strategy id")
		return
	}
	var req strategyRequest
	if !decodeBody(w, r, &req) {
		return
	}
	st := models.Strategy{ID: id, Name: req.Name, Description: req.Description, Content: req.Content}
	if err := st.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.strategyRepo.Update(r.Context(), &st)
	if !strategyResult(w, id, err) {
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteStrategy(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid strategy id")
		return
	}
	if !strategyResult(w, id, s.strategyRepo.Delete(r.Context(), id)) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func strategyResult(w http.ResponseWriter, id int64, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "strategy not found")
	default:
		fmt.Printf("Error on strategy %d: %v\n", id, err)
		writeError(w, http.StatusInternalServerError, "strategy operation failed")
	}
	return false
}
