package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/kjannette/tradedesk-backend/internal/models"
	"github.com/kjannette/tradedesk-backend/internal/repository"
)

type journalJSON struct {
	models.JournalEntry
	Age string `json:"age"` // e.g. "3 days ago"
}

func toJournalJSON(e models.JournalEntry) journalJSON {
	return journalJSON{JournalEntry: e, Age: humanize.Time(e.CreatedAt)}
}

type journalRequest struct {
	Date    string   `json:"date"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

func (req journalRequest) entry() models.JournalEntry {
	e := models.JournalEntry{Date: req.Date, Title: req.Title, Content: req.Content, Tags: req.Tags}
	if strings.TrimSpace(e.Date) == "" {
		e.Date = repository.TradingDayNow()
	}
	e.Normalize()
	return e
}

func (s *Server) handleListJournal(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := s.journalRepo.List(r.Context(), repository.JournalFilter{
		Query: strings.TrimSpace(q.Get("q")),
		Tag:   strings.ToLower(strings.TrimSpace(q.Get("tag"))),
		Limit: parseLimit(r, 100),
	})
	if err != nil {
		fmt.Printf("Error fetching journal: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch journal entries")
		return
	}

	out := make([]journalJSON, len(entries))
	for i, e := range entries {
		out[i] = toJournalJSON(e)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateJournal(w http.ResponseWriter, r *http.Request) {
	var req journalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	e := req.entry()
	if err := e.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.journalRepo.Create(r.Context(), &e)
	if err != nil {
		fmt.Printf("Error creating journal entry: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to create journal entry")
		return
	}
	writeJSON(w, http.StatusCreated, toJournalJSON(*created))
}

func (s *Server) handleGetJournal(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid journal id")
		return
	}
	e, err := s.journalRepo.Get(r.Context(), id)
	if !s.journalResult(w, id, err) {
		return
	}
	writeJSON(w, http.StatusOK, toJournalJSON(*e))
}

func (s *Server) handleUpdateJournal(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid journal id")
		return
	}
	var req journalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	e := req.entry()
	e.ID = id
	if err := e.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := s.journalRepo.Update(r.Context(), &e)
	if !s.journalResult(w, id, err) {
		return
	}
	writeJSON(w, http.StatusOK, toJournalJSON(*updated))
}

func (s *Server) handleDeleteJournal(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid journal id")
		return
	}
	if !s.journalResult(w, id, s.journalRepo.Delete(r.Context(), id)) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// journalResult writes the error response for err and reports whether
// the handler should continue.
func (s *Server) journalResult(w http.ResponseWriter, id int64, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "journal entry not found")
	default:
		fmt.Printf("Error on journal entry %d: %v\n", id, err)
		writeError(w, http.StatusInternalServerError, "journal operation failed")
	}
	return false
}
