package api

import (
	"fmt"
	"net/http"

	"github.com/kjannette/tradedesk-backend/internal/models"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settingsRepo.Get(r.Context())
	if err != nil {
		fmt.Printf("Error fetching settings: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.Settings
	if !decodeBody(w, r, &settings) {
		return
	}
	if err := settings.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := s.settingsRepo.Save(r.Context(), settings)
	if err != nil {
		fmt.Printf("Error saving settings: %v\n", err)
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}
	if s.hub != nil {
		s.hub.Broadcast("settings", saved)
	}
	writeJSON(w, http.StatusOK, saved)
}
