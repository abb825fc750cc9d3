package api

import (
	"net/http"
	"time"
)

type healthResponse struct {
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Services  healthServices `json:"services"`
}

type healthServices struct {
	Database      string `json:"database"`
	Analyzer      string `json:"analyzer"`
	StreamClients int    `json:"streamClients"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbStatus := "disconnected"
	if s.pool != nil && s.pool.Ping(r.Context()) == nil {
		dbStatus = "connected"
	}

	clients := 0
	if s.hub != nil {
		clients = s.hub.Clients()
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  healthServices{Database: dbStatus, Analyzer: s.source, StreamClients: clients},
	})
}
