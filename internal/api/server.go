// Package api provides a read-only HTTP view of a running simulation: run
// status, health system counters, and recent analysis records.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mkwanda/healthsim/internal/record"
	"github.com/mkwanda/healthsim/internal/sim"
)

// Server serves simulation state over HTTP.
type Server struct {
	Sim  *sim.Simulation
	DB   *record.Store
	Port int
}

// Start begins serving in a goroutine.
func (s *Server) Start() {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/healthsystem", s.handleHealthSystem)
	mux.HandleFunc("/api/v1/records", s.handleRecords)

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr)

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.Sim.Stats()
	status := map[string]any{
		"date":   s.Sim.Date.Format("2006-01-02"),
		"day":    stats.Days,
		"alive":  s.Sim.Pop.AliveCount(),
		"total":  s.Sim.Pop.Len(),
		"births": stats.Births,
		"deaths": stats.Deaths,
		"events": stats.EventsFired,
	}
	if s.DB != nil {
		status["run_id"] = s.DB.RunID()
	}
	writeJSON(w, status)
}

func (s *Server) handleHealthSystem(w http.ResponseWriter, r *http.Request) {
	hs := s.Sim.HS.Stats()
	writeJSON(w, map[string]any{
		"scheduled":     hs.Scheduled,
		"ran":           hs.Ran,
		"did_not_run":   hs.DidNotRun,
		"never_ran":     hs.NeverRan,
		"not_available": hs.NotAvailable,
		"deferred":      hs.Deferred,
		"dropped_dead":  hs.DroppedDead,
		"queued":        s.Sim.HS.QueueLen(),
	})
}

func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	rows, err := s.DB.Recent(limit)
	if err != nil {
		slog.Error("records query failed", "error", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []record.RecentRecord{}
	}
	writeJSON(w, rows)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response failed", "error", err)
	}
}
