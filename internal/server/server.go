// Package server provides the HTTP debug and control surface for the
// webcam-wave detector: parameter tuning, the wave event log, live
// status over WebSocket and MJPEG streams of the pipeline's
// intermediate buffers.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/BernieSumption/webcam-wave/internal/app"
	"github.com/BernieSumption/webcam-wave/internal/server/api"
	"github.com/BernieSumption/webcam-wave/internal/store"
)

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	App       *app.App
}

// Server represents the HTTP server for the webcam-wave application.
type Server struct {
	config Config
	mux    *http.ServeMux
	status *StatusHandler
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		s.mux.Handle("/api/events", api.NewEventsHandler(s.config.Store))
	}

	if s.config.App != nil {
		s.mux.Handle("/api/params", api.NewParamsHandler(s.config.App))
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.App))

		s.status = NewStatusHandler()
		s.mux.Handle("/api/status", s.status)
		// Push every processed tick to connected status clients.
		s.config.App.Subscribe(s.status.Broadcast)
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
