// Package httpapi serves the local control surface: health, status, pause controls and metrics.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Playback is the shared pause flag as seen by local controls
type Playback interface {
	SetPaused(paused bool)
	Paused() bool
	TogglePaused() bool
}

// Status is the body of GET /status
type Status struct {
	Paused       bool   `json:"paused"`
	ControlState string `json:"control_state"`
	Uptime       string `json:"uptime"`
}

// Server is the HTTP control surface
type Server struct {
	logger       *zap.Logger
	addr         string
	playback     Playback
	controlState func() string
	events       chan bool
	started      time.Time

	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
}

// NewServer creates a server listening on addr; controlState may be nil when the control channel is off
func NewServer(logger *zap.Logger, addr string, playback Playback, controlState func() string) *Server {
	return &Server{
		logger:       logger,
		addr:         addr,
		playback:     playback,
		controlState: controlState,
		events:       make(chan bool, 1),
		started:      time.Now(),
	}
}

// Router builds the route table
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.health).Methods(http.MethodGet)
	r.HandleFunc("/status", s.status).Methods(http.MethodGet)
	r.HandleFunc("/pause", s.pause).Methods(http.MethodPost)
	r.HandleFunc("/resume", s.resume).Methods(http.MethodPost)
	r.HandleFunc("/toggle", s.toggle).Methods(http.MethodPost)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

// Start binds the listener and serves in the background
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.srv != nil {
		return nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.listener = ln
	s.srv = &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server failed", zap.Error(err))
		}
	}(s.srv)

	s.logger.Info("HTTP control server listening", zap.String("addr", ln.Addr().String()))
	return nil
}

// Stop shuts the server down gracefully
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	s.logger.Info("HTTP control server stopped")
	return nil
}

// Addr returns the bound address once started
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// PauseEvents emits the pause flag after each local change, keeping only the latest value
func (s *Server) PauseEvents() <-chan bool {
	return s.events
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, _ *http.Request) {
	st := Status{
		Paused:       s.playback.Paused(),
		ControlState: "disabled",
		Uptime:       time.Since(s.started).Truncate(time.Second).String(),
	}
	if s.controlState != nil {
		st.ControlState = s.controlState()
	}
	writeJSON(w, s.logger, http.StatusOK, st)
}

func (s *Server) pause(w http.ResponseWriter, _ *http.Request) {
	s.playback.SetPaused(true)
	s.changed(w, true)
}

func (s *Server) resume(w http.ResponseWriter, _ *http.Request) {
	s.playback.SetPaused(false)
	s.changed(w, false)
}

func (s *Server) toggle(w http.ResponseWriter, _ *http.Request) {
	s.changed(w, s.playback.TogglePaused())
}

func (s *Server) changed(w http.ResponseWriter, paused bool) {
	select {
	case s.events <- paused:
	default:
		select {
		case <-s.events:
		default:
		}
		select {
		case s.events <- paused:
		default:
		}
	}
	s.logger.Info("Playback changed from HTTP", zap.Bool("paused", paused))
	writeJSON(w, s.logger, http.StatusOK, map[string]bool{"paused": paused})
}

func writeJSON(w http.ResponseWriter, logger *zap.Logger, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode JSON response", zap.Error(err))
	}
}
