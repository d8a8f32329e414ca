// Package api exposes the router subsystem over HTTP. Handlers are thin:
// they decode JSON, validate identifiers at the boundary and translate the
// domain error taxonomy to status codes.
package api

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"memeswap-router/internal/bootstrap"
	"memeswap-router/internal/locker"
	"memeswap-router/internal/observability"
	"memeswap-router/internal/registry"
	"memeswap-router/internal/router"
)

// Server wires the subsystem's services into an HTTP mux.
type Server struct {
	router       *router.Router
	registry     *registry.Registry
	locker       *locker.Locker
	bootstrapper *bootstrap.Bootstrapper
	hub          http.Handler // websocket event feed, nil disables /ws
	logger       *log.Logger

	started time.Time
}

// NewServer creates an API server over the given services.
func NewServer(
	swapRouter *router.Router,
	creatorRegistry *registry.Registry,
	liquidityLocker *locker.Locker,
	poolBootstrapper *bootstrap.Bootstrapper,
	hub http.Handler,
	logger *log.Logger,
) *Server {
	return &Server{
		router:       swapRouter,
		registry:     creatorRegistry,
		locker:       liquidityLocker,
		bootstrapper: poolBootstrapper,
		hub:          hub,
		logger:       logger,
		started:      time.Now(),
	}
}

// Routes builds the HTTP mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.Handle("GET /metrics", observability.Handler())
	if s.hub != nil {
		mux.Handle("GET /ws", s.hub)
	}

	mux.HandleFunc("POST /v1/swap", s.handleSwap)
	mux.HandleFunc("POST /v1/quote", s.handleQuote)

	mux.HandleFunc("POST /v1/creators", s.handleRegisterCreator)
	mux.HandleFunc("GET /v1/creators", s.handleListCreators)
	mux.HandleFunc("GET /v1/creators/{asset}", s.handleGetCreator)
	mux.HandleFunc("PUT /v1/creators/{asset}", s.handleReassignCreator)

	mux.HandleFunc("POST /v1/pools", s.handleBootstrap)
	mux.HandleFunc("GET /v1/pools/{asset}", s.handleGetBootstrap)

	mux.HandleFunc("GET /v1/locks/{id}", s.handleGetLock)
	mux.HandleFunc("POST /v1/locks/{id}/release", s.handleReleaseLock)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// statusResponse is the JSON response for /status.
type statusResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Status: "running",
		Uptime: time.Since(s.started).String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
