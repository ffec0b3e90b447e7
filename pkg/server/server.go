// Package server exposes the agent over HTTP: a blocking predict endpoint,
// a websocket streaming endpoint, and model/health introspection.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/stonexlabs/portfolio-agent/pkg/agent"
	"github.com/stonexlabs/portfolio-agent/pkg/model"
)

// Server serves the agent API.
type Server struct {
	agent    *agent.Agent
	provider model.Provider
	srv      *http.Server
}

// New creates a new Server.
func New(a *agent.Agent, provider model.Provider) *Server {
	return &Server{agent: a, provider: provider}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/agent/predict", s.handlePredict)
	mux.HandleFunc("GET /api/models", s.handleListModels)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	// WebSocket
	mux.HandleFunc("/api/agent/chat", s.handleChatWebSocket)

	s.srv = &http.Server{
		Addr:    addr,
		Handler: s.corsMiddleware(mux),
	}

	slog.Info("Starting agent server", "addr", addr)
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, err error) {
	slog.Error("API Error", "error", err)
	s.jsonResponse(w, status, map[string]string{"error": err.Error()})
}
