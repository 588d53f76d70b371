// Package api is the HTTP surface: one chat endpoint plus health
// probes, wrapped in the middleware stack.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/medinaguide/medina/internal/assemble"
	"github.com/medinaguide/medina/internal/llm"
)

// ServerConfig contains everything the HTTP surface needs. Components
// are passed in constructed; the server never reads ambient state.
type ServerConfig struct {
	Logger    *slog.Logger
	Embedder  llm.Embedder   // Required
	Retriever Retriever      // Required
	Responder Responder      // Required
	Counter   RequestCounter // Required
	Messages  MessageLogger  // Optional: nil disables the message log

	Weather    Adapter // Required
	Directions Adapter // Required
	WebSearch  Adapter // Required

	Pool Pinger // Optional: nil degrades /ready to liveness

	APIToken          string // Optional caller credential (X-API-Token)
	DailyRequestLimit int
	MaxMessageChars   int
	MinSimilarity     float64
	StrictDomain      bool
	ContextCaps       assemble.Caps
	EmbedTimeout      time.Duration
	CORSOrigins       []string
	TrustProxy        bool
}

// Server is the JSON API HTTP server.
type Server struct {
	mux *http.ServeMux
}

// NewServer creates the server with all routes and middleware
// configured.
func NewServer(cfg ServerConfig) (*Server, error) {
	switch {
	case cfg.Embedder == nil:
		return nil, errors.New("embedder is required")
	case cfg.Retriever == nil:
		return nil, errors.New("retriever is required")
	case cfg.Responder == nil:
		return nil, errors.New("responder is required")
	case cfg.Counter == nil:
		return nil, errors.New("request counter is required")
	case cfg.Weather == nil || cfg.Directions == nil || cfg.WebSearch == nil:
		return nil, errors.New("all lookup adapters are required")
	case cfg.DailyRequestLimit <= 0:
		return nil, errors.New("daily request limit must be positive")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ch := &chatHandler{
		embedder:        cfg.Embedder,
		retriever:       cfg.Retriever,
		responder:       cfg.Responder,
		weather:         cfg.Weather,
		directions:      cfg.Directions,
		websearch:       cfg.WebSearch,
		messages:        cfg.Messages,
		caps:            cfg.ContextCaps,
		minSimilarity:   cfg.MinSimilarity,
		strictDomain:    cfg.StrictDomain,
		maxMessageChars: cfg.MaxMessageChars,
		embedTimeout:    cfg.EmbedTimeout,
		logger:          logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/chat", ch.send)

	// Middleware stack (outermost first):
	//   Recovery → RequestID → Logging → CORS → Auth → DailyLimit → Routes
	// CORS sits before Auth and DailyLimit so preflight OPTIONS succeeds
	// without a credential and without consuming quota.
	var handler http.Handler = mux
	handler = dailyLimitMiddleware(cfg.Counter, cfg.DailyRequestLimit, cfg.TrustProxy, logger)(handler)
	handler = authMiddleware(cfg.APIToken, logger)(handler)
	handler = corsMiddleware(cfg.CORSOrigins)(handler)
	handler = loggingMiddleware(logger)(handler)
	handler = requestIDMiddleware()(handler)
	handler = recoveryMiddleware(logger)(handler)

	// Health probes bypass the middleware stack.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health(logger))
	topMux.Handle("GET /ready", readiness(cfg.Pool, logger))
	topMux.Handle("/", handler)

	return &Server{mux: topMux}, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}
