// Package server is the HTTP variant of the assistant: a JSON API under /api,
// Prometheus metrics and an optional static web client.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/comigor/jarvis-assistant/internal/assistant"
	"github.com/comigor/jarvis-assistant/internal/automation"
	"github.com/comigor/jarvis-assistant/internal/config"
	"github.com/comigor/jarvis-assistant/internal/logger"
	"github.com/comigor/jarvis-assistant/internal/metrics"
	"github.com/comigor/jarvis-assistant/internal/realtime"
	"github.com/comigor/jarvis-assistant/internal/sysstats"
)

// maxBodyBytes bounds request bodies; base64 audio is the largest payload.
const maxBodyBytes = 32 << 20

// Assistant is what the API needs from the assistant.
type Assistant interface {
	Chat(ctx context.Context, req assistant.ChatRequest) (assistant.ChatResponse, error)
	Recall(ctx context.Context, path string) (assistant.RecallResult, error)
	Stats(ctx context.Context) (sysstats.Stats, error)
	Weather(ctx context.Context, lat, lon float64) (json.RawMessage, error)
	Search(ctx context.Context, query string) (realtime.SearchResult, error)
}

// Executor carries out gated automation commands.
type Executor interface {
	Execute(ctx context.Context, cmd automation.Command) (map[string]any, error)
}

// Speech converts between audio and text.
type Speech interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Deps are the collaborators behind the API. Metrics may be nil.
type Deps struct {
	Assistant Assistant
	Control   Executor
	Speech    Speech
	Metrics   *metrics.Metrics
}

// Server routes the API.
type Server struct {
	cfg     config.ServerConfig
	gate    automation.Gate
	deps    Deps
	limiter *rate.Limiter
	handler http.Handler
}

// New builds the server and its routes.
func New(cfg config.Config, deps Deps) *Server {
	s := &Server{
		cfg:     cfg.Server,
		gate:    automation.Gate{Enabled: cfg.Automation.Enabled},
		deps:    deps,
		limiter: newLimiter(cfg.Server.ActionRatePerMinute),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/weather", s.handleWeather)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/memory", s.handleMemory)
	mux.Handle("POST /api/command", s.rateLimited(http.HandlerFunc(s.handleCommand)))
	mux.Handle("POST /api/transcribe", s.rateLimited(http.HandlerFunc(s.handleTranscribe)))
	mux.Handle("POST /api/speak", s.rateLimited(http.HandlerFunc(s.handleSpeak)))
	mux.Handle("GET /metrics", deps.Metrics.Handler())

	if cfg.Server.WebDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(cfg.Server.WebDir)))
	} else {
		mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
			writeDetail(w, http.StatusNotFound, "Not Found")
		})
	}

	s.handler = requestID(accessLog(deps.Metrics, recoverer(mux)))
	return s
}

// Handler is the full middleware-wrapped router.
func (s *Server) Handler() http.Handler { return s.handler }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L.Info("starting server", "address", srv.Addr, "automation", s.gate.Enabled)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logger.L.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func newLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(float64(perMinute)/60), max(1, perMinute/6))
}
