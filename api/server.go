// Package api provides the HTTP REST API server for NeuroQuant.
//
// It exposes the analysis pipeline as JSON and HTML, the effective
// configuration, and a WebSocket feed of completed analyses.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/seenimoa/neuroquant/internal/config"
	"github.com/seenimoa/neuroquant/internal/datasource"
	"github.com/seenimoa/neuroquant/internal/logger"
	"github.com/seenimoa/neuroquant/internal/report"
	"github.com/seenimoa/neuroquant/pkg/models"
	"github.com/seenimoa/neuroquant/pkg/utils"
)

// Analyzer runs one analysis. *engine.Orchestrator satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, ticker string) (*models.AnalysisReport, error)
}

// historian is implemented by analyzers that can return the price history
// behind a report, used for the HTML chart.
type historian interface {
	History(ctx context.Context, ticker string) ([]models.OHLCV, error)
}

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	analyzer Analyzer
	wsHub    *WSHub
	version  string
	started  time.Time
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, a Analyzer, version string) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("api: nil config: %w", models.ErrPrecondition)
	}
	if a == nil {
		return nil, fmt.Errorf("api: analyzer: %w", models.ErrCollaboratorUnavailable)
	}
	srv := &Server{
		cfg:      cfg,
		analyzer: a,
		wsHub:    NewWSHub(),
		version:  version,
		started:  time.Now(),
	}
	srv.router = srv.buildRouter()
	return srv, nil
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WSHub {
	return s.wsHub
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.requestTimeout() + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.wsHub.Run(hubCtx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "api server listening", "addr", addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("api: listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(ctx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	// Browsers reject credentialed responses to a wildcard origin.
	credentials := !slices.Contains(origins, "*")
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: credentials,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.requestTimeout()))
			r.Post("/analyze", s.handleAnalyze)
			r.Get("/analyze/{ticker}", s.handleAnalyzeTicker)
			r.Get("/report/{ticker}", s.handleReportHTML)
		})

		r.Get("/watchlist", s.handleWatchlist)

		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

func (s *Server) requestTimeout() time.Duration {
	if s.cfg.API.TimeoutSec > 0 {
		return time.Duration(s.cfg.API.TimeoutSec) * time.Second
	}
	return 60 * time.Second
}

// requestLogger logs one line per request through the structured logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			logger.Info(r.Context(), "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()))
		}()
		next.ServeHTTP(ww, r)
	})
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// AnalyzeRequest is the body for POST /api/v1/analyze.
type AnalyzeRequest struct {
	Ticker string `json:"ticker"`
}

// HealthResponse is the payload of GET /health.
type HealthResponse struct {
	Status        string    `json:"status"`
	Version       string    `json:"version"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	WSClients     int       `json:"ws_clients"`
	Time          time.Time `json:"time"`
}

// AnalysisEvent is the payload broadcast when an analysis completes.
type AnalysisEvent struct {
	ID        string          `json:"id"`
	Ticker    string          `json:"ticker"`
	Price     float64         `json:"price"`
	Verdict   models.Verdict  `json:"verdict"`
	Display   string          `json:"display"`
	Severity  models.Severity `json:"severity"`
	Sentiment float64         `json:"sentiment"`
	Risky     bool            `json:"risky"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: HealthResponse{
			Status:        "ok",
			Version:       s.version,
			UptimeSeconds: int64(time.Since(s.started).Seconds()),
			WSClients:     s.wsHub.ClientCount(),
			Time:          time.Now().UTC(),
		},
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	s.analyze(w, r, req.Ticker)
}

func (s *Server) handleAnalyzeTicker(w http.ResponseWriter, r *http.Request) {
	s.analyze(w, r, chi.URLParam(r, "ticker"))
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request, ticker string) {
	rep, ok := s.runAnalysis(w, r, ticker)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: rep})
}

func (s *Server) handleReportHTML(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")
	rep, ok := s.runAnalysis(w, r, ticker)
	if !ok {
		return
	}

	var history []models.OHLCV
	if h, ok := s.analyzer.(historian); ok {
		c, err := h.History(r.Context(), rep.Ticker)
		if err != nil {
			logger.Warn(r.Context(), "history unavailable for chart", "ticker", rep.Ticker, "error", err)
		}
		history = c
	}

	page, err := report.GenerateHTML(rep, history)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(page))
}

// runAnalysis validates the ticker, runs the analyzer and broadcasts the
// result. On failure it writes the error response and returns false.
func (s *Server) runAnalysis(w http.ResponseWriter, r *http.Request, ticker string) (*models.AnalysisReport, bool) {
	if ticker == "" {
		writeError(w, http.StatusBadRequest, "ticker is required")
		return nil, false
	}
	ticker = utils.NormalizeTicker(ticker)
	if !utils.ValidTicker(ticker) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid ticker %q", ticker))
		return nil, false
	}

	rep, err := s.analyzer.Analyze(r.Context(), ticker)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return nil, false
	}
	s.BroadcastReport(rep)
	return rep, true
}

// BroadcastReport pushes an analysis_complete event to WebSocket clients.
func (s *Server) BroadcastReport(rep *models.AnalysisReport) {
	ev := AnalysisEvent{
		ID:        rep.ID,
		Ticker:    rep.Ticker,
		Price:     rep.CurrentPrice,
		Verdict:   rep.Decision.Verdict,
		Display:   rep.Decision.Verdict.Display(),
		Severity:  rep.Decision.Severity,
		Sentiment: rep.Sentiment.AverageScore,
		Risky:     rep.Sentiment.Riskiest != nil,
	}
	s.wsHub.Broadcast(WSMessage{Type: MsgAnalysisComplete, Data: ev})
}

func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"tickers":  s.cfg.Watch.Tickers,
			"schedule": s.cfg.Watch.Schedule,
		},
	})
}

// ============================================================
// Helpers
// ============================================================

// statusFor maps pipeline errors onto HTTP status codes.
func statusFor(err error) int {
	var httpErr *datasource.ErrHTTP
	switch {
	case errors.Is(err, models.ErrPrecondition):
		return http.StatusBadRequest
	case errors.Is(err, datasource.ErrTickerNotFound), errors.Is(err, datasource.ErrNoData):
		return http.StatusNotFound
	case errors.Is(err, models.ErrCollaboratorUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &httpErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn(context.Background(), "failed to write JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
