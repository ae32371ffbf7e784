// Package api provides the HTTP API server for confgauge.
//
// It exposes stateless gauge renders (SVG, PNG and primitive JSON), live
// gauge charts updated over REST and streamed over WebSocket, and named
// canvases for direct draws.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"

	"github.com/seenimoa/confgauge/internal/canvas"
	"github.com/seenimoa/confgauge/internal/config"
	"github.com/seenimoa/confgauge/internal/engine"
	"github.com/seenimoa/confgauge/internal/gauge"
	"github.com/seenimoa/confgauge/internal/infra"
	"github.com/seenimoa/confgauge/web"
)

// errBadRequest marks request errors found past decoding.
var errBadRequest = errors.New("bad request")

// Version is reported by the health endpoint. Set by the CLI.
var Version = "dev"

// APIResponse is the JSON envelope of every non-image response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	engine   *engine.Engine
	log      logrus.FieldLogger
	wsHub    *WSHub
	cache    *infra.RenderCache
	limiter  *infra.RateLimiter
	charts   *chartStore
	canvases *canvasStore
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config, eng *engine.Engine, log logrus.FieldLogger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	srv := &Server{
		cfg:      cfg,
		engine:   eng,
		log:      log,
		wsHub:    NewWSHub(),
		cache:    infra.NewRenderCache(time.Duration(cfg.API.CacheTTL) * time.Second),
		limiter:  infra.NewRateLimiterPerSecond(cfg.API.RateLimit, cfg.API.RateBurst),
		charts:   newChartStore(),
		canvases: newCanvasStore(),
	}
	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and shuts it down gracefully on
// SIGINT, SIGTERM or when ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go s.wsHub.Run(ctx)
	go s.cache.RunJanitor(ctx, time.Minute)

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("HTTP server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
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
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Cache", "X-Gauge-Strategy"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Request bodies are JSON only; this also keeps plain HTML forms
		// from posting to the API.
		r.Use(middleware.AllowContentType("application/json"))

		r.Get("/health", s.handleHealth)
		r.Get("/status", s.handleStatus)

		// Stateless renders
		r.Group(func(r chi.Router) {
			r.Use(s.rateLimit)
			r.Get("/gauge.svg", s.handleGaugeQuery(engine.FormatSVG))
			r.Get("/gauge.png", s.handleGaugeQuery(engine.FormatPNG))
			r.Post("/gauge", s.handleGauge)
			r.Post("/ring", s.handleRing)
		})

		// Live gauge charts
		r.Get("/charts", s.handleListCharts)
		r.Post("/charts", s.handleCreateChart)
		r.Get("/charts/{id}", s.handleGetChart)
		r.Put("/charts/{id}/value", s.handleUpdateChart)
		r.Delete("/charts/{id}", s.handleDeleteChart)

		// Named canvases for direct draws
		r.Get("/canvases", s.handleListCanvases)
		r.Put("/canvases/{id}", s.handlePutCanvas)
		r.Get("/canvases/{id}", s.handleGetCanvas)
		r.Post("/canvases/{id}/draw", s.handleDrawCanvas)
		r.Delete("/canvases/{id}", s.handleDeleteCanvas)

		// Configuration
		r.Get("/config", s.handleGetConfig)
		r.Get("/config/settings", s.handleGetSettings)

		// WebSocket
		r.Get("/ws", s.handleWebSocket)
	})

	// Live dashboard
	if s.cfg.API.ServeUI {
		s.mountUI(r, web.DistFS())
	}

	return r
}

// mountUI serves the embedded dashboard. Unknown paths get index.html.
func (s *Server) mountUI(r chi.Router, distFS fs.FS) {
	fileServer := http.FileServerFS(distFS)

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		rPath := strings.TrimPrefix(r.URL.Path, "/")
		if rPath == "" {
			rPath = "index.html"
		}

		f, err := distFS.Open(rPath)
		if err != nil {
			serveIndexHTML(w, distFS)
			return
		}
		f.Close()

		if strings.HasPrefix(rPath, "assets/") {
			w.Header().Set("Cache-Control", "public, max-age=3600")
		} else if strings.HasSuffix(rPath, ".html") {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		}

		fileServer.ServeHTTP(w, r)
	})
}

// serveIndexHTML writes the embedded index.html.
func serveIndexHTML(w http.ResponseWriter, distFS fs.FS) {
	data, err := fs.ReadFile(distFS, "index.html")
	if err != nil {
		http.Error(w, "dashboard not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// requestLogger logs one line per request: errors for 5xx, warnings for
// 4xx and debug for everything else.
func requestLogger(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// handlers can rewrite the URL so capture the path first
			path := r.URL.Path
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			latency := int(math.Ceil(float64(time.Since(start).Nanoseconds()) / 1000000.0))

			statusCode := ww.Status()
			if statusCode == 0 {
				statusCode = http.StatusOK
			}

			entry := logger.WithFields(logrus.Fields{
				"statusCode": statusCode,
				"latency":    latency, // ms
				"method":     r.Method,
				"path":       path,
				"dataLength": ww.BytesWritten(),
				"requestID":  middleware.GetReqID(r.Context()),
			})

			msg := fmt.Sprintf("%s %s %d (%dms)", r.Method, path, statusCode, latency)
			switch {
			case statusCode >= http.StatusInternalServerError:
				entry.Error(msg)
			case statusCode >= http.StatusBadRequest:
				entry.Warn(msg)
			default:
				entry.Debug(msg)
			}
		})
	}
}

// rateLimit rejects renders beyond the configured rate with 429.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "render rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":   "ok",
			"version":  Version,
			"strategy": s.engine.Strategy(),
			"time":     time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// StatusInfo is returned by GET /api/v1/status.
type StatusInfo struct {
	Strategy    engine.Strategy `json:"strategy"`
	ChartTypes  []string        `json:"chart_types"`
	Clamp       bool            `json:"clamp"`
	Charts      int             `json:"charts"`
	Canvases    int             `json:"canvases"`
	WSClients   int             `json:"ws_clients"`
	CacheHits   int64           `json:"cache_hits"`
	CacheMisses int64           `json:"cache_misses"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	info := StatusInfo{
		Strategy:  s.engine.Strategy(),
		Clamp:     s.engine.Clamp(),
		Charts:    s.charts.len(),
		Canvases:  len(s.canvases.doc.IDs()),
		WSClients: s.wsHub.ClientCount(),
	}
	if host := s.engine.Host(); host != nil {
		info.ChartTypes = host.Types()
	}
	info.CacheHits, info.CacheMisses = s.cache.Stats()
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: info})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Error("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

// writeRendered writes an encoded gauge.
func writeRendered(w http.ResponseWriter, r infra.Rendered) {
	w.Header().Set("Content-Type", r.ContentType)
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(r.Body)
}

// renderStatus maps a render error onto an HTTP status.
func renderStatus(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, gauge.ErrInvalidDomain), errors.Is(err, gauge.ErrInvalidValue),
		errors.Is(err, canvas.ErrBadColor), errors.Is(err, canvas.ErrBadFont):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrPluginUnavailable):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
