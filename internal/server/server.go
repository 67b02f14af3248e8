// Package server runs the relay as a standalone HTTP service with health and
// metrics endpoints next to it.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aliqulovx561-ai/writing-set-two/internal/config"
	"github.com/aliqulovx561-ai/writing-set-two/internal/logger"
	"github.com/aliqulovx561-ai/writing-set-two/internal/middleware"
	"github.com/aliqulovx561-ai/writing-set-two/internal/telegram"
)

const deepCheckTimeout = 10 * time.Second

// ErrServerClosed is returned by ListenAndServe after Shutdown.
var ErrServerClosed = http.ErrServerClosed

// BotChecker verifies that the configured bot token is accepted by Telegram.
type BotChecker interface {
	GetMe(ctx context.Context) (*telegram.User, error)
}

// Server serves the relay plus /healthz and /metrics.
type Server struct {
	cfg        config.Config
	log        *logger.Logger
	metrics    *logger.Metrics
	checker    BotChecker
	startedAt  time.Time
	httpServer *http.Server
}

type serviceCheck struct {
	OK    bool   `json:"ok"`
	Bot   string `json:"bot,omitempty"`
	Error string `json:"error,omitempty"`
}

type healthResponse struct {
	Status        string        `json:"status"`
	UptimeSeconds int64         `json:"uptimeSeconds"`
	Credentials   bool          `json:"credentials"`
	DryRun        bool          `json:"dryRun,omitempty"`
	Telegram      *serviceCheck `json:"telegram,omitempty"`
}

// New wires relay at cfg.Path for every method. checker may be nil, in which
// case a deep health check reports Telegram as unavailable.
func New(cfg config.Config, relay http.Handler, checker BotChecker, log *logger.Logger, metrics *logger.Metrics) *Server {
	if log == nil {
		log = logger.Default()
	}
	if metrics == nil {
		metrics = logger.DefaultMetrics()
	}

	s := &Server{
		cfg:       cfg,
		log:       log,
		metrics:   metrics,
		checker:   checker,
		startedAt: time.Now(),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))

	r.Handle(cfg.Path, relay)
	r.Get("/healthz", s.healthHandler)
	r.Get("/metrics", s.metricsHandler)

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// ListenAndServe listens on the configured address until Shutdown.
func (s *Server) ListenAndServe() error {
	s.log.Info("Relay server listening", logger.Fields{
		"addr":    s.cfg.Addr,
		"path":    s.cfg.Path,
		"dry_run": s.cfg.DryRun,
	})
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	res := healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
		Credentials:   s.cfg.HasCredentials(),
		DryRun:        s.cfg.DryRun,
	}

	status := http.StatusOK
	if deep := r.URL.Query().Get("deep"); deep == "1" || deep == "true" {
		check := s.checkTelegram(r.Context())
		res.Telegram = &check
		if !check.OK {
			res.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
	}

	s.writeJSON(w, status, res)
}

func (s *Server) checkTelegram(ctx context.Context) serviceCheck {
	if s.checker == nil {
		return serviceCheck{Error: "telegram client not configured"}
	}

	ctx, cancel := context.WithTimeout(ctx, deepCheckTimeout)
	defer cancel()

	user, err := s.checker.GetMe(ctx)
	if err != nil {
		msg := strings.TrimSpace(telegram.Description(err))
		if msg == "" {
			msg = "unknown error"
		}
		return serviceCheck{Error: msg}
	}
	return serviceCheck{OK: true, Bot: user.Username}
}

func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.metrics.GetSnapshot())
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("Encoding response failed", logger.Fields{"status": status}, err)
	}
}

// IsServerClosed reports whether err is the normal result of Shutdown.
func IsServerClosed(err error) bool {
	return errors.Is(err, ErrServerClosed)
}
