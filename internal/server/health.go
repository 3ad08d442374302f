// Package server exposes the health endpoint the deploy target probes
// to keep the bot instance alive.
package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sandevgo/daobot/internal/core"
	"github.com/sandevgo/daobot/pkg/log"
)

type Health struct {
	srv *http.Server
	db  *sql.DB
}

func NewHealth(addr string, db *sql.DB) *Health {
	h := &Health{db: db}

	r := chi.NewRouter()
	r.Get("/", h.handleLive)
	r.Get("/health", h.handleLive)
	r.Get("/health/ready", h.handleReady)

	h.srv = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return h
}

func (h *Health) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", h.srv.Addr).Msg("starting health server")
	if err := h.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (h *Health) Shutdown(ctx context.Context) error {
	return h.srv.Shutdown(ctx)
}

func (h *Health) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive", "bot": core.BotName})
}

func (h *Health) handleReady(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "healthy", "database": "healthy"}
	code := http.StatusOK

	if h.db != nil {
		if err := h.db.PingContext(r.Context()); err != nil {
			status["status"] = "degraded"
			status["database"] = err.Error()
			code = http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, status)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
