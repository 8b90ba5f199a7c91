package main

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/danverstone/realsearch/internal/health"
)

// serveHealth starts a background listener on addr exposing /healthz,
// /readyz, and /metrics for the duration of a long-running operation
// (indices setup, demo run) so operators can scrape liveness, backend
// readiness, and the OTel-bridged Prometheus metrics registered by
// observe.InitProvider while it runs. It returns a shutdown function that
// stops the listener; the caller should defer it.
func (a *app) serveHealth(addr string) func(context.Context) error {
	mux := http.NewServeMux()
	health.New(health.Checker{Name: "search_backend", Check: a.backend.Ping}).Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Str("addr", addr).Msg("health/metrics listener stopped")
		}
	}()
	return srv.Shutdown
}
