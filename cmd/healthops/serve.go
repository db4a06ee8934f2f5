package main

import (
	"context"
	"errors"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/jonwraymond/healthops/config"
	"github.com/jonwraymond/healthops/health"
	"github.com/jonwraymond/healthops/observe"
	"github.com/jonwraymond/healthops/resilience"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve health endpoints and reload the configuration when it changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			return serve(cmd.Context(), configPath(cmd), addr)
		},
	}
	cmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	return cmd
}

func serve(ctx context.Context, path, addr string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := newRuntime(ctx, path)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = rt.Close(shutdownCtx)
	}()

	if addr == "" {
		addr = rt.doc.Server.Addr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           rt.handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	watcher, err := config.NewWatcher(path, config.DefaultDebounce)
	if err != nil {
		return err
	}
	go func() {
		_ = watcher.Run(ctx, func(doc *config.Document, err error) {
			rt.reload(ctx, doc, err)
		})
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	rt.logger.Info(ctx, "serving health endpoints", observe.F("addr", addr), observe.F("checks", len(rt.doc.Checks)))

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// reload applies a document delivered by the watcher. A bad document is
// logged and the running configuration stays in place.
func (rt *runtime) reload(ctx context.Context, doc *config.Document, err error) {
	if err == nil {
		var touched []string
		touched, err = rt.apply(ctx, doc)
		if err == nil {
			rt.logger.Info(ctx, "configuration reloaded",
				observe.F("changed", touched), observe.F("cached_clients", rt.clients.Len()))
			return
		}
	}
	rt.logger.Error(ctx, "configuration reload failed", observe.F("error", err))
}

// handler mounts the health endpoints behind the rate limiter, and
// /metrics when the prometheus exporter is enabled.
func (rt *runtime) handler() http.Handler {
	healthMux := http.NewServeMux()
	health.RegisterHandlers(healthMux, rt.agg)

	var h http.Handler = healthMux
	if rl := rt.doc.Server.RateLimit; rl.RPS > 0 {
		h = rateLimit(resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: rl.RPS, Burst: rl.Burst}), h)
	}

	mux := http.NewServeMux()
	mux.Handle("/", h)
	if rt.doc.Observe.PrometheusEnabled() {
		mux.Handle("GET /metrics", promhttp.Handler())
	}
	return mux
}

// rateLimit answers 429 with Retry-After once the bucket is empty.
func rateLimit(rl *resilience.RateLimiter, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.Allow() {
			secs := int(math.Ceil(rl.RetryAfter().Seconds()))
			w.Header().Set("Retry-After", strconv.Itoa(max(secs, 1)))
			http.Error(w, resilience.ErrRateLimitExceeded.Error(), http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}
