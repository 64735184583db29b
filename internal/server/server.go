// Package server wires configuration, storage, the article store and the
// HTTP surface into a running stockd process.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stockcore/internal/adapters/articles"
	"stockcore/internal/adapters/httplog"
	"stockcore/internal/config"
	"stockcore/internal/core"
	"stockcore/internal/logging"
	"stockcore/internal/persistence"
)

const readHeaderTimeout = 10 * time.Second

// TraceOutput receives JSON trace spans when tracing is enabled.
var TraceOutput io.Writer = os.Stderr

// Run listens on the configured port and serves until ctx is cancelled.
func Run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr(), err)
	}
	return Serve(ctx, cfg, ln, logger)
}

// Serve opens the configured document backend and serves HTTP on ln until
// ctx is cancelled, then drains in-flight requests within
// cfg.ShutdownTimeout. ln is closed on return.
func Serve(ctx context.Context, cfg config.Config, ln net.Listener, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	docs, err := persistence.OpenAndInit(ctx, cfg.Storage)
	if err != nil {
		_ = ln.Close()
		return err
	}
	defer func() {
		if err := docs.Close(); err != nil {
			logger.Warn("close document store", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := core.NewPrometheusMetricsRecorder(reg)
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("register metrics: %w", err)
	}

	opts := []core.Option{
		core.WithLogger(logging.NewStoreLogger(logger)),
		core.WithMetricsRecorder(metrics),
		core.WithMaxReaders(cfg.MaxReaders),
	}
	if cfg.Trace {
		opts = append(opts, core.WithTracer(core.NewJSONTracer(TraceOutput)))
	}
	store := core.NewStore(docs, opts...)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	mux.Handle("/", articles.NewHandler(store, logger))

	srv := &http.Server{
		Handler:           httplog.Middleware(logger, mux),
		ReadHeaderTimeout: readHeaderTimeout,
		ErrorLog:          zap.NewStdLog(logger.Named("http")),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening",
			zap.String("addr", ln.Addr().String()),
			zap.String("driver", string(store.Driver())),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	})
	return g.Wait()
}
