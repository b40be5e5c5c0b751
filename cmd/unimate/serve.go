package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/unimate/listing-search/api"
	"github.com/unimate/listing-search/config"
	"github.com/unimate/listing-search/internal/analytics"
	"github.com/unimate/listing-search/internal/metrics"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the listing search HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "Port to run the server on (overrides server.port)")
	return cmd
}

// serve runs the HTTP service until SIGINT or SIGTERM, then drains requests
// and snapshots analytics.
func serve(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Store.Driver, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("failed to close store", "error", err)
		}
	}()
	slog.Info("store opened", "driver", cfg.Store.Driver)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(reg)
	}

	searcher, closeCache, err := newSearcher(ctx, cfg, store, m)
	if err != nil {
		return err
	}
	defer closeCache()

	var analyticsOpts []analytics.Option
	if cfg.Kafka.Enabled {
		analyticsOpts = append(analyticsOpts, analytics.WithPublisher(analytics.NewKafkaPublisher(cfg.Kafka)))
		slog.Info("publishing search events", "brokers", cfg.Kafka.Brokers, "topic", cfg.Kafka.AnalyticsTopic)
	}
	tracker := analytics.NewService(cfg.Analytics, analyticsOpts...)
	defer func() {
		if err := tracker.Snapshot(); err != nil {
			slog.Warn("failed to snapshot analytics", "error", err)
		}
		if err := tracker.Close(); err != nil {
			slog.Warn("failed to close analytics publisher", "error", err)
		}
	}()

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	apiOpts := []api.Option{
		api.WithServerConfig(cfg.Server),
		api.WithDefaultLimit(cfg.Search.DefaultLimit),
	}
	if m != nil {
		apiOpts = append(apiOpts, api.WithMetrics(m))
	}
	api.SetupRoutes(router, api.NewAPI(searcher, tracker, apiOpts...), cfg.Metrics.Path)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listing search listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	slog.Info("listing search stopped")
	return nil
}
