package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pvt-resolver/internal/api"
	"pvt-resolver/internal/observability"
	"pvt-resolver/internal/service"
)

var (
	serveAddr    string
	serveSamples string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the resolution API and Prometheus metrics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics := observability.NewMetrics(cfg.Metrics.Namespace, reg)

		store, cleanup, err := openStore(ctx, cfg.Store, metrics)
		if err != nil {
			return err
		}
		defer cleanup()

		if serveSamples != "" {
			n, err := loadSamples(ctx, store, serveSamples)
			if err != nil {
				return err
			}
			zap.L().Info("samples preloaded", zap.Int("count", n), zap.String("file", serveSamples))
		}

		svc := service.New(store, service.WithMetrics(metrics))
		router := api.NewRouter(api.NewHandler(svc, store, zap.L()), api.RouterOptions{
			CORSOrigins: cfg.Server.CORSOrigins,
			Metrics:     metrics,
			Logger:      zap.L(),
		})

		addr := serveAddr
		if addr == "" {
			addr = cfg.Server.Addr
		}
		apiSrv := &http.Server{Addr: addr, Handler: router, ReadHeaderTimeout: 10 * time.Second}

		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", observability.HandlerFor(reg))
		metricsSrv := &http.Server{Addr: cfg.Metrics.Addr, Handler: metricsMux, ReadHeaderTimeout: 10 * time.Second}

		g, gctx := errgroup.WithContext(ctx)
		for _, srv := range []*http.Server{apiSrv, metricsSrv} {
			srv := srv
			g.Go(func() error {
				zap.L().Info("starting http server", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return eris.Wrapf(err, "listen %s", srv.Addr)
				}
				return nil
			})
		}
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down servers")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return errors.Join(apiSrv.Shutdown(shutdownCtx), metricsSrv.Shutdown(shutdownCtx))
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "API listen address (default from config)")
	serveCmd.Flags().StringVar(&serveSamples, "samples", "", "CSV or YAML file loaded into the store at startup")
	rootCmd.AddCommand(serveCmd)
}
