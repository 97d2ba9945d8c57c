package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"verireg/internal/platform/config"
	"verireg/internal/platform/httpserver"
	"verireg/internal/platform/logger"
	"verireg/internal/platform/metrics"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.Log.Level, cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.UsesDevSigningKey() {
		log.Warn("using the development JWT signing key; set JWT_SIGNING_KEY in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("registry stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	reg := metrics.NewRegistry()
	platformMetrics := metrics.New(reg)

	in, err := openInfra(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer in.Close()

	a, err := buildApp(ctx, cfg, in, reg, platformMetrics, log)
	if err != nil {
		return err
	}

	router := newRouter(cfg, a, in, platformMetrics, reg, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(gctx, httpserver.New(cfg.Addr, router), cfg.ShutdownTimeout, log)
	})
	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return httpserver.Run(gctx, httpserver.New(cfg.MetricsAddr, metrics.Handler(reg)), cfg.ShutdownTimeout, log)
		})
	}
	if a.outboxWorker != nil {
		g.Go(func() error {
			return a.outboxWorker.Run(gctx)
		})
	}

	log.Info("verification registry started",
		"addr", cfg.Addr,
		"owner", a.registry.Owner().String(),
		"verifier_backend", cfg.EffectiveVerifierBackend(),
		"outbox_relay", a.outboxWorker != nil,
	)
	return g.Wait()
}
