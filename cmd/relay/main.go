package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"relay-gateway/gateway"
	"relay-gateway/logging"
	"relay-gateway/middleware/ratelimit/infra"
	"relay-gateway/relay"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// .env é opcional; variáveis já exportadas têm precedência.
	_ = godotenv.Load()

	cfg, err := readConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, logFile, err := logging.New(logging.Config{
		Level:     cfg.logLevel,
		File:      cfg.logFile,
		Color:     cfg.logColor,
		MaxSizeMB: cfg.logMaxSizeMB,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}

	err = run(cfg, logger)
	if err != nil {
		logger.Error("Server error", zap.Error(err))
	}
	_ = logger.Sync()
	_ = logFile.Close()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg config, logger *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := relay.NewClient(
		relay.WithTimeout(cfg.relayTimeout),
		relay.WithPacing(cfg.outboundRPS, cfg.outboundBurst),
	)
	svc, err := relay.NewService(client, cfg.serviceBURL, cfg.serviceAURL, logger)
	if err != nil {
		return fmt.Errorf("creating relay service: %w", err)
	}

	stats, err := newStats(ctx, cfg)
	if err != nil {
		return err
	}
	defer stats.close()

	opts := gateway.Options{
		Transfer:            relay.NewHandler(svc, logger, cfg.maxBodyBytes),
		Logger:              logger,
		TrustXForwardedFor:  cfg.trustXFF,
		AddRateLimitHeaders: cfg.addHeaders,
		ConcurrencyMax:      cfg.concurrencyMax,
		ConcurrencyTimeout:  cfg.concurrencyTimeout,
	}
	if stats.store != nil {
		opts.RateStats = stats.store
	}

	var store *infra.FixedWindowStore
	if cfg.rateEnabled {
		store = infra.NewFixedWindowStore(cfg.rateLimit, cfg.rateWindow)
		opts.RateStore = store
	}

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.port),
		Handler:           gateway.New(opts),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// as duas etapas podem levar até 2x RELAY_TIMEOUT
		WriteTimeout: 2*cfg.relayTimeout + 10*time.Second,
		IdleTimeout:  90 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	if store != nil {
		store.StartJanitor(gctx)
	}

	g.Go(func() error {
		logger.Info("Server is running on port " + strconv.Itoa(cfg.port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listening on %s: %w", srv.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	logger.Info("Relay configured",
		zap.String("service_b", cfg.serviceBURL),
		zap.String("service_a", cfg.serviceAURL),
		zap.Duration("timeout", cfg.relayTimeout),
		zap.Int64("max_body_bytes", cfg.maxBodyBytes),
		zap.Float64("outbound_rps", cfg.outboundRPS),
	)
	logger.Info("Rate limit configured",
		zap.Bool("enabled", cfg.rateEnabled),
		zap.Int("limit", cfg.rateLimit),
		zap.Duration("window", cfg.rateWindow),
		zap.Bool("trust_xff", cfg.trustXFF),
		zap.Int("concurrency_max", cfg.concurrencyMax),
		zap.Bool("stats", cfg.rateStatsEnabled),
		zap.String("stats_backend", cfg.rateStatsBackend),
	)

	err = g.Wait()
	stats.logSummary(logger)
	return err
}
