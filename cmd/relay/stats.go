package main

import (
	"context"
	"fmt"
	"time"

	"relay-gateway/middleware/ratelimit/domain"
	"relay-gateway/middleware/ratelimit/infra"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// rateStats agrupa o StatsStore escolhido e o que for preciso para fechá-lo.
type rateStats struct {
	store  domain.StatsStore
	memory *infra.MemoryStatsStore
	redis  *infra.RedisStatsStore
	rdb    *redis.Client
}

func newStats(ctx context.Context, cfg config) (*rateStats, error) {
	s := &rateStats{}
	if !cfg.rateStatsEnabled {
		return s, nil
	}

	switch cfg.rateStatsBackend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.rateStatsRedisAddr,
			Password: cfg.rateStatsRedisPassword,
			DB:       cfg.rateStatsRedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis stats ping: %w", err)
		}
		s.rdb = rdb
		s.redis = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.rateStatsPrefix),
			infra.WithStatsTTL(cfg.rateStatsTTL),
			infra.WithStatsBucket(cfg.rateStatsBucket),
			infra.WithStatsTrackKeys(cfg.rateStatsTrackKeys),
		)
		s.store = s.redis
	default:
		s.memory = infra.NewMemoryStatsStore(infra.WithTrackKeys(cfg.rateStatsTrackKeys))
		s.store = s.memory
	}
	return s, nil
}

func (s *rateStats) logSummary(logger *zap.Logger) {
	var total infra.Counters
	var extra []zap.Field
	switch {
	case s.memory != nil:
		total = s.memory.Total()
		extra = append(extra, zap.Any("by_route", s.memory.ByRoute()))
		if byKey := s.memory.ByKey(); len(byKey) > 0 {
			extra = append(extra, zap.Any("by_key", byKey))
		}
	case s.redis != nil:
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		t, err := s.redis.Total(ctx)
		if err != nil {
			logger.Error("Reading rate limit stats", zap.Error(err))
			return
		}
		total = t
	default:
		return
	}
	fields := append([]zap.Field{
		zap.Int64("allowed", total.Allowed),
		zap.Int64("denied", total.Denied),
	}, extra...)
	logger.Info("Rate limit totals", fields...)
}

func (s *rateStats) close() {
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
}
