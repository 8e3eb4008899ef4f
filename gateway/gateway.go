// Package gateway monta o http.Handler do processo:
// rate limit -> log da requisição -> rotas (POST /api/transfer).
package gateway

import (
	"net/http"
	"time"

	"relay-gateway/middleware/ratelimit"
	"relay-gateway/middleware/ratelimit/domain"
	"relay-gateway/middleware/requestlog"
	"relay-gateway/middleware/respond"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const TransferPath = "/api/transfer"

type Options struct {
	Transfer http.Handler
	Logger   *zap.Logger

	// RateStore nil desliga o rate limit.
	RateStore           domain.CounterStore
	RateStats           domain.StatsStore
	TrustXForwardedFor  bool
	AddRateLimitHeaders bool
	Now                 func() time.Time

	ConcurrencyMax     int
	ConcurrencyTimeout time.Duration
}

func New(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	if opts.RateStore != nil {
		r.Use(ratelimit.Middleware(ratelimit.Options{
			Store:               opts.RateStore,
			Stats:               opts.RateStats,
			Logger:              logger,
			TrustXForwardedFor:  opts.TrustXForwardedFor,
			AddRateLimitHeaders: opts.AddRateLimitHeaders,
			Now:                 opts.Now,
		}))
	}
	r.Use(requestlog.Middleware(logger))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respond.StatusError(w, http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respond.StatusError(w, http.StatusMethodNotAllowed)
	})

	r.With(ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
		Max:            opts.ConcurrencyMax,
		AcquireTimeout: opts.ConcurrencyTimeout,
		Logger:         logger,
	})).Method(http.MethodPost, TransferPath, opts.Transfer)

	return r
}
