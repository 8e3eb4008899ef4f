package ratelimit

import (
	"net"
	"net/http"
	"strings"
	"time"

	"relay-gateway/middleware/ratelimit/application"
	"relay-gateway/middleware/ratelimit/domain"
	"relay-gateway/middleware/respond"

	"go.uber.org/zap"
)

// DefaultMessage é o corpo devolvido junto com o 429.
const DefaultMessage = "Too many requests, please try again later"

type KeyFunc func(r *http.Request) string

type Options struct {
	Store               domain.CounterStore
	Stats               domain.StatsStore
	Logger              *zap.Logger
	KeyFn               KeyFunc
	TrustXForwardedFor  bool
	RejectStatus        int
	Message             string
	AddRateLimitHeaders bool
	// Now permite fixar o relógio nos testes.
	Now func() time.Time
}

// DefaultKeyFunc identifica o cliente pelo IP.
func DefaultKeyFunc(trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if trustXFF {
			// pega o primeiro IP do X-Forwarded-For (cliente original)
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
		}

		// fallback: RemoteAddr
		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.Message == "" {
		opts.Message = DefaultMessage
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc(opts.TrustXForwardedFor)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	log := opts.Logger.Named("ratelimit")

	svc := application.Service{
		Store: opts.Store,
		Now:   opts.Now,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)
			dec := svc.Decide(domain.Key(key))

			if opts.AddRateLimitHeaders && dec.Limit > 0 {
				w.Header().Set("X-RateLimit-Limit", formatInt(dec.Limit))
				w.Header().Set("X-RateLimit-Remaining", formatInt(dec.Remaining))
				w.Header().Set("X-RateLimit-Reset", formatInt64(dec.ResetAt.Unix()))
			}

			if opts.Stats != nil {
				if err := opts.Stats.Record(r.Context(), domain.StatsEvent{
					Key:     domain.Key(key),
					Allowed: dec.Allowed,
					Method:  r.Method,
					Path:    r.URL.Path,
					At:      opts.Now(),
				}); err != nil {
					log.Debug("rate limit stats not recorded", zap.Error(err))
				}
			}

			if !dec.Allowed {
				log.Warn("Rate limit exceeded",
					zap.String("client", key),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Duration("retry_after", dec.RetryAfter),
				)
				w.Header().Set("Retry-After", formatInt(int(dec.RetryAfter.Seconds())))
				respond.Text(w, opts.RejectStatus, opts.Message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
