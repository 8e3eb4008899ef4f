// Package requestlog registra cada requisição recebida e atribui um request id.
package requestlog

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const Header = "X-Request-ID"

type ctxKey struct{}

// RequestID devolve o id associado ao contexto ("" se não houver).
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// WithRequestID associa um id ao contexto.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// Middleware loga headers, método e URL de toda requisição que passou do rate limit.
func Middleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimSpace(r.Header.Get(Header))
			if id == "" || len(id) > 128 {
				id = uuid.New().String()
			}
			w.Header().Set(Header, id)

			log := logger.With(zap.String("request_id", id))
			log.Info("Request headers", zap.Any("headers", r.Header))
			log.Info("Received request", zap.String("method", r.Method), zap.String("url", r.URL.RequestURI()))

			next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
		})
	}
}
