package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"relay-gateway/middleware/requestlog"
	"relay-gateway/middleware/respond"

	"go.uber.org/zap"
)

const (
	DefaultMaxBodyBytes = 100 << 10

	msgPayloadRequired = "Payload is required"
	msgInvalidPayload  = "Invalid JSON payload"
	msgPayloadTooLarge = "Payload too large"
	msgBodyRead        = "Could not read request body"
	msgInternal        = "Internal Server Error"
)

// Transferer é o caso de uso chamado pelo Handler. *Service implementa.
type Transferer interface {
	Transfer(ctx context.Context, p Payload) (Response, error)
}

// Handler atende POST /api/transfer.
type Handler struct {
	svc          Transferer
	logger       *zap.Logger
	maxBodyBytes int64
}

func NewHandler(svc Transferer, logger *zap.Logger, maxBodyBytes int64) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &Handler{svc: svc, logger: logger.Named("transfer"), maxBodyBytes: maxBodyBytes}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := readPayload(w, r, h.maxBodyBytes)
	switch {
	case errors.Is(err, ErrPayloadRequired):
		respond.Error(w, http.StatusBadRequest, msgPayloadRequired)
		return
	case errors.Is(err, ErrPayloadTooLarge):
		respond.Error(w, http.StatusRequestEntityTooLarge, msgPayloadTooLarge)
		return
	case errors.Is(err, ErrBodyRead):
		h.logger.Warn("Failed to read request body",
			zap.String("request_id", requestlog.RequestID(r.Context())),
			zap.Error(err),
		)
		respond.Error(w, http.StatusBadRequest, msgBodyRead)
		return
	case err != nil:
		respond.Error(w, http.StatusBadRequest, msgInvalidPayload)
		return
	}

	resp, err := h.svc.Transfer(r.Context(), Payload{ContentType: "application/json", Body: body})
	if err != nil {
		fields := []zap.Field{
			zap.String("request_id", requestlog.RequestID(r.Context())),
			zap.Error(err),
		}
		var de *DownstreamError
		if errors.As(err, &de) {
			fields = append(fields, zap.String("hop", string(de.Hop)))
			if de.StatusCode != 0 {
				fields = append(fields, zap.Int("downstream_status", de.StatusCode))
			}
		}
		h.logger.Error("Error processing the request", fields...)
		respond.Error(w, http.StatusInternalServerError, msgInternal)
		return
	}

	respond.Raw(w, http.StatusOK, resp.ContentType, resp.Body)
}

// readPayload lê o corpo inteiro e confere só presença e JSON (objeto ou array).
func readPayload(w http.ResponseWriter, r *http.Request, max int64) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, ErrPayloadRequired
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, max))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, ErrPayloadTooLarge
		}
		return nil, fmt.Errorf("%w: %w", ErrBodyRead, err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrPayloadRequired
	}
	if (trimmed[0] != '{' && trimmed[0] != '[') || !json.Valid(trimmed) {
		return nil, ErrInvalidPayload
	}
	return data, nil
}
