package relay

import (
	"errors"
	"fmt"
)

var (
	ErrPayloadRequired = errors.New("payload is required")
	ErrInvalidPayload  = errors.New("payload is not a JSON object or array")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrBodyRead        = errors.New("could not read request body")

	// ErrDownstream marca qualquer falha em uma das duas etapas.
	ErrDownstream = errors.New("downstream call failed")
)

// Hop identifica a etapa do relay.
type Hop string

const (
	HopServiceB Hop = "service_b"
	HopServiceA Hop = "service_a"
)

// StatusError é devolvido pelo Client quando o downstream responde fora de 2xx.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.StatusCode)
}

// DownstreamError carrega a etapa que falhou e a causa.
// errors.Is(err, ErrDownstream) vale para todo DownstreamError.
type DownstreamError struct {
	Hop        Hop
	StatusCode int
	Err        error
}

func (e *DownstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Hop, e.Err)
}

func (e *DownstreamError) Unwrap() []error {
	return []error{ErrDownstream, e.Err}
}

func downstreamError(hop Hop, err error) *DownstreamError {
	de := &DownstreamError{Hop: hop, Err: err}
	var se *StatusError
	if errors.As(err, &se) {
		de.StatusCode = se.StatusCode
	}
	return de
}
