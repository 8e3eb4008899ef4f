package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultTimeout          = 30 * time.Second
	DefaultMaxResponseBytes = 10 << 20
)

// Response é o resultado de uma chamada a um downstream.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Client faz os POSTs para os downstreams.
type Client struct {
	http             *http.Client
	pacer            *rate.Limiter
	maxResponseBytes int64
}

type ClientOption func(*Client)

// WithTimeout define o limite de cada chamada (conexão + resposta completa).
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithPacing limita o ritmo de chamadas de saída (token bucket compartilhado
// pelas duas etapas). rps <= 0 desliga.
func WithPacing(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.pacer = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		c.pacer = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithMaxResponseBytes(n int64) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxResponseBytes = n
		}
	}
}

// WithTransport troca o RoundTripper (testes, proxies).
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *Client) { c.http.Transport = rt }
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http: &http.Client{
			Timeout:   DefaultTimeout,
			Transport: defaultTransport(),
		},
		maxResponseBytes: DefaultMaxResponseBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// pool maior que o padrão: todas as chamadas vão para os mesmos dois hosts.
func defaultTransport() http.RoundTripper {
	t, ok := http.DefaultTransport.(*http.Transport)
	if !ok {
		return http.DefaultTransport
	}
	t = t.Clone()
	t.MaxIdleConns = 100
	t.MaxIdleConnsPerHost = 100
	return t
}

func (c *Client) Timeout() time.Duration { return c.http.Timeout }

// Post envia body para url e devolve a resposta inteira.
// Status fora de 2xx vira *StatusError.
func (c *Client) Post(ctx context.Context, url, contentType string, body []byte) (Response, error) {
	if c.pacer != nil {
		if err := c.pacer.Wait(ctx); err != nil {
			return Response{}, fmt.Errorf("waiting for outbound slot: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("building request: %w", err)
	}
	if contentType == "" {
		contentType = "application/json"
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("posting to %s: %w", url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes+1))
	if err != nil {
		return Response{}, fmt.Errorf("reading response from %s: %w", url, err)
	}
	if int64(len(data)) > c.maxResponseBytes {
		return Response{}, fmt.Errorf("response from %s exceeds %d bytes", url, c.maxResponseBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, &StatusError{StatusCode: resp.StatusCode, Body: data}
	}

	return Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}
