package relay

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_PostSendsBodyAndReturnsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, `{"a":1}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"b":2}`)
	}))
	defer srv.Close()

	resp, err := NewClient().Post(context.Background(), srv.URL, "application/json", []byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.ContentType)
	assert.Equal(t, `{"b":2}`, string(resp.Body))
}

func TestClient_NonSuccessStatusIsStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream down")
	}))
	defer srv.Close()

	_, err := NewClient().Post(context.Background(), srv.URL, "", []byte(`{}`))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Equal(t, "upstream down", string(se.Body))
}

func TestClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient().Post(context.Background(), url, "", []byte(`{}`))
	assert.Error(t, err)
}

func TestClient_TimeoutIsFailure(t *testing.T) {
	unblock := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-unblock:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(unblock)

	start := time.Now()
	_, err := NewClient(WithTimeout(50*time.Millisecond)).Post(context.Background(), srv.URL, "", []byte(`{}`))
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestClient_ResponseSizeIsCapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "0123456789")
	}))
	defer srv.Close()

	_, err := NewClient(WithMaxResponseBytes(5)).Post(context.Background(), srv.URL, "", []byte(`{}`))
	assert.ErrorContains(t, err, "exceeds 5 bytes")
}

func TestClient_PacingWaitRespectsContext(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, `{}`)
	}))
	defer srv.Close()

	c := NewClient(WithPacing(0.001, 1))
	_, err := c.Post(context.Background(), srv.URL, "", []byte(`{}`))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = c.Post(ctx, srv.URL, "", []byte(`{}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "waiting for outbound slot")
	assert.EqualValues(t, 1, hits.Load())
}

func TestClient_DefaultsAndOptions(t *testing.T) {
	assert.Equal(t, DefaultTimeout, NewClient().Timeout())
	assert.Equal(t, 5*time.Second, NewClient(WithTimeout(5*time.Second)).Timeout())
	assert.Nil(t, NewClient(WithPacing(0, 10)).pacer)
}

func TestClient_InvalidURL(t *testing.T) {
	_, err := NewClient().Post(context.Background(), "://bad", "", nil)
	require.Error(t, err)
	assert.False(t, errors.Is(err, context.Canceled))
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestClient_TransportFailureSurfacesAsHopError(t *testing.T) {
	reset := errors.New("connection reset by peer")
	var seen []string
	c := NewClient(WithTransport(roundTripFunc(func(r *http.Request) (*http.Response, error) {
		seen = append(seen, r.URL.String())
		return nil, reset
	})))

	svc, err := NewService(c, "http://service-b.test/in", "http://service-a.test/in", nil)
	require.NoError(t, err)

	_, err = svc.Transfer(context.Background(), Payload{Body: []byte(`{"a":1}`)})

	var de *DownstreamError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, HopServiceB, de.Hop)
	assert.Zero(t, de.StatusCode)
	assert.ErrorIs(t, err, ErrDownstream)
	assert.ErrorIs(t, err, reset)
	assert.Equal(t, []string{"http://service-b.test/in"}, seen)
}
