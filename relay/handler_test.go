package relay

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeTransferer struct {
	calls int
	got   Payload
	resp  Response
	err   error
}

func (f *fakeTransferer) Transfer(_ context.Context, p Payload) (Response, error) {
	f.calls++
	f.got = p
	return f.resp, f.err
}

func post(h http.Handler, body string) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(http.MethodPost, "/api/transfer", nil)
	} else {
		r = httptest.NewRequest(http.MethodPost, "/api/transfer", strings.NewReader(body))
	}
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

func TestHandler_RejectsMissingPayload(t *testing.T) {
	for name, body := range map[string]string{
		"empty":      "",
		"whitespace": "  \n\t",
		"null":       "null",
	} {
		t.Run(name, func(t *testing.T) {
			svc := &fakeTransferer{}
			w := post(NewHandler(svc, nil, 0), body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"Payload is required"}`, w.Body.String())
			assert.Zero(t, svc.calls)
		})
	}
}

func TestHandler_RejectsMalformedJSON(t *testing.T) {
	for name, body := range map[string]string{
		"truncated": `{"a":`,
		"scalar":    `42`,
		"string":    `"hello"`,
	} {
		t.Run(name, func(t *testing.T) {
			svc := &fakeTransferer{}
			w := post(NewHandler(svc, nil, 0), body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"Invalid JSON payload"}`, w.Body.String())
			assert.Zero(t, svc.calls)
		})
	}
}

func TestHandler_RejectsOversizedPayload(t *testing.T) {
	svc := &fakeTransferer{}
	w := post(NewHandler(svc, nil, 16), `{"data":"`+strings.Repeat("x", 64)+`"}`)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.JSONEq(t, `{"error":"Payload too large"}`, w.Body.String())
	assert.Zero(t, svc.calls)
}

func TestHandler_ReturnsServiceAResponseVerbatim(t *testing.T) {
	svc := &fakeTransferer{resp: Response{StatusCode: 201, ContentType: "application/vnd.a+json", Body: []byte(`{"ok": true}`)}}
	w := post(NewHandler(svc, nil, 0), `{"order":7}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"ok": true}`, w.Body.String())
	assert.Equal(t, "application/vnd.a+json", w.Header().Get("Content-Type"))
	assert.Equal(t, `{"order":7}`, string(svc.got.Body))
	assert.Equal(t, "application/json", svc.got.ContentType)
}

func TestHandler_AcceptsArrays(t *testing.T) {
	svc := &fakeTransferer{resp: Response{Body: []byte(`[]`)}}
	w := post(NewHandler(svc, nil, 0), `[1,2,3]`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, svc.calls)
}

func TestHandler_DownstreamFailureIsGeneric500(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	svc := &fakeTransferer{err: downstreamError(HopServiceA, &StatusError{StatusCode: 502, Body: []byte("secret detail")})}

	w := post(NewHandler(svc, zap.New(core), 0), `{"a":1}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "secret")

	entries := logs.FilterMessage("Error processing the request").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "service_a", fields["hop"])
	assert.EqualValues(t, 502, fields["downstream_status"])
	assert.Contains(t, fields["error"], "unexpected status 502")
}

func TestHandler_UnclassifiedErrorStill500(t *testing.T) {
	svc := &fakeTransferer{err: errors.New("boom")}
	w := post(NewHandler(svc, nil, 0), `{}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandler_ValidationIsNotLoggedAsError(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	_ = post(NewHandler(&fakeTransferer{}, zap.New(core), 0), "")

	assert.Zero(t, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}

type failingReader struct{ err error }

func (f failingReader) Read([]byte) (int, error) { return 0, f.err }

func TestHandler_BodyReadFailureIsNotInvalidJSON(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	svc := &fakeTransferer{}

	r := httptest.NewRequest(http.MethodPost, "/api/transfer", failingReader{err: errors.New("client reset")})
	w := httptest.NewRecorder()
	NewHandler(svc, zap.New(core), 0).ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Could not read request body"}`, w.Body.String())
	assert.Zero(t, svc.calls)

	entries := logs.FilterMessage("Failed to read request body").All()
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].ContextMap()["error"], "client reset")
}
