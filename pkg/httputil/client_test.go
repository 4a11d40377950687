package httputil

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

	"github.com/wonny/clientwatch/pkg/logger"
)

func newTestClient() *Client {
	c := New(logger.Nop(), 5*time.Second).WithRetry(2, time.Millisecond)
	c.sleep = func(context.Context, time.Duration) error { return nil }
	return c
}

func TestNew_Defaults(t *testing.T) {
	c := New(nil, 0)
	assert.Equal(t, 30*time.Second, c.httpClient.Timeout)
	assert.Equal(t, 3, c.retryConfig.MaxRetries)
	assert.True(t, c.retryConfig.Enabled)
	assert.NotNil(t, c.logger)
}

func TestPostJSON_Success(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		b, _ := io.ReadAll(r.Body)
		got = string(b)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	err := newTestClient().PostJSON(context.Background(), server.URL, map[string]string{"text": "hi"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"hi"}`, got)
}

func TestPostJSON_RetriesAndReplaysBody(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"n":1}`, string(b))
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	err := newTestClient().PostJSON(context.Background(), server.URL, map[string]int{"n": 1})
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPostJSON_ExhaustedRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	err := newTestClient().PostJSON(context.Background(), server.URL, "x")
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPostJSON_ClientErrorNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	err := newTestClient().PostJSON(context.Background(), server.URL, "x")
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestPostJSON_DisableRetry(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	c := newTestClient().DisableRetry()
	assert.Error(t, c.PostJSON(context.Background(), server.URL, "x"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestPostJSON_RateLimitCancelled(t *testing.T) {
	c := newTestClient().WithRateLimit(0.001, 1)
	c.limiter.Allow() // drain the only token

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.PostJSON(ctx, "http://127.0.0.1:1", "x")
	assert.Error(t, err)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{200, false},
		{400, false},
		{429, true},
		{500, true},
		{503, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRetryableError(tt.code), "status %d", tt.code)
	}
}
