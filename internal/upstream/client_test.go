package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{BaseURL: srv.URL + "/api", RPS: 1000, Burst: 100}, nil)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestClient_Get(t *testing.T) {
	var gotPath, gotQuery, gotCache string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotCache = r.Header.Get("Cache-Control")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	body, err := c.Get(context.Background(), "melolo", "foryou", url.Values{"offset": {"20"}})

	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
	assert.Equal(t, "/api/melolo/foryou", gotPath)
	assert.Equal(t, "offset=20", gotQuery)
	assert.Equal(t, "no-store", gotCache)
}

func TestClient_GetStatusError(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"not found", http.StatusNotFound},
		{"unavailable", http.StatusServiceUnavailable},
		{"teapot", http.StatusTeapot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				calls++
				w.WriteHeader(tt.status)
			})

			_, err := c.Get(context.Background(), "dramabox", "foryou", nil)

			var se *StatusError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.status, StatusOf(err))
			assert.Equal(t, 1, calls, "requests are never retried")
		})
	}
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	c, err := New(Config{BaseURL: base, Timeout: time.Second}, nil)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Get(context.Background(), "reelshort", "foryou", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
}

func TestClient_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Get(ctx, "freereels", "foryou", nil)
	assert.Error(t, err)
}

func TestNew_RejectsRelativeBase(t *testing.T) {
	_, err := New(Config{BaseURL: "/api"}, nil)
	assert.Error(t, err)

	c, err := New(Config{}, nil)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
}

func TestStatusOf_Wrapped(t *testing.T) {
	err := errors.Join(errors.New("context"), &StatusError{URL: "u", StatusCode: 502})
	assert.Equal(t, 502, StatusOf(err))
}
