package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/reelfeed/reelfeed-server/internal/provider/providertest"
	"github.com/reelfeed/reelfeed-server/internal/ratelimit"
)

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain takes first", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}, "10.0.0.2:5000", "203.0.113.9"},
		{"real ip header", map[string]string{"X-Real-IP": "198.51.100.4"}, "10.0.0.2:5000", "198.51.100.4"},
		{"remote addr without port", nil, "192.0.2.1:1234", "192.0.2.1"},
		{"ipv6 remote addr", nil, "[2001:db8::1]:443", "2001:db8::1"},
		{"remote addr that is already bare", nil, "192.0.2.7", "192.0.2.7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/api/providers", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, getClientIP(r))
		})
	}
}

func TestRateLimitMiddleware_RejectsBeyondBurst(t *testing.T) {
	limiter := ratelimit.NewWithTTL(0.001, 2, 0)
	defer limiter.Stop()

	ts := setupTestServer(t, map[string]http.HandlerFunc{
		"/dramabox/foryou": providertest.JSON(http.StatusOK, `[]`),
	}, nil, Options{Limiter: limiter})

	assert.Equal(t, http.StatusOK, ts.api.Get("/health").Code)
	assert.Equal(t, http.StatusOK, ts.api.Get("/api/dramabox/foryou").Code)

	resp := ts.api.Get("/api/dramabox/foryou")
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.Equal(t, "1", resp.Header().Get("Retry-After"))
	assert.Contains(t, resp.Body.String(), `"code":"RATE_LIMITED"`)
	assert.Len(t, ts.upstream.Requests(), 1)
}
