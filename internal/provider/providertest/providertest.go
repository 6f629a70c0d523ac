// Package providertest runs adapters against a fake upstream.
package providertest

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/reelfeed/reelfeed-server/internal/upstream"
)

// Upstream is a fake upstream aggregator that records requests.
type Upstream struct {
	*httptest.Server

	mu       sync.Mutex
	requests []*http.Request
}

// Requests returns the requests served so far.
func (u *Upstream) Requests() []*http.Request {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]*http.Request(nil), u.requests...)
}

// Queries returns the raw query of every request served so far.
func (u *Upstream) Queries() []string {
	reqs := u.Requests()
	out := make([]string, len(reqs))
	for i, r := range reqs {
		out[i] = r.URL.RawQuery
	}
	return out
}

// New starts a fake upstream around handler and returns it with a client
// pointed at it. Both are closed when the test ends.
func New(t *testing.T, handler http.HandlerFunc) (*Upstream, *upstream.Client) {
	t.Helper()

	u := &Upstream{}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.requests = append(u.requests, r.Clone(r.Context()))
		u.mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(u.Close)

	client, err := upstream.New(upstream.Config{BaseURL: u.URL, RPS: 1000, Burst: 1000}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return u, client
}

// JSON answers every request with status and body.
func JSON(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

// ByQuery answers with the body registered for the request's raw query, or
// fallback when none matches.
func ByQuery(bodies map[string]string, fallback string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.RawQuery]
		if !ok {
			body = fallback
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}
