package presto

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordedRequest is what the fake portal saw for one request.
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   string
}

// fakePortal serves canned PRESTO pages and records every request.
type fakePortal struct {
	t      *testing.T
	mux    *http.ServeMux
	server *httptest.Server

	mu       sync.Mutex
	requests []recordedRequest
}

func newFakePortal(t *testing.T) *fakePortal {
	t.Helper()

	p := &fakePortal{t: t, mux: http.NewServeMux()}
	p.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)

		p.mu.Lock()
		p.requests = append(p.requests, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Header: r.Header.Clone(),
			Body:   string(body),
		})
		p.mu.Unlock()

		p.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(p.server.Close)

	return p
}

// handle registers h for a ServeMux pattern such as "GET /home".
func (p *fakePortal) handle(pattern string, h http.HandlerFunc) {
	p.mux.HandleFunc(pattern, h)
}

// serveHTML answers pattern with a fixed status and body.
func (p *fakePortal) serveHTML(pattern string, status int, html string) {
	p.handle(pattern, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, html)
	})
}

func (p *fakePortal) serveJSON(pattern string, status int, body string) {
	p.handle(pattern, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

// requestsTo returns the recorded requests for method and path.
func (p *fakePortal) requestsTo(method, path string) []recordedRequest {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []recordedRequest
	for _, r := range p.requests {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestClient returns a client pointed at the fake portal.
func newTestClient(t *testing.T, p *fakePortal, opts ...Option) *Client {
	t.Helper()

	client, err := New(Config{
		BaseURL: p.server.URL,
		Logger:  discardLogger(),
	}, opts...)
	require.NoError(t, err)

	return client
}
