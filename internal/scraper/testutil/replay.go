package testutil

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Replayer serves recorded responses in place of the network. It is an
// http.RoundTripper for HTTP clients and provides a rod hijack handler for
// browser sessions.
//
// Requests are matched on method and full URL, then on method and URL
// without the query. Entries recorded more than once for the same key are
// served in recording order and the last one repeats.
type Replayer struct {
	mu sync.Mutex

	exactMatches map[string][]*HAREntry
	pathMatches  map[string][]*HAREntry
	served       map[string]int

	// next serves unmatched requests when passthrough is enabled.
	next        http.RoundTripper
	passthrough bool

	verbose bool
	log     *slog.Logger
}

type ReplayerOption func(*Replayer)

// WithPassthrough lets unmatched requests reach the network. By default they
// get a 404.
func WithPassthrough(enabled bool) ReplayerOption {
	return func(r *Replayer) {
		r.passthrough = enabled
	}
}

// WithNextTransport sets the transport used for passthrough requests.
func WithNextTransport(rt http.RoundTripper) ReplayerOption {
	return func(r *Replayer) {
		r.next = rt
	}
}

// WithVerbose logs every match and miss at info level.
func WithVerbose(enabled bool) ReplayerOption {
	return func(r *Replayer) {
		r.verbose = enabled
	}
}

func WithLogger(logger *slog.Logger) ReplayerOption {
	return func(r *Replayer) {
		r.log = logger
	}
}

func NewReplayer(har *HARLog, opts ...ReplayerOption) *Replayer {
	r := &Replayer{
		exactMatches: make(map[string][]*HAREntry),
		pathMatches:  make(map[string][]*HAREntry),
		served:       make(map[string]int),
		next:         http.DefaultTransport,
		log:          slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	for i := range har.Entries {
		entry := &har.Entries[i]
		method := entry.Request.Method

		r.exactMatches[matchKey(method, entry.Request.URL)] = append(r.exactMatches[matchKey(method, entry.Request.URL)], entry)
		if pathKey, ok := pathOnly(entry.Request.URL); ok {
			r.pathMatches[matchKey(method, pathKey)] = append(r.pathMatches[matchKey(method, pathKey)], entry)
		}
	}

	return r
}

// RoundTrip implements http.RoundTripper. Redirect responses are returned as
// recorded so the client decides whether to follow them.
func (r *Replayer) RoundTrip(req *http.Request) (*http.Response, error) {
	entry, found := r.match(req.Method, req.URL.String())
	if !found {
		r.logf("no match", req.Method, req.URL.String())

		if r.passthrough {
			return r.next.RoundTrip(req)
		}
		return notFoundResponse(req), nil
	}

	r.logf("matched "+strconv.Itoa(entry.Response.Status), req.Method, req.URL.String())
	return recordedResponse(req, entry), nil
}

// Middleware returns a rod hijack handler serving recorded responses. Use
// with router.MustAdd("*", replayer.Middleware()). The browser cannot be
// handed a redirect from a hijack, so redirect chains are resolved here.
func (r *Replayer) Middleware() func(*rod.Hijack) {
	return func(ctx *rod.Hijack) {
		method := ctx.Request.Method()
		reqURL := ctx.Request.URL().String()

		entry, found := r.match(method, reqURL)
		if !found {
			r.logf("no match", method, reqURL)

			if r.passthrough {
				_ = ctx.LoadResponse(http.DefaultClient, true)
				return
			}

			payload := ctx.Response.Payload()
			payload.ResponseCode = http.StatusNotFound
			payload.ResponseHeaders = []*proto.FetchHeaderEntry{{Name: "Content-Type", Value: "application/json"}}
			payload.Body = []byte(notFoundBody)
			return
		}

		entry = r.followRedirects(entry)
		r.logf("matched "+strconv.Itoa(entry.Response.Status), method, reqURL)

		payload := ctx.Response.Payload()
		payload.ResponseCode = entry.Response.Status
		payload.Body = entry.Response.Content.Bytes()
		for _, h := range replayHeaders(entry.Response) {
			payload.ResponseHeaders = append(payload.ResponseHeaders, &proto.FetchHeaderEntry{Name: h.Name, Value: h.Value})
		}
	}
}

// Stats reports the number of indexed keys and served requests.
func (r *Replayer) Stats() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	servedTotal := 0
	for _, n := range r.served {
		servedTotal += n
	}

	return map[string]int{
		"exact_matches": len(r.exactMatches),
		"path_matches":  len(r.pathMatches),
		"served":        servedTotal,
	}
}

// match returns the next entry for the request, advancing the sequence of the
// key that matched.
func (r *Replayer) match(method, rawURL string) (*HAREntry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := matchKey(method, rawURL)
	entries, found := r.exactMatches[key]
	if !found {
		pathKey, ok := pathOnly(rawURL)
		if !ok {
			return nil, false
		}
		key = matchKey(method, pathKey)
		if entries, found = r.pathMatches[key]; !found {
			return nil, false
		}
	}

	i := r.served[key]
	r.served[key] = i + 1
	if i >= len(entries) {
		i = len(entries) - 1
	}
	return entries[i], true
}

func (r *Replayer) followRedirects(entry *HAREntry) *HAREntry {
	const maxRedirects = 10
	current := entry

	for range maxRedirects {
		if current.Response.Status < 300 || current.Response.Status >= 400 {
			return current
		}

		location := current.Response.Header("Location")
		if location == "" {
			return current
		}
		if base, err := url.Parse(current.Request.URL); err == nil {
			if ref, err := base.Parse(location); err == nil {
				location = ref.String()
			}
		}

		target, found := r.match(http.MethodGet, location)
		if !found {
			r.logf("redirect target not recorded", http.MethodGet, location)
			return current
		}
		current = target
	}

	return current
}

func (r *Replayer) logf(msg, method, rawURL string) {
	if !r.verbose {
		return
	}
	r.log.Info("[replayer] "+msg, slog.String("method", method), slog.String("url", rawURL))
}

const notFoundBody = `{"error": "no recording found for URL"}`

func notFoundResponse(req *http.Request) *http.Response {
	return &http.Response{
		Status:        "404 Not Found",
		StatusCode:    http.StatusNotFound,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"Content-Type": {"application/json"}},
		Body:          io.NopCloser(strings.NewReader(notFoundBody)),
		ContentLength: int64(len(notFoundBody)),
		Request:       req,
	}
}

func recordedResponse(req *http.Request, entry *HAREntry) *http.Response {
	body := entry.Response.Content.Bytes()

	header := make(http.Header)
	for _, h := range replayHeaders(entry.Response) {
		header.Add(h.Name, h.Value)
	}
	if location := entry.Response.Header("Location"); location != "" {
		header.Set("Location", location)
	}

	return &http.Response{
		Status:        strconv.Itoa(entry.Response.Status) + " " + http.StatusText(entry.Response.Status),
		StatusCode:    entry.Response.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

// replayHeaders drops headers describing the original wire encoding and adds
// a Content-Type from the recorded mime type when missing.
func replayHeaders(resp HARResponse) []HARHeader {
	var headers []HARHeader
	hasContentType := false

	for _, h := range resp.Headers {
		switch strings.ToLower(h.Name) {
		case "content-encoding", "content-length", "transfer-encoding", "location":
			continue
		case "content-type":
			hasContentType = true
		}
		headers = append(headers, h)
	}

	if !hasContentType && resp.Content.MimeType != "" {
		headers = append(headers, HARHeader{Name: "Content-Type", Value: resp.Content.MimeType})
	}
	return headers
}

func matchKey(method, rawURL string) string {
	return strings.ToUpper(method) + " " + rawURL
}

func pathOnly(rawURL string) (string, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	return parsed.Scheme + "://" + parsed.Host + parsed.Path, true
}
