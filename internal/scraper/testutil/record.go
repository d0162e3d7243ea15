package testutil

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"
	"unicode/utf8"
)

// Recorder is an http.RoundTripper that records every exchange it forwards.
// Recordings are raw: sanitize them with SanitizeHAR before committing.
type Recorder struct {
	next http.RoundTripper

	mu      sync.Mutex
	entries []HAREntry
}

// NewRecorder wraps next. A nil next uses http.DefaultTransport.
func NewRecorder(next http.RoundTripper) *Recorder {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Recorder{next: next}
}

func (r *Recorder) RoundTrip(req *http.Request) (*http.Response, error) {
	reqBody, err := readBody(req.Body)
	if err != nil {
		return nil, fmt.Errorf("recorder: read request body: %w", err)
	}

	out := req.Clone(req.Context())
	if reqBody != nil {
		out.Body = io.NopCloser(bytes.NewReader(reqBody))
	}

	resp, err := r.next.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	respBody, err := readBody(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("recorder: read response body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(respBody))
	resp.Request = req

	r.mu.Lock()
	r.entries = append(r.entries, HAREntry{
		Request: HARRequest{
			Method:  req.Method,
			URL:     req.URL.String(),
			Headers: harHeaders(req.Header),
			Body:    string(reqBody),
		},
		Response: HARResponse{
			Status:  resp.StatusCode,
			Headers: harHeaders(resp.Header),
			Content: harContent(resp.Header.Get("Content-Type"), respBody),
		},
	})
	r.mu.Unlock()

	return resp, nil
}

// HAR returns a snapshot of the recorded exchanges.
func (r *Recorder) HAR() *HARLog {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]HAREntry, len(r.entries))
	copy(entries, r.entries)
	return &HARLog{Entries: entries}
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// readBody reads and closes body. A nil body reads as nil.
func readBody(body io.ReadCloser) ([]byte, error) {
	if body == nil || body == http.NoBody {
		return nil, nil
	}
	defer body.Close()

	return io.ReadAll(body)
}

// harContent stores text bodies verbatim and anything else as base64.
func harContent(contentType string, body []byte) HARContent {
	mimeType := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mimeType = parsed
	}

	content := HARContent{MimeType: mimeType, Size: len(body)}
	if isTextual(mimeType) && utf8.Valid(body) {
		content.Text = string(body)
		return content
	}

	content.Text = base64.StdEncoding.EncodeToString(body)
	content.Encoding = encodingBase64
	return content
}

func isTextual(mimeType string) bool {
	if mimeType == "" || strings.HasPrefix(mimeType, "text/") {
		return true
	}
	switch mimeType {
	case "application/json", "application/javascript", "application/xml", "application/x-www-form-urlencoded":
		return true
	}
	return strings.HasSuffix(mimeType, "+json") || strings.HasSuffix(mimeType, "+xml")
}
