// Package testutil records, sanitizes and replays portal HTTP sessions as
// HAR files.
package testutil

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"testing"
)

// HARLog is a simplified HAR (HTTP Archive) document. Only the fields needed
// to replay a session are kept.
type HARLog struct {
	Entries []HAREntry `json:"entries"`
}

// HAREntry is one request/response exchange.
type HAREntry struct {
	Request  HARRequest  `json:"request"`
	Response HARResponse `json:"response"`
}

type HARRequest struct {
	Method  string      `json:"method"`
	URL     string      `json:"url"`
	Headers []HARHeader `json:"headers,omitempty"`
	Body    string      `json:"body,omitempty"`
}

type HARResponse struct {
	Status  int         `json:"status"`
	Headers []HARHeader `json:"headers,omitempty"`
	Content HARContent  `json:"content"`
}

type HARHeader struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// HARContent is a response body. Text holds base64 when Encoding is
// "base64".
type HARContent struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
	Encoding string `json:"encoding,omitempty"`
	Size     int    `json:"size,omitempty"`
}

const encodingBase64 = "base64"

// Bytes returns the decoded body. Undecodable base64 is returned as is.
func (c HARContent) Bytes() []byte {
	if c.Encoding != encodingBase64 {
		return []byte(c.Text)
	}
	body, err := base64.StdEncoding.DecodeString(c.Text)
	if err != nil {
		return []byte(c.Text)
	}
	return body
}

// Header returns the first value of the named header, case-insensitively.
func (r HARResponse) Header(name string) string {
	return headerValue(r.Headers, name)
}

func headerValue(headers []HARHeader, name string) string {
	for _, h := range headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// harHeaders flattens an http.Header in a stable order.
func harHeaders(h http.Header) []HARHeader {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []HARHeader
	for _, name := range names {
		for _, v := range h[name] {
			out = append(out, HARHeader{Name: name, Value: v})
		}
	}
	return out
}

// --- Chrome DevTools HAR 1.2 ---

// ChromeHAR is the HAR 1.2 document exported by Chrome DevTools. It wraps
// entries in a "log" object and carries request bodies in postData.
type ChromeHAR struct {
	Log ChromeHARLog `json:"log"`
}

type ChromeHARLog struct {
	Version string           `json:"version"`
	Creator ChromeHARCreator `json:"creator"`
	Entries []ChromeHAREntry `json:"entries"`
}

type ChromeHARCreator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type ChromeHAREntry struct {
	Request  ChromeHARRequest  `json:"request"`
	Response ChromeHARResponse `json:"response"`
}

type ChromeHARRequest struct {
	Method   string       `json:"method"`
	URL      string       `json:"url"`
	Headers  []HARHeader  `json:"headers,omitempty"`
	PostData *HARPostData `json:"postData,omitempty"`
}

type HARPostData struct {
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

type ChromeHARResponse struct {
	Status  int         `json:"status"`
	Headers []HARHeader `json:"headers,omitempty"`
	Content HARContent  `json:"content"`
}

// LoadHAR reads a HAR file in either the simplified or the Chrome DevTools
// format.
func LoadHAR(path string) (*HARLog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read HAR file: %w", err)
	}
	return ParseHAR(data)
}

func ParseHAR(data []byte) (*HARLog, error) {
	var chromeHAR ChromeHAR
	if err := json.Unmarshal(data, &chromeHAR); err == nil && len(chromeHAR.Log.Entries) > 0 {
		return convertChromeHAR(&chromeHAR), nil
	}

	var har HARLog
	if err := json.Unmarshal(data, &har); err != nil {
		return nil, fmt.Errorf("parse HAR JSON: %w", err)
	}
	return &har, nil
}

func convertChromeHAR(chrome *ChromeHAR) *HARLog {
	entries := make([]HAREntry, len(chrome.Log.Entries))

	for i, ce := range chrome.Log.Entries {
		var body string
		if ce.Request.PostData != nil {
			body = ce.Request.PostData.Text
		}

		entries[i] = HAREntry{
			Request: HARRequest{
				Method:  ce.Request.Method,
				URL:     ce.Request.URL,
				Headers: ce.Request.Headers,
				Body:    body,
			},
			Response: HARResponse(ce.Response),
		}
	}

	return &HARLog{Entries: entries}
}

// SaveHAR writes har as indented JSON.
func SaveHAR(path string, har *HARLog) error {
	data, err := json.MarshalIndent(har, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal HAR: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write HAR file: %w", err)
	}

	return nil
}

// MustLoadHAR loads a HAR file and fails the test if it cannot be loaded.
func MustLoadHAR(t *testing.T, path string) *HARLog {
	t.Helper()

	har, err := LoadHAR(path)
	if err != nil {
		t.Fatalf("failed to load HAR file %s: %v", path, err)
	}

	return har
}
