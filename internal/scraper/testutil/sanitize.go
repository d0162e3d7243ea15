package testutil

import (
	"net/url"
	"regexp"
	"strings"
)

const redacted = "[REDACTED]"

// SensitivePatterns match names of fields, query parameters and headers whose
// values are redacted.
var SensitivePatterns = []string{
	// Passwords
	`(?i)password`,
	`(?i)passwd`,
	`(?i)secret`,

	// Tokens and sessions
	`(?i)token`,
	`(?i)session`,
	`(?i)sess_`,
	`(?i)auth`,
	`(?i)jwt`,
	`(?i)bearer`,

	// Portal identities
	`(?i)login`,
	`(?i)faremedia`,
	`(?i)email`,

	// API keys
	`(?i)api_?key`,

	// Credentials
	`(?i)credential`,
	`(?i)access_key`,
	`(?i)private_key`,
}

// SensitiveHeaders are always redacted.
var SensitiveHeaders = map[string]bool{
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-auth-token":        true,
	"x-api-key":           true,
	"x-access-token":      true,
	"x-session-id":        true,
	"x-csrf-token":        true,
	"x-xsrf-token":        true,
	"proxy-authorization": true,
}

// ContentPattern redacts personal data inside page bodies.
type ContentPattern struct {
	Pattern     *regexp.Regexp
	Replacement string
	Description string
}

// ContentPatterns are applied to HTML fixtures and recorded response bodies.
var ContentPatterns = []ContentPattern{
	{
		regexp.MustCompile(`\b\d{17}\b`),
		"31240000000000000",
		"Card number",
	},
	{
		regexp.MustCompile(`(name="__RequestVerificationToken"[^>]*?value=")[^"]*(")`),
		"${1}REDACTED${2}",
		"Anti-forgery token",
	},
	{
		regexp.MustCompile(`(?i)(token|csrf|session)["\s:=]+["']?[a-zA-Z0-9_-]{20,}["']?`),
		`$1="REDACTED"`,
		"Token",
	},
	{
		regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		"rider@example.com",
		"Email address",
	},
	{
		regexp.MustCompile(`\b(Welcome|Hello|Hi),?\s+[A-Z][a-z]+(\s+[A-Z][a-z]+)?`),
		"$1 RIDER",
		"Greeting with name",
	},
	{
		regexp.MustCompile(`(?i)document\.cookie\s*=\s*["'][^"']+["']`),
		`document.cookie="REDACTED"`,
		"Cookie",
	},
}

// Redaction counts the matches of one content pattern.
type Redaction struct {
	Description string
	Matches     int
}

var sensitiveKeyPatterns = compilePatterns(SensitivePatterns)

func compilePatterns(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return compiled
}

// jsonFieldPatterns match string and scalar JSON members whose key contains a
// sensitive pattern.
var jsonFieldPatterns = func() [][2]*regexp.Regexp {
	out := make([][2]*regexp.Regexp, len(SensitivePatterns))
	for i, p := range SensitivePatterns {
		out[i] = [2]*regexp.Regexp{
			regexp.MustCompile(`("[^"]*` + p + `[^"]*")\s*:\s*"[^"]*"`),
			regexp.MustCompile(`("[^"]*` + p + `[^"]*")\s*:\s*([^",}\]\s{\[][^",}\]]*)`),
		}
	}
	return out
}()

// SanitizeContent applies ContentPatterns to s.
func SanitizeContent(s string) (string, []Redaction) {
	var redactions []Redaction

	for _, p := range ContentPatterns {
		matches := p.Pattern.FindAllStringIndex(s, -1)
		if len(matches) == 0 {
			continue
		}
		s = p.Pattern.ReplaceAllString(s, p.Replacement)
		redactions = append(redactions, Redaction{Description: p.Description, Matches: len(matches)})
	}

	return s, redactions
}

// SanitizeHAR returns a copy of har with sensitive values replaced by
// [REDACTED] and personal data in bodies masked.
func SanitizeHAR(har *HARLog) *HARLog {
	sanitized := &HARLog{
		Entries: make([]HAREntry, len(har.Entries)),
	}

	for i, entry := range har.Entries {
		sanitized.Entries[i] = HAREntry{
			Request:  sanitizeRequest(entry.Request),
			Response: sanitizeResponse(entry.Response),
		}
	}

	return sanitized
}

func sanitizeRequest(req HARRequest) HARRequest {
	return HARRequest{
		Method:  req.Method,
		URL:     sanitizeURL(req.URL),
		Headers: sanitizeHeaders(req.Headers),
		Body:    sanitizeBody(req.Body),
	}
}

func sanitizeResponse(resp HARResponse) HARResponse {
	content := resp.Content
	if content.Encoding != encodingBase64 {
		content.Text, _ = SanitizeContent(sanitizeBody(content.Text))
		content.Size = len(content.Text)
	}

	return HARResponse{
		Status:  resp.Status,
		Headers: sanitizeHeaders(resp.Headers),
		Content: content,
	}
}

// sanitizeURL redacts sensitive query values. Untouched queries keep their
// original encoding and order.
func sanitizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	query := parsed.Query()
	changed := false
	for key := range query {
		if isSensitiveKey(key) {
			query.Set(key, redacted)
			changed = true
		}
	}
	if !changed {
		return rawURL
	}

	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func sanitizeHeaders(headers []HARHeader) []HARHeader {
	if headers == nil {
		return nil
	}

	sanitized := make([]HARHeader, len(headers))
	for i, h := range headers {
		if SensitiveHeaders[strings.ToLower(h.Name)] || isSensitiveKey(h.Name) {
			sanitized[i] = HARHeader{Name: h.Name, Value: redacted}
			continue
		}
		sanitized[i] = h
	}

	return sanitized
}

func sanitizeBody(body string) string {
	if body == "" {
		return body
	}

	trimmed := strings.TrimSpace(body)
	switch {
	case strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "["):
		return sanitizeJSONBody(body)
	case strings.HasPrefix(trimmed, "<"):
		return body
	case strings.Contains(body, "="):
		return sanitizeFormBody(body)
	default:
		return body
	}
}

func sanitizeFormBody(body string) string {
	values, err := url.ParseQuery(body)
	if err != nil {
		return body
	}

	changed := false
	for key := range values {
		if isSensitiveKey(key) {
			values.Set(key, redacted)
			changed = true
		}
	}
	if !changed {
		return body
	}

	return values.Encode()
}

func sanitizeJSONBody(body string) string {
	result := body
	for _, res := range jsonFieldPatterns {
		result = res[0].ReplaceAllString(result, `$1: "`+redacted+`"`)
		result = res[1].ReplaceAllString(result, `$1: "`+redacted+`"`)
	}
	return result
}

func isSensitiveKey(key string) bool {
	for _, re := range sensitiveKeyPatterns {
		if re.MatchString(key) {
			return true
		}
	}
	return false
}
