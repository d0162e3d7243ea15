package presto

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/grez-lucas/presto/internal/scraper/card"
)

// errorMessages maps each code to the substring the portal uses for it.
// The slice order is the tie-break order.
var errorMessages = []struct {
	Code      card.ErrorCode
	Substring string
}{
	{card.ErrorCodeAccountLocked, "exceeded the number of available attempts"},
	{card.ErrorCodeInvalidCredentials, "check your username and password"},
	{card.ErrorCodeAlreadyLinked, "already registered to an account"},
	{card.ErrorCodeInvalidCardNumber, "Incorrect PRESTO card"},
}

// ClassifyError returns the first code whose substring is contained in
// message, or the empty code. Matching is case-sensitive.
func ClassifyError(message string) card.ErrorCode {
	if message == "" {
		return ""
	}
	for _, m := range errorMessages {
		if strings.Contains(message, m.Substring) {
			return m.Code
		}
	}
	return ""
}

// IsLoginSuccess reports whether a sign-in response body is a JSON object
// whose Result field is exactly the string "success".
func IsLoginSuccess(body []byte) bool {
	var resp map[string]any
	if err := json.Unmarshal(body, &resp); err != nil {
		return false
	}
	result, ok := resp["Result"].(string)
	return ok && result == "success"
}

// loginMessage extracts the error text of a sign-in response. The portal
// answers failures with plain text, sometimes JSON-quoted. Any other JSON
// value carries no message.
func loginMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if !json.Valid(trimmed) {
		return string(body)
	}

	var msg string
	if err := json.Unmarshal(trimmed, &msg); err != nil {
		return ""
	}
	return msg
}

type cardLoginResponse struct {
	Result  *bool `json:"result"`
	Message any   `json:"message"`
}

// cardLoginOutcome interprets a card-number sign-in response. Only an
// explicit "result": false is a failure. Empty and non-JSON bodies count as
// success.
func cardLoginOutcome(body []byte) (success bool, message string) {
	var resp cardLoginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return true, ""
	}
	if resp.Result == nil || *resp.Result {
		return true, ""
	}

	message, _ = resp.Message.(string)
	return false, message
}
