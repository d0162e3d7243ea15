package card

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCard means the account has no fare card linked.
	ErrNoCard = errors.New("no card linked to the account")
	// ErrNotLoggedIn means the session is absent or expired.
	ErrNotLoggedIn = errors.New("not logged in")

	ErrParsingFailed    = errors.New("failed to parse portal response")
	ErrUnexpectedStatus = errors.New("unexpected http status")
)

// ScraperError provides detailed error context
type ScraperError struct {
	Provider  Provider
	Operation string
	Cause     error
	Details   string
}

func (e *ScraperError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("[%s] %s failed: %v", e.Provider, e.Operation, e.Cause)
	}
	return fmt.Sprintf("[%s] %s failed: %v - %s", e.Provider, e.Operation, e.Cause, e.Details)
}

func (e *ScraperError) Unwrap() error {
	return e.Cause
}
