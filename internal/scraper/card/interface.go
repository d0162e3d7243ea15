// Package card defines the common structs and logic shared by fare-card
// portal implementations.
package card

import (
	"context"
	"time"
)

// Portal is the operation surface of a fare-card web portal session.
type Portal interface {
	// Login authenticates with a username and password.
	Login(ctx context.Context, username, password string) (LoginResult, error)

	// LoginWithCardNumber starts an anonymous session bound to one card.
	LoginWithCardNumber(ctx context.Context, cardNumber string) (LoginResult, error)

	// Logout ends the portal session.
	Logout(ctx context.Context) error

	// IsLoggedIn reports whether the session is authenticated. It never fails.
	IsLoggedIn(ctx context.Context) bool

	Balance(ctx context.Context) (*Balance, error)
	Cards(ctx context.Context) ([]string, error)
	SetCurrentCard(ctx context.Context, cardNumber string) (CardSwitchResult, error)

	// ActivityByMonth returns the activity for a calendar month. A pageSize of
	// zero uses the portal default.
	ActivityByMonth(ctx context.Context, year int, month time.Month, pageSize int) ([]ActivityRecord, error)

	// ActivityByDateRange returns the activity between two dates. A zero to
	// means now.
	ActivityByDateRange(ctx context.Context, from, to time.Time, pageSize int) ([]ActivityRecord, error)
}

type Provider string

const (
	ProviderPresto Provider = "PRESTO"
)
