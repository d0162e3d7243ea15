package presto

import (
	"context"

	"github.com/grez-lucas/presto/internal/scraper/card"
)

const opBalance = "Balance"

// Balance returns the active card's balance. It fails with card.ErrNoCard
// when the account has no card and card.ErrNotLoggedIn when the dashboard
// shows neither a card nor the no-card message.
func (c *Client) Balance(ctx context.Context) (*card.Balance, error) {
	dashboard, err := c.dashboard(ctx, opBalance)
	if err != nil {
		return nil, err
	}

	if err := dashboard.requireCard(); err != nil {
		return nil, err
	}

	balance := dashboard.Balance
	return &balance, nil
}

func (c *Client) dashboard(ctx context.Context, op string) (*Dashboard, error) {
	res, err := c.get(ctx, op, c.cfg.Paths.Dashboard)
	if err != nil {
		return nil, err
	}

	dashboard, err := ParseDashboard(res.String(), c.cfg.Location)
	if err != nil {
		return nil, &card.ScraperError{Provider: card.ProviderPresto, Operation: op, Cause: err}
	}
	return dashboard, nil
}

// requireCard maps the dashboard state to the card sentinels. The no-card
// check runs first.
func (d *Dashboard) requireCard() error {
	switch d.State {
	case DashboardNoCard:
		return card.ErrNoCard
	case DashboardNotLoggedIn:
		return card.ErrNotLoggedIn
	default:
		return nil
	}
}
