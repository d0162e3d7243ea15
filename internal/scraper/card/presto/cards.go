package presto

import (
	"context"
	"log/slog"

	"github.com/grez-lucas/presto/internal/scraper/card"
)

const (
	opCards          = "Cards"
	opSetCurrentCard = "SetCurrentCard"
)

// Cards lists the account's card numbers with the active card last. An
// account without cards yields an empty list, not an error. Login state is
// not checked here.
func (c *Client) Cards(ctx context.Context) ([]string, error) {
	dashboard, err := c.dashboard(ctx, opCards)
	if err != nil {
		return nil, err
	}
	return dashboard.CardNumbers(), nil
}

// SetCurrentCard makes cardNumber the active card. Asking for the card that
// is already active returns its balance without contacting the switch
// endpoint. Success means the page returned by the switch shows the requested
// card.
func (c *Client) SetCurrentCard(ctx context.Context, cardNumber string) (card.CardSwitchResult, error) {
	before, err := c.dashboard(ctx, opSetCurrentCard)
	if err != nil {
		return card.CardSwitchResult{}, err
	}
	if err := before.requireCard(); err != nil {
		return card.CardSwitchResult{}, err
	}

	if before.Balance.CardNumber == cardNumber {
		return card.CardSwitchResult{Success: true, CurrentBalance: before.Balance}, nil
	}

	form := NewSwitchCardForm(cardNumber, before.SwitchToken)
	res, err := c.postForm(ctx, opSetCurrentCard, c.cfg.Paths.SwitchCard, form)
	if err != nil {
		return card.CardSwitchResult{}, err
	}

	// The switch endpoint answers with the refreshed dashboard.
	after, err := ParseDashboard(res.String(), c.cfg.Location)
	if err != nil {
		return card.CardSwitchResult{}, &card.ScraperError{Provider: card.ProviderPresto, Operation: opSetCurrentCard, Cause: err}
	}

	success := after.Balance.CardNumber == cardNumber
	if !success {
		c.log.WarnContext(ctx, "card switch not applied",
			slog.String("active_card", after.Balance.CardNumber),
		)
	}

	return card.CardSwitchResult{Success: success, CurrentBalance: after.Balance}, nil
}
