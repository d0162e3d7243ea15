package presto

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/grez-lucas/presto/internal/scraper/card"
)

const (
	opLogin               = "Login"
	opLoginWithCardNumber = "LoginWithCardNumber"
	opLogout              = "Logout"
)

// Login signs in with a username and password. A rejected login is not an
// error: it is reported through LoginResult, classified when the portal's
// message is recognised.
func (c *Client) Login(ctx context.Context, username, password string) (card.LoginResult, error) {
	token, err := c.loginToken(ctx, opLogin)
	if err != nil {
		return card.LoginResult{}, err
	}

	res, err := c.postXHR(ctx, opLogin, c.cfg.Paths.SignIn, token, NewLoginBody(username, password))
	if err != nil {
		return card.LoginResult{}, err
	}

	body := res.Body()
	if IsLoginSuccess(body) {
		c.log.DebugContext(ctx, "login succeeded")
		return card.LoginResult{Success: true}, nil
	}

	result := card.LoginResult{ErrorCode: ClassifyError(loginMessage(body))}
	c.log.WarnContext(ctx, "login rejected", slog.String("error_code", string(result.ErrorCode)))
	return result, nil
}

// LoginWithCardNumber starts an anonymous session for one card. Any response
// other than an explicit failure counts as success.
func (c *Client) LoginWithCardNumber(ctx context.Context, cardNumber string) (card.LoginResult, error) {
	token, err := c.loginToken(ctx, opLoginWithCardNumber)
	if err != nil {
		return card.LoginResult{}, err
	}

	res, err := c.postXHR(ctx, opLoginWithCardNumber, c.cfg.Paths.SignInWithCard, token, NewCardLoginBody(cardNumber))
	if err != nil {
		return card.LoginResult{}, err
	}

	success, message := cardLoginOutcome(res.Body())
	if success {
		c.log.DebugContext(ctx, "card login succeeded")
		return card.LoginResult{Success: true}, nil
	}

	result := card.LoginResult{ErrorCode: ClassifyError(message)}
	c.log.WarnContext(ctx, "card login rejected", slog.String("error_code", string(result.ErrorCode)))
	return result, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if _, err := c.get(ctx, opLogout, c.cfg.Paths.Logout); err != nil {
		return err
	}
	c.log.DebugContext(ctx, "logged out")
	return nil
}

// IsLoggedIn fetches the dashboard without following redirects. Only a 200
// page showing the sign-out link counts as logged in. Every failure reads as
// logged out.
func (c *Client) IsLoggedIn(ctx context.Context) bool {
	res, err := c.probe.R().
		SetContext(ctx).
		Get(c.cfg.Paths.Dashboard)
	if err != nil {
		c.log.DebugContext(ctx, "login probe failed", slog.String("error", err.Error()))
		return false
	}
	if res.StatusCode() != http.StatusOK {
		return false
	}
	return ParseSignedIn(res.String())
}

// loginToken fetches a fresh anti-forgery token from the homepage. A missing
// token is sent as empty and left for the portal to reject.
func (c *Client) loginToken(ctx context.Context, op string) (string, error) {
	res, err := c.get(ctx, op, c.cfg.Paths.Homepage)
	if err != nil {
		return "", err
	}

	token, err := ParseLoginToken(res.String())
	if err != nil {
		return "", &card.ScraperError{Provider: card.ProviderPresto, Operation: op, Cause: err}
	}
	if token == "" {
		c.log.WarnContext(ctx, "sign-in token not found on homepage")
	}
	return token, nil
}
