// Package presto implements the PRESTO fare-card portal client.
package presto

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/grez-lucas/presto/internal/scraper/card"
)

// Client is one authenticated portal session. All requests share a cookie
// jar. Separate Clients never share state.
type Client struct {
	cfg Config
	log *slog.Logger

	http *resty.Client
	// probe never follows redirects. It backs IsLoggedIn, where a redirect
	// means the session is gone.
	probe *resty.Client

	now func() time.Time
}

var _ card.Portal = (*Client)(nil)

type options struct {
	transport http.RoundTripper
	jar       http.CookieJar
	now       func() time.Time
}

type Option func(*options)

// WithTransport replaces the default HTTP transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) {
		o.transport = rt
	}
}

// WithCookieJar seeds the session with an existing jar.
func WithCookieJar(jar http.CookieJar) Option {
	return func(o *options) {
		o.jar = jar
	}
}

// WithClock overrides the clock used for month offsets and open date ranges.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func New(cfg Config, opts ...Option) (*Client, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("presto: %w", err)
	}

	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	jar := o.jar
	if jar == nil {
		jar, err = newCookieJar()
		if err != nil {
			return nil, fmt.Errorf("presto: %w", err)
		}
	}

	transport := newTransport(cfg, o.transport)
	limiter := newLimiter(cfg.RequestsPerSecond)

	probe := newRestyClient(cfg, jar, transport, limiter)
	probe.SetRedirectPolicy(resty.NoRedirectPolicy())

	return &Client{
		cfg:   cfg,
		log:   cfg.Logger.With(slog.String("provider", string(card.ProviderPresto))),
		http:  newRestyClient(cfg, jar, transport, limiter),
		probe: probe,
		now:   o.now,
	}, nil
}

// Config returns the effective configuration, defaults applied.
func (c *Client) Config() Config {
	return c.cfg
}

// CookieJar exposes the session jar so callers can persist or share it.
func (c *Client) CookieJar() http.CookieJar {
	return c.http.GetClient().Jar
}
