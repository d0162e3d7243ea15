package presto

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"github.com/grez-lucas/presto/internal/scraper/card"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const (
	headerContentType    = "Content-Type"
	headerRequestedWith  = "X-Requested-With"
	contentTypeJSON      = "application/json"
	contentTypeForm      = "application/x-www-form-urlencoded"
	requestedWithXHR     = "XMLHttpRequest"
	headerUserAgent      = "User-Agent"
	logKeyMethod         = "method"
	logKeyURL            = "url"
	logKeyStatus         = "status"
	logKeyDuration       = "duration"
	logKeyError          = "error"
	transportLogCategory = "presto/http"
)

func newCookieJar() (http.CookieJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return jar, nil
}

// newRestyClient builds one HTTP client over the shared jar, transport and
// limiter. The limiter may be nil.
func newRestyClient(cfg Config, jar http.CookieJar, transport http.RoundTripper, limiter *rate.Limiter) *resty.Client {
	client := resty.New()
	client.SetBaseURL(cfg.BaseURL)
	client.SetCookieJar(jar)
	client.SetTransport(transport)
	client.SetHeader(headerUserAgent, cfg.UserAgent)
	client.SetTimeout(cfg.Timeout)

	if limiter != nil {
		client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	instrument(client, cfg.Logger)
	return client
}

// newTransport returns the base transport, optionally wrapped with the
// Cloudflare bypass.
func newTransport(cfg Config, transport http.RoundTripper) http.RoundTripper {
	if transport == nil {
		transport = http.DefaultTransport.(*http.Transport).Clone()
	}
	if cfg.CloudflareBypass {
		transport = cloudflarebp.AddCloudFlareByPass(transport)
	}
	return transport
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// instrument logs every exchange at debug level. Bodies and headers are never
// logged since they carry credentials and tokens.
func instrument(client *resty.Client, logger *slog.Logger) {
	log := logger.With(slog.String("component", transportLogCategory))

	client.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
		log.DebugContext(req.Context(), "request",
			slog.String(logKeyMethod, req.Method),
			slog.String(logKeyURL, req.URL),
		)
		return nil
	})
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		log.DebugContext(res.Request.Context(), "response",
			slog.String(logKeyMethod, res.Request.Method),
			slog.String(logKeyURL, res.Request.URL),
			slog.Int(logKeyStatus, res.StatusCode()),
			slog.Duration(logKeyDuration, res.Time()),
		)
		return nil
	})
	client.OnError(func(req *resty.Request, err error) {
		log.DebugContext(req.Context(), "request failed",
			slog.String(logKeyMethod, req.Method),
			slog.String(logKeyURL, req.URL),
			slog.String(logKeyError, err.Error()),
		)
	})
}

// --- REQUEST HELPERS ---

func (c *Client) get(ctx context.Context, op, path string) (*resty.Response, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(path)
	return checkResponse(op, res, err)
}

func (c *Client) postJSON(ctx context.Context, op, path string, body any) (*resty.Response, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader(headerContentType, contentTypeJSON).
		SetBody(body).
		Post(path)
	return checkResponse(op, res, err)
}

// postXHR sends body as JSON with the headers the portal's own sign-in
// scripts add, including the anti-forgery token.
func (c *Client) postXHR(ctx context.Context, op, path, token string, body any) (*resty.Response, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader(headerContentType, contentTypeJSON).
		SetHeader(headerRequestedWith, requestedWithXHR).
		SetHeader(TokenField, token).
		SetBody(body).
		Post(path)
	return checkResponse(op, res, err)
}

func (c *Client) postForm(ctx context.Context, op, path, body string) (*resty.Response, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader(headerContentType, contentTypeForm).
		SetBody(body).
		Post(path)
	return checkResponse(op, res, err)
}

// checkResponse turns transport failures and error statuses into a
// *card.ScraperError. Statuses below 400 pass through.
func checkResponse(op string, res *resty.Response, err error) (*resty.Response, error) {
	if err != nil {
		return nil, &card.ScraperError{
			Provider:  card.ProviderPresto,
			Operation: op,
			Cause:     err,
		}
	}
	if res.IsError() {
		return nil, &card.ScraperError{
			Provider:  card.ProviderPresto,
			Operation: op,
			Cause:     fmt.Errorf("%w: %d", card.ErrUnexpectedStatus, res.StatusCode()),
			Details:   res.Request.URL,
		}
	}
	return res, nil
}
