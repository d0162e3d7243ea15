package presto

import (
	"fmt"
	"log/slog"
	"time"
	_ "time/tzdata"

	"dario.cat/mergo"
)

const (
	DefaultBaseURL   = "https://www.prestocard.ca"
	DefaultPageSize  = 200
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
	DefaultTimezone  = "America/Toronto"
)

// Paths are the portal endpoints, relative to Config.BaseURL.
type Paths struct {
	SignIn         string
	SignInWithCard string
	Logout         string
	Homepage       string
	Dashboard      string
	Activity       string
	SwitchCard     string
}

// Config holds everything a Client needs. Zero fields are filled from
// DefaultConfig by New.
type Config struct {
	BaseURL   string
	Paths     Paths
	UserAgent string
	Timeout   time.Duration

	// RequestsPerSecond caps outgoing requests. Zero disables the limiter.
	RequestsPerSecond float64

	// CloudflareBypass wraps the transport with browser-like TLS and headers.
	CloudflareBypass bool

	// PageSize is used by the activity operations when called with zero.
	PageSize int

	// Location is used to parse dashboard timestamps. Nil means
	// America/Toronto.
	Location *time.Location

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func DefaultPaths() Paths {
	return Paths{
		SignIn:         "/api/sitecore/AFMSAuthentication/SignInWithAccount",
		SignInWithCard: "/api/sitecore/AFMSAuthentication/SignInWithFareMedia",
		Logout:         "/api/sitecore/AFMSAuthentication/Logout",
		Homepage:       "/home",
		Dashboard:      "/en/dashboard",
		Activity:       "/api/sitecore/Paginator/CardActivityFilteredIndex",
		SwitchCard:     "/api/sitecore/Global/UpdateFareMediaSession?id=lowerFareMediaId&class=lowerFareMediaId",
	}
}

func DefaultConfig() Config {
	return Config{
		BaseURL:   DefaultBaseURL,
		Paths:     DefaultPaths(),
		UserAgent: DefaultUserAgent,
		Timeout:   DefaultTimeout,
		PageSize:  DefaultPageSize,
	}
}

func (c Config) withDefaults() (Config, error) {
	if err := mergo.Merge(&c, DefaultConfig()); err != nil {
		return Config{}, fmt.Errorf("merge default config: %w", err)
	}

	if c.Location == nil {
		loc, err := time.LoadLocation(DefaultTimezone)
		if err != nil {
			return Config{}, fmt.Errorf("load location %s: %w", DefaultTimezone, err)
		}
		c.Location = loc
	}

	if c.Logger == nil {
		c.Logger = slog.Default()
	}

	return c, nil
}
