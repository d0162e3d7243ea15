// Package config loads settings for the PRESTO tooling from an optional YAML
// file, a .env file and PRESTO_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"

	"github.com/grez-lucas/presto/internal/scraper/card/presto"
)

// EnvPrefix scopes the environment overrides, e.g. PRESTO_PORTAL_TIMEOUT=10s.
const EnvPrefix = "PRESTO_"

const defaultLogLevel = "info"

type Settings struct {
	Log         Log         `json:"log" yaml:"log"`
	Portal      Portal      `json:"portal" yaml:"portal"`
	Credentials Credentials `json:"credentials" yaml:"credentials"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// Portal mirrors presto.Config. Zero values keep the client defaults, so an
// empty timezone means America/Toronto.
type Portal struct {
	BaseURL           string        `json:"baseUrl" yaml:"baseUrl"`
	UserAgent         string        `json:"userAgent" yaml:"userAgent"`
	Timeout           time.Duration `json:"timeout" yaml:"timeout"`
	RequestsPerSecond float64       `json:"requestsPerSecond" yaml:"requestsPerSecond"`
	CloudflareBypass  bool          `json:"cloudflareBypass" yaml:"cloudflareBypass"`
	PageSize          int           `json:"pageSize" yaml:"pageSize"`
	Timezone          string        `json:"timezone" yaml:"timezone"`
}

// Credentials are only read by scripts and live tests.
type Credentials struct {
	Username   string `json:"username" yaml:"username"`
	Password   string `json:"password" yaml:"password"`
	CardNumber string `json:"cardNumber" yaml:"cardNumber"`
}

// HasAccount reports whether a username and password are both set.
func (c Credentials) HasAccount() bool {
	return c.Username != "" && c.Password != ""
}

// Load reads the first existing YAML file in paths, then PRESTO_* environment
// variables, which win. A .env file in the working directory or next to any
// of the paths is loaded into the environment first; it never overrides
// variables that are already set.
func Load(paths ...string) (*Settings, error) {
	if err := loadDotEnv(paths); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "read config %s failed", path)
		}

		break
	}

	existing := k.Raw()
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return canonicalizeKey(envKey(key), existing), value
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	settings := &Settings{}
	if err := k.UnmarshalWithConf("", settings, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           settings,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrap(err, "unmarshal config failed")
	}

	if settings.Log.Level == "" {
		settings.Log.Level = defaultLogLevel
	}

	return settings, nil
}

func loadDotEnv(paths []string) error {
	candidates := []string{".env"}
	for _, path := range paths {
		candidates = append(candidates, filepath.Join(filepath.Dir(path), ".env"))
	}

	seen := make(map[string]bool)
	for _, candidate := range candidates {
		abs, err := filepath.Abs(candidate)
		if err != nil || seen[abs] {
			continue
		}
		seen[abs] = true

		if err := godotenv.Load(abs); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "load %s failed", candidate)
		}
	}

	return nil
}

// envKey maps PRESTO_PORTAL_BASE_URL to portal.baseurl.
// PRESTO_USERNAME, PRESTO_PASSWORD and PRESTO_CARD_NUMBER are accepted as
// shorthands for the credentials section.
func envKey(raw string) string {
	key := strings.ToLower(strings.TrimPrefix(raw, EnvPrefix))

	switch key {
	case "username", "password":
		return "credentials." + key
	case "card_number":
		return "credentials.cardnumber"
	}

	section, field, found := strings.Cut(key, "_")
	if !found {
		return key
	}

	return section + "." + strings.ReplaceAll(field, "_", "")
}

// canonicalizeKey aligns each segment of key with the spelling already used
// by the YAML file, so PRESTO_PORTAL_BASE_URL overrides portal.baseUrl
// instead of living next to it.
func canonicalizeKey(key string, existing map[string]any) string {
	segments := strings.Split(key, ".")
	current := existing

	for i, segment := range segments {
		matched, next, ok := findSegment(current, segment)
		if !ok {
			break
		}
		segments[i] = matched
		current = next
	}

	return strings.Join(segments, ".")
}

func findSegment(current map[string]any, segment string) (string, map[string]any, bool) {
	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}
		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}

	return b.String()
}

// ClientConfig converts the portal section into a presto.Config.
func (s *Settings) ClientConfig() (presto.Config, error) {
	cfg := presto.Config{
		BaseURL:           s.Portal.BaseURL,
		UserAgent:         s.Portal.UserAgent,
		Timeout:           s.Portal.Timeout,
		RequestsPerSecond: s.Portal.RequestsPerSecond,
		CloudflareBypass:  s.Portal.CloudflareBypass,
		PageSize:          s.Portal.PageSize,
	}

	if s.Portal.Timezone != "" {
		loc, err := time.LoadLocation(s.Portal.Timezone)
		if err != nil {
			return presto.Config{}, errors.Wrapf(err, "load timezone %s failed", s.Portal.Timezone)
		}
		cfg.Location = loc
	}

	return cfg, nil
}
