package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
log:
  pretty: false
  level: debug
portal:
  baseUrl: https://staging.prestocard.ca
  timeout: 10s
  requestsPerSecond: 2
  pageSize: 50
  timezone: UTC
credentials:
  username: rider
  cardNumber: "31240000000000000"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "presto.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		env   map[string]string
		check func(t *testing.T, s *Settings)
	}{
		{
			name: "no sources",
			check: func(t *testing.T, s *Settings) {
				assert.Equal(t, "info", s.Log.Level)
				assert.Equal(t, Portal{}, s.Portal)
				assert.False(t, s.Credentials.HasAccount())
			},
		},
		{
			name: "yaml file",
			yaml: sampleYAML,
			check: func(t *testing.T, s *Settings) {
				assert.Equal(t, Log{Pretty: false, Level: "debug"}, s.Log)
				assert.Equal(t, "https://staging.prestocard.ca", s.Portal.BaseURL)
				assert.Equal(t, 10*time.Second, s.Portal.Timeout)
				assert.InDelta(t, 2.0, s.Portal.RequestsPerSecond, 0)
				assert.Equal(t, 50, s.Portal.PageSize)
				assert.Equal(t, "UTC", s.Portal.Timezone)
				assert.Equal(t, "rider", s.Credentials.Username)
				assert.Equal(t, "31240000000000000", s.Credentials.CardNumber)
			},
		},
		{
			name: "env overrides yaml",
			yaml: sampleYAML,
			env: map[string]string{
				"PRESTO_PORTAL_BASE_URL": "http://127.0.0.1:8080",
				"PRESTO_PORTAL_TIMEOUT":  "5s",
				"PRESTO_LOG_LEVEL":       "warn",
			},
			check: func(t *testing.T, s *Settings) {
				assert.Equal(t, "http://127.0.0.1:8080", s.Portal.BaseURL)
				assert.Equal(t, 5*time.Second, s.Portal.Timeout)
				assert.Equal(t, "warn", s.Log.Level)
				assert.Equal(t, 50, s.Portal.PageSize)
			},
		},
		{
			name: "env without yaml",
			env: map[string]string{
				"PRESTO_PORTAL_REQUESTS_PER_SECOND": "0.5",
				"PRESTO_PORTAL_CLOUDFLARE_BYPASS":   "true",
				"PRESTO_PORTAL_PAGE_SIZE":           "25",
			},
			check: func(t *testing.T, s *Settings) {
				assert.InDelta(t, 0.5, s.Portal.RequestsPerSecond, 0)
				assert.True(t, s.Portal.CloudflareBypass)
				assert.Equal(t, 25, s.Portal.PageSize)
			},
		},
		{
			name: "credential shorthands",
			env: map[string]string{
				"PRESTO_USERNAME":    "rider",
				"PRESTO_PASSWORD":    "hunter2",
				"PRESTO_CARD_NUMBER": "31240000000000000",
			},
			check: func(t *testing.T, s *Settings) {
				assert.True(t, s.Credentials.HasAccount())
				assert.Equal(t, "hunter2", s.Credentials.Password)
				assert.Equal(t, "31240000000000000", s.Credentials.CardNumber)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			var paths []string
			if tt.yaml != "" {
				paths = append(paths, writeConfig(t, tt.yaml))
			}

			s, err := Load(paths...)
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestLoad_FirstExistingPathWins(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")
	first := writeConfig(t, "portal:\n  pageSize: 10\n")
	second := writeConfig(t, "portal:\n  pageSize: 20\n")

	s, err := Load(missing, first, second)
	require.NoError(t, err)
	assert.Equal(t, 10, s.Portal.PageSize)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "portal: [unclosed"))
	assert.ErrorContains(t, err, "read config")
}

func TestLoad_InvalidDuration(t *testing.T) {
	_, err := Load(writeConfig(t, "portal:\n  timeout: soon\n"))
	assert.ErrorContains(t, err, "unmarshal config failed")
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "PRESTO_PORTAL_BASE_URL", want: "portal.baseurl"},
		{raw: "PRESTO_LOG_PRETTY", want: "log.pretty"},
		{raw: "PRESTO_CREDENTIALS_CARD_NUMBER", want: "credentials.cardnumber"},
		{raw: "PRESTO_USERNAME", want: "credentials.username"},
		{raw: "PRESTO_CARD_NUMBER", want: "credentials.cardnumber"},
		{raw: "PRESTO_DEBUG", want: "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, envKey(tt.raw))
		})
	}
}

func TestCanonicalizeKey(t *testing.T) {
	existing := map[string]any{
		"portal": map[string]any{
			"baseUrl":           "https://www.prestocard.ca",
			"requestsPerSecond": 1,
		},
	}

	tests := []struct {
		key  string
		want string
	}{
		{key: "portal.baseurl", want: "portal.baseUrl"},
		{key: "portal.requestspersecond", want: "portal.requestsPerSecond"},
		{key: "portal.timeout", want: "portal.timeout"},
		{key: "log.level", want: "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, canonicalizeKey(tt.key, existing))
		})
	}
}

func TestSettings_ClientConfig(t *testing.T) {
	s := &Settings{Portal: Portal{
		BaseURL:           "http://127.0.0.1:8080",
		Timeout:           5 * time.Second,
		RequestsPerSecond: 1,
		CloudflareBypass:  true,
		PageSize:          10,
		Timezone:          "UTC",
	}}

	cfg, err := s.ClientConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:8080", cfg.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.InDelta(t, 1.0, cfg.RequestsPerSecond, 0)
	assert.True(t, cfg.CloudflareBypass)
	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestSettings_ClientConfig_DefaultTimezone(t *testing.T) {
	cfg, err := (&Settings{}).ClientConfig()
	require.NoError(t, err)
	assert.Nil(t, cfg.Location)
}

func TestSettings_ClientConfig_BadTimezone(t *testing.T) {
	_, err := (&Settings{Portal: Portal{Timezone: "Mars/Olympus"}}).ClientConfig()
	assert.ErrorContains(t, err, "load timezone")
}

func TestLoad_DotEnvNextToConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "presto.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: error\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("PRESTO_TEST_DOTENV_USERNAME=from-dotenv\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("PRESTO_TEST_DOTENV_USERNAME") })

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "error", s.Log.Level)
	assert.Equal(t, "from-dotenv", os.Getenv("PRESTO_TEST_DOTENV_USERNAME"))
}
