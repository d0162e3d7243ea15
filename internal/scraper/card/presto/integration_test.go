package presto_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grez-lucas/presto/internal/config"
	"github.com/grez-lucas/presto/internal/scraper/card"
	"github.com/grez-lucas/presto/internal/scraper/card/presto"
	"github.com/grez-lucas/presto/internal/scraper/testutil"
)

// TestMode
type TestMode string

const (
	TestModeMock   TestMode = "mock"   // Use static fixtures
	TestModeReplay TestMode = "replay" // Replay recorded sessions
	TestModeLive   TestMode = "live"   // Hit the real portal
)

func getTestMode() TestMode {
	mode := os.Getenv("SCRAPER_TEST_MODE")
	if mode == "" {
		return TestModeMock
	}
	return TestMode(mode)
}

// skipUnlessMode skips test if not in specified mode
func skipUnlessMode(t *testing.T, required TestMode) {
	if getTestMode() != required {
		t.Skipf("Skipping: requires SCRAPER_TEST_MODE=%s", required)
	}
}

func TestPresto_ReplaySession_Integration(t *testing.T) {
	skipUnlessMode(t, TestModeReplay)

	harPath := filepath.Join("testdata", "recordings", "login-balance-activity.har.json")
	if _, err := os.Stat(harPath); os.IsNotExist(err) {
		t.Skipf("Recording not found: %s\n", harPath)
	}

	har := testutil.MustLoadHAR(t, harPath)
	replayer := testutil.NewReplayer(har, testutil.WithVerbose(true))
	t.Logf("Loaded HAR with %d entries", len(har.Entries))

	client, err := presto.New(presto.Config{Timeout: 5 * time.Second}, presto.WithTransport(replayer))
	require.NoError(t, err)

	// Credentials don't matter in replay mode
	ctx := context.Background()
	res, err := client.Login(ctx, "rider", "secret")
	require.NoError(t, err)
	assert.True(t, res.Success, "Login should succeed with recorded session")

	assert.True(t, client.IsLoggedIn(ctx))

	balance, err := client.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "31240000000000000", balance.CardNumber)
	assert.Equal(t, "Luis' card", balance.CardName)
	assert.Equal(t, "$30", balance.Balance)

	cards, err := client.Cards(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1029", "8679", "31240000000000000"}, cards)

	records, err := client.ActivityByMonth(ctx, 2017, time.December, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "ST PATRICK STATION", records[0].Location)
	assert.Equal(t, "$78.00", records[1].Balance)

	require.NoError(t, client.Logout(ctx))

	stats := replayer.Stats()
	t.Logf("Replayer stats: exact=%d, path=%d, served=%d", stats["exact_matches"], stats["path_matches"], stats["served"])
	assert.GreaterOrEqual(t, stats["served"], len(har.Entries))
}

func TestPresto_Live_Integration(t *testing.T) {
	skipUnlessMode(t, TestModeLive)

	settings, err := config.Load(filepath.Join("..", "..", "..", "..", "presto.yaml"))
	require.NoError(t, err)
	if !settings.Credentials.HasAccount() {
		t.Skip("Skipping: PRESTO_USERNAME and PRESTO_PASSWORD are not set")
	}

	cfg, err := settings.ClientConfig()
	require.NoError(t, err)
	cfg.RequestsPerSecond = 1

	client, err := presto.New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := client.Login(ctx, settings.Credentials.Username, settings.Credentials.Password)
	require.NoError(t, err)
	require.True(t, res.Success, "login rejected: %s", res.ErrorCode)
	defer func() { _ = client.Logout(context.Background()) }()

	assert.True(t, client.IsLoggedIn(ctx))

	balance, err := client.Balance(ctx)
	if err != nil {
		require.ErrorIs(t, err, card.ErrNoCard)
		t.Log("Account has no card linked")
		return
	}
	assert.NotEmpty(t, balance.CardNumber)
	t.Logf("Card %s balance %s (updated %s)", balance.CardNumber, balance.Balance, balance.LastUpdatedOn)

	cards, err := client.Cards(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, cards)
	assert.Equal(t, balance.CardNumber, cards[len(cards)-1], "current card is listed last")

	now := time.Now()
	records, err := client.ActivityByMonth(ctx, now.Year(), now.Month(), 0)
	require.NoError(t, err)
	t.Logf("Found %d activity records this month", len(records))
}
