package browser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-rod/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupPage creates a Rod browser and page for testing. The browser connects
// to a headless Chromium instance. The page is closed via t.Cleanup.
func setupPage(t *testing.T, html string) *rod.Page {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping: needs a headless Chromium")
	}

	browser := rod.New().MustConnect()
	t.Cleanup(func() { browser.MustClose() })

	page := browser.MustPage()
	t.Cleanup(func() { page.MustClose() })

	page.MustSetDocumentContent(html)

	return page
}

const dashboardHTML = `<html><body>
<a class="signInSignOut" href="#">Sign out</a>
<div class="dashboard__card-summary">
  <span id="cardNumber">31240000000000000</span>
  <p class="dashboard__quantity">$30</p>
</div>
<a data-visibleid="8679"></a>
<a data-visibleid="1029"></a>
<input id="SignIn_Username" type="text">
</body></html>`

func TestProbeSelectors(t *testing.T) {
	page := setupPage(t, dashboardHTML)

	reports, err := ProbeSelectors(page, []string{
		"body .signInSignOut",
		"span#cardNumber",
		"[data-visibleid]",
		".dashboard__no-card-message",
	})
	require.NoError(t, err)

	assert.Equal(t, []SelectorReport{
		{Selector: "body .signInSignOut", Count: 1},
		{Selector: "span#cardNumber", Count: 1},
		{Selector: "[data-visibleid]", Count: 2},
		{Selector: ".dashboard__no-card-message", Count: 0},
	}, reports)
	assert.False(t, reports[3].Found())
}

func TestFillField(t *testing.T) {
	page := setupPage(t, dashboardHTML)

	require.NoError(t, FillField(page, "#SignIn_Username", "rider", false))

	value := page.MustElement("#SignIn_Username").MustProperty("value").String()
	assert.Equal(t, "rider", value)
}

func TestSavePage(t *testing.T) {
	page := setupPage(t, dashboardHTML)
	dir := t.TempDir()

	c, err := SavePage(page, dir, "dashboard")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "dashboard.html"), c.HTMLPath)
	data, err := os.ReadFile(c.HTMLPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "31240000000000000")
}
