package presto

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/grez-lucas/presto/internal/scraper/card"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const switchPath = "/api/sitecore/Global/UpdateFareMediaSession"

func TestClient_Cards(t *testing.T) {
	tests := []struct {
		name    string
		fixture string
		want    []string
	}{
		{
			name:    "multiple cards, active card last",
			fixture: "dashboard_multiple_cards",
			want:    []string{"1029", "8679", "1234"},
		},
		{
			name:    "single card",
			fixture: "dashboard_single_card",
			want:    []string{"1234"},
		},
		{
			name:    "no card",
			fixture: "dashboard_no_card",
			want:    []string{},
		},
		{
			name:    "logged out is not an error",
			fixture: "dashboard_logged_out",
			want:    []string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			portal := newFakePortal(t)
			portal.serveHTML("GET "+DefaultPaths().Dashboard, http.StatusOK, loadFixture(t, tc.fixture))
			client := newTestClient(t, portal)

			got, err := client.Cards(context.Background())

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestClient_SetCurrentCard(t *testing.T) {
	portal := newFakePortal(t)
	portal.serveHTML("GET "+DefaultPaths().Dashboard, http.StatusOK, loadFixture(t, "dashboard_multiple_cards"))
	portal.serveHTML("POST "+switchPath, http.StatusOK, loadFixture(t, "dashboard_switched_card"))
	client := newTestClient(t, portal)

	got, err := client.SetCurrentCard(context.Background(), "8679")

	require.NoError(t, err)
	assert.True(t, got.Success)
	assert.Equal(t, "8679", got.CurrentBalance.CardNumber)
	assert.Equal(t, "Pipiscine Party", got.CurrentBalance.CardName)
	assert.Equal(t, "$50", got.CurrentBalance.Balance)

	posts := portal.requestsTo(http.MethodPost, switchPath)
	require.Len(t, posts, 1)
	assert.Equal(t, "setFareMediaSession=8679&__RequestVerificationToken=AZBY1029", posts[0].Body)
	assert.Equal(t, "application/x-www-form-urlencoded", posts[0].Header.Get("Content-Type"))
	assert.Equal(t, "id=lowerFareMediaId&class=lowerFareMediaId", posts[0].Query)
}

func TestClient_SetCurrentCard_FollowsRedirectToDashboard(t *testing.T) {
	before := loadFixture(t, "dashboard_multiple_cards")
	after := loadFixture(t, "dashboard_switched_card")
	var switched atomic.Bool

	portal := newFakePortal(t)
	portal.handle("GET "+DefaultPaths().Dashboard, func(w http.ResponseWriter, _ *http.Request) {
		if switched.Load() {
			_, _ = w.Write([]byte(after))
			return
		}
		_, _ = w.Write([]byte(before))
	})
	portal.handle("POST "+switchPath, func(w http.ResponseWriter, r *http.Request) {
		switched.Store(true)
		http.Redirect(w, r, DefaultPaths().Dashboard, http.StatusFound)
	})
	client := newTestClient(t, portal)

	got, err := client.SetCurrentCard(context.Background(), "8679")

	require.NoError(t, err)
	assert.True(t, got.Success)
	assert.Equal(t, "8679", got.CurrentBalance.CardNumber)
}

func TestClient_SetCurrentCard_AlreadyActive(t *testing.T) {
	portal := newFakePortal(t)
	portal.serveHTML("GET "+DefaultPaths().Dashboard, http.StatusOK, loadFixture(t, "dashboard_multiple_cards"))
	client := newTestClient(t, portal)

	got, err := client.SetCurrentCard(context.Background(), "1234")

	require.NoError(t, err)
	assert.True(t, got.Success)
	assert.Equal(t, "1234", got.CurrentBalance.CardNumber)
	assert.Equal(t, "Luis' card", got.CurrentBalance.CardName)
	assert.Empty(t, portal.requestsTo(http.MethodPost, switchPath), "No switch request for the active card")
}

func TestClient_SetCurrentCard_Rejected(t *testing.T) {
	const invalidCardNumber = "12345678900987654321"

	portal := newFakePortal(t)
	portal.serveHTML("GET "+DefaultPaths().Dashboard, http.StatusOK, loadFixture(t, "dashboard_multiple_cards"))
	portal.serveHTML("POST "+switchPath, http.StatusOK, loadFixture(t, "dashboard_multiple_cards"))
	client := newTestClient(t, portal)

	got, err := client.SetCurrentCard(context.Background(), invalidCardNumber)

	require.NoError(t, err)
	assert.False(t, got.Success)
	assert.Equal(t, "1234", got.CurrentBalance.CardNumber)
	assert.Equal(t, "$30", got.CurrentBalance.Balance)

	posts := portal.requestsTo(http.MethodPost, switchPath)
	require.Len(t, posts, 1)
	assert.Equal(t, "setFareMediaSession="+invalidCardNumber+"&__RequestVerificationToken=AZBY1029", posts[0].Body)
}

func TestClient_SetCurrentCard_Errors(t *testing.T) {
	tests := []struct {
		name    string
		fixture string
		wantErr error
	}{
		{
			name:    "account without card",
			fixture: "dashboard_no_card",
			wantErr: card.ErrNoCard,
		},
		{
			name:    "session expired",
			fixture: "dashboard_logged_out",
			wantErr: card.ErrNotLoggedIn,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			portal := newFakePortal(t)
			portal.serveHTML("GET "+DefaultPaths().Dashboard, http.StatusOK, loadFixture(t, tc.fixture))
			client := newTestClient(t, portal)

			_, err := client.SetCurrentCard(context.Background(), "8679")

			assert.ErrorIs(t, err, tc.wantErr)
			assert.Empty(t, portal.requestsTo(http.MethodPost, switchPath))
		})
	}
}

func TestClient_SetCurrentCard_SwitchStatusError(t *testing.T) {
	portal := newFakePortal(t)
	portal.serveHTML("GET "+DefaultPaths().Dashboard, http.StatusOK, loadFixture(t, "dashboard_multiple_cards"))
	portal.serveHTML("POST "+switchPath, http.StatusInternalServerError, "")
	client := newTestClient(t, portal)

	_, err := client.SetCurrentCard(context.Background(), "8679")

	var scraperErr *card.ScraperError
	require.ErrorAs(t, err, &scraperErr)
	assert.Equal(t, "SetCurrentCard", scraperErr.Operation)
	assert.ErrorIs(t, err, card.ErrUnexpectedStatus)
}
