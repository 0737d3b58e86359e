package torn

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scolli03/rwmarket/internal/http/ratelimit"
	"github.com/scolli03/rwmarket/internal/pagination"
	"github.com/scolli03/rwmarket/internal/types"
)

func testClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "test-key", ratelimit.Config{MaxRetries: 0, InitialBackoff: time.Millisecond})
}

const marketPage = `{
  "itemmarket": [
    {"id": 11, "price": 250000000, "available": 1,
     "item": {"id": 1203, "uid": 9001, "name": "Riot Helmet", "type": "Defensive", "rarity": "yellow",
              "stats": {"armor": 41.2, "quality": 88.5},
              "bonuses": [{"id": 1, "title": "Impenetrable", "description": "", "value": 12}]}},
    {"id": 12, "price": 500000000, "available": 1,
     "item": {"id": 1055, "name": "Ranked War Rifle", "type": "Primary", "rarity": "orange",
              "stats": {"damage": 72.1, "accuracy": 55.3, "quality": 100}}}
  ],
  "_metadata": {"links": {"next": "https://api.torn.com/v2/user/itemmarket?offset=2", "prev": null}}
}`

func TestItemMarketPage(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/itemmarket", r.URL.Path)
		assert.Equal(t, "4", r.URL.Query().Get("offset"))
		assert.Equal(t, "ApiKey test-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(marketPage))
	})

	page, err := c.ItemMarketPage(context.Background(), 4)
	require.NoError(t, err)
	assert.True(t, page.Next)
	require.Len(t, page.Listings, 2)

	helmet := page.Listings[0]
	assert.Equal(t, int64(250_000_000), helmet.Price)
	assert.Equal(t, "Riot Helmet", helmet.Item.Name)
	require.NotNil(t, helmet.Item.Stats.Armor)
	assert.InDelta(t, 41.2, *helmet.Item.Stats.Armor, 1e-9)
	require.Len(t, helmet.Item.Bonuses, 1)
	assert.Equal(t, "Impenetrable", helmet.Item.Bonuses[0].Title)

	assert.Nil(t, page.Listings[1].Item.Stats.Armor)
}

func TestItemMarketLastPage(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"itemmarket": [], "_metadata": {"links": {"next": null, "prev": null}}}`))
	})

	page, err := c.ItemMarketPage(context.Background(), 0)
	require.NoError(t, err)
	assert.False(t, page.Next)
	assert.Empty(t, page.Listings)
}

func TestAPIErrorPayload(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		code    int
		message string
	}{
		{"object", `{"error": {"code": 2, "error": "Incorrect key"}}`, 2, "Incorrect key"},
		{"string", `{"error": "Something broke"}`, 0, "Something broke"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.ItemMarketPage(context.Background(), 0)
			var apiErr *types.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, "torn", apiErr.Source)
		})
	}
}

func TestFetchAllThroughClient(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("offset") {
		case "0":
			_, _ = w.Write([]byte(marketPage))
		default:
			_, _ = w.Write([]byte(`{"itemmarket": [{"id": 13, "price": 1, "available": 1, "item": {"id": 5, "name": "Cap"}}],
				"_metadata": {"links": {"next": null}}}`))
		}
	})

	listings, err := pagination.NewAggregator(c, 0, 0).FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 3)
	assert.Equal(t, int64(13), listings[2].ID)
}

func TestRankedWarReport(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/faction/31337/rankedwarreport", r.URL.Path)
		_, _ = w.Write([]byte(`{"rankedwarreport": {
			"id": 31337, "winner": 100, "start": 1700000000, "end": 1700090000,
			"factions": [
				{"id": 100, "name": "Winners", "score": 5000,
				 "rewards": {"respect": 100, "points": 20, "items": [{"id": 1118, "name": "Armor Cache", "quantity": 2}]},
				 "members": [{"id": 7, "name": "Boss", "level": 100}]},
				{"id": 200, "name": "Losers", "score": 4000,
				 "rewards": {"items": [{"id": 1119, "name": "Melee Cache", "quantity": 1}]},
				 "members": [{"player_id": 8, "name": "Other", "level": 50}]}
			]}}`))
	})

	report, err := c.RankedWarReport(context.Background(), 31337)
	require.NoError(t, err)
	assert.Equal(t, int64(100), report.WinnerID)
	require.Len(t, report.Factions, 2)
	require.NotNil(t, report.Start)
	assert.Equal(t, int64(1700000000), report.Start.Unix())

	win := report.Factions[0]
	assert.Equal(t, []types.RewardItem{{ID: 1118, Name: "Armor Cache", Quantity: 2}}, win.Rewards)
	assert.Equal(t, "Boss", win.MemberName(7, "?"))
	assert.Equal(t, "Other", report.Factions[1].MemberName(8, "?"))
}

func TestFactionBasic(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/faction/100/basic", r.URL.Path)
		_, _ = w.Write([]byte(`{"basic": {"id": 100, "name": "Winners", "leader_id": 7, "co_leader_id": 0}}`))
	})

	basic, err := c.FactionBasic(context.Background(), 100)
	require.NoError(t, err)
	require.NotNil(t, basic.LeaderID)
	assert.Equal(t, int64(7), *basic.LeaderID)
	assert.Nil(t, basic.CoLeaderID)
}

func TestTransportErrorStatus(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := c.FactionBasic(context.Background(), 1)
	var te *types.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, http.StatusForbidden, te.Status)
}
