package weav3r

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scolli03/rwmarket/internal/http/ratelimit"
	"github.com/scolli03/rwmarket/internal/types"
)

func serve(t *testing.T, body string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/1118", r.URL.Path)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, ratelimit.Config{})
}

func TestLookup(t *testing.T) {
	c := serve(t, `{
		"item_id": 1118, "item_name": "Armor Cache",
		"market_price": 151000000, "bazaar_average": 149500000,
		"listings": [
			{"price": 150000000, "quantity": 1, "player_id": 1, "player_name": "a", "last_checked": 1700000000},
			{"price": 140000000, "quantity": 2, "player_id": 2, "player_name": "b"}
		]}`)

	snap, err := c.Lookup(context.Background(), 1118)
	require.NoError(t, err)
	assert.Equal(t, "Armor Cache", snap.ItemName)
	require.NotNil(t, snap.MarketPrice)
	assert.Equal(t, int64(151_000_000), *snap.MarketPrice)
	require.NotNil(t, snap.BazaarAverage)
	assert.Equal(t, int64(149_500_000), *snap.BazaarAverage)
	require.Len(t, snap.Listings, 2)
	assert.Equal(t, "b", snap.Listings[1].PlayerName)
	assert.Equal(t, "weav3r", snap.Listings[0].Source)
	require.NotNil(t, snap.Listings[0].UpdatedAt)
	assert.Nil(t, snap.Listings[1].UpdatedAt)
}

func TestLookupNoAverages(t *testing.T) {
	c := serve(t, `{"listings": [], "market_price": 0, "bazaar_average": null}`)

	snap, err := c.Lookup(context.Background(), 1118)
	require.NoError(t, err)
	assert.Empty(t, snap.Listings)
	assert.Nil(t, snap.MarketPrice)
	assert.Nil(t, snap.BazaarAverage)
}

func TestLookupErrorPayload(t *testing.T) {
	c := serve(t, `{"error": "Item not found"}`)

	_, err := c.Lookup(context.Background(), 1118)
	var apiErr *types.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Item not found", apiErr.Message)
	assert.Equal(t, "weav3r", apiErr.Source)
}
