package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scolli03/rwmarket/internal/cachequote"
	"github.com/scolli03/rwmarket/internal/classifier"
	"github.com/scolli03/rwmarket/internal/pagination"
	"github.com/scolli03/rwmarket/internal/pipeline"
	"github.com/scolli03/rwmarket/internal/preferences"
	"github.com/scolli03/rwmarket/internal/pricing"
	"github.com/scolli03/rwmarket/internal/storage"
	"github.com/scolli03/rwmarket/internal/types"
)

func f(v float64) *float64 { return &v }

func marketSource(calls *atomic.Int32) pagination.PageSource {
	return pagination.PageSourceFunc(func(_ context.Context, offset int) (pagination.Page, error) {
		calls.Add(1)
		return pagination.Page{Listings: []types.MarketListing{
			{ID: 1, Price: 1_000_000, Item: types.RawItem{ID: 1, Name: "Rifle A", Type: "Primary",
				Stats: types.ItemStats{Quality: f(75), Damage: f(60), Accuracy: f(50)}}},
			{ID: 2, Price: 3_000_000, Item: types.RawItem{ID: 2, Name: "Riot Helmet", Type: "Defensive",
				Stats: types.ItemStats{Quality: f(50), Armor: f(40)}}},
			{ID: 3, Price: 2_000_000, Item: types.RawItem{ID: 3, Name: "Pistol", Type: "Secondary",
				Stats: types.ItemStats{Quality: f(80), Damage: f(40), Accuracy: f(60)}}},
			{ID: 4, Price: 10, Item: types.RawItem{ID: 4, Name: "Xanax", Type: "Drug"}},
		}}, nil
	})
}

type fakeWar struct {
	reports atomic.Int32
	err     error
}

func (w *fakeWar) RankedWarReport(context.Context, int64) (types.WarReport, error) {
	w.reports.Add(1)
	if w.err != nil {
		return types.WarReport{}, w.err
	}
	return types.WarReport{
		ID:       77,
		WinnerID: 200,
		Factions: []types.WarFaction{
			{ID: 100, Name: "Losers", Rewards: []types.RewardItem{{ID: 2, Name: "Melee Cache", Quantity: 1}}},
			{ID: 200, Name: "Winners", Rewards: []types.RewardItem{{ID: 1, Name: "Armor Cache", Quantity: 1}},
				Members: []types.FactionMember{{ID: 7, Name: "Boss"}}},
		},
	}, nil
}

func (w *fakeWar) FactionBasic(_ context.Context, id int64) (types.FactionBasic, error) {
	leader := int64(7)
	return types.FactionBasic{ID: id, LeaderID: &leader}, nil
}

type fakePrices struct{}

func (fakePrices) Lookup(_ context.Context, id int64) (types.PriceSnapshot, error) {
	if id != 1 {
		return types.PriceSnapshot{}, &types.APIError{Source: "weav3r", Message: "Item not found"}
	}
	avg := int64(145_000_000)
	return types.PriceSnapshot{
		ItemID: 1,
		Listings: []types.ExternalListing{
			{Price: 160_000_000}, {Price: 140_000_000}, {Price: 150_000_000},
		},
		BazaarAverage: &avg,
	}, nil
}

type testEnv struct {
	router      *gin.Engine
	api         *API
	marketCalls *atomic.Int32
	war         *fakeWar
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	prefs, err := preferences.NewSQLiteStore(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { prefs.Close() })

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	env := &testEnv{marketCalls: &atomic.Int32{}, war: &fakeWar{}}
	env.api = NewAPI(Deps{
		Market:  &pipeline.Market{Source: marketSource(env.marketCalls), Classifier: classifier.New(classifier.Config{})},
		War:     &pipeline.War{Source: env.war, Engine: cachequote.NewEngine(fakePrices{}, 0)},
		Prefs:   prefs,
		Storage: store,
		Defaults: Defaults{
			MarketDiscount: pricing.DefaultMarketDiscount,
			CachePolicy:    pricing.DefaultCachePolicy(),
		},
		PriceCache: "memory",
	})
	env.router = gin.New()
	env.api.Register(env.router)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthCheck(t *testing.T) {
	env := setup(t)
	w := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[HealthResponse](t, w)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "local", resp.Database)
	assert.Equal(t, "memory", resp.PriceCache)
}

func TestGetMarket(t *testing.T) {
	env := setup(t)
	w := env.do(t, http.MethodGet, "/api/market?discount=0.1", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[MarketResponse](t, w)
	require.Len(t, resp.Weapons, 2)
	assert.Equal(t, "Rifle A", resp.Weapons[0].Name)
	assert.Equal(t, int64(900_000), resp.Weapons[0].Price)
	assert.Equal(t, "Pistol", resp.Weapons[1].Name)
	require.Len(t, resp.Armor, 1)
	assert.Equal(t, 4, resp.Listings)
	assert.Equal(t, 1, resp.Skipped)
	assert.Equal(t, 0.1, resp.Discount)
}

func TestGetMarketValidation(t *testing.T) {
	env := setup(t)
	for _, q := range []string{"discount=2", "discount=abc", "armorSort=rarity", "includeListed=maybe"} {
		w := env.do(t, http.MethodGet, "/api/market?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
	}
	assert.Zero(t, env.marketCalls.Load())
}

func TestGetMarketUsesOwnerPreferences(t *testing.T) {
	env := setup(t)
	p := preferences.Defaults("alice")
	p.MarketDiscount = 0.5
	_, err := env.api.deps.Prefs.Put(context.Background(), p)
	require.NoError(t, err)

	resp := decode[MarketResponse](t, env.do(t, http.MethodGet, "/api/market?owner=alice", nil))
	assert.Equal(t, 0.5, resp.Discount)
	assert.Equal(t, int64(500_000), resp.Weapons[0].Price)

	resp = decode[MarketResponse](t, env.do(t, http.MethodGet, "/api/market?owner=alice&discount=0", nil))
	assert.Equal(t, int64(1_000_000), resp.Weapons[0].Price)
}

func TestGetMarketUpstreamError(t *testing.T) {
	env := setup(t)
	env.api.deps.Market.Source = pagination.PageSourceFunc(func(context.Context, int) (pagination.Page, error) {
		return pagination.Page{}, &types.APIError{Source: "torn", Code: 2, Message: "Incorrect key"}
	})

	w := env.do(t, http.MethodGet, "/api/market", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Incorrect key")
}

func TestExportMarket(t *testing.T) {
	env := setup(t)

	w := env.do(t, http.MethodGet, "/api/market/export?format=csv&table=weapons&save=true", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "market-weapons.csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "Rifle A,"))

	key := w.Header().Get("X-Export-Key")
	require.NotEmpty(t, key)

	list := decode[ListExportsResponse](t, env.do(t, http.MethodGet, "/api/exports", nil))
	require.Equal(t, 1, list.Total)
	assert.Equal(t, key, list.Exports[0].Key)
	assert.Equal(t, "market", list.Exports[0].Metadata.Kind)

	got := env.do(t, http.MethodGet, "/api/exports/"+key, nil)
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, w.Body.String(), got.Body.String())

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/exports/exports/none.csv", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/market/export?format=pdf", nil).Code)
}

func TestWarCacheQuoteAndReselect(t *testing.T) {
	env := setup(t)

	w := env.do(t, http.MethodGet, "/api/wars/77/cache", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[WarCacheResponse](t, w)
	require.Len(t, resp.Sides, 2)

	winner := resp.Sides[0]
	assert.Equal(t, pipeline.SideWinner, winner.Side)
	assert.Equal(t, "Winners", winner.Faction)
	require.NotNil(t, winner.Leader)
	assert.Equal(t, "Boss", winner.Leader.Name)
	require.Len(t, winner.Quote.Rows, 1)
	assert.Equal(t, int64(140_000_000), winner.Quote.Rows[0].Price)
	assert.Equal(t, int64(134_830_000), winner.Quote.Total)
	require.Len(t, winner.Alternatives, 1)
	assert.Len(t, winner.Alternatives[0].Alternatives, 2)

	loser := resp.Sides[1]
	assert.Equal(t, "Item not found", loser.Quote.Rows[0].Note)

	// listings are ascending: 140m, 150m, 160m
	w = env.do(t, http.MethodPost, "/api/wars/77/cache/winner/items/1/select", SelectRequest{Index: ptr(2)})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	side := decode[SideQuote](t, w)
	assert.Equal(t, int64(154_230_000), side.Quote.Total)

	// the session keeps the selection and is not re-resolved
	resp = decode[WarCacheResponse](t, env.do(t, http.MethodGet, "/api/wars/77/cache?side=winner", nil))
	require.Len(t, resp.Sides, 1)
	assert.Equal(t, int64(154_230_000), resp.Sides[0].Quote.Total)
	assert.Equal(t, int32(1), env.war.reports.Load())

	// query policy overrides are applied to the same session
	resp = decode[WarCacheResponse](t, env.do(t, http.MethodGet, "/api/wars/77/cache?side=winner&discount=0&margin=0", nil))
	assert.Equal(t, int64(160_000_000), resp.Sides[0].Quote.Total)
}

func TestSelectListingErrors(t *testing.T) {
	env := setup(t)

	w := env.do(t, http.MethodPost, "/api/wars/77/cache/winner/items/1/select", SelectRequest{Index: ptr(0)})
	assert.Equal(t, http.StatusNotFound, w.Code, "war not resolved yet")

	require.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/wars/77/cache", nil).Code)

	tests := []struct {
		name string
		path string
		body any
		want int
	}{
		{"out of range", "/api/wars/77/cache/winner/items/1/select", SelectRequest{Index: ptr(5)}, http.StatusBadRequest},
		{"negative", "/api/wars/77/cache/winner/items/1/select", SelectRequest{Index: ptr(-1)}, http.StatusBadRequest},
		{"missing index", "/api/wars/77/cache/winner/items/1/select", map[string]any{}, http.StatusBadRequest},
		{"bad side", "/api/wars/77/cache/neutral/items/1/select", SelectRequest{Index: ptr(0)}, http.StatusBadRequest},
		{"unknown item", "/api/wars/77/cache/loser/items/1/select", SelectRequest{Index: ptr(0)}, http.StatusNotFound},
		{"bad rank id", "/api/wars/abc/cache/winner/items/1/select", SelectRequest{Index: ptr(0)}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, env.do(t, http.MethodPost, tt.path, tt.body).Code)
		})
	}
}

func TestWarCacheUpstreamError(t *testing.T) {
	env := setup(t)
	env.war.err = &types.TransportError{Op: "torn GET", URL: "x", Status: 503}

	w := env.do(t, http.MethodGet, "/api/wars/77/cache", nil)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Zero(t, env.api.sessions.ItemCount())
}

func TestExportWarCache(t *testing.T) {
	env := setup(t)

	w := env.do(t, http.MethodGet, "/api/wars/77/cache/export?format=html&side=winner", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Winners")
	assert.Contains(t, w.Body.String(), "$134,830,000 (134.83m)")

	w = env.do(t, http.MethodGet, "/api/wars/77/cache/export?format=bbcode", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreferences(t *testing.T) {
	env := setup(t)

	got := decode[preferences.Preferences](t, env.do(t, http.MethodGet, "/api/preferences/bob", nil))
	assert.Equal(t, preferences.Defaults("bob"), got)

	w := env.do(t, http.MethodPut, "/api/preferences/bob", map[string]any{"iconPosition": "left", "iconOffset": 40})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	saved := decode[preferences.Preferences](t, w)
	assert.Equal(t, "left", saved.IconPosition)
	assert.Equal(t, pricing.DefaultMarketDiscount, saved.MarketDiscount, "unspecified fields keep their value")

	w = env.do(t, http.MethodPut, "/api/preferences/bob", map[string]any{"iconPosition": "top"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	got = decode[preferences.Preferences](t, env.do(t, http.MethodGet, "/api/preferences/bob", nil))
	assert.Equal(t, 40, got.IconOffset)
}

func TestPreferencesNotConfigured(t *testing.T) {
	env := setup(t)
	env.api.deps.Prefs = nil
	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodGet, "/api/preferences/bob", nil).Code)
}

func ptr(i int) *int { return &i }
