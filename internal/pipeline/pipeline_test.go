package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scolli03/rwmarket/internal/cachequote"
	"github.com/scolli03/rwmarket/internal/classifier"
	"github.com/scolli03/rwmarket/internal/pagination"
	"github.com/scolli03/rwmarket/internal/pricing"
	"github.com/scolli03/rwmarket/internal/sorting"
	"github.com/scolli03/rwmarket/internal/types"
)

func f(v float64) *float64 { return &v }

func weapon(id int64, name, typ string, price int64) types.MarketListing {
	return types.MarketListing{ID: id, Price: price, Available: 1, Item: types.RawItem{
		ID: id, Name: name, Type: typ, Stats: types.ItemStats{Quality: f(75), Damage: f(60), Accuracy: f(50)},
	}}
}

func armorPiece(id int64, name string, price int64) types.MarketListing {
	return types.MarketListing{ID: id, Price: price, Available: 1, Item: types.RawItem{
		ID: id, Name: name, Type: "Defensive", Stats: types.ItemStats{Quality: f(50), Armor: f(40)},
		Bonuses: []types.ItemBonus{{Title: "Impregnable", Value: 20}},
	}}
}

func TestMarketRun(t *testing.T) {
	pages := map[int]pagination.Page{
		0: {Listings: []types.MarketListing{
			weapon(1, "Rifle A", "Primary", 1_000_000),
			armorPiece(2, "Riot Helmet", 3_000_000),
		}, Next: true},
		2: {Listings: []types.MarketListing{
			weapon(3, "Pistol", "Secondary", 2_000_000),
			{ID: 4, Price: 10, Item: types.RawItem{ID: 4, Name: "Xanax", Type: "Drug"}},
			weapon(5, "Rifle B", "Primary", 1_000_000),
			armorPiece(6, "Assault Body", 9_000_000),
		}},
	}
	src := pagination.PageSourceFunc(func(_ context.Context, offset int) (pagination.Page, error) {
		return pages[offset], nil
	})

	m := &Market{Source: src, Classifier: classifier.New(classifier.Config{})}
	res, err := m.Run(context.Background(), sorting.ArmorByType)
	require.NoError(t, err)

	assert.Equal(t, 6, res.Listings)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Weapons, 3)
	assert.Equal(t, []int64{1, 5, 3}, []int64{res.Weapons[0].ID, res.Weapons[1].ID, res.Weapons[2].ID})
	require.Len(t, res.Armor, 2)
	assert.Equal(t, int64(6), res.Armor[0].ID, "body before helmet")

	res, err = m.Run(context.Background(), sorting.ArmorBySet)
	require.NoError(t, err)
	assert.Equal(t, int64(6), res.Armor[0].ID, "Assault before Riot")
}

func TestMarketRunDiscardsPartialResults(t *testing.T) {
	src := pagination.PageSourceFunc(func(_ context.Context, offset int) (pagination.Page, error) {
		if offset == 0 {
			return pagination.Page{Listings: []types.MarketListing{weapon(1, "Rifle", "Primary", 1)}, Next: true}, nil
		}
		return pagination.Page{}, &types.TransportError{Op: "torn GET", URL: "x", Status: 502}
	})

	res, err := (&Market{Source: src}).Run(context.Background(), sorting.ArmorByType)
	require.Error(t, err)
	assert.Nil(t, res)

	var te *types.TransportError
	assert.True(t, errors.As(err, &te))
}

func TestPriceItems(t *testing.T) {
	items := []types.ClassifiedItem{{ID: 1, ListedPrice: 1_000_000}, {ID: 2, ListedPrice: 999}}

	priced := PriceItems(items, 0.05)
	assert.Equal(t, int64(950_000), priced[0].Price)
	assert.Equal(t, int64(949), priced[1].Price)

	priced = PriceItems(items, 0)
	assert.Equal(t, int64(1_000_000), priced[0].Price)
	assert.Equal(t, int64(1_000_000), items[0].ListedPrice)
}

type fakeWar struct {
	report   types.WarReport
	basics   map[int64]types.FactionBasic
	basicErr error
}

func (f *fakeWar) RankedWarReport(context.Context, int64) (types.WarReport, error) {
	return f.report, nil
}

func (f *fakeWar) FactionBasic(_ context.Context, id int64) (types.FactionBasic, error) {
	if f.basicErr != nil {
		return types.FactionBasic{}, f.basicErr
	}
	return f.basics[id], nil
}

type fakePrices map[int64]types.PriceSnapshot

func (p fakePrices) Lookup(_ context.Context, id int64) (types.PriceSnapshot, error) {
	snap, ok := p[id]
	if !ok {
		return snap, &types.APIError{Source: "weav3r", Message: "Item not found"}
	}
	return snap, nil
}

func i64(v int64) *int64 { return &v }

func warReport() types.WarReport {
	return types.WarReport{
		ID:       77,
		WinnerID: 200,
		Factions: []types.WarFaction{
			{ID: 100, Name: "Losers", Rewards: []types.RewardItem{{ID: 2, Name: "Melee Cache", Quantity: 1}},
				Members: []types.FactionMember{{ID: 9, Name: "Sad"}}},
			{ID: 200, Name: "Winners", Rewards: []types.RewardItem{{ID: 1, Name: "Armor Cache", Quantity: 2}},
				Members: []types.FactionMember{{ID: 7, Name: "Boss"}}},
		},
	}
}

func TestWarRun(t *testing.T) {
	src := &fakeWar{
		report: warReport(),
		basics: map[int64]types.FactionBasic{
			200: {ID: 200, LeaderID: i64(7), CoLeaderID: i64(8)},
			100: {ID: 100, LeaderID: i64(9)},
		},
	}
	prices := fakePrices{1: {Listings: []types.ExternalListing{{Price: 150_000_000}, {Price: 140_000_000}}}}

	w := &War{Source: src, Engine: cachequote.NewEngine(prices, 0)}
	cache, err := w.Run(context.Background(), 77)
	require.NoError(t, err)

	assert.Equal(t, "Winners", cache.Winner.Faction.Name)
	assert.Equal(t, "Losers", cache.Loser.Faction.Name)
	require.NotNil(t, cache.Winner.Leader)
	assert.Equal(t, "Boss", cache.Winner.Leader.Name)
	assert.Equal(t, "ID 8", cache.Winner.CoLeader.Name)
	assert.Nil(t, cache.Loser.CoLeader)

	sheet := cache.Side(SideWinner).Quote(pricing.CachePolicy{Discount: 1_000_000, Margin: 0.03})
	assert.Equal(t, int64(2*134_830_000), sheet.Total)

	item, ok := cache.Winner.Item(1)
	require.True(t, ok)
	require.NoError(t, item.Select(1))
	sheet = cache.Winner.Quote(pricing.CachePolicy{Discount: 1_000_000, Margin: 0.03})
	assert.Equal(t, int64(2*144_530_000), sheet.Total)

	loserItem, ok := cache.Loser.Item(2)
	require.True(t, ok)
	assert.Equal(t, "Item not found", loserItem.Note)
}

func TestWarRunLeaderFailureIsNotFatal(t *testing.T) {
	src := &fakeWar{report: warReport(), basicErr: errors.New("down")}
	w := &War{Source: src, Engine: cachequote.NewEngine(fakePrices{}, 0)}

	cache, err := w.Run(context.Background(), 77)
	require.NoError(t, err)
	assert.Nil(t, cache.Winner.Leader)
	assert.Nil(t, cache.Loser.Leader)
}

func TestSplitFactions(t *testing.T) {
	_, _, err := SplitFactions(types.WarReport{WinnerID: 1, Factions: []types.WarFaction{{ID: 1}}})
	assert.ErrorIs(t, err, ErrTooFewFactions)

	_, _, err = SplitFactions(types.WarReport{WinnerID: 3, Factions: []types.WarFaction{{ID: 1}, {ID: 2}}})
	assert.ErrorIs(t, err, ErrFactionNotFound)

	win, lose, err := SplitFactions(warReport())
	require.NoError(t, err)
	assert.Equal(t, int64(200), win.ID)
	assert.Equal(t, int64(100), lose.ID)
}

func TestParseSide(t *testing.T) {
	s, err := ParseSide("loser")
	require.NoError(t, err)
	assert.Equal(t, SideLoser, s)

	_, err = ParseSide("draw")
	assert.Error(t, err)
}
