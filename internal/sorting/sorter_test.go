package sorting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scolli03/rwmarket/internal/classifier"
	"github.com/scolli03/rwmarket/internal/types"
)

func item(id int64, slot types.Slot, set string, price int64) types.ClassifiedItem {
	return types.ClassifiedItem{ID: id, Slot: slot, ArmorSet: set, ListedPrice: price}
}

func ids(items []types.ClassifiedItem) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestSortWeapons(t *testing.T) {
	in := []types.ClassifiedItem{
		item(1, types.SlotMelee, "N/A", 900),
		item(2, types.SlotSecondary, "N/A", 100),
		item(3, types.SlotPrimary, "N/A", 50),
		item(4, types.SlotUnknown, "N/A", 10_000),
		item(5, types.SlotPrimary, "N/A", 75),
		item(6, types.Slot("Launcher"), "N/A", 20_000),
	}

	out := Sort(in, WeaponSlots)
	assert.Equal(t, []int64{5, 3, 2, 1, 6, 4}, ids(out))
	assert.Equal(t, int64(1), in[0].ID, "input is not modified")
}

func TestSortIsStable(t *testing.T) {
	in := []types.ClassifiedItem{
		item(10, types.SlotBody, "Riot", 500),
		item(11, types.SlotBody, "Riot", 500),
		item(12, types.SlotBody, "Riot", 500),
	}
	assert.Equal(t, []int64{10, 11, 12}, ids(Sort(in, ArmorSlots)))

	reversed := []types.ClassifiedItem{in[2], in[1], in[0]}
	assert.Equal(t, []int64{12, 11, 10}, ids(Sort(reversed, ArmorSlots)))
}

func TestSortIsIdempotent(t *testing.T) {
	in := []types.ClassifiedItem{
		item(1, types.SlotGloves, "Dune", 3),
		item(2, types.SlotBody, "Riot", 1),
		item(3, types.SlotPants, "Unknown", 7),
		item(4, types.SlotArmor, "Assault", 7),
		item(5, types.SlotBody, "Assault", 9),
		item(6, types.SlotHelmet, "Riot", 9),
	}

	for _, table := range []RankTable{WeaponSlots, ArmorSlots, ArmorSets} {
		once := Sort(in, table)
		twice := Sort(once, table)
		assert.Equal(t, once, twice, table.Name)
	}

	once := SortArmorBySet(in)
	assert.Equal(t, once, SortArmorBySet(once))
}

func TestSortArmorBySlot(t *testing.T) {
	in := []types.ClassifiedItem{
		item(1, types.SlotArmor, "Unknown", 100),
		item(2, types.SlotPants, "Riot", 100),
		item(3, types.SlotGloves, "Riot", 100),
		item(4, types.SlotHelmet, "Riot", 100),
		item(5, types.SlotBoots, "Riot", 100),
		item(6, types.SlotBody, "Riot", 100),
	}
	assert.Equal(t, []int64{6, 5, 4, 3, 2, 1}, ids(Armor(in, ArmorByType)))
}

func TestSortArmorBySet(t *testing.T) {
	in := []types.ClassifiedItem{
		item(1, types.SlotBody, "Riot", 100),
		item(2, types.SlotHelmet, "Assault", 300),
		item(3, types.SlotBody, "Assault", 200),
		item(4, types.SlotBody, "Assault", 250),
		item(5, types.SlotBoots, "Unknown", 999),
		item(6, types.SlotBoots, "Neon", 1),
	}

	out := Armor(in, ArmorBySet)
	assert.Equal(t, []int64{4, 3, 2, 1, 5, 6}, ids(out))
}

func TestParseArmorMode(t *testing.T) {
	assert.Equal(t, ArmorBySet, ParseArmorMode("set"))
	assert.Equal(t, ArmorByType, ParseArmorMode("type"))
	assert.Equal(t, ArmorByType, ParseArmorMode(""))
	assert.Equal(t, ArmorByType, ParseArmorMode("bogus"))
}

// TestClassifyThenSort runs the two stages together: a category outranks a
// higher price, and a price tie keeps first-seen order.
func TestClassifyThenSort(t *testing.T) {
	q := 50.0
	listings := []types.MarketListing{
		{ID: 1, Price: 1_000_000, Item: types.RawItem{ID: 102, Name: "Rifle A", Type: "Primary", Stats: types.ItemStats{Quality: &q}}},
		{ID: 2, Price: 2_000_000, Item: types.RawItem{ID: 103, Name: "Pistol", Type: "Secondary", Stats: types.ItemStats{Quality: &q}}},
		{ID: 3, Price: 1_000_000, Item: types.RawItem{ID: 104, Name: "Rifle B", Type: "Primary", Stats: types.ItemStats{Quality: &q}}},
	}

	c := classifier.New(classifier.Config{})
	weapons, armor := classifier.Split(c.Filter(listings))
	require.Empty(t, armor)

	out := Sort(weapons, WeaponSlots)
	require.Len(t, out, 3)
	assert.Equal(t, []int64{102, 104, 103}, ids(out))
	assert.Equal(t, types.SlotPrimary, out[0].Slot)
	assert.Equal(t, types.SlotPrimary, out[1].Slot)
	assert.Equal(t, types.SlotSecondary, out[2].Slot)
}
