// Package sorting orders classified items by category rank, then by listed
// price descending. Equal keys keep their input order.
package sorting

import (
	"slices"

	"github.com/scolli03/rwmarket/internal/types"
)

// RankTable maps a category label to its rank (lower sorts first).
// Labels missing from the table get the Unknown rank.
type RankTable struct {
	Name    string
	Ranks   map[string]int
	Unknown int
	// Key extracts the category label from an item
	Key func(types.ClassifiedItem) string
}

// Rank returns the rank of an item under this table
func (t RankTable) Rank(item types.ClassifiedItem) int {
	if r, ok := t.Ranks[t.Key(item)]; ok {
		return r
	}
	return t.Unknown
}

func bySlot(item types.ClassifiedItem) string { return string(item.Slot) }
func bySet(item types.ClassifiedItem) string  { return item.ArmorSet }

var (
	// WeaponSlots orders weapons Primary, Secondary, Melee
	WeaponSlots = RankTable{
		Name: "weapon_slot",
		Ranks: map[string]int{
			string(types.SlotPrimary):   1,
			string(types.SlotSecondary): 2,
			string(types.SlotMelee):     3,
			string(types.SlotUnknown):   4,
		},
		Unknown: 4,
		Key:     bySlot,
	}

	// ArmorSlots orders armor Body, Boots, Helmet, Gloves, Pants, generic Armor
	ArmorSlots = RankTable{
		Name: "armor_slot",
		Ranks: map[string]int{
			string(types.SlotBody):    1,
			string(types.SlotBoots):   2,
			string(types.SlotHelmet):  3,
			string(types.SlotGloves):  4,
			string(types.SlotPants):   5,
			string(types.SlotArmor):   6,
			string(types.SlotUnknown): 7,
		},
		Unknown: 7,
		Key:     bySlot,
	}

	// ArmorSets orders armor by thematic set
	ArmorSets = RankTable{
		Name: "armor_set",
		Ranks: map[string]int{
			"Assault":  1,
			"Riot":     2,
			"Dune":     3,
			"Tactical": 4,
			"Combat":   5,
			"Military": 6,
			"Stealth":  7,
			"Urban":    8,
			"Desert":   9,
			"Arctic":   10,
			"Jungle":   11,
			"Unknown":  12,
		},
		Unknown: 12,
		Key:     bySet,
	}
)

// Sort returns a new slice ordered by table rank, then listed price
// descending. The input is not modified.
func Sort(items []types.ClassifiedItem, table RankTable) []types.ClassifiedItem {
	return SortBy(items, table)
}

// SortArmorBySet orders armor by set, then by slot, then by price descending
func SortArmorBySet(items []types.ClassifiedItem) []types.ClassifiedItem {
	return SortBy(items, ArmorSets, ArmorSlots)
}

// SortBy orders items by each table in turn, then by listed price
// descending. It is stable, so fully equal items keep input order.
func SortBy(items []types.ClassifiedItem, tables ...RankTable) []types.ClassifiedItem {
	out := slices.Clone(items)
	slices.SortStableFunc(out, func(a, b types.ClassifiedItem) int {
		for _, t := range tables {
			if ra, rb := t.Rank(a), t.Rank(b); ra != rb {
				return ra - rb
			}
		}
		switch {
		case a.ListedPrice > b.ListedPrice:
			return -1
		case a.ListedPrice < b.ListedPrice:
			return 1
		default:
			return 0
		}
	})
	return out
}

// ArmorMode selects the armor ordering
type ArmorMode string

const (
	ArmorByType ArmorMode = "type"
	ArmorBySet  ArmorMode = "set"
)

// ParseArmorMode returns the armor mode, defaulting to by-type
func ParseArmorMode(s string) ArmorMode {
	if ArmorMode(s) == ArmorBySet {
		return ArmorBySet
	}
	return ArmorByType
}

// Armor orders armor items according to mode
func Armor(items []types.ClassifiedItem, mode ArmorMode) []types.ClassifiedItem {
	if mode == ArmorBySet {
		return SortArmorBySet(items)
	}
	return Sort(items, ArmorSlots)
}
