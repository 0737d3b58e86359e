// Package classifier decides which market listings are ranked war weapons or
// armor and derives their slot, armor set and bonus description.
//
// Classification is a best-effort heuristic over free text. It never fails:
// missing fields become sentinel values.
package classifier

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/scolli03/rwmarket/internal/types"
)

// Config holds the optional id allow-lists
type Config struct {
	WeaponIDs []int64
	ArmorIDs  []int64
}

// Classifier runs an ordered rule chain over raw items
type Classifier struct {
	rules []Rule
}

type keywordFamily struct {
	slot     types.Slot
	keywords []string
}

var (
	armorSlotFamilies = []keywordFamily{
		{types.SlotBody, []string{"body", "vest", "chest"}},
		{types.SlotBoots, []string{"boot", "shoe"}},
		{types.SlotHelmet, []string{"helmet", "hat", "cap"}},
		{types.SlotGloves, []string{"glove", "hand"}},
		{types.SlotPants, []string{"pant", "trouser", "leg"}},
	}

	weaponSlots = map[string]types.Slot{
		"primary":   types.SlotPrimary,
		"secondary": types.SlotSecondary,
		"melee":     types.SlotMelee,
	}

	// ArmorSets lists the thematic armor families in display order.
	// Matching ignores case; the canonical name is returned.
	ArmorSets = []string{
		"Assault", "Riot", "Dune", "Tactical", "Combat", "Military",
		"Stealth", "Urban", "Desert", "Arctic", "Jungle",
	}
)

// New creates a classifier with the default rule chain
func New(cfg Config) *Classifier {
	allow := make(map[int64]struct{}, len(cfg.WeaponIDs)+len(cfg.ArmorIDs))
	for _, id := range cfg.WeaponIDs {
		allow[id] = struct{}{}
	}
	for _, id := range cfg.ArmorIDs {
		allow[id] = struct{}{}
	}
	return NewWithRules(DefaultRules(allow))
}

// NewWithRules creates a classifier with a custom rule chain
func NewWithRules(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// Rules returns the rule chain in evaluation order
func (c *Classifier) Rules() []Rule {
	return c.rules
}

// Match returns the name of the first matching rule, or "" if none match
func (c *Classifier) Match(item types.RawItem) string {
	for _, r := range c.rules {
		if r.Match(item) {
			return r.Name
		}
	}
	return ""
}

// Classify derives a ClassifiedItem from one listing
func (c *Classifier) Classify(listing types.MarketListing) types.ClassifiedItem {
	item := listing.Item
	rule := c.Match(item)

	id := item.ID
	if id == 0 {
		id = listing.ID
	}
	name := item.Name
	if name == "" {
		name = types.NameUnknown
	}
	typeText := item.TypeText()
	if typeText == "" {
		typeText = types.NameUnknown
	}
	rarity := item.Rarity
	if rarity == "" {
		rarity = types.NameUnknown
	}

	kind := KindOf(item)
	out := types.ClassifiedItem{
		ID:          id,
		Name:        name,
		RankedWar:   rule != "",
		MatchedRule: rule,
		Kind:        kind,
		Slot:        types.SlotUnknown,
		ArmorSet:    types.SetNotApplicable,
		Bonus:       BonusText(item),
		Type:        typeText,
		Rarity:      rarity,
		Quality:     item.Stats.Quality,
		Damage:      item.Stats.Damage,
		Accuracy:    item.Stats.Accuracy,
		Defense:     item.Stats.Armor,
		ListedPrice: max(listing.Price, 0),
		Available:   max(listing.Available, 0),
	}

	switch kind {
	case types.KindWeapon:
		out.Slot = WeaponSlot(item.TypeText())
	case types.KindArmor:
		out.Slot = ArmorSlot(item.Name)
		out.ArmorSet = ArmorSet(item.Name)
	}
	return out
}

// Filter classifies listings and keeps only ranked war items, in input order
func (c *Classifier) Filter(listings []types.MarketListing) []types.ClassifiedItem {
	out := make([]types.ClassifiedItem, 0, len(listings))
	for _, l := range listings {
		ci := c.Classify(l)
		if ci.RankedWar {
			out = append(out, ci)
		}
	}
	return out
}

// Split separates classified items into weapons and armor.
// Items of unknown kind are dropped.
func Split(items []types.ClassifiedItem) (weapons, armor []types.ClassifiedItem) {
	for _, it := range items {
		switch it.Kind {
		case types.KindWeapon:
			weapons = append(weapons, it)
		case types.KindArmor:
			armor = append(armor, it)
		}
	}
	return weapons, armor
}

// KindOf assigns the broad kind from the type text
func KindOf(item types.RawItem) types.ItemKind {
	t := fold(item.Type)
	if isWeaponType(t) {
		return types.KindWeapon
	}
	if t == armorType {
		return types.KindArmor
	}
	return types.KindUnknown
}

// WeaponSlot matches the type text exactly, then by substring
func WeaponSlot(typeText string) types.Slot {
	t := fold(typeText)
	if t == "" {
		return types.SlotUnknown
	}
	if s, ok := weaponSlots[t]; ok {
		return s
	}
	for _, w := range weaponTypes {
		if strings.Contains(t, w) {
			return weaponSlots[w]
		}
	}
	return types.SlotUnknown
}

// ArmorSlot infers the armor slot from keyword families in the name
func ArmorSlot(name string) types.Slot {
	n := fold(name)
	for _, fam := range armorSlotFamilies {
		for _, kw := range fam.keywords {
			if strings.Contains(n, kw) {
				return fam.slot
			}
		}
	}
	return types.SlotArmor
}

// ArmorSet returns the first thematic set keyword found in the name
func ArmorSet(name string) string {
	n := fold(name)
	for _, set := range ArmorSets {
		if strings.Contains(n, fold(set)) {
			return set
		}
	}
	return types.SetUnknown
}

// BonusText formats bonuses as "<title>: <value><unit>", comma joined.
// Disarm is measured in turns (T), everything else in percent.
func BonusText(item types.RawItem) string {
	if len(item.Bonuses) > 0 {
		parts := make([]string, 0, len(item.Bonuses))
		for _, b := range item.Bonuses {
			unit := "%"
			if strings.Contains(fold(b.Title), "disarm") {
				unit = "T"
			}
			parts = append(parts, b.Title+": "+strconv.FormatFloat(b.Value, 'f', -1, 64)+unit)
		}
		return strings.Join(parts, ", ")
	}
	if item.Stats.Quality != nil {
		return strconv.FormatFloat(*item.Stats.Quality, 'f', -1, 64)
	}
	return types.TextNotAvailable
}

func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
