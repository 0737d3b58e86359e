package types

import (
	"strconv"
	"time"

	"github.com/scolli03/rwmarket/internal/pricing"
)

// ItemKind is the broad category of a classified item
type ItemKind string

const (
	KindWeapon  ItemKind = "Weapon"
	KindArmor   ItemKind = "Armor"
	KindUnknown ItemKind = "Unknown"
)

// Slot is the fine-grained weapon or armor sub-category
type Slot string

const (
	SlotPrimary   Slot = "Primary"
	SlotSecondary Slot = "Secondary"
	SlotMelee     Slot = "Melee"
	SlotBody      Slot = "Body"
	SlotBoots     Slot = "Boots"
	SlotHelmet    Slot = "Helmet"
	SlotGloves    Slot = "Gloves"
	SlotPants     Slot = "Pants"
	SlotArmor     Slot = "Armor" // armor that matched no slot keyword
	SlotUnknown   Slot = "Unknown"
)

// Sentinels used when a field is missing from the upstream record
const (
	SetUnknown       = "Unknown"
	SetNotApplicable = "N/A"
	TextNotAvailable = "N/A"
	NameUnknown      = "Unknown"
)

// ItemStats holds the optional numeric stats of an item
type ItemStats struct {
	Damage   *float64 `json:"damage,omitempty"`
	Accuracy *float64 `json:"accuracy,omitempty"`
	Armor    *float64 `json:"armor,omitempty"`
	Quality  *float64 `json:"quality,omitempty"`
}

// ItemBonus is a named percentage (or turn count) modifier on an item
type ItemBonus struct {
	ID          int64   `json:"id,omitempty"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Value       float64 `json:"value"`
}

// RawItem is an item as received from the Torn API
type RawItem struct {
	ID       int64       `json:"id"`
	UID      int64       `json:"uid,omitempty"`
	Name     string      `json:"name"`
	Type     string      `json:"type"`
	Category string      `json:"category,omitempty"`
	Rarity   string      `json:"rarity,omitempty"`
	Stats    ItemStats   `json:"stats"`
	Bonuses  []ItemBonus `json:"bonuses,omitempty"`
}

// TypeText returns the free-text type, falling back to the category field
func (r RawItem) TypeText() string {
	if r.Type != "" {
		return r.Type
	}
	return r.Category
}

// MarketListing wraps a RawItem with its listed price and available quantity
type MarketListing struct {
	ID        int64   `json:"id"`
	Item      RawItem `json:"item"`
	Price     int64   `json:"price"`
	Available int64   `json:"available"`
}

// ClassifiedItem is the derived view of one market listing.
// The adjusted price is never stored; it is derived with pricing.MarketPrice.
type ClassifiedItem struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	RankedWar   bool     `json:"rankedWar"`
	MatchedRule string   `json:"matchedRule,omitempty"`
	Kind        ItemKind `json:"kind"`
	Slot        Slot     `json:"slot"`
	ArmorSet    string   `json:"armorSet"`
	Bonus       string   `json:"bonus"`
	Type        string   `json:"type"`
	Rarity      string   `json:"rarity"`
	Quality     *float64 `json:"quality,omitempty"`
	Damage      *float64 `json:"damage,omitempty"`
	Accuracy    *float64 `json:"accuracy,omitempty"`
	Defense     *float64 `json:"defense,omitempty"`
	ListedPrice int64    `json:"listedPrice"`
	Available   int64    `json:"available"`
}

// AdjustedPrice is the listed price with the market discount applied
func (c ClassifiedItem) AdjustedPrice(discount float64) int64 {
	return pricing.MarketPrice(c.ListedPrice, discount)
}

// PricedItem is a classified item with its discounted market price
type PricedItem struct {
	ClassifiedItem
	Price int64 `json:"price"`
}

// RewardItem is one entry of a faction's ranked war reward cache
type RewardItem struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

// ExternalListing is a single offer returned by the external pricing source
type ExternalListing struct {
	Price      int64      `json:"price"`
	Quantity   int64      `json:"quantity"`
	PlayerID   int64      `json:"playerId,omitempty"`
	PlayerName string     `json:"playerName,omitempty"`
	Source     string     `json:"source,omitempty"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// PriceSnapshot is everything the pricing source knows about one item
type PriceSnapshot struct {
	ItemID        int64             `json:"itemId"`
	ItemName      string            `json:"itemName,omitempty"`
	Listings      []ExternalListing `json:"listings"`
	MarketPrice   *int64            `json:"marketPrice,omitempty"`
	BazaarAverage *int64            `json:"bazaarAverage,omitempty"`
}

// FactionMember is a member entry of a war report faction
type FactionMember struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Level int    `json:"level,omitempty"`
}

// WarFaction is one side of a ranked war report
type WarFaction struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name"`
	Score   int64           `json:"score"`
	Rewards []RewardItem    `json:"rewards"`
	Members []FactionMember `json:"members,omitempty"`
}

// MemberName returns the name of the member with the given id, or fallback
func (f WarFaction) MemberName(id int64, fallback string) string {
	for _, m := range f.Members {
		if m.ID == id {
			return m.Name
		}
	}
	return fallback
}

// WarReport is a ranked war report with its two factions
type WarReport struct {
	ID       int64        `json:"id"`
	WinnerID int64        `json:"winner"`
	Start    *time.Time   `json:"start,omitempty"`
	End      *time.Time   `json:"end,omitempty"`
	Factions []WarFaction `json:"factions"`
}

// FactionBasic holds the leadership of a faction
type FactionBasic struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	LeaderID   *int64 `json:"leaderId,omitempty"`
	CoLeaderID *int64 `json:"coLeaderId,omitempty"`
}

// FormatFloat renders an optional stat the way the market tables show it
func FormatFloat(v *float64) string {
	if v == nil {
		return TextNotAvailable
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
