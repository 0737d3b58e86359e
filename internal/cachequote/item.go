package cachequote

import (
	"fmt"

	"github.com/scolli03/rwmarket/internal/pricing"
	"github.com/scolli03/rwmarket/internal/types"
)

// DefaultAlternatives is how many alternative listings are offered for
// reselection
const DefaultAlternatives = 5

// CacheItem is one reward item with its resolved external listings.
// Selected is the only mutable field and changes only through Select.
type CacheItem struct {
	Reward        types.RewardItem        `json:"reward"`
	Listings      []types.ExternalListing `json:"listings"`
	Selected      int                     `json:"selected"`
	MarketPrice   *int64                  `json:"marketPrice,omitempty"`
	BazaarAverage *int64                  `json:"bazaarAverage,omitempty"`
	// Note carries the lookup failure message, if any
	Note string `json:"note,omitempty"`

	err error
}

// Err returns the lookup error recorded for this item, if any
func (c *CacheItem) Err() error {
	return c.err
}

// Select makes listing i the one used for the current price
func (c *CacheItem) Select(i int) error {
	if i < 0 || i >= len(c.Listings) {
		return fmt.Errorf("item %d: listing index %d out of range [0,%d)", c.Reward.ID, i, len(c.Listings))
	}
	c.Selected = i
	return nil
}

// SelectedListing returns the selected listing, if there are any listings
func (c *CacheItem) SelectedListing() (types.ExternalListing, bool) {
	if c.Selected < 0 || c.Selected >= len(c.Listings) {
		return types.ExternalListing{}, false
	}
	return c.Listings[c.Selected], true
}

// CurrentPrice is the selected listing price, else the market price,
// else zero
func (c *CacheItem) CurrentPrice() int64 {
	if l, ok := c.SelectedListing(); ok {
		return l.Price
	}
	if c.MarketPrice != nil {
		return *c.MarketPrice
	}
	return 0
}

// Deviation is the percent deviation of the current price from the
// bazaar average, nil without an average. An unpriced item against a known
// average reads -100%.
func (c *CacheItem) Deviation() *float64 {
	return pricing.Deviation(c.CurrentPrice(), c.BazaarAverage)
}

// Alternative is a listing that could replace the selected one
type Alternative struct {
	Index     int                   `json:"index"`
	Listing   types.ExternalListing `json:"listing"`
	Deviation *float64              `json:"deviation,omitempty"`
	Band      pricing.Band          `json:"band"`
}

// Alternatives returns up to limit of the cheapest listings other than
// the selected one
func (c *CacheItem) Alternatives(limit int) []Alternative {
	if limit <= 0 {
		return nil
	}
	out := make([]Alternative, 0, min(limit, len(c.Listings)))
	for i, l := range c.Listings {
		if i == c.Selected {
			continue
		}
		if len(out) == limit {
			break
		}
		dev := pricing.Deviation(l.Price, c.BazaarAverage)
		out = append(out, Alternative{Index: i, Listing: l, Deviation: dev, Band: pricing.BandFor(dev)})
	}
	return out
}
