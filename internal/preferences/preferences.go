// Package preferences persists per-user UI and pricing preferences
package preferences

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/scolli03/rwmarket/internal/pricing"
	"github.com/scolli03/rwmarket/internal/sorting"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid preferences")

// Icon positions
const (
	IconLeft  = "left"
	IconRight = "right"

	// MaxIconOffset bounds the icon offset in pixels
	MaxIconOffset = 2000
)

// Preferences are the persisted settings of one owner (an API key holder
// or a local CLI profile)
type Preferences struct {
	Owner          string            `json:"owner"`
	MarketDiscount float64           `json:"marketDiscount"`
	IncludeListed  bool              `json:"includeListed"`
	ArmorSort      sorting.ArmorMode `json:"armorSort"`
	CacheDiscount  int64             `json:"cacheDiscount"`
	CacheMargin    float64           `json:"cacheMargin"`
	IconPosition   string            `json:"iconPosition"`
	IconOffset     int               `json:"iconOffset"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// Defaults returns the default preferences for owner
func Defaults(owner string) Preferences {
	return Preferences{
		Owner:          owner,
		MarketDiscount: pricing.DefaultMarketDiscount,
		ArmorSort:      sorting.ArmorByType,
		CacheDiscount:  pricing.DefaultCacheDiscount,
		CacheMargin:    pricing.DefaultCacheMargin,
		IconPosition:   IconRight,
	}
}

// Validate checks ranges and enumerations
func (p Preferences) Validate() error {
	switch {
	case p.Owner == "":
		return fmt.Errorf("%w: owner is required", ErrInvalid)
	case p.MarketDiscount < 0 || p.MarketDiscount > 1:
		return fmt.Errorf("%w: market discount %v not in [0,1]", ErrInvalid, p.MarketDiscount)
	case p.CacheMargin < 0 || p.CacheMargin > 1:
		return fmt.Errorf("%w: cache margin %v not in [0,1]", ErrInvalid, p.CacheMargin)
	case p.CacheDiscount < 0:
		return fmt.Errorf("%w: cache discount must not be negative", ErrInvalid)
	case p.ArmorSort != sorting.ArmorByType && p.ArmorSort != sorting.ArmorBySet:
		return fmt.Errorf("%w: armor sort %q must be type or set", ErrInvalid, p.ArmorSort)
	case p.IconPosition != IconLeft && p.IconPosition != IconRight:
		return fmt.Errorf("%w: icon position %q must be left or right", ErrInvalid, p.IconPosition)
	case p.IconOffset < 0 || p.IconOffset > MaxIconOffset:
		return fmt.Errorf("%w: icon offset %d not in [0,%d]", ErrInvalid, p.IconOffset, MaxIconOffset)
	}
	return nil
}

// CachePolicy returns the cache quote policy these preferences select
func (p Preferences) CachePolicy() pricing.CachePolicy {
	policy := pricing.DefaultCachePolicy()
	policy.Discount = p.CacheDiscount
	policy.Margin = p.CacheMargin
	return policy
}

// Store loads and saves preferences
type Store interface {
	// Get returns the owner's preferences, or Defaults when none are saved
	Get(ctx context.Context, owner string) (Preferences, error)
	// Put validates and saves preferences
	Put(ctx context.Context, p Preferences) (Preferences, error)
	Close() error
}
