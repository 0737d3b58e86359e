// Package pricing holds the pure money arithmetic used for market resale
// prices and war cache buy quotes. All money values are whole currency units.
//
// Market prices are floored. Buy quotes are rounded half-up (half away from
// zero, which is the same thing for the non-negative values used here).
package pricing

import (
	"github.com/shopspring/decimal"
)

const (
	// DefaultMarketDiscount is the fraction taken off a listed market price
	DefaultMarketDiscount = 0.05
	// DefaultCacheDiscount is the absolute amount taken off a cache listing price
	DefaultCacheDiscount int64 = 1_000_000
	// DefaultCacheMargin is the fraction kept as margin on a cache buy quote
	DefaultCacheMargin = 0.03
	// DefaultRoundingUnit is the unit quote totals are rounded to for display
	DefaultRoundingUnit int64 = 1_000_000

	// deviationBand is the percentage either side of the bazaar average that
	// still counts as a normal price
	deviationBand = 5.0
)

// CachePolicy is the discount/margin/rounding policy for cache buy quotes
type CachePolicy struct {
	Discount     int64   `json:"discount"`
	Margin       float64 `json:"margin"`
	RoundingUnit int64   `json:"roundingUnit"`
}

// DefaultCachePolicy returns the default cache buy-quote policy
func DefaultCachePolicy() CachePolicy {
	return CachePolicy{
		Discount:     DefaultCacheDiscount,
		Margin:       DefaultCacheMargin,
		RoundingUnit: DefaultRoundingUnit,
	}
}

// MarketPrice applies a fractional discount to a listed price:
// floor(listed * (1 - discount)). The discount is clamped to [0, 1].
func MarketPrice(listed int64, discount float64) int64 {
	if listed <= 0 {
		return 0
	}
	factor := decimal.NewFromInt(1).Sub(fraction(discount))
	return decimal.NewFromInt(listed).Mul(factor).Floor().IntPart()
}

// BuyPrice computes a cache buy quote for one unit:
// round(max(0, price - discount) * (1 - margin)).
func BuyPrice(price, discount int64, margin float64) int64 {
	if price <= 0 {
		return 0
	}
	afterDiscount := price - max(discount, 0)
	if afterDiscount <= 0 {
		return 0
	}
	factor := decimal.NewFromInt(1).Sub(fraction(margin))
	return decimal.NewFromInt(afterDiscount).Mul(factor).Round(0).IntPart()
}

// LineTotal is the buy total for a quantity of one item
func LineTotal(buyPrice, quantity int64) int64 {
	if quantity <= 0 {
		return 0
	}
	return buyPrice * quantity
}

// RoundToUnit rounds a total to the nearest multiple of unit (half-up).
// A non-positive unit leaves the total unchanged.
func RoundToUnit(total, unit int64) int64 {
	if unit <= 0 {
		return total
	}
	u := decimal.NewFromInt(unit)
	return decimal.NewFromInt(total).Div(u).Round(0).Mul(u).IntPart()
}

// Deviation returns how far price is from average, in percent.
// It is nil when no positive average is known.
func Deviation(price int64, average *int64) *float64 {
	if average == nil || *average <= 0 {
		return nil
	}
	avg := decimal.NewFromInt(*average)
	pct, _ := decimal.NewFromInt(price).Sub(avg).Div(avg).Mul(decimal.NewFromInt(100)).Float64()
	return &pct
}

// Band classifies a deviation for display
type Band string

const (
	BandBelow   Band = "below"
	BandNormal  Band = "normal"
	BandAbove   Band = "above"
	BandUnknown Band = "unknown"
)

// BandFor maps a deviation percentage onto a Band
func BandFor(deviation *float64) Band {
	switch {
	case deviation == nil:
		return BandUnknown
	case *deviation < -deviationBand:
		return BandBelow
	case *deviation > deviationBand:
		return BandAbove
	default:
		return BandNormal
	}
}

func fraction(f float64) decimal.Decimal {
	switch {
	case f <= 0:
		return decimal.Zero
	case f >= 1:
		return decimal.NewFromInt(1)
	default:
		return decimal.NewFromFloat(f)
	}
}
