package cachequote

import (
	"github.com/scolli03/rwmarket/internal/pricing"
)

// Row is one line of a cache buy quote
type Row struct {
	ItemID    int64        `json:"itemId"`
	Name      string       `json:"name"`
	Quantity  int64        `json:"quantity"`
	Price     int64        `json:"price"`
	BuyPrice  int64        `json:"buyPrice"`
	LineTotal int64        `json:"lineTotal"`
	Deviation *float64     `json:"deviation,omitempty"`
	Band      pricing.Band `json:"band"`
	Selected  int          `json:"selected"`
	Listings  int          `json:"listings"`
	Note      string       `json:"note,omitempty"`
}

// Sheet is a complete cache buy quote
type Sheet struct {
	Rows         []Row               `json:"rows"`
	Total        int64               `json:"total"`
	RoundedTotal int64               `json:"roundedTotal"`
	Policy       pricing.CachePolicy `json:"policy"`
}

// Quote computes the buy quote of items under policy. It reads the current
// selection of every item and never mutates them, so it can be re-run after
// any Select or policy change.
func Quote(items []*CacheItem, policy pricing.CachePolicy) Sheet {
	sheet := Sheet{Rows: make([]Row, 0, len(items)), Policy: policy}
	for _, it := range items {
		price := it.CurrentPrice()
		buy := pricing.BuyPrice(price, policy.Discount, policy.Margin)
		line := pricing.LineTotal(buy, it.Reward.Quantity)
		dev := it.Deviation()

		sheet.Rows = append(sheet.Rows, Row{
			ItemID:    it.Reward.ID,
			Name:      it.Reward.Name,
			Quantity:  it.Reward.Quantity,
			Price:     price,
			BuyPrice:  buy,
			LineTotal: line,
			Deviation: dev,
			Band:      pricing.BandFor(dev),
			Selected:  it.Selected,
			Listings:  len(it.Listings),
			Note:      it.Note,
		})
		sheet.Total += line
	}
	sheet.RoundedTotal = pricing.RoundToUnit(sheet.Total, policy.RoundingUnit)
	return sheet
}
