// Package pipeline runs the two end-to-end flows: the market listing run
// (fetch, classify, sort) and the war cache run (report, split, price).
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scolli03/rwmarket/internal/classifier"
	"github.com/scolli03/rwmarket/internal/metrics"
	"github.com/scolli03/rwmarket/internal/pagination"
	"github.com/scolli03/rwmarket/internal/sorting"
	"github.com/scolli03/rwmarket/internal/types"
)

// MarketResult is the classified and ordered view of one market run
type MarketResult struct {
	Weapons   []types.ClassifiedItem `json:"weapons"`
	Armor     []types.ClassifiedItem `json:"armor"`
	Listings  int                    `json:"listings"`
	Skipped   int                    `json:"skipped"`
	ArmorMode sorting.ArmorMode      `json:"armorMode"`
	FetchedAt time.Time              `json:"fetchedAt"`
}

// Market runs the item market flow
type Market struct {
	Source     pagination.PageSource
	Classifier *classifier.Classifier
	Delay      time.Duration
	MaxPages   int
}

// Run executes fetch, classify and sort. A fetch failure aborts the run and
// no partial result is returned.
func (m *Market) Run(ctx context.Context, mode sorting.ArmorMode) (*MarketResult, error) {
	// Phase 1: Fetch
	listings, err := FetchPhase(ctx, m.Source, m.Delay, m.MaxPages)
	if err != nil {
		return nil, err
	}

	// Phase 2: Classify
	c := m.Classifier
	if c == nil {
		c = classifier.New(classifier.Config{})
	}
	weapons, armor := ClassifyPhase(c, listings)

	// Phase 3: Sort
	result := &MarketResult{
		Weapons:   sorting.Sort(weapons, sorting.WeaponSlots),
		Armor:     sorting.Armor(armor, mode),
		Listings:  len(listings),
		Skipped:   len(listings) - len(weapons) - len(armor),
		ArmorMode: mode,
		FetchedAt: time.Now().UTC(),
	}

	log.Info().
		Int("listings", result.Listings).
		Int("weapons", len(result.Weapons)).
		Int("armor", len(result.Armor)).
		Str("armor_mode", string(mode)).
		Msg("Market run complete")

	return result, nil
}

// FetchPhase collects every market listing, discarding partial pages on error
func FetchPhase(ctx context.Context, source pagination.PageSource, delay time.Duration, maxPages int) ([]types.MarketListing, error) {
	agg := pagination.NewAggregator(source, delay, maxPages)
	listings, err := agg.FetchAll(ctx)
	if err != nil {
		log.Error().Err(err).Int("discarded", len(listings)).Msg("Market fetch failed")
		return nil, fmt.Errorf("fetch market listings: %w", err)
	}
	return listings, nil
}

// ClassifyPhase keeps ranked war items and splits them by kind
func ClassifyPhase(c *classifier.Classifier, listings []types.MarketListing) (weapons, armor []types.ClassifiedItem) {
	rec := metrics.NewRecorder()
	items := make([]types.ClassifiedItem, 0, len(listings))
	for _, l := range listings {
		ci := c.Classify(l)
		rec.RecordClassified(string(ci.Kind), ci.RankedWar)
		if !ci.RankedWar {
			log.Debug().Str("item", ci.Name).Str("type", ci.Type).Msg("Skipping non ranked war listing")
			continue
		}
		if ci.Kind == types.KindUnknown {
			log.Debug().Str("item", ci.Name).Str("type", ci.Type).Msg("Unknown category for ranked war item")
		}
		items = append(items, ci)
	}
	return classifier.Split(items)
}

// PriceItems applies the market discount to each item. It is pure and can
// be re-run for every discount change without refetching.
func PriceItems(items []types.ClassifiedItem, discount float64) []types.PricedItem {
	out := make([]types.PricedItem, len(items))
	for i, it := range items {
		out[i] = types.PricedItem{ClassifiedItem: it, Price: it.AdjustedPrice(discount)}
	}
	return out
}
