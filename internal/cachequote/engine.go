// Package cachequote prices a faction's ranked war reward cache from
// external listings and turns it into a buy quote.
package cachequote

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/scolli03/rwmarket/internal/metrics"
	"github.com/scolli03/rwmarket/internal/types"
)

// DefaultDelay is the pause between two price lookups
const DefaultDelay = 200 * time.Millisecond

// PriceSource looks up external listings for one item
type PriceSource interface {
	Lookup(ctx context.Context, itemID int64) (types.PriceSnapshot, error)
}

// Engine resolves reward items against a PriceSource, one at a time
type Engine struct {
	Source PriceSource
	Delay  time.Duration

	metrics *metrics.Recorder
}

// NewEngine creates an engine with the given inter-lookup delay
func NewEngine(source PriceSource, delay time.Duration) *Engine {
	return &Engine{Source: source, Delay: delay, metrics: metrics.NewRecorder()}
}

// Resolve looks up every reward item in order. A failed lookup is recorded
// on its item and does not stop the others. The only error returned is
// ctx's, along with the items resolved so far.
func (e *Engine) Resolve(ctx context.Context, rewards []types.RewardItem) ([]*CacheItem, error) {
	ctx, span := otel.Tracer("github.com/scolli03/rwmarket/internal/cachequote").Start(ctx, "cachequote.resolve")
	defer span.End()
	span.SetAttributes(attribute.Int("items", len(rewards)))

	rec := e.metrics
	if rec == nil {
		rec = metrics.NewRecorder()
	}

	items := make([]*CacheItem, 0, len(rewards))
	for i, reward := range rewards {
		if i > 0 && e.Delay > 0 {
			if err := sleep(ctx, e.Delay); err != nil {
				span.SetStatus(codes.Error, err.Error())
				return items, err
			}
		}
		if err := ctx.Err(); err != nil {
			return items, err
		}

		item := e.resolveOne(ctx, reward)
		switch {
		case item.err != nil:
			rec.RecordLookup("error")
		case len(item.Listings) == 0:
			rec.RecordLookup("empty")
		default:
			rec.RecordLookup("ok")
		}
		items = append(items, item)
	}
	return items, nil
}

func (e *Engine) resolveOne(ctx context.Context, reward types.RewardItem) *CacheItem {
	item := &CacheItem{Reward: reward}

	snap, err := e.Source.Lookup(ctx, reward.ID)
	if err != nil {
		lerr := &types.LookupError{ItemID: reward.ID, Err: err}
		item.err = lerr
		item.Note = noteFor(err)
		log.Warn().Err(err).Int64("item_id", reward.ID).Str("item", reward.Name).Msg("Price lookup failed")
		return item
	}

	item.Listings = slices.Clone(snap.Listings)
	slices.SortStableFunc(item.Listings, func(a, b types.ExternalListing) int {
		switch {
		case a.Price < b.Price:
			return -1
		case a.Price > b.Price:
			return 1
		default:
			return 0
		}
	})
	item.MarketPrice = snap.MarketPrice
	item.BazaarAverage = snap.BazaarAverage
	if item.Reward.Name == "" {
		item.Reward.Name = snap.ItemName
	}
	return item
}

func noteFor(err error) string {
	var apiErr *types.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
