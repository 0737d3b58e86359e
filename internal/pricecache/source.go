package pricecache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/scolli03/rwmarket/internal/metrics"
	"github.com/scolli03/rwmarket/internal/types"
)

// Lookuper is anything that can price an item
type Lookuper interface {
	Lookup(ctx context.Context, itemID int64) (types.PriceSnapshot, error)
}

// CachedSource wraps a Lookuper with a Store. Failed lookups are not cached.
type CachedSource struct {
	source  Lookuper
	store   Store
	ttl     time.Duration
	metrics *metrics.Recorder
}

// NewCachedSource wraps source with store
func NewCachedSource(source Lookuper, store Store, ttl time.Duration) *CachedSource {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedSource{source: source, store: store, ttl: ttl, metrics: metrics.NewRecorder()}
}

// Lookup returns a cached snapshot when fresh, else asks the wrapped source
func (c *CachedSource) Lookup(ctx context.Context, itemID int64) (types.PriceSnapshot, error) {
	key := strconv.FormatInt(itemID, 10)

	if b, ok, err := c.store.Get(ctx, key); err != nil {
		log.Warn().Err(err).Str("backend", c.store.Name()).Int64("item_id", itemID).Msg("Price cache read failed")
	} else if ok {
		var snap types.PriceSnapshot
		if err := json.Unmarshal(b, &snap); err == nil {
			c.metrics.RecordCacheResult(c.store.Name(), true)
			return snap, nil
		}
	}
	c.metrics.RecordCacheResult(c.store.Name(), false)

	snap, err := c.source.Lookup(ctx, itemID)
	if err != nil {
		return snap, err
	}

	if b, err := json.Marshal(snap); err == nil {
		if err := c.store.Set(ctx, key, b, c.ttl); err != nil {
			log.Warn().Err(err).Str("backend", c.store.Name()).Int64("item_id", itemID).Msg("Price cache write failed")
		}
	}
	return snap, nil
}
