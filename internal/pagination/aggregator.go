// Package pagination walks an offset-paged listing endpoint until the
// upstream reports no further page.
package pagination

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/scolli03/rwmarket/internal/metrics"
	"github.com/scolli03/rwmarket/internal/types"
)

const (
	// DefaultDelay is the courtesy pause between page requests
	DefaultDelay = 200 * time.Millisecond
	// DefaultMaxPages caps a single aggregation run
	DefaultMaxPages = 500
)

// Page is one page of market listings
type Page struct {
	Listings []types.MarketListing
	// Next reports whether the upstream advertised a further page
	Next bool
}

// PageSource fetches the page starting at offset
type PageSource interface {
	FetchPage(ctx context.Context, offset int) (Page, error)
}

// PageSourceFunc adapts a function to PageSource
type PageSourceFunc func(ctx context.Context, offset int) (Page, error)

func (f PageSourceFunc) FetchPage(ctx context.Context, offset int) (Page, error) {
	return f(ctx, offset)
}

// Aggregator collects every listing of a paged source
type Aggregator struct {
	Source   PageSource
	Delay    time.Duration
	MaxPages int

	metrics *metrics.Recorder
}

// NewAggregator creates an aggregator with the given delay and page cap.
// Non-positive maxPages falls back to DefaultMaxPages.
func NewAggregator(source PageSource, delay time.Duration, maxPages int) *Aggregator {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	return &Aggregator{
		Source:   source,
		Delay:    delay,
		MaxPages: maxPages,
		metrics:  metrics.NewRecorder(),
	}
}

// FetchAll fetches pages from offset 0 until a page has no next link or is
// empty. On failure it returns the listings accumulated so far together
// with the error; the aggregate is incomplete and should be discarded.
func (a *Aggregator) FetchAll(ctx context.Context) ([]types.MarketListing, error) {
	ctx, span := otel.Tracer("github.com/scolli03/rwmarket/internal/pagination").Start(ctx, "pagination.fetch_all")
	defer span.End()

	rec := a.metrics
	if rec == nil {
		rec = metrics.NewRecorder()
	}
	maxPages := a.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	var all []types.MarketListing
	offset := 0
	for page := 1; ; page++ {
		if page > maxPages {
			err := fmt.Errorf("pagination exceeded %d pages at offset %d", maxPages, offset)
			return all, a.abort(span, rec, err)
		}

		p, err := a.Source.FetchPage(ctx, offset)
		if err != nil {
			return all, a.abort(span, rec, fmt.Errorf("fetch page at offset %d: %w", offset, err))
		}
		rec.RecordPage()
		all = append(all, p.Listings...)

		log.Debug().
			Int("page", page).
			Int("offset", offset).
			Int("listings", len(p.Listings)).
			Bool("next", p.Next).
			Msg("Fetched market page")

		if !p.Next || len(p.Listings) == 0 {
			span.SetAttributes(attribute.Int("pages", page), attribute.Int("listings", len(all)))
			return all, nil
		}
		offset += len(p.Listings)

		if err := wait(ctx, a.Delay); err != nil {
			return all, a.abort(span, rec, err)
		}
	}
}

func (a *Aggregator) abort(span trace.Span, rec *metrics.Recorder, err error) error {
	rec.RecordAggregationError()
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
