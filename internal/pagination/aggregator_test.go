package pagination

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scolli03/rwmarket/internal/types"
)

// fakeSource serves fixed pages keyed by offset and records the offsets asked for
type fakeSource struct {
	pages   map[int]Page
	errAt   map[int]error
	offsets []int
}

func (f *fakeSource) FetchPage(_ context.Context, offset int) (Page, error) {
	f.offsets = append(f.offsets, offset)
	if err, ok := f.errAt[offset]; ok {
		return Page{}, err
	}
	return f.pages[offset], nil
}

func listings(ids ...int64) []types.MarketListing {
	out := make([]types.MarketListing, len(ids))
	for i, id := range ids {
		out[i] = types.MarketListing{ID: id, Price: id * 1000, Item: types.RawItem{ID: id}}
	}
	return out
}

func listingIDs(ls []types.MarketListing) []int64 {
	out := make([]int64, len(ls))
	for i, l := range ls {
		out[i] = l.ID
	}
	return out
}

func TestFetchAllThreePages(t *testing.T) {
	src := &fakeSource{pages: map[int]Page{
		0: {Listings: listings(1, 2), Next: true},
		2: {Listings: listings(3, 4), Next: true},
		4: {Listings: listings(5, 6), Next: false},
	}}

	agg := NewAggregator(src, time.Millisecond, 0)
	got, err := agg.FetchAll(context.Background())
	require.NoError(t, err)

	assert.Len(t, got, 6)
	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6}, listingIDs(got))
	assert.Equal(t, []int{0, 2, 4}, src.offsets)
}

func TestFetchAllStopsOnEmptyPage(t *testing.T) {
	src := &fakeSource{pages: map[int]Page{
		0: {Listings: listings(1), Next: true},
		1: {Listings: nil, Next: true},
	}}

	got, err := NewAggregator(src, 0, 0).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, listingIDs(got))
	assert.Equal(t, []int{0, 1}, src.offsets)
}

func TestFetchAllEmptyMarket(t *testing.T) {
	src := &fakeSource{pages: map[int]Page{0: {}}}

	got, err := NewAggregator(src, 0, 0).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFetchAllAbortsOnError(t *testing.T) {
	apiErr := &types.APIError{Source: "torn", Code: 2, Message: "Incorrect key"}
	src := &fakeSource{
		pages: map[int]Page{0: {Listings: listings(1, 2), Next: true}},
		errAt: map[int]error{2: apiErr},
	}

	got, err := NewAggregator(src, 0, 0).FetchAll(context.Background())
	require.Error(t, err)

	var target *types.APIError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, 2, target.Code)
	// accumulated listings come back for inspection only
	assert.Equal(t, []int64{1, 2}, listingIDs(got))
}

func TestFetchAllPageCap(t *testing.T) {
	src := PageSourceFunc(func(_ context.Context, offset int) (Page, error) {
		return Page{Listings: listings(int64(offset + 1)), Next: true}, nil
	})

	got, err := NewAggregator(src, 0, 3).FetchAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeded 3 pages")
	assert.Len(t, got, 3)
}

func TestFetchAllCancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := PageSourceFunc(func(_ context.Context, offset int) (Page, error) {
		cancel()
		return Page{Listings: listings(1), Next: true}, nil
	})

	_, err := NewAggregator(src, time.Hour, 0).FetchAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
