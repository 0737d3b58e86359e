// Package weav3r looks up bazaar listings and market averages for an item
// on the weav3r.dev marketplace API.
package weav3r

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	rwhttp "github.com/scolli03/rwmarket/internal/http"
	"github.com/scolli03/rwmarket/internal/http/ratelimit"
	"github.com/scolli03/rwmarket/internal/types"
)

const (
	// DefaultBaseURL is the weav3r.dev marketplace endpoint root
	DefaultBaseURL = "https://weav3r.dev/api/marketplace"
	sourceName     = "weav3r"
)

// Client queries the weav3r.dev marketplace
type Client struct {
	http    *rwhttp.Client
	baseURL string
}

// NewClient creates a weav3r client
func NewClient(baseURL string, rl ratelimit.Config, opts ...rwhttp.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    rwhttp.NewClient(sourceName, rl, opts...),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type listing struct {
	Price       int64  `json:"price"`
	Quantity    int64  `json:"quantity"`
	PlayerID    int64  `json:"player_id"`
	PlayerName  string `json:"player_name"`
	LastChecked *int64 `json:"last_checked"`
}

type marketplaceResponse struct {
	ItemID        int64           `json:"item_id"`
	ItemName      string          `json:"item_name"`
	MarketPrice   *int64          `json:"market_price"`
	BazaarAverage *int64          `json:"bazaar_average"`
	Listings      []listing       `json:"listings"`
	Error         json.RawMessage `json:"error"`
}

// Lookup fetches every listing of itemID plus its market and bazaar
// averages. An error payload becomes a *types.APIError.
func (c *Client) Lookup(ctx context.Context, itemID int64) (types.PriceSnapshot, error) {
	u := fmt.Sprintf("%s/%d", c.baseURL, itemID)

	var resp marketplaceResponse
	if err := c.http.GetJSON(ctx, u, nil, &resp); err != nil {
		return types.PriceSnapshot{}, err
	}
	if msg := errorMessage(resp.Error); msg != "" {
		return types.PriceSnapshot{}, &types.APIError{Source: sourceName, Message: msg}
	}

	snap := types.PriceSnapshot{
		ItemID:        itemID,
		ItemName:      resp.ItemName,
		MarketPrice:   positive(resp.MarketPrice),
		BazaarAverage: positive(resp.BazaarAverage),
		Listings:      make([]types.ExternalListing, 0, len(resp.Listings)),
	}
	for _, l := range resp.Listings {
		el := types.ExternalListing{
			Price:      l.Price,
			Quantity:   l.Quantity,
			PlayerID:   l.PlayerID,
			PlayerName: l.PlayerName,
			Source:     sourceName,
		}
		if l.LastChecked != nil && *l.LastChecked > 0 {
			t := time.Unix(*l.LastChecked, 0).UTC()
			el.UpdatedAt = &t
		}
		snap.Listings = append(snap.Listings, el)
	}
	return snap, nil
}

func errorMessage(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte("false")) {
		return ""
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		return msg
	}
	var obj struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Error != "" {
			return obj.Error
		}
		if obj.Message != "" {
			return obj.Message
		}
	}
	return string(raw)
}

// positive treats zero averages as unknown
func positive(v *int64) *int64 {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}
