// Package torn is a client for the Torn API v2 endpoints used by the
// market and war cache tools.
package torn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	rwhttp "github.com/scolli03/rwmarket/internal/http"
	"github.com/scolli03/rwmarket/internal/http/ratelimit"
	"github.com/scolli03/rwmarket/internal/pagination"
	"github.com/scolli03/rwmarket/internal/types"
)

const (
	// DefaultBaseURL is the Torn API v2 root
	DefaultBaseURL = "https://api.torn.com/v2"
	sourceName     = "torn"
)

// Client calls the Torn API with one API key
type Client struct {
	http    *rwhttp.Client
	baseURL string
	apiKey  string
}

// NewClient creates a Torn API client
func NewClient(baseURL, apiKey string, rl ratelimit.Config, opts ...rwhttp.Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    rwhttp.NewClient(sourceName, rl, opts...),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// envelope carries the error object every Torn response may hold.
// The error is either {"code":2,"error":"Incorrect key"} or a bare string.
type envelope struct {
	Error json.RawMessage `json:"error"`
}

func (e envelope) apiError() error {
	raw := bytes.TrimSpace(e.Error)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var obj struct {
		Code  int    `json:"code"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return &types.APIError{Source: sourceName, Code: obj.Code, Message: obj.Error}
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err == nil {
		return &types.APIError{Source: sourceName, Message: msg}
	}
	return &types.APIError{Source: sourceName, Message: string(raw)}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	header := http.Header{}
	header.Set("Authorization", "ApiKey "+c.apiKey)

	body, err := c.http.Get(ctx, u, header)
	if err != nil {
		return err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &types.TransportError{Op: "torn decode", URL: u, Err: err}
	}
	if apiErr := env.apiError(); apiErr != nil {
		return apiErr
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &types.TransportError{Op: "torn decode", URL: u, Err: err}
	}
	return nil
}

type itemMarketResponse struct {
	ItemMarket []types.MarketListing `json:"itemmarket"`
	Metadata   struct {
		Links struct {
			Next *string `json:"next"`
			Prev *string `json:"prev"`
		} `json:"links"`
	} `json:"_metadata"`
}

// ItemMarketPage fetches one page of the key owner's item market listings
func (c *Client) ItemMarketPage(ctx context.Context, offset int) (pagination.Page, error) {
	var resp itemMarketResponse
	q := url.Values{}
	q.Set("offset", strconv.Itoa(offset))
	if err := c.get(ctx, "/user/itemmarket", q, &resp); err != nil {
		return pagination.Page{}, err
	}
	next := resp.Metadata.Links.Next != nil && *resp.Metadata.Links.Next != ""
	return pagination.Page{Listings: resp.ItemMarket, Next: next}, nil
}

// FetchPage implements pagination.PageSource over the item market
func (c *Client) FetchPage(ctx context.Context, offset int) (pagination.Page, error) {
	return c.ItemMarketPage(ctx, offset)
}

type warReportResponse struct {
	Report struct {
		ID       int64  `json:"id"`
		Winner   int64  `json:"winner"`
		Start    *int64 `json:"start"`
		End      *int64 `json:"end"`
		Factions []struct {
			ID      int64  `json:"id"`
			Name    string `json:"name"`
			Score   int64  `json:"score"`
			Rewards struct {
				Items []types.RewardItem `json:"items"`
			} `json:"rewards"`
			Members []struct {
				ID       int64  `json:"id"`
				PlayerID int64  `json:"player_id"`
				Name     string `json:"name"`
				Level    int    `json:"level"`
			} `json:"members"`
		} `json:"factions"`
	} `json:"rankedwarreport"`
}

// RankedWarReport fetches the report of a finished ranked war
func (c *Client) RankedWarReport(ctx context.Context, rankID int64) (types.WarReport, error) {
	var resp warReportResponse
	if err := c.get(ctx, fmt.Sprintf("/faction/%d/rankedwarreport", rankID), nil, &resp); err != nil {
		return types.WarReport{}, err
	}

	r := resp.Report
	report := types.WarReport{
		ID:       r.ID,
		WinnerID: r.Winner,
		Start:    unixTime(r.Start),
		End:      unixTime(r.End),
		Factions: make([]types.WarFaction, 0, len(r.Factions)),
	}
	if report.ID == 0 {
		report.ID = rankID
	}
	for _, f := range r.Factions {
		wf := types.WarFaction{ID: f.ID, Name: f.Name, Score: f.Score, Rewards: f.Rewards.Items}
		for _, m := range f.Members {
			id := m.ID
			if id == 0 {
				id = m.PlayerID
			}
			wf.Members = append(wf.Members, types.FactionMember{ID: id, Name: m.Name, Level: m.Level})
		}
		report.Factions = append(report.Factions, wf)
	}
	return report, nil
}

type factionBasicResponse struct {
	Basic struct {
		ID         int64  `json:"id"`
		Name       string `json:"name"`
		LeaderID   *int64 `json:"leader_id"`
		CoLeaderID *int64 `json:"co_leader_id"`
	} `json:"basic"`
}

// FactionBasic fetches a faction's name and leadership
func (c *Client) FactionBasic(ctx context.Context, factionID int64) (types.FactionBasic, error) {
	var resp factionBasicResponse
	if err := c.get(ctx, fmt.Sprintf("/faction/%d/basic", factionID), nil, &resp); err != nil {
		return types.FactionBasic{}, err
	}
	b := resp.Basic
	out := types.FactionBasic{ID: b.ID, Name: b.Name, LeaderID: nonZero(b.LeaderID), CoLeaderID: nonZero(b.CoLeaderID)}
	if out.ID == 0 {
		out.ID = factionID
	}
	return out, nil
}

func nonZero(v *int64) *int64 {
	if v == nil || *v == 0 {
		return nil
	}
	return v
}
