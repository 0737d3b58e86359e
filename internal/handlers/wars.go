package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"

	"github.com/scolli03/rwmarket/internal/cachequote"
	"github.com/scolli03/rwmarket/internal/export"
	"github.com/scolli03/rwmarket/internal/pipeline"
	"github.com/scolli03/rwmarket/internal/pricing"
	"github.com/scolli03/rwmarket/internal/storage"
)

// warSession is one resolved war cache. mu serialises selection changes
// against quote reads.
type warSession struct {
	mu    sync.Mutex
	cache *pipeline.WarCache
}

// ItemAlternatives lists the reselection candidates of one cache item
type ItemAlternatives struct {
	ItemID       int64                    `json:"itemId"`
	Alternatives []cachequote.Alternative `json:"alternatives"`
}

// SideQuote is the priced cache of one faction
type SideQuote struct {
	Side         pipeline.Side      `json:"side"`
	FactionID    int64              `json:"factionId"`
	Faction      string             `json:"faction"`
	Leader       *pipeline.Leader   `json:"leader,omitempty"`
	CoLeader     *pipeline.Leader   `json:"coLeader,omitempty"`
	Quote        cachequote.Sheet   `json:"quote"`
	Alternatives []ItemAlternatives `json:"alternatives"`
}

// WarCacheResponse is the priced reward caches of a ranked war
type WarCacheResponse struct {
	RankID     int64       `json:"rankId"`
	ResolvedAt time.Time   `json:"resolvedAt"`
	Sides      []SideQuote `json:"sides"`
}

// SelectRequest picks a listing by its index in the ascending listing order
type SelectRequest struct {
	Index *int `json:"index" binding:"required,min=0"`
}

func sideQuote(ws *pipeline.WarSide, policy pricing.CachePolicy) SideQuote {
	q := SideQuote{
		Side:      ws.Side,
		FactionID: ws.Faction.ID,
		Faction:   ws.Faction.Name,
		Leader:    ws.Leader,
		CoLeader:  ws.CoLeader,
		Quote:     ws.Quote(policy),
	}
	q.Alternatives = make([]ItemAlternatives, 0, len(ws.Items))
	for _, it := range ws.Items {
		if alts := it.Alternatives(cachequote.DefaultAlternatives); len(alts) > 0 {
			q.Alternatives = append(q.Alternatives, ItemAlternatives{ItemID: it.Reward.ID, Alternatives: alts})
		}
	}
	return q
}

// cachePolicy resolves defaults, then owner preferences, then query overrides
func (a *API) cachePolicy(c *gin.Context) (pricing.CachePolicy, bool) {
	policy := a.deps.Defaults.CachePolicy
	prefs, err := a.ownerPrefs(c)
	if err != nil {
		respondError(c, err)
		return policy, false
	}
	if prefs != nil {
		policy.Discount = prefs.CacheDiscount
		policy.Margin = prefs.CacheMargin
	}
	if s := c.Query("discount"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v < 0 {
			badRequest(c, "discount must be a non-negative integer")
			return policy, false
		}
		policy.Discount = v
	}
	if !queryFloat(c, "margin", &policy.Margin, 0, 1) {
		return policy, false
	}
	return policy, true
}

// session returns the resolved war cache of rankID, running the war flow
// once for concurrent first requests
func (a *API) session(c *gin.Context, rankID int64, refresh bool) (*warSession, error) {
	key := strconv.FormatInt(rankID, 10)
	if !refresh {
		if v, ok := a.sessions.Get(key); ok {
			return v.(*warSession), nil
		}
	}
	v, err, shared := a.group.Do("war:"+key, func() (any, error) {
		wc, err := a.deps.War.Run(c.Request.Context(), rankID)
		if err != nil {
			return nil, err
		}
		s := &warSession{cache: wc}
		a.sessions.Set(key, s, cache.DefaultExpiration)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	log.Debug().Int64("rank_id", rankID).Bool("shared", shared).Msg("War cache resolved")
	return v.(*warSession), nil
}

func parseSides(c *gin.Context) ([]pipeline.Side, bool) {
	s := c.Query("side")
	if s == "" {
		return []pipeline.Side{pipeline.SideWinner, pipeline.SideLoser}, true
	}
	side, err := pipeline.ParseSide(s)
	if err != nil {
		badRequest(c, err.Error())
		return nil, false
	}
	return []pipeline.Side{side}, true
}

// GetWarCache resolves and quotes the reward caches of a ranked war
// @Summary Quote ranked war reward caches
// @Description Resolves the war report, both factions' leaders and the external listings of every reward cache, then quotes a buy price
// @Tags wars
// @Produce json
// @Param rankId path int true "Ranked war id"
// @Param side query string false "Only this side" Enums(winner, loser)
// @Param owner query string false "Apply this owner's saved preferences"
// @Param discount query int false "Absolute discount per cache" minimum(0)
// @Param margin query number false "Margin fraction" minimum(0) maximum(1)
// @Param refresh query bool false "Re-resolve instead of using the stored session"
// @Success 200 {object} WarCacheResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse "Winner and loser could not be identified"
// @Failure 502 {object} ErrorResponse "Upstream failure"
// @Router /api/wars/{rankId}/cache [get]
func (a *API) GetWarCache(c *gin.Context) {
	rankID, ok := paramInt(c, "rankId")
	if !ok {
		return
	}
	sides, ok := parseSides(c)
	if !ok {
		return
	}
	var refresh bool
	if !queryBool(c, "refresh", &refresh) {
		return
	}
	policy, ok := a.cachePolicy(c)
	if !ok {
		return
	}

	s, err := a.session(c, rankID, refresh)
	if err != nil {
		respondError(c, err)
		return
	}

	s.mu.Lock()
	resp := WarCacheResponse{RankID: rankID, ResolvedAt: s.cache.ResolvedAt}
	for _, side := range sides {
		resp.Sides = append(resp.Sides, sideQuote(s.cache.Side(side), policy))
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, resp)
}

// SelectListing switches the listing used to price one cache item
// @Summary Reselect a cache item listing
// @Tags wars
// @Accept json
// @Produce json
// @Param rankId path int true "Ranked war id"
// @Param side path string true "Faction side" Enums(winner, loser)
// @Param itemId path int true "Reward item id"
// @Param request body SelectRequest true "Listing index"
// @Param owner query string false "Apply this owner's saved preferences"
// @Param discount query int false "Absolute discount per cache" minimum(0)
// @Param margin query number false "Margin fraction" minimum(0) maximum(1)
// @Success 200 {object} SideQuote
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "No resolved war cache or item"
// @Router /api/wars/{rankId}/cache/{side}/items/{itemId}/select [post]
func (a *API) SelectListing(c *gin.Context) {
	rankID, ok := paramInt(c, "rankId")
	if !ok {
		return
	}
	itemID, ok := paramInt(c, "itemId")
	if !ok {
		return
	}
	side, err := pipeline.ParseSide(c.Param("side"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	policy, ok := a.cachePolicy(c)
	if !ok {
		return
	}

	v, found := a.sessions.Get(strconv.FormatInt(rankID, 10))
	if !found {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: fmt.Sprintf("war %d has not been resolved", rankID)})
		return
	}
	s := v.(*warSession)

	s.mu.Lock()
	defer s.mu.Unlock()

	ws := s.cache.Side(side)
	item, found := ws.Item(itemID)
	if !found {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: fmt.Sprintf("item %d is not in the %s cache", itemID, side)})
		return
	}
	if err := item.Select(*req.Index); err != nil {
		badRequest(c, err.Error())
		return
	}
	log.Info().Int64("rank_id", rankID).Str("side", string(side)).Int64("item_id", itemID).Int("index", *req.Index).Msg("Listing reselected")

	c.JSON(http.StatusOK, sideQuote(ws, policy))
}

// ExportWarCache renders one side's quote in an export format
// @Summary Export a ranked war cache quote
// @Tags wars
// @Produce text/csv,text/html,application/json,application/octet-stream
// @Param rankId path int true "Ranked war id"
// @Param side query string false "Faction side" Enums(winner, loser) default(winner)
// @Param format query string false "Export format" Enums(csv, html, xlsx, json) default(html)
// @Param save query bool false "Also save the export to storage"
// @Param owner query string false "Apply this owner's saved preferences"
// @Param discount query int false "Absolute discount per cache" minimum(0)
// @Param margin query number false "Margin fraction" minimum(0) maximum(1)
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse "Upstream failure"
// @Router /api/wars/{rankId}/cache/export [get]
func (a *API) ExportWarCache(c *gin.Context) {
	rankID, ok := paramInt(c, "rankId")
	if !ok {
		return
	}
	side, err := pipeline.ParseSide(c.DefaultQuery("side", string(pipeline.SideWinner)))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	format, err := export.ParseFormat(c.DefaultQuery("format", string(export.FormatHTML)))
	if err != nil || format == export.FormatBBCode {
		badRequest(c, "format must be csv, html, xlsx or json")
		return
	}
	var save bool
	if !queryBool(c, "save", &save) {
		return
	}
	policy, ok := a.cachePolicy(c)
	if !ok {
		return
	}

	s, err := a.session(c, rankID, false)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	s.mu.Lock()
	ws := s.cache.Side(side)
	err = export.WriteCache(&buf, format, export.SideHeader(ws), ws.Quote(policy))
	s.mu.Unlock()
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("cache-%d-%s.%s", rankID, side, format.Extension())
	meta := &storage.Metadata{Kind: "cache", RankID: rankID, Side: string(side)}
	a.sendExport(c, format, filename, buf.Bytes(), save, meta)
}
