// Package handlers exposes the market lister and war cache quote over HTTP
// for the in-page overlay.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/scolli03/rwmarket/internal/pipeline"
	"github.com/scolli03/rwmarket/internal/preferences"
	"github.com/scolli03/rwmarket/internal/pricing"
	"github.com/scolli03/rwmarket/internal/storage"
	"github.com/scolli03/rwmarket/internal/types"
)

// DefaultSessionTTL is how long a resolved war cache stays selectable
const DefaultSessionTTL = 30 * time.Minute

// Defaults is the pricing policy used when a request names none
type Defaults struct {
	MarketDiscount float64
	CachePolicy    pricing.CachePolicy
}

// Deps are the collaborators of the API. Prefs and Storage are optional.
type Deps struct {
	Market     *pipeline.Market
	War        *pipeline.War
	Prefs      preferences.Store
	Storage    storage.Storage
	Defaults   Defaults
	SessionTTL time.Duration
	// PriceCache names the price cache backend for /health
	PriceCache string
}

// API holds handler state: resolved war caches and in-flight upstream runs
type API struct {
	deps     Deps
	sessions *cache.Cache
	group    singleflight.Group
}

// NewAPI creates the API
func NewAPI(deps Deps) *API {
	ttl := deps.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	deps.SessionTTL = ttl
	return &API{
		deps:     deps,
		sessions: cache.New(ttl, 2*ttl),
	}
}

// Register mounts all routes. The /api group is wrapped with mw.
func (a *API) Register(r gin.IRouter, mw ...gin.HandlerFunc) {
	r.GET("/health", a.HealthCheck)

	api := r.Group("/api", mw...)
	{
		market := api.Group("/market")
		{
			market.GET("", a.GetMarket)
			market.GET("/export", a.ExportMarket)
		}

		wars := api.Group("/wars/:rankId/cache")
		{
			wars.GET("", a.GetWarCache)
			wars.GET("/export", a.ExportWarCache)
			wars.POST("/:side/items/:itemId/select", a.SelectListing)
		}

		api.GET("/preferences/:owner", a.GetPreferences)
		api.PUT("/preferences/:owner", a.PutPreferences)

		api.GET("/exports", a.ListExports)
		api.GET("/exports/*key", a.GetExport)
	}
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error string `json:"error"`
}

var errNoPrefs = errors.New("preferences store not configured")

// statusFor maps domain errors onto HTTP statuses
func statusFor(err error) int {
	var transport *types.TransportError
	var apiErr *types.APIError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &apiErr), errors.As(err, &transport):
		return http.StatusBadGateway
	case errors.Is(err, pipeline.ErrTooFewFactions), errors.Is(err, pipeline.ErrFactionNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, preferences.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errNoPrefs):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Int("status", status).Msg("Request failed")
	}
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// ownerPrefs loads the preferences named by ?owner=, if any
func (a *API) ownerPrefs(c *gin.Context) (*preferences.Preferences, error) {
	owner := c.Query("owner")
	if owner == "" || a.deps.Prefs == nil {
		return nil, nil
	}
	p, err := a.deps.Prefs.Get(c.Request.Context(), owner)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func queryFloat(c *gin.Context, key string, dst *float64, lo, hi float64) bool {
	s, ok := c.GetQuery(key)
	if !ok || s == "" {
		return true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < lo || v > hi {
		badRequest(c, key+" must be a number in ["+strconv.FormatFloat(lo, 'f', -1, 64)+","+strconv.FormatFloat(hi, 'f', -1, 64)+"]")
		return false
	}
	*dst = v
	return true
}

func queryBool(c *gin.Context, key string, dst *bool) bool {
	s, ok := c.GetQuery(key)
	if !ok || s == "" {
		return true
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		badRequest(c, key+" must be a boolean")
		return false
	}
	*dst = v
	return true
}

func paramInt(c *gin.Context, key string) (int64, bool) {
	v, err := strconv.ParseInt(c.Param(key), 10, 64)
	if err != nil || v <= 0 {
		badRequest(c, key+" must be a positive integer")
		return 0, false
	}
	return v, true
}
