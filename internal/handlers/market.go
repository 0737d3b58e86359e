package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/scolli03/rwmarket/internal/export"
	"github.com/scolli03/rwmarket/internal/pipeline"
	"github.com/scolli03/rwmarket/internal/sorting"
	"github.com/scolli03/rwmarket/internal/storage"
	"github.com/scolli03/rwmarket/internal/types"
)

// MarketResponse is the classified, ordered and priced market view
type MarketResponse struct {
	Weapons   []types.PricedItem `json:"weapons"`
	Armor     []types.PricedItem `json:"armor"`
	Listings  int                `json:"listings"`
	Skipped   int                `json:"skipped"`
	ArmorMode sorting.ArmorMode  `json:"armorMode"`
	Discount  float64            `json:"discount"`
	FetchedAt time.Time          `json:"fetchedAt"`
}

// marketOptions resolves defaults, then owner preferences, then query overrides
func (a *API) marketOptions(c *gin.Context) (export.Options, bool) {
	opts := export.Options{Discount: a.deps.Defaults.MarketDiscount, ArmorMode: sorting.ArmorByType}
	prefs, err := a.ownerPrefs(c)
	if err != nil {
		respondError(c, err)
		return opts, false
	}
	if prefs != nil {
		opts.Discount = prefs.MarketDiscount
		opts.IncludeListed = prefs.IncludeListed
		opts.ArmorMode = prefs.ArmorSort
	}
	if !queryFloat(c, "discount", &opts.Discount, 0, 1) || !queryBool(c, "includeListed", &opts.IncludeListed) {
		return opts, false
	}
	if s := c.Query("armorSort"); s != "" {
		if s != string(sorting.ArmorByType) && s != string(sorting.ArmorBySet) {
			badRequest(c, "armorSort must be type or set")
			return opts, false
		}
		opts.ArmorMode = sorting.ParseArmorMode(s)
	}
	return opts, true
}

// runMarket collapses concurrent identical market runs into one upstream fetch
func (a *API) runMarket(c *gin.Context, mode sorting.ArmorMode) (*pipeline.MarketResult, error) {
	v, err, _ := a.group.Do("market:"+string(mode), func() (any, error) {
		return a.deps.Market.Run(c.Request.Context(), mode)
	})
	if err != nil {
		return nil, err
	}
	return v.(*pipeline.MarketResult), nil
}

// GetMarket fetches the item market and returns the ranked war items
// @Summary List ranked war market items
// @Description Fetches every item market page, keeps ranked war weapons and armor, orders and prices them
// @Tags market
// @Produce json
// @Param owner query string false "Apply this owner's saved preferences"
// @Param discount query number false "Market discount fraction" minimum(0) maximum(1)
// @Param armorSort query string false "Armor order" Enums(type, set)
// @Param includeListed query bool false "Include the listed price column in exports"
// @Success 200 {object} MarketResponse
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse "Upstream failure"
// @Router /api/market [get]
func (a *API) GetMarket(c *gin.Context) {
	opts, ok := a.marketOptions(c)
	if !ok {
		return
	}
	res, err := a.runMarket(c, opts.ArmorMode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MarketResponse{
		Weapons:   pipeline.PriceItems(res.Weapons, opts.Discount),
		Armor:     pipeline.PriceItems(res.Armor, opts.Discount),
		Listings:  res.Listings,
		Skipped:   res.Skipped,
		ArmorMode: res.ArmorMode,
		Discount:  opts.Discount,
		FetchedAt: res.FetchedAt,
	})
}

// ExportMarket renders the market view in an export format
// @Summary Export ranked war market items
// @Tags market
// @Produce text/csv,text/html,text/plain,application/json,application/octet-stream
// @Param format query string false "Export format" Enums(csv, html, bbcode, xlsx, json) default(html)
// @Param table query string false "Which table" Enums(weapons, armor) default(weapons)
// @Param save query bool false "Also save the export to storage"
// @Param owner query string false "Apply this owner's saved preferences"
// @Param discount query number false "Market discount fraction" minimum(0) maximum(1)
// @Param armorSort query string false "Armor order" Enums(type, set)
// @Param includeListed query bool false "Include the listed price column"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse "Upstream failure"
// @Router /api/market/export [get]
func (a *API) ExportMarket(c *gin.Context) {
	format, err := export.ParseFormat(c.DefaultQuery("format", string(export.FormatHTML)))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	table, err := export.ParseTable(c.Query("table"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	var save bool
	if !queryBool(c, "save", &save) {
		return
	}
	opts, ok := a.marketOptions(c)
	if !ok {
		return
	}

	res, err := a.runMarket(c, opts.ArmorMode)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	weapons := pipeline.PriceItems(res.Weapons, opts.Discount)
	armor := pipeline.PriceItems(res.Armor, opts.Discount)
	if err := export.WriteMarket(&buf, format, table, weapons, armor, opts); err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("market-%s.%s", table, format.Extension())
	meta := &storage.Metadata{Kind: "market", Custom: map[string]string{"table": string(table)}}
	a.sendExport(c, format, filename, buf.Bytes(), save, meta)
}

// sendExport writes an export, saving a copy to storage first when asked
func (a *API) sendExport(c *gin.Context, format export.Format, filename string, body []byte, save bool, meta *storage.Metadata) {
	if save {
		if a.deps.Storage == nil {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "export storage not configured"})
			return
		}
		meta.ContentType = format.ContentType()
		meta.Format = string(format)
		meta.CreatedAt = time.Now().UTC()
		key := storage.BuildExportKey(meta.Kind, meta.CreatedAt, format.Extension())
		if err := a.deps.Storage.Put(c.Request.Context(), key, body, meta); err != nil {
			respondError(c, err)
			return
		}
		c.Header("X-Export-Key", key)
	}
	if format == export.FormatXLSX || format == export.FormatCSV {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	}
	c.Data(http.StatusOK, format.ContentType(), body)
}
