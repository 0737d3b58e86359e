package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/scolli03/rwmarket/internal/storage"
)

// ListExportsResponse lists saved exports
type ListExportsResponse struct {
	Exports []storage.FileInfo `json:"exports"`
	Total   int                `json:"total"`
}

// ListExports lists saved exports under an optional prefix
// @Summary List saved exports
// @Tags exports
// @Produce json
// @Param prefix query string false "Key prefix" default(exports/)
// @Success 200 {object} ListExportsResponse
// @Failure 503 {object} ErrorResponse "No export storage"
// @Router /api/exports [get]
func (a *API) ListExports(c *gin.Context) {
	if a.deps.Storage == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "export storage not configured"})
		return
	}
	ctx := c.Request.Context()
	keys, err := a.deps.Storage.List(ctx, c.DefaultQuery("prefix", "exports/"))
	if err != nil {
		respondError(c, err)
		return
	}
	resp := ListExportsResponse{Exports: make([]storage.FileInfo, 0, len(keys))}
	for _, key := range keys {
		info, err := a.deps.Storage.GetInfo(ctx, key)
		if err != nil {
			respondError(c, err)
			return
		}
		resp.Exports = append(resp.Exports, *info)
	}
	resp.Total = len(resp.Exports)
	c.JSON(http.StatusOK, resp)
}

// GetExport returns a saved export
// @Summary Download a saved export
// @Tags exports
// @Produce application/octet-stream
// @Param key path string true "Export key"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Router /api/exports/{key} [get]
func (a *API) GetExport(c *gin.Context) {
	if a.deps.Storage == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "export storage not configured"})
		return
	}
	ctx := c.Request.Context()
	key := strings.TrimPrefix(c.Param("key"), "/")

	info, err := a.deps.Storage.GetInfo(ctx, key)
	if err != nil {
		respondError(c, err)
		return
	}
	body, err := a.deps.Storage.Get(ctx, key)
	if err != nil {
		respondError(c, err)
		return
	}
	contentType := "application/octet-stream"
	if info.Metadata != nil && info.Metadata.ContentType != "" {
		contentType = info.Metadata.ContentType
	}
	c.Data(http.StatusOK, contentType, body)
}
