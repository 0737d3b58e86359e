package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scolli03/rwmarket/internal/database"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string `json:"status"`
	Database      string `json:"database"`
	DBConnections int32  `json:"dbConnections,omitempty"`
	PriceCache    string `json:"priceCache,omitempty"`
	Sessions      int    `json:"sessions"`
}

// HealthCheck handles the health check endpoint
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (a *API) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:     "ok",
		PriceCache: a.deps.PriceCache,
		Sessions:   a.sessions.ItemCount(),
	}

	switch {
	case database.Pool() != nil:
		if err := database.Status(c.Request.Context()); err != nil {
			response.Status = "degraded"
			response.Database = "disconnected"
			c.JSON(http.StatusServiceUnavailable, response)
			return
		}
		response.Database = "connected"
		if stats := database.Stats(); stats != nil {
			response.DBConnections = stats.TotalConns()
		}
	case a.deps.Prefs != nil:
		response.Database = "local"
	default:
		response.Database = "not configured"
	}

	c.JSON(http.StatusOK, response)
}
