package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/scolli03/rwmarket/docs"
)

// TestSwaggerRouteServesDoc verifies the generated spec is served next to the API routes
func TestSwaggerRouteServesDoc(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewAPI(Deps{}).Register(router)

	assert.NotPanics(t, func() {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "RW Market API")
}
