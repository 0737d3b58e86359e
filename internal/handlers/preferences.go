package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetPreferences returns an owner's saved preferences, or the defaults
// @Summary Get preferences
// @Tags preferences
// @Produce json
// @Param owner path string true "Preference owner"
// @Success 200 {object} preferences.Preferences
// @Failure 503 {object} ErrorResponse "No preferences store"
// @Router /api/preferences/{owner} [get]
func (a *API) GetPreferences(c *gin.Context) {
	if a.deps.Prefs == nil {
		respondError(c, errNoPrefs)
		return
	}
	p, err := a.deps.Prefs.Get(c.Request.Context(), c.Param("owner"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// PutPreferences replaces an owner's preferences
// @Summary Save preferences
// @Tags preferences
// @Accept json
// @Produce json
// @Param owner path string true "Preference owner"
// @Param request body preferences.Preferences true "Preferences"
// @Success 200 {object} preferences.Preferences
// @Failure 400 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse "No preferences store"
// @Router /api/preferences/{owner} [put]
func (a *API) PutPreferences(c *gin.Context) {
	if a.deps.Prefs == nil {
		respondError(c, errNoPrefs)
		return
	}
	owner := c.Param("owner")

	// start from what is saved so partial bodies keep the other fields
	p, err := a.deps.Prefs.Get(c.Request.Context(), owner)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err.Error())
		return
	}
	p.Owner = owner

	saved, err := a.deps.Prefs.Put(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}
