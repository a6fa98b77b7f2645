package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/girrex/roster-web/internal/girrex"
	"github.com/girrex/roster-web/internal/http/middleware"
	"github.com/girrex/roster-web/internal/posadmin"
	"github.com/girrex/roster-web/internal/roster"
	"github.com/girrex/roster-web/internal/zoneadmin"
)

type Handler struct {
	Store     *roster.Store
	Client    girrex.Client
	Positions *posadmin.Controller
	Zones     *zoneadmin.Controller
	Validator *validator.Validate
	Logger    zerolog.Logger

	// HealthCentre is the centre probed by the health check.
	HealthCentre int64
}

// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	centre := h.HealthCentre
	if centre == 0 {
		centre = 1
	}
	if _, err := h.Client.FetchPositions(ctx, centre); err != nil {
		writeError(c, http.StatusServiceUnavailable, "UPSTREAM_ERROR", "GIRREX API unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

func canEdit(c *gin.Context) bool {
	return c.GetBool(middleware.CanEditKey)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid "+name, nil)
		return 0, false
	}
	return id, true
}

func monthParams(c *gin.Context) (centreID int64, year, month int, ok bool) {
	centreID, ok = pathID(c, "centre")
	if !ok {
		return 0, 0, 0, false
	}
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < 2000 || year > 2100 {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid year", nil)
		return 0, 0, 0, false
	}
	month, err = strconv.Atoi(c.Param("month"))
	if err != nil || month < 1 || month > 12 {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid month", nil)
		return 0, 0, 0, false
	}
	return centreID, year, month, true
}
