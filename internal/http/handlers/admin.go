package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/girrex/roster-web/internal/posadmin"
	"github.com/girrex/roster-web/internal/zoneadmin"
)

// @Summary List duty positions
// @Tags positions
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/centres/{centre}/positions [get]
func (h *Handler) PositionsList(c *gin.Context) {
	centreID, ok := pathID(c, "centre")
	if !ok {
		return
	}
	positions, err := h.Positions.List(c.Request.Context(), centreID)
	if err != nil {
		writeError(c, http.StatusBadGateway, "LOAD_FAILURE", "Failed to load positions", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": positions})
}

// @Summary Add a duty position
// @Tags positions
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/centres/{centre}/positions [post]
func (h *Handler) PositionAdd(c *gin.Context) {
	centreID, ok := pathID(c, "centre")
	if !ok {
		return
	}
	var req posadmin.AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payload", err.Error())
		return
	}
	inv, err := h.Positions.Add(c.Request.Context(), centreID, req)
	if err != nil {
		h.adminError(c, err, "Failed to add position")
		return
	}
	c.JSON(http.StatusOK, gin.H{"invalidates": inv.Aggregates()})
}

// @Summary Update a duty position
// @Tags positions
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/positions/{id}/update [post]
func (h *Handler) PositionUpdate(c *gin.Context) {
	positionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req posadmin.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payload", err.Error())
		return
	}
	inv, err := h.Positions.Update(c.Request.Context(), positionID, req)
	if err != nil {
		h.adminError(c, err, "Failed to update position")
		return
	}
	c.JSON(http.StatusOK, gin.H{"invalidates": inv.Aggregates()})
}

// @Summary Delete a duty position
// @Tags positions
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/positions/{id}/delete [post]
func (h *Handler) PositionDelete(c *gin.Context) {
	positionID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payload", err.Error())
		return
	}
	inv, err := h.Positions.Delete(c.Request.Context(), positionID, req.Confirm)
	if err != nil {
		h.adminError(c, err, "Failed to delete position")
		return
	}
	c.JSON(http.StatusOK, gin.H{"invalidates": inv.Aggregates()})
}

type editStateRequest struct {
	State      posadmin.EditState `json:"state"`
	PositionID int64              `json:"position_id" validate:"required,gt=0"`
}

// @Summary Enter inline edit on a position row
// @Description A second concurrent edit collapses all rows and is rejected
// @Tags positions
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 409 {object} map[string]any
// @Router /api/positions/edit-state [post]
func (h *Handler) PositionBeginEdit(c *gin.Context) {
	var req editStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	state, err := posadmin.BeginEdit(req.State, req.PositionID)
	if err != nil {
		// collapsed state goes back so the client repaints all rows read-only
		writeError(c, http.StatusConflict, "EDIT_IN_PROGRESS", "Another row is being edited", gin.H{"state": state})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state})
}

// @Summary Close the position configuration dialog
// @Tags positions
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/centres/{centre}/positions/close [post]
func (h *Handler) PositionsClose(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"invalidates": h.Positions.CloseDialog().Aggregates()})
}

// @Summary List duty zones
// @Tags zones
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/centres/{centre}/zones [get]
func (h *Handler) ZonesList(c *gin.Context) {
	centreID, ok := pathID(c, "centre")
	if !ok {
		return
	}
	zones, err := h.Zones.List(c.Request.Context(), centreID)
	if err != nil {
		writeError(c, http.StatusBadGateway, "LOAD_FAILURE", "Failed to load zones", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": zones})
}

// @Summary Add a duty zone
// @Tags zones
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/centres/{centre}/zones [post]
func (h *Handler) ZoneAdd(c *gin.Context) {
	centreID, ok := pathID(c, "centre")
	if !ok {
		return
	}
	var req zoneadmin.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payload", err.Error())
		return
	}
	inv, err := h.Zones.Add(c.Request.Context(), centreID, req)
	if err != nil {
		h.adminError(c, err, "Failed to add zone")
		return
	}
	c.JSON(http.StatusOK, gin.H{"invalidates": inv.Aggregates()})
}

// @Summary Update a duty zone
// @Tags zones
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/zones/{id}/update [post]
func (h *Handler) ZoneUpdate(c *gin.Context) {
	zoneID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req zoneadmin.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payload", err.Error())
		return
	}
	inv, err := h.Zones.Update(c.Request.Context(), zoneID, req)
	if err != nil {
		h.adminError(c, err, "Failed to update zone")
		return
	}
	c.JSON(http.StatusOK, gin.H{"invalidates": inv.Aggregates()})
}

// @Summary Delete a duty zone
// @Tags zones
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/zones/{id}/delete [post]
func (h *Handler) ZoneDelete(c *gin.Context) {
	zoneID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payload", err.Error())
		return
	}
	inv, err := h.Zones.Delete(c.Request.Context(), zoneID, req.Confirm)
	if err != nil {
		h.adminError(c, err, "Failed to delete zone")
		return
	}
	c.JSON(http.StatusOK, gin.H{"invalidates": inv.Aggregates()})
}

func (h *Handler) adminError(c *gin.Context, err error, message string) {
	var verr validator.ValidationErrors
	switch {
	case errors.As(err, &verr):
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
	case errors.Is(err, posadmin.ErrConfirmationRequired), errors.Is(err, zoneadmin.ErrConfirmationRequired):
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Deletion requires confirmation", nil)
	default:
		h.Logger.Error().Err(err).Msg("admin mutation failed")
		writeError(c, http.StatusBadGateway, "SAVE_FAILURE", message, err.Error())
	}
}
