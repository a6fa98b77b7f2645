package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/girrex/roster-web/internal/timesheet"
)

type timesheetRowView struct {
	AgentID       int64  `json:"agent_id"`
	Trigram       string `json:"trigram"`
	Morning       string `json:"morning"`
	Afternoon     string `json:"afternoon"`
	RosterComment string `json:"roster_comment,omitempty"`
	Arrival       string `json:"arrival"`
	Departure     string `json:"departure"`
	Editable      bool   `json:"editable"`
}

// @Summary Daily timesheet
// @Tags timesheet
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/timesheet/{centre}/{date} [get]
func (h *Handler) TimesheetGet(c *gin.Context) {
	centreID, ok := pathID(c, "centre")
	if !ok {
		return
	}
	dateISO, ok := pathDate(c)
	if !ok {
		return
	}

	day, err := h.Client.FetchTimesheet(c.Request.Context(), centreID, dateISO)
	if err != nil {
		writeError(c, http.StatusBadGateway, "LOAD_FAILURE", "Failed to load timesheet", err.Error())
		return
	}

	edit := canEdit(c)
	rows := make([]timesheetRowView, 0, len(day.Rows))
	for _, r := range day.Rows {
		rows = append(rows, timesheetRowView{
			AgentID:       r.AgentID,
			Trigram:       r.Trigram,
			Morning:       r.Morning,
			Afternoon:     r.Afternoon,
			RosterComment: r.RosterComment,
			Arrival:       r.Arrival,
			Departure:     r.Departure,
			Editable:      timesheet.RowEditable(edit, day.Closed, r.Category),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"date_iso": day.DateISO,
		"closed":   day.Closed,
		"rows":     rows,
	})
}

type timesheetFieldRequest struct {
	AgentID            int64  `json:"agent_id" validate:"required,gt=0"`
	DateISO            string `json:"date_iso" validate:"required,datetime=2006-01-02"`
	Field              string `json:"field" validate:"required,oneof=heure_arrivee heure_depart"`
	Value              string `json:"value"`
	Arrival            string `json:"arrival"`
	Departure          string `json:"departure"`
	OvernightConfirmed bool   `json:"overnight_confirmed"`
}

// @Summary Save a timesheet field
// @Description An overnight departure is held back until confirmed
// @Tags timesheet
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/timesheet/field [post]
func (h *Handler) TimesheetSaveField(c *gin.Context) {
	var req timesheetFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	result, err := timesheet.SaveField(c.Request.Context(), h.Client, timesheet.FieldSave{
		AgentID:            req.AgentID,
		DateISO:            req.DateISO,
		Field:              req.Field,
		Value:              req.Value,
		Arrival:            req.Arrival,
		Departure:          req.Departure,
		OvernightConfirmed: req.OvernightConfirmed,
	})
	if err != nil {
		h.Logger.Error().Err(err).Int64("agent_id", req.AgentID).Str("date", req.DateISO).Msg("timesheet save failed")
		writeError(c, http.StatusBadGateway, "SAVE_FAILURE", "Failed to save timesheet field", err.Error())
		return
	}
	c.JSON(http.StatusOK, result)
}

// @Summary Reopen a closed day
// @Tags timesheet
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/timesheet/{centre}/{date}/reopen [post]
func (h *Handler) TimesheetReopen(c *gin.Context) {
	centreID, ok := pathID(c, "centre")
	if !ok {
		return
	}
	dateISO, ok := pathDate(c)
	if !ok {
		return
	}
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Confirm {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Reopening requires confirmation", nil)
		return
	}
	if err := timesheet.Reopen(c.Request.Context(), h.Client, centreID, dateISO); err != nil {
		writeError(c, http.StatusBadGateway, "SAVE_FAILURE", "Failed to reopen day", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"invalidates": []string{"page"}})
}

// @Summary Force the edit lock
// @Tags timesheet
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/timesheet/{centre}/force-lock [post]
func (h *Handler) TimesheetForceLock(c *gin.Context) {
	centreID, ok := pathID(c, "centre")
	if !ok {
		return
	}
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Confirm {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Forcing the lock requires confirmation", nil)
		return
	}
	if err := timesheet.ForceLock(c.Request.Context(), h.Client, centreID); err != nil {
		writeError(c, http.StatusBadGateway, "SAVE_FAILURE", "Failed to force lock", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"invalidates": []string{"page"}})
}

type serviceActionRequest struct {
	Action  string `json:"action" validate:"required,oneof=ouvrir cloturer reouvrir"`
	Details string `json:"details"`
	Confirm bool   `json:"confirm"`
}

// @Summary Open, close, or reopen the daily service
// @Description The closing recap is read from the timesheet endpoint beforehand
// @Tags timesheet
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/service/{centre}/manage [post]
func (h *Handler) ServiceManage(c *gin.Context) {
	centreID, ok := pathID(c, "centre")
	if !ok {
		return
	}
	var req serviceActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}
	if !req.Confirm {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Service actions require confirmation", nil)
		return
	}

	message, err := h.Client.ServiceAction(c.Request.Context(), centreID, req.Action, req.Details)
	if err != nil {
		h.Logger.Error().Err(err).Int64("centre_id", centreID).Str("action", req.Action).Msg("service action failed")
		writeError(c, http.StatusBadGateway, "SAVE_FAILURE", "Failed to update the daily service", err.Error())
		return
	}
	// status changes show up everywhere (sidebar, headers), so the whole
	// page is stale after a successful action
	c.JSON(http.StatusOK, gin.H{"message": message, "invalidates": []string{"page"}})
}

// @Summary Mark a fault as resolved
// @Tags faults
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/faults/{id}/resolve [post]
func (h *Handler) FaultResolve(c *gin.Context) {
	faultID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Confirm {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Resolution requires confirmation", nil)
		return
	}
	message, err := h.Client.ResolveFault(c.Request.Context(), faultID)
	if err != nil {
		writeError(c, http.StatusBadGateway, "SAVE_FAILURE", "Failed to resolve fault", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message, "invalidates": []string{"page"}})
}

func pathDate(c *gin.Context) (string, bool) {
	raw := c.Param("date")
	if _, err := time.Parse("2006-01-02", raw); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid date", nil)
		return "", false
	}
	return raw, true
}
