package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/girrex/roster-web/internal/celledit"
	"github.com/girrex/roster-web/internal/grid"
	"github.com/girrex/roster-web/internal/models"
)

// @Summary Rendered month grid
// @Description Loads the month snapshot and projects it into a renderable grid
// @Tags roster
// @Produce json
// @Param centre path int true "Centre ID"
// @Param year path int true "Year"
// @Param month path int true "Month"
// @Param orientation query string false "agents (default) or days"
// @Success 200 {object} map[string]any
// @Failure 502 {object} map[string]any
// @Router /api/roster/{centre}/{year}/{month} [get]
func (h *Handler) GetGrid(c *gin.Context) {
	centreID, year, month, ok := monthParams(c)
	if !ok {
		return
	}

	snap, err := h.Store.Load(c.Request.Context(), centreID, year, month)
	if err != nil {
		writeError(c, http.StatusBadGateway, "LOAD_FAILURE", "Failed to load roster data", err.Error())
		return
	}
	snap.CanEdit = canEdit(c)

	orientation := grid.AgentRows
	if c.Query("orientation") == string(grid.DayRows) {
		orientation = grid.DayRows
	}
	opts := grid.Options{
		Detailed:     queryBool(c, "detailed"),
		HideWeekends: queryBool(c, "hide_weekends"),
	}

	var highlight models.Highlight
	if raw := c.Query("highlight_agent"); raw != "" {
		agentID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid highlight_agent", nil)
			return
		}
		highlight = models.Highlight{
			AgentID: agentID,
			Start:   c.Query("highlight_start"),
			End:     c.Query("highlight_end"),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"grid":      grid.Render(snap, orientation, opts, highlight),
		"positions": snap.Positions,
		"can_edit":  snap.CanEdit,
	})
}

type cellRefBody struct {
	AgentID int64  `json:"agent_id" validate:"required,gt=0"`
	DateISO string `json:"date_iso" validate:"required,datetime=2006-01-02"`
}

func (r cellRefBody) ref() celledit.CellRef {
	return celledit.CellRef{AgentID: r.AgentID, DateISO: r.DateISO}
}

type activateRequest struct {
	State celledit.State `json:"state"`
	Ref   cellRefBody    `json:"ref"`
}

// @Summary Activate cell editing
// @Description Collapses any other active cell and builds the selectors
// @Tags roster
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/roster/{centre}/{year}/{month}/editor [post]
func (h *Handler) ActivateCell(c *gin.Context) {
	centreID, year, month, ok := monthParams(c)
	if !ok {
		return
	}
	var req activateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req.Ref); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	snap, err := h.Store.Load(c.Request.Context(), centreID, year, month)
	if err != nil {
		writeError(c, http.StatusBadGateway, "LOAD_FAILURE", "Failed to load roster data", err.Error())
		return
	}
	snap.CanEdit = canEdit(c)

	state, collapsed, err := celledit.Activate(req.State, req.Ref.ref(), snap)
	if err != nil {
		if errors.Is(err, celledit.ErrNotEditable) {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Cell is not editable", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "UPSTREAM_ERROR", "Activation failed", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state":     state,
		"collapsed": collapsed,
		"editor":    celledit.BuildEditor(snap, req.Ref.ref()),
		"comment":   celledit.CommentPrefill(snap, req.Ref.ref()),
	})
}

type saveCellRequest struct {
	State       celledit.State `json:"state"`
	Ref         cellRefBody    `json:"ref"`
	MorningID   *int64         `json:"morning_id"`
	AfternoonID *int64         `json:"afternoon_id"`
}

// @Summary Save a cell
// @Description Commits both selectors; an empty afternoon copies the morning value
// @Tags roster
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 502 {object} map[string]any
// @Router /api/roster/{centre}/{year}/{month}/cell [post]
func (h *Handler) SaveCell(c *gin.Context) {
	centreID, year, month, ok := monthParams(c)
	if !ok {
		return
	}
	var req saveCellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req.Ref); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	snap, err := h.Store.Load(c.Request.Context(), centreID, year, month)
	if err != nil {
		writeError(c, http.StatusBadGateway, "LOAD_FAILURE", "Failed to load roster data", err.Error())
		return
	}
	snap.CanEdit = canEdit(c)

	sel := celledit.Selection{MorningID: req.MorningID, AfternoonID: req.AfternoonID}
	state, patch, err := celledit.Commit(c.Request.Context(), h.Client, req.State, snap, req.Ref.ref(), sel)
	if err != nil {
		h.Logger.Error().Err(err).Int64("agent_id", req.Ref.AgentID).Str("date", req.Ref.DateISO).Msg("cell save failed")
		// the optimistic patch is kept, flagged, and returned: no rollback
		writeError(c, http.StatusBadGateway, "SAVE_FAILURE", "Failed to save cell", gin.H{"state": state, "patch": patch})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state, "patch": patch})
}

type commentRequest struct {
	AgentID int64  `json:"agent_id" validate:"required,gt=0"`
	DateISO string `json:"date_iso" validate:"required,datetime=2006-01-02"`
	Comment string `json:"comment"`
}

// @Summary Save a cell comment
// @Description Empty comment deletes; the indicator follows the server's comment_exists
// @Tags roster
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/roster/comment [post]
func (h *Handler) SaveComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid payload", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", err.Error())
		return
	}

	ref := celledit.CellRef{AgentID: req.AgentID, DateISO: req.DateISO}
	exists, err := celledit.SaveComment(c.Request.Context(), h.Client, ref, req.Comment)
	if err != nil {
		h.Logger.Error().Err(err).Int64("agent_id", req.AgentID).Str("date", req.DateISO).Msg("comment save failed")
		writeError(c, http.StatusBadGateway, "SAVE_FAILURE", "Failed to save comment", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"comment_exists": exists})
}

type confirmRequest struct {
	Confirm bool `json:"confirm"`
}

// @Summary Validate the month's roster
// @Tags roster
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/roster/{centre}/{year}/{month}/validate [post]
func (h *Handler) ValidateMonth(c *gin.Context) {
	centreID, year, month, ok := monthParams(c)
	if !ok {
		return
	}
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil || !req.Confirm {
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Validation requires confirmation", nil)
		return
	}

	message, err := h.Client.ValidateMonth(c.Request.Context(), centreID, year, month)
	if err != nil {
		writeError(c, http.StatusBadGateway, "SAVE_FAILURE", "Failed to validate roster", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": message})
}

func queryBool(c *gin.Context, name string) bool {
	v := c.Query(name)
	return v == "1" || strings.EqualFold(v, "true")
}
