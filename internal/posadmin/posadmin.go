// Package posadmin is the duty-position configuration controller. Instead of
// reloading the page after each mutation, every operation reports which
// aggregates it invalidated and the host decides how to refresh them.
package posadmin

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"github.com/girrex/roster-web/internal/girrex"
	"github.com/girrex/roster-web/internal/models"
)

var (
	// ErrEditInProgress rejects a second concurrent inline edit. All rows
	// collapse back to read mode and the user must re-click; queuing edits
	// is deliberately not supported.
	ErrEditInProgress = errors.New("posadmin: another row is being edited")

	ErrConfirmationRequired = errors.New("posadmin: deletion requires confirmation")
)

type Invalidation uint8

const (
	InvalidateNone Invalidation = iota
	InvalidatePositions
	// InvalidateData covers both the position list and the roster, whose
	// cells resolve names and colors against it.
	InvalidateData
	InvalidatePage
)

func (i Invalidation) Aggregates() []string {
	switch i {
	case InvalidatePositions:
		return []string{"positions"}
	case InvalidateData:
		return []string{"positions", "roster"}
	case InvalidatePage:
		return []string{"page"}
	default:
		return nil
	}
}

// EditState tracks the single row allowed in inline-edit mode. Zero value:
// every row is in read mode.
type EditState struct {
	ActiveRow int64 `json:"active_row,omitempty"`
}

// BeginEdit puts one row into edit mode. If another row is already being
// edited, the whole list collapses and ErrEditInProgress is returned.
func BeginEdit(state EditState, positionID int64) (EditState, error) {
	if state.ActiveRow != 0 && state.ActiveRow != positionID {
		return EditState{}, ErrEditInProgress
	}
	return EditState{ActiveRow: positionID}, nil
}

func EndEdit(state EditState, positionID int64) EditState {
	if state.ActiveRow == positionID {
		return EditState{}
	}
	return state
}

type Controller struct {
	Client   girrex.Client
	Validate *validator.Validate
}

type AddRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Category    models.Category `json:"category" validate:"required,oneof=CONTROLE AUTRES ABSENT"`
	Color       string          `json:"color"`
}

type UpdateRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Category    models.Category `json:"category" validate:"required,oneof=CONTROLE AUTRES ABSENT"`
	Color       string          `json:"color"`
}

// List fetches the position set fresh; the dialog never renders from a cached
// copy.
func (c *Controller) List(ctx context.Context, centreID int64) ([]models.DutyPosition, error) {
	return c.Client.FetchPositions(ctx, centreID)
}

func (c *Controller) Add(ctx context.Context, centreID int64, req AddRequest) (Invalidation, error) {
	if err := c.Validate.Struct(req); err != nil {
		return InvalidateNone, err
	}
	if err := c.Client.AddPosition(ctx, centreID, girrex.PositionFields{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Color:       req.Color,
	}); err != nil {
		return InvalidateNone, err
	}
	return InvalidateData, nil
}

// Update posts the full field set, then invalidates the data aggregates; the
// admin list re-renders from the refetch, not from the submitted values.
func (c *Controller) Update(ctx context.Context, positionID int64, req UpdateRequest) (Invalidation, error) {
	if err := c.Validate.Struct(req); err != nil {
		return InvalidateNone, err
	}
	if err := c.Client.UpdatePosition(ctx, positionID, girrex.PositionFields{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Color:       req.Color,
	}); err != nil {
		return InvalidateNone, err
	}
	return InvalidateData, nil
}

func (c *Controller) Delete(ctx context.Context, positionID int64, confirmed bool) (Invalidation, error) {
	if !confirmed {
		return InvalidateNone, ErrConfirmationRequired
	}
	if err := c.Client.DeletePosition(ctx, positionID); err != nil {
		return InvalidateNone, err
	}
	return InvalidateData, nil
}

// CloseDialog invalidates the whole page: position changes may have changed
// name or color mappings anywhere in the rendered grid.
func (c *Controller) CloseDialog() Invalidation {
	return InvalidatePage
}
