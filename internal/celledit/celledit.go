// Package celledit owns the roster cell editing state machine. The editing
// state is an explicit value passed in and out of every transition, so the
// single-active-cell invariant can be asserted without a display surface.
package celledit

import (
	"context"
	"errors"
	"strings"

	"github.com/girrex/roster-web/internal/girrex"
	"github.com/girrex/roster-web/internal/grid"
	"github.com/girrex/roster-web/internal/models"
)

var ErrNotEditable = errors.New("celledit: cell is not editable")

type CellRef struct {
	AgentID int64  `json:"agent_id"`
	DateISO string `json:"date_iso"`
}

// State carries the one mutual-exclusion rule of the whole grid: at most one
// cell is in edit mode at a time. The zero value means every cell is in view
// mode.
type State struct {
	Active *CellRef `json:"active,omitempty"`
}

// Activate moves ref into edit mode. Any other active cell is collapsed back
// to view mode first and returned so the caller can repaint it; selects
// commit on change, so collapsing discards nothing that was saved.
func Activate(state State, ref CellRef, snap models.MonthSnapshot) (State, *CellRef, error) {
	if !grid.Editable(snap, ref.AgentID, ref.DateISO) {
		return state, nil, ErrNotEditable
	}
	if state.Active != nil && *state.Active == ref {
		return state, nil, nil
	}
	collapsed := state.Active
	return State{Active: &ref}, collapsed, nil
}

// Collapse returns ref to view mode. Collapsing a cell that is not active is
// a no-op, matching an outside click landing after the cell already closed.
func Collapse(state State, ref CellRef) State {
	if state.Active != nil && *state.Active == ref {
		return State{}
	}
	return state
}

// Option is one entry of a position selector. ID 0 is the "none" sentinel.
type Option struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Selected bool   `json:"selected,omitempty"`
}

type Editor struct {
	Ref       CellRef  `json:"ref"`
	Morning   []Option `json:"morning"`
	Afternoon []Option `json:"afternoon"`
}

// BuildEditor populates both selectors from the current position list. The
// afternoon selector pre-selects the morning value when the cell has no
// explicit afternoon assignment.
func BuildEditor(snap models.MonthSnapshot, ref CellRef) Editor {
	tour, _ := snap.Tour(ref.AgentID, ref.DateISO)
	morningID := tour.MorningID
	afternoonID := tour.AfternoonID
	if afternoonID == nil {
		afternoonID = morningID
	}
	return Editor{
		Ref:       ref,
		Morning:   buildOptions(snap.Positions, morningID),
		Afternoon: buildOptions(snap.Positions, afternoonID),
	}
}

func buildOptions(positions []models.DutyPosition, selected *int64) []Option {
	opts := make([]Option, 0, len(positions)+1)
	opts = append(opts, Option{ID: 0, Name: "---", Selected: selected == nil})
	for _, p := range positions {
		opts = append(opts, Option{
			ID:       p.ID,
			Name:     p.Name,
			Selected: selected != nil && *selected == p.ID,
		})
	}
	return opts
}

type Selection struct {
	MorningID   *int64 `json:"morning_id"`
	AfternoonID *int64 `json:"afternoon_id"`
}

// Normalize applies the afternoon-defaults-to-morning rule before a save: an
// empty afternoon with a non-empty morning copies the morning value.
func Normalize(sel Selection) Selection {
	if sel.AfternoonID == nil && sel.MorningID != nil {
		sel.AfternoonID = sel.MorningID
	}
	return sel
}

// CellPatch is the optimistic repaint for a saved cell. On SaveError the
// text has already been applied and is deliberately not rolled back; the
// error flag is the only reconciliation.
type CellPatch struct {
	Ref       CellRef `json:"ref"`
	Morning   string  `json:"morning"`
	Afternoon string  `json:"afternoon"`
	Color     string  `json:"color,omitempty"`
	SaveError bool    `json:"save_error,omitempty"`
}

// Commit normalizes the selection, posts the update, and returns the next
// state with the repaint patch. A successful save collapses the cell back to
// view mode; a failed one keeps it active and flags the patch. There is no
// retry and no guard against two rapid commits to the same cell racing.
func Commit(ctx context.Context, client girrex.Client, state State, snap models.MonthSnapshot, ref CellRef, sel Selection) (State, CellPatch, error) {
	sel = Normalize(sel)

	patch := CellPatch{Ref: ref}
	if sel.MorningID != nil {
		if pos, ok := snap.Position(*sel.MorningID); ok {
			patch.Morning = pos.Name
			if pos.HasColor() {
				patch.Color = pos.Color
			}
		}
	}
	if sel.AfternoonID != nil {
		if pos, ok := snap.Position(*sel.AfternoonID); ok {
			patch.Afternoon = pos.Name
		}
	}

	err := client.UpdateTour(ctx, girrex.TourUpdate{
		AgentID:     ref.AgentID,
		DateISO:     ref.DateISO,
		MorningID:   sel.MorningID,
		AfternoonID: sel.AfternoonID,
	})
	if err != nil {
		patch.SaveError = true
		return state, patch, err
	}
	return Collapse(state, ref), patch, nil
}

// SaveComment writes the cell's free-text comment; an empty string deletes
// it. The returned indicator follows the server's comment_exists verdict, not
// the local string: the server decides whether whitespace counts.
func SaveComment(ctx context.Context, client girrex.Client, ref CellRef, text string) (bool, error) {
	return client.UpdateComment(ctx, girrex.CommentUpdate{
		AgentID: ref.AgentID,
		DateISO: ref.DateISO,
		Comment: text,
	})
}

// CommentPrefill returns the stored comment for the modal, trimmed the way
// the edit dialog presents it.
func CommentPrefill(snap models.MonthSnapshot, ref CellRef) string {
	tour, _ := snap.Tour(ref.AgentID, ref.DateISO)
	return strings.TrimRight(tour.Comment, "\n")
}
