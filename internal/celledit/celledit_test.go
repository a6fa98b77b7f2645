package celledit

import (
	"context"
	"errors"
	"testing"

	"github.com/girrex/roster-web/internal/girrex"
	"github.com/girrex/roster-web/internal/models"
)

type stubClient struct {
	girrex.Client
	updateTourErr error
	lastUpdate    *girrex.TourUpdate
	commentExists bool
	lastComment   *girrex.CommentUpdate
}

func (s *stubClient) UpdateTour(ctx context.Context, upd girrex.TourUpdate) error {
	s.lastUpdate = &upd
	return s.updateTourErr
}

func (s *stubClient) UpdateComment(ctx context.Context, upd girrex.CommentUpdate) (bool, error) {
	s.lastComment = &upd
	return s.commentExists, nil
}

func ptr(id int64) *int64 { return &id }

func testSnapshot() models.MonthSnapshot {
	return models.MonthSnapshot{
		Agents: []models.Agent{{ID: 1, Trigram: "ABC"}, {ID: 2, Trigram: "DEF"}},
		Days: []models.Day{
			{DateISO: "2024-03-01", Weekday: 4},
			{DateISO: "2024-03-02", Weekday: 5},
		},
		Tours: map[string]models.Tour{
			models.Key(1, "2024-03-01"): {MorningID: ptr(10), Comment: "late arrival"},
		},
		Positions: []models.DutyPosition{
			{ID: 10, Name: "TWR", Category: models.CategoryControl, Color: "#ff0000"},
			{ID: 11, Name: "APP", Category: models.CategoryControl, Color: models.NoColor},
		},
		CanEdit: true,
	}
}

func TestActivateCollapsesPreviousCell(t *testing.T) {
	snap := testSnapshot()
	a := CellRef{AgentID: 1, DateISO: "2024-03-01"}
	b := CellRef{AgentID: 2, DateISO: "2024-03-02"}

	state, collapsed, err := Activate(State{}, a, snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if collapsed != nil {
		t.Fatalf("nothing should collapse on first activation")
	}
	if state.Active == nil || *state.Active != a {
		t.Fatalf("expected cell A active, got %+v", state.Active)
	}

	state, collapsed, err = Activate(state, b, snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if collapsed == nil || *collapsed != a {
		t.Fatalf("expected cell A collapsed, got %+v", collapsed)
	}
	if state.Active == nil || *state.Active != b {
		t.Fatalf("expected cell B active, got %+v", state.Active)
	}
}

func TestActivateSameCellIsNoOp(t *testing.T) {
	snap := testSnapshot()
	a := CellRef{AgentID: 1, DateISO: "2024-03-01"}

	state, _, err := Activate(State{}, a, snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	next, collapsed, err := Activate(state, a, snap)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if collapsed != nil {
		t.Fatalf("re-activating the active cell must not collapse it")
	}
	if next.Active == nil || *next.Active != a {
		t.Fatalf("expected cell A still active")
	}
}

func TestActivateRejectsNonEditable(t *testing.T) {
	snap := testSnapshot()
	snap.CanEdit = false

	_, _, err := Activate(State{}, CellRef{AgentID: 1, DateISO: "2024-03-01"}, snap)
	if !errors.Is(err, ErrNotEditable) {
		t.Fatalf("expected ErrNotEditable, got %v", err)
	}
}

func TestBuildEditorAfternoonDefaultsToMorning(t *testing.T) {
	snap := testSnapshot()
	editor := BuildEditor(snap, CellRef{AgentID: 1, DateISO: "2024-03-01"})

	if len(editor.Morning) != 3 || editor.Morning[0].ID != 0 {
		t.Fatalf("expected none sentinel plus 2 positions, got %+v", editor.Morning)
	}
	if !editor.Morning[1].Selected {
		t.Fatalf("expected morning TWR pre-selected: %+v", editor.Morning)
	}
	// no explicit afternoon stored: the selector copies the morning value
	if !editor.Afternoon[1].Selected {
		t.Fatalf("expected afternoon to default to morning: %+v", editor.Afternoon)
	}
}

func TestBuildEditorEmptyCellSelectsNone(t *testing.T) {
	snap := testSnapshot()
	editor := BuildEditor(snap, CellRef{AgentID: 2, DateISO: "2024-03-02"})
	if !editor.Morning[0].Selected || !editor.Afternoon[0].Selected {
		t.Fatalf("expected none sentinel selected on empty cell")
	}
}

func TestNormalizeCopiesMorningToAfternoon(t *testing.T) {
	sel := Normalize(Selection{MorningID: ptr(10)})
	if sel.AfternoonID == nil || *sel.AfternoonID != 10 {
		t.Fatalf("expected afternoon to copy morning, got %+v", sel.AfternoonID)
	}

	sel = Normalize(Selection{MorningID: ptr(10), AfternoonID: ptr(11)})
	if *sel.AfternoonID != 11 {
		t.Fatalf("explicit afternoon must be kept, got %d", *sel.AfternoonID)
	}

	sel = Normalize(Selection{})
	if sel.AfternoonID != nil {
		t.Fatalf("empty selection must stay empty")
	}
}

func TestCommitSendsNormalizedSelection(t *testing.T) {
	snap := testSnapshot()
	client := &stubClient{}
	ref := CellRef{AgentID: 1, DateISO: "2024-03-01"}
	state := State{Active: &ref}

	next, patch, err := Commit(context.Background(), client, state, snap, ref, Selection{MorningID: ptr(10)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.lastUpdate == nil {
		t.Fatalf("expected an update request")
	}
	if client.lastUpdate.AfternoonID == nil || *client.lastUpdate.AfternoonID != 10 {
		t.Fatalf("expected afternoon to copy morning in the request, got %+v", client.lastUpdate)
	}
	if patch.Morning != "TWR" || patch.Afternoon != "TWR" || patch.Color != "#ff0000" {
		t.Fatalf("unexpected patch: %+v", patch)
	}
	if next.Active != nil {
		t.Fatalf("successful save must collapse the cell")
	}
}

func TestCommitFailureKeepsOptimisticPatch(t *testing.T) {
	snap := testSnapshot()
	client := &stubClient{updateTourErr: errors.New("boom")}
	ref := CellRef{AgentID: 1, DateISO: "2024-03-01"}
	state := State{Active: &ref}

	next, patch, err := Commit(context.Background(), client, state, snap, ref, Selection{MorningID: ptr(11)})
	if err == nil {
		t.Fatalf("expected error")
	}
	if !patch.SaveError {
		t.Fatalf("expected patch flagged with SaveError")
	}
	if patch.Morning != "APP" {
		t.Fatalf("optimistic text must be kept, got %q", patch.Morning)
	}
	if patch.Color != "" {
		t.Fatalf("no-color position must not set a background")
	}
	if next.Active == nil || *next.Active != ref {
		t.Fatalf("failed save must keep the cell active")
	}
}

func TestSaveCommentFollowsServerVerdict(t *testing.T) {
	// the server may decide a whitespace-only comment does not exist, so
	// the indicator follows comment_exists, not the local string
	client := &stubClient{commentExists: false}
	ref := CellRef{AgentID: 1, DateISO: "2024-03-01"}

	exists, err := SaveComment(context.Background(), client, ref, "   ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exists {
		t.Fatalf("indicator must follow the server verdict")
	}
	if client.lastComment == nil || client.lastComment.Comment != "   " {
		t.Fatalf("expected comment forwarded verbatim, got %+v", client.lastComment)
	}

	client.commentExists = true
	exists, err = SaveComment(context.Background(), client, ref, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !exists {
		t.Fatalf("indicator must follow the server verdict even for empty strings")
	}
}

func TestCollapse(t *testing.T) {
	a := CellRef{AgentID: 1, DateISO: "2024-03-01"}
	b := CellRef{AgentID: 2, DateISO: "2024-03-02"}

	state := Collapse(State{Active: &a}, a)
	if state.Active != nil {
		t.Fatalf("expected collapsed state")
	}
	state = Collapse(State{Active: &a}, b)
	if state.Active == nil || *state.Active != a {
		t.Fatalf("collapsing an inactive cell must not touch the active one")
	}
}
