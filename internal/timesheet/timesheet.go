// Package timesheet carries the daily timesheet rules: which rows accept
// input, and when an arrival/departure pair needs an explicit overnight
// confirmation before it is saved.
package timesheet

import (
	"context"

	"github.com/girrex/roster-web/internal/girrex"
	"github.com/girrex/roster-web/internal/models"
)

// RowEditable: a closed day is read-only everywhere, and non-working agents
// stay read-only even on an open, editable day.
func RowEditable(canEdit, closed bool, category models.Category) bool {
	return canEdit && !closed && category != models.CategoryNonWork
}

// Overnight reports a departure earlier than the arrival, which is either a
// typo or a night shift ending the next day. Times are "HH:MM" strings, so
// lexicographic order is time order.
func Overnight(arrival, departure string) bool {
	return arrival != "" && departure != "" && departure < arrival
}

type FieldSave struct {
	AgentID int64
	DateISO string
	Field   string
	Value   string

	// Row values after the edit, for the hour validation pass.
	Arrival   string
	Departure string

	// OvernightConfirmed means the user accepted the night-shift dialog;
	// without it an overnight departure is held back, no request issued.
	OvernightConfirmed bool
}

type SaveResult struct {
	// NeedsConfirmation asks the caller to run the overnight dialog and
	// resubmit with OvernightConfirmed set.
	NeedsConfirmation bool `json:"needs_confirmation,omitempty"`
	// Problems feed the row's warning indicator; empty hides it.
	Problems []string `json:"problems,omitempty"`
}

func SaveField(ctx context.Context, client girrex.Client, s FieldSave) (SaveResult, error) {
	if s.Field == "heure_depart" && Overnight(s.Arrival, s.Departure) && !s.OvernightConfirmed {
		return SaveResult{NeedsConfirmation: true}, nil
	}

	err := client.UpdateTimesheetField(ctx, girrex.TimesheetFieldUpdate{
		AgentID: s.AgentID,
		DateISO: s.DateISO,
		Field:   s.Field,
		Value:   s.Value,
	})
	if err != nil {
		return SaveResult{}, err
	}

	if s.Arrival == "" || s.Departure == "" {
		return SaveResult{}, nil
	}
	problems, err := client.ValidateTimesheetHours(ctx, girrex.HoursCheck{
		AgentID:   s.AgentID,
		DateISO:   s.DateISO,
		Arrival:   s.Arrival,
		Departure: s.Departure,
		NextDay:   s.OvernightConfirmed,
	})
	if err != nil {
		// The save itself went through; a failed validation pass only
		// loses the warning indicator.
		return SaveResult{}, err
	}
	return SaveResult{Problems: problems}, nil
}

func Reopen(ctx context.Context, client girrex.Client, centreID int64, dateISO string) error {
	return client.ReopenDay(ctx, centreID, dateISO)
}

func ForceLock(ctx context.Context, client girrex.Client, centreID int64) error {
	return client.ForceLock(ctx, centreID)
}
