// Package girrex is the typed client for the GIRREX JSON API. All roster,
// position, zone, timesheet, and fault data is owned by the upstream
// application; this package only moves it across the wire and validates the
// payload shapes at the boundary.
package girrex

import (
	"context"
	"errors"

	"github.com/girrex/roster-web/internal/models"
)

var (
	// ErrBadPayload marks an upstream response that decoded but does not
	// match the documented shape. Callers treat it as a load failure.
	ErrBadPayload = errors.New("girrex: malformed payload")
)

// PlanningPayload is the month roster as served by the upstream API. Edit
// permission is not part of it; the gateway grants that per request.
type PlanningPayload struct {
	Agents []models.Agent
	Days   []models.Day
	Tours  map[string]models.Tour
}

type TourUpdate struct {
	AgentID     int64
	DateISO     string
	MorningID   *int64
	AfternoonID *int64
}

type CommentUpdate struct {
	AgentID int64
	DateISO string
	Comment string
}

type PositionFields struct {
	Name        string
	Description string
	Category    models.Category
	Color       string
}

type ZoneFields struct {
	Name        string
	Description string
}

type TimesheetFieldUpdate struct {
	AgentID int64
	DateISO string
	Field   string
	Value   string
}

type HoursCheck struct {
	AgentID   int64
	DateISO   string
	Arrival   string
	Departure string
	NextDay   bool
}

type Client interface {
	FetchPlanning(ctx context.Context, centreID int64, year, month int) (PlanningPayload, error)
	FetchPositions(ctx context.Context, centreID int64) ([]models.DutyPosition, error)
	UpdateTour(ctx context.Context, upd TourUpdate) error
	UpdateComment(ctx context.Context, upd CommentUpdate) (commentExists bool, err error)
	AddPosition(ctx context.Context, centreID int64, fields PositionFields) error
	UpdatePosition(ctx context.Context, positionID int64, fields PositionFields) error
	DeletePosition(ctx context.Context, positionID int64) error
	ValidateMonth(ctx context.Context, centreID int64, year, month int) (message string, err error)
	ListZones(ctx context.Context, centreID int64) ([]models.Zone, error)
	AddZone(ctx context.Context, centreID int64, fields ZoneFields) error
	UpdateZone(ctx context.Context, zoneID int64, fields ZoneFields) error
	DeleteZone(ctx context.Context, zoneID int64) error
	FetchTimesheet(ctx context.Context, centreID int64, dateISO string) (models.TimesheetDay, error)
	UpdateTimesheetField(ctx context.Context, upd TimesheetFieldUpdate) error
	ValidateTimesheetHours(ctx context.Context, check HoursCheck) (problems []string, err error)
	ReopenDay(ctx context.Context, centreID int64, dateISO string) error
	ForceLock(ctx context.Context, centreID int64) error
	ResolveFault(ctx context.Context, faultID int64) (message string, err error)
	ServiceAction(ctx context.Context, centreID int64, action, details string) (message string, err error)
}
