package models

import (
	"strconv"
	"time"
)

// NoColor is the "no background" sentinel used for positions without a
// display color.
const NoColor = "#ffffff"

type Category string

const (
	CategoryControl Category = "CONTROLE"
	CategoryOther   Category = "AUTRES"
	CategoryAbsent  Category = "ABSENT"

	// CategoryNonWork only appears in timesheet rows; it marks agents who
	// are planned but not working that day.
	CategoryNonWork Category = "NON_TRAVAIL"
)

type Agent struct {
	ID        int64  `json:"id"`
	Trigram   string `json:"trigram,omitempty"`
	Reference string `json:"reference,omitempty"`
}

func (a Agent) DisplayCode() string {
	if a.Trigram != "" {
		return a.Trigram
	}
	return a.Reference
}

type Day struct {
	DateISO    string `json:"date_iso"`
	Weekday    int    `json:"weekday"`
	ShortLabel string `json:"short_label"`
	Num        int    `json:"num"`
}

// Weekend trusts the server-supplied Monday-0 weekday index.
func (d Day) Weekend() bool {
	return d.Weekday >= 5
}

type DutyPosition struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Color       string   `json:"color"`
}

func (p DutyPosition) HasColor() bool {
	return p.Color != "" && p.Color != NoColor
}

// Tour is one agent's assignment for one calendar day. Position references
// are weak: they may dangle after a position deletion, in which case the
// cell renders blank.
type Tour struct {
	MorningID     *int64 `json:"morning_id"`
	AfternoonID   *int64 `json:"afternoon_id"`
	Comment       string `json:"comment,omitempty"`
	MorningName   string `json:"morning_name,omitempty"`
	AfternoonName string `json:"afternoon_name,omitempty"`
}

// MonthSnapshot is a full month of roster data for one centre, loaded fresh
// from the upstream API on every request. Tours are keyed by Key(agent, date)
// so both grid orientations resolve the same cell.
type MonthSnapshot struct {
	CentreID  int64           `json:"centre_id"`
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	Agents    []Agent         `json:"agents"`
	Days      []Day           `json:"days"`
	Tours     map[string]Tour `json:"tours"`
	Positions []DutyPosition  `json:"positions"`
	CanEdit   bool            `json:"can_edit"`
}

func Key(agentID int64, dateISO string) string {
	return strconv.FormatInt(agentID, 10) + "|" + dateISO
}

func (s *MonthSnapshot) Tour(agentID int64, dateISO string) (Tour, bool) {
	t, ok := s.Tours[Key(agentID, dateISO)]
	return t, ok
}

func (s *MonthSnapshot) Position(id int64) (DutyPosition, bool) {
	for _, p := range s.Positions {
		if p.ID == id {
			return p, true
		}
	}
	return DutyPosition{}, false
}

// Highlight marks a date range on a single agent's cells, supplied by the
// host page (e.g. a sick-leave period awaiting processing).
type Highlight struct {
	AgentID int64  `json:"agent_id"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// Contains compares at midnight granularity, both bounds inclusive.
func (h Highlight) Contains(agentID int64, dateISO string) bool {
	if h.AgentID == 0 || agentID != h.AgentID {
		return false
	}
	cell, err := time.Parse("2006-01-02", dateISO)
	if err != nil {
		return false
	}
	start, err := time.Parse("2006-01-02", h.Start)
	if err != nil {
		return false
	}
	end, err := time.Parse("2006-01-02", h.End)
	if err != nil {
		return false
	}
	return !cell.Before(start) && !cell.After(end)
}

type Zone struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TimesheetRow is one agent's line in the daily timesheet, pre-filled from
// the last validated roster version.
type TimesheetRow struct {
	AgentID       int64    `json:"agent_id"`
	Trigram       string   `json:"trigram"`
	Morning       string   `json:"morning"`
	Afternoon     string   `json:"afternoon"`
	RosterComment string   `json:"roster_comment,omitempty"`
	Arrival       string   `json:"arrival"`
	Departure     string   `json:"departure"`
	Category      Category `json:"category"`
}

type TimesheetDay struct {
	CentreID int64          `json:"centre_id"`
	DateISO  string         `json:"date_iso"`
	Rows     []TimesheetRow `json:"rows"`
	Closed   bool           `json:"closed"`
}
