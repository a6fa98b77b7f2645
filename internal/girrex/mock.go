package girrex

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/girrex/roster-web/internal/models"
	"github.com/girrex/roster-web/internal/utils"
)

// Mock serves a deterministic in-memory centre so the gateway can run
// without a live GIRREX instance. Reads are derived from an fnv hash,
// mutations are kept until the process exits.
type Mock struct {
	mu        sync.Mutex
	nextID    int64
	positions []models.DutyPosition
	zones     []models.Zone
	tours     map[string]models.Tour
	times     map[string][2]string
	closed    map[string]bool
	service   map[int64]string
}

func NewMock() *Mock {
	return &Mock{
		nextID: 100,
		positions: []models.DutyPosition{
			{ID: 1, Name: "TWR", Description: "Tour de contrôle", Category: models.CategoryControl, Color: "#ff0000"},
			{ID: 2, Name: "APP", Description: "Approche", Category: models.CategoryControl, Color: "#2e86de"},
			{ID: 3, Name: "BUR", Description: "Travail bureau", Category: models.CategoryOther, Color: models.NoColor},
			{ID: 4, Name: "REPOS", Description: "", Category: models.CategoryAbsent, Color: "#dddddd"},
		},
		zones: []models.Zone{
			{ID: 1, Name: "Secteur Nord", Description: "CTR + TMA nord"},
			{ID: 2, Name: "Secteur Sud", Description: ""},
		},
		tours:   map[string]models.Tour{},
		times:   map[string][2]string{},
		closed:  map[string]bool{},
		service: map[int64]string{},
	}
}

var mockAgents = []models.Agent{
	{ID: 1, Trigram: "ABC"},
	{ID: 2, Trigram: "DEF"},
	{ID: 3, Trigram: "GHI"},
	{ID: 4, Reference: "AGT-0042"},
	{ID: 5, Trigram: "JKL"},
}

func (m *Mock) FetchPlanning(ctx context.Context, centreID int64, year, month int) (PlanningPayload, error) {
	payload := PlanningPayload{
		Agents: mockAgents,
		Tours:  map[string]models.Tour{},
	}

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	for d := first; d.Month() == time.Month(month); d = d.AddDate(0, 0, 1) {
		payload.Days = append(payload.Days, models.Day{
			DateISO:    d.Format("2006-01-02"),
			Weekday:    (int(d.Weekday()) + 6) % 7,
			ShortLabel: d.Format("Mon"),
			Num:        d.Day(),
		})
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range payload.Agents {
		for _, day := range payload.Days {
			key := models.Key(a.ID, day.DateISO)
			if t, ok := m.tours[key]; ok {
				payload.Tours[key] = m.resolveNames(t)
				continue
			}
			h := utils.HashStringToUint64(key)
			if h%3 == 0 {
				continue // unassigned
			}
			pos := m.positions[int(h%uint64(len(m.positions)))]
			id := pos.ID
			t := models.Tour{MorningID: &id, AfternoonID: &id}
			payload.Tours[key] = m.resolveNames(t)
		}
	}
	return payload, nil
}

func (m *Mock) FetchPositions(ctx context.Context, centreID int64) ([]models.DutyPosition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.DutyPosition, len(m.positions))
	copy(out, m.positions)
	return out, nil
}

func (m *Mock) UpdateTour(ctx context.Context, upd TourUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := models.Key(upd.AgentID, upd.DateISO)
	t := m.tours[key]
	t.MorningID = upd.MorningID
	t.AfternoonID = upd.AfternoonID
	m.tours[key] = t
	return nil
}

func (m *Mock) UpdateComment(ctx context.Context, upd CommentUpdate) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := models.Key(upd.AgentID, upd.DateISO)
	t := m.tours[key]
	t.Comment = upd.Comment
	m.tours[key] = t
	// whitespace-only does not count as a comment
	return strings.TrimSpace(upd.Comment) != "", nil
}

func (m *Mock) AddPosition(ctx context.Context, centreID int64, fields PositionFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.positions = append(m.positions, models.DutyPosition{
		ID:          m.nextID,
		Name:        fields.Name,
		Description: fields.Description,
		Category:    fields.Category,
		Color:       fields.Color,
	})
	return nil
}

func (m *Mock) UpdatePosition(ctx context.Context, positionID int64, fields PositionFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.positions {
		if p.ID == positionID {
			m.positions[i] = models.DutyPosition{
				ID:          positionID,
				Name:        fields.Name,
				Description: fields.Description,
				Category:    fields.Category,
				Color:       fields.Color,
			}
			return nil
		}
	}
	return fmt.Errorf("girrex mock: position %d not found", positionID)
}

func (m *Mock) DeletePosition(ctx context.Context, positionID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.positions {
		if p.ID == positionID {
			m.positions = append(m.positions[:i], m.positions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("girrex mock: position %d not found", positionID)
}

func (m *Mock) ValidateMonth(ctx context.Context, centreID int64, year, month int) (string, error) {
	return fmt.Sprintf("Planning %d/%02d validated for centre %d", year, month, centreID), nil
}

func (m *Mock) ListZones(ctx context.Context, centreID int64) ([]models.Zone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Zone, len(m.zones))
	copy(out, m.zones)
	return out, nil
}

func (m *Mock) AddZone(ctx context.Context, centreID int64, fields ZoneFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.zones = append(m.zones, models.Zone{ID: m.nextID, Name: fields.Name, Description: fields.Description})
	return nil
}

func (m *Mock) UpdateZone(ctx context.Context, zoneID int64, fields ZoneFields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, z := range m.zones {
		if z.ID == zoneID {
			m.zones[i] = models.Zone{ID: zoneID, Name: fields.Name, Description: fields.Description}
			return nil
		}
	}
	return fmt.Errorf("girrex mock: zone %d not found", zoneID)
}

func (m *Mock) DeleteZone(ctx context.Context, zoneID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, z := range m.zones {
		if z.ID == zoneID {
			m.zones = append(m.zones[:i], m.zones[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("girrex mock: zone %d not found", zoneID)
}

func (m *Mock) FetchTimesheet(ctx context.Context, centreID int64, dateISO string) (models.TimesheetDay, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	day := models.TimesheetDay{
		CentreID: centreID,
		DateISO:  dateISO,
		Closed:   m.closed[dateISO],
	}
	for _, a := range mockAgents {
		key := models.Key(a.ID, dateISO)
		t, ok := m.tours[key]
		if !ok {
			h := utils.HashStringToUint64(key)
			if h%3 == 0 {
				continue
			}
			pos := m.positions[int(h%uint64(len(m.positions)))]
			id := pos.ID
			t = models.Tour{MorningID: &id, AfternoonID: &id}
		}
		t = m.resolveNames(t)
		times := m.times[key]
		row := models.TimesheetRow{
			AgentID:       a.ID,
			Trigram:       a.DisplayCode(),
			Morning:       t.MorningName,
			Afternoon:     t.AfternoonName,
			RosterComment: t.Comment,
			Arrival:       times[0],
			Departure:     times[1],
			Category:      models.CategoryControl,
		}
		if t.MorningID != nil {
			if p, ok := m.findPosition(*t.MorningID); ok {
				row.Category = p.Category
			}
		}
		day.Rows = append(day.Rows, row)
	}
	return day, nil
}

func (m *Mock) UpdateTimesheetField(ctx context.Context, upd TimesheetFieldUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := models.Key(upd.AgentID, upd.DateISO)
	times := m.times[key]
	switch upd.Field {
	case "heure_arrivee":
		times[0] = upd.Value
	case "heure_depart":
		times[1] = upd.Value
	default:
		return fmt.Errorf("girrex mock: unknown timesheet field %q", upd.Field)
	}
	m.times[key] = times
	return nil
}

func (m *Mock) ValidateTimesheetHours(ctx context.Context, check HoursCheck) ([]string, error) {
	if check.Arrival == "" || check.Departure == "" {
		return []string{"arrival and departure are both required"}, nil
	}
	if check.Departure < check.Arrival && !check.NextDay {
		return []string{"departure before arrival without overnight confirmation"}, nil
	}
	return nil, nil
}

func (m *Mock) ReopenDay(ctx context.Context, centreID int64, dateISO string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed[dateISO] = false
	return nil
}

func (m *Mock) ForceLock(ctx context.Context, centreID int64) error {
	return nil
}

func (m *Mock) ResolveFault(ctx context.Context, faultID int64) (string, error) {
	return fmt.Sprintf("Fault %d marked as resolved", faultID), nil
}

func (m *Mock) ServiceAction(ctx context.Context, centreID int64, action, details string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	status := m.service[centreID]
	switch action {
	case "ouvrir":
		if status == "OUVERTE" {
			return "", fmt.Errorf("girrex mock: service for centre %d is already open", centreID)
		}
		m.service[centreID] = "OUVERTE"
		return fmt.Sprintf("Service opened for centre %d", centreID), nil
	case "cloturer":
		if status != "OUVERTE" {
			return "", fmt.Errorf("girrex mock: service for centre %d is not open", centreID)
		}
		m.service[centreID] = "CLOTUREE"
		return fmt.Sprintf("Service closed for centre %d", centreID), nil
	case "reouvrir":
		if status != "CLOTUREE" {
			return "", fmt.Errorf("girrex mock: service for centre %d is not closed", centreID)
		}
		m.service[centreID] = "OUVERTE"
		return fmt.Sprintf("Service reopened for centre %d", centreID), nil
	default:
		return "", fmt.Errorf("girrex mock: unknown service action %q", action)
	}
}

func (m *Mock) findPosition(id int64) (models.DutyPosition, bool) {
	for _, p := range m.positions {
		if p.ID == id {
			return p, true
		}
	}
	return models.DutyPosition{}, false
}

// resolveNames fills display names from the current position list; dangling
// ids resolve to blank, matching the live API.
func (m *Mock) resolveNames(t models.Tour) models.Tour {
	t.MorningName = ""
	t.AfternoonName = ""
	if t.MorningID != nil {
		if p, ok := m.findPosition(*t.MorningID); ok {
			t.MorningName = p.Name
		}
	}
	if t.AfternoonID != nil {
		if p, ok := m.findPosition(*t.AfternoonID); ok {
			t.AfternoonName = p.Name
		}
	}
	return t
}
