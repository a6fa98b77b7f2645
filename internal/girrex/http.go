package girrex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/girrex/roster-web/internal/models"
)

// HTTPClient talks to a live GIRREX instance. Mutating requests carry the
// CSRF token the host application issued out-of-band.
type HTTPClient struct {
	BaseURL   string
	CSRFToken string
	Client    *http.Client
}

type agentItem struct {
	IDAgent   int64  `json:"id_agent"`
	Trigram   string `json:"trigram"`
	Reference string `json:"reference"`
}

type dayItem struct {
	DateISO   string `json:"date_iso"`
	Weekday   int    `json:"weekday"`
	JourCourt string `json:"jour_court"`
	Num       int    `json:"num"`
}

type tourItem struct {
	PositionMatinID      *int64 `json:"position_matin_id"`
	PositionApresMidiID  *int64 `json:"position_apres_midi_id"`
	Commentaire          string `json:"commentaire"`
	PositionMatinNom     string `json:"position_matin_nom"`
	PositionApresMidiNom string `json:"position_apres_midi_nom"`
}

type planningResponse struct {
	Agents       []agentItem                    `json:"agents"`
	Days         []dayItem                      `json:"days"`
	PlanningData map[string]map[string]tourItem `json:"planning_data"`
}

type positionItem struct {
	ID          int64  `json:"id"`
	Nom         string `json:"nom"`
	Description string `json:"description"`
	Categorie   string `json:"categorie"`
	Couleur     string `json:"couleur"`
}

type zoneItem struct {
	ID          int64  `json:"id"`
	Nom         string `json:"nom"`
	Description string `json:"description"`
}

type timesheetRowItem struct {
	AgentID        int64  `json:"agent_id"`
	Trigram        string `json:"trigram"`
	PositionMatin  string `json:"position_matin"`
	PositionAprem  string `json:"position_apres_midi"`
	CommentaireTDS string `json:"commentaire_tds"`
	HeureArrivee   string `json:"heure_arrivee"`
	HeureDepart    string `json:"heure_depart"`
	Categorie      string `json:"categorie"`
}

type timesheetResponse struct {
	PlanningDuJour []timesheetRowItem `json:"planning_du_jour"`
	EstCloturee    bool               `json:"est_cloturee"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (c *HTTPClient) FetchPlanning(ctx context.Context, centreID int64, year, month int) (PlanningPayload, error) {
	var raw planningResponse
	path := fmt.Sprintf("/api/planning/%d/%d/%d/", centreID, year, month)
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return PlanningPayload{}, err
	}
	return parsePlanning(raw)
}

func (c *HTTPClient) FetchPositions(ctx context.Context, centreID int64) ([]models.DutyPosition, error) {
	var raw []positionItem
	path := fmt.Sprintf("/api/centre/%d/positions/", centreID)
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	positions := make([]models.DutyPosition, 0, len(raw))
	for _, p := range raw {
		positions = append(positions, models.DutyPosition{
			ID:          p.ID,
			Name:        p.Nom,
			Description: p.Description,
			Category:    models.Category(p.Categorie),
			Color:       p.Couleur,
		})
	}
	return positions, nil
}

func (c *HTTPClient) UpdateTour(ctx context.Context, upd TourUpdate) error {
	body := map[string]any{
		"agent_id":               upd.AgentID,
		"date":                   upd.DateISO,
		"position_matin_id":      upd.MorningID,
		"position_apres_midi_id": upd.AfternoonID,
	}
	return c.do(ctx, http.MethodPost, "/ajax/update-tour/", body, nil)
}

func (c *HTTPClient) UpdateComment(ctx context.Context, upd CommentUpdate) (bool, error) {
	body := map[string]any{
		"agent_id":    upd.AgentID,
		"date":        upd.DateISO,
		"commentaire": upd.Comment,
	}
	var resp struct {
		CommentExists bool `json:"comment_exists"`
	}
	if err := c.do(ctx, http.MethodPost, "/ajax/update-comment/", body, &resp); err != nil {
		return false, err
	}
	return resp.CommentExists, nil
}

func (c *HTTPClient) AddPosition(ctx context.Context, centreID int64, fields PositionFields) error {
	path := fmt.Sprintf("/api/centre/%d/positions/add/", centreID)
	return c.do(ctx, http.MethodPost, path, positionBody(fields), nil)
}

func (c *HTTPClient) UpdatePosition(ctx context.Context, positionID int64, fields PositionFields) error {
	path := fmt.Sprintf("/api/position/%d/update/", positionID)
	return c.do(ctx, http.MethodPost, path, positionBody(fields), nil)
}

func (c *HTTPClient) DeletePosition(ctx context.Context, positionID int64) error {
	path := fmt.Sprintf("/api/position/%d/delete/", positionID)
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

func (c *HTTPClient) ValidateMonth(ctx context.Context, centreID int64, year, month int) (string, error) {
	path := fmt.Sprintf("/planning/centre/%d/%d/%d/valider/", centreID, year, month)
	var resp messageResponse
	if err := c.do(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *HTTPClient) ListZones(ctx context.Context, centreID int64) ([]models.Zone, error) {
	var raw []zoneItem
	path := fmt.Sprintf("/api/zones/list/%d/", centreID)
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	zones := make([]models.Zone, 0, len(raw))
	for _, z := range raw {
		zones = append(zones, models.Zone{ID: z.ID, Name: z.Nom, Description: z.Description})
	}
	return zones, nil
}

func (c *HTTPClient) AddZone(ctx context.Context, centreID int64, fields ZoneFields) error {
	path := fmt.Sprintf("/api/zones/add/%d/", centreID)
	return c.do(ctx, http.MethodPost, path, zoneBody(fields), nil)
}

func (c *HTTPClient) UpdateZone(ctx context.Context, zoneID int64, fields ZoneFields) error {
	path := fmt.Sprintf("/api/zones/update/%d/", zoneID)
	return c.do(ctx, http.MethodPost, path, zoneBody(fields), nil)
}

func (c *HTTPClient) DeleteZone(ctx context.Context, zoneID int64) error {
	path := fmt.Sprintf("/api/zones/delete/%d/", zoneID)
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

func (c *HTTPClient) FetchTimesheet(ctx context.Context, centreID int64, dateISO string) (models.TimesheetDay, error) {
	var raw timesheetResponse
	path := fmt.Sprintf("/api/feuille-temps/%d/%s/", centreID, dateISO)
	if err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return models.TimesheetDay{}, err
	}
	day := models.TimesheetDay{
		CentreID: centreID,
		DateISO:  dateISO,
		Closed:   raw.EstCloturee,
		Rows:     make([]models.TimesheetRow, 0, len(raw.PlanningDuJour)),
	}
	for _, r := range raw.PlanningDuJour {
		day.Rows = append(day.Rows, models.TimesheetRow{
			AgentID:       r.AgentID,
			Trigram:       r.Trigram,
			Morning:       r.PositionMatin,
			Afternoon:     r.PositionAprem,
			RosterComment: r.CommentaireTDS,
			Arrival:       r.HeureArrivee,
			Departure:     r.HeureDepart,
			Category:      models.Category(r.Categorie),
		})
	}
	return day, nil
}

func (c *HTTPClient) UpdateTimesheetField(ctx context.Context, upd TimesheetFieldUpdate) error {
	body := map[string]any{
		"agent_id":  upd.AgentID,
		"date_jour": upd.DateISO,
		"champ":     upd.Field,
		"valeur":    upd.Value,
	}
	return c.do(ctx, http.MethodPost, "/api/feuille-temps/update/", body, nil)
}

func (c *HTTPClient) ValidateTimesheetHours(ctx context.Context, check HoursCheck) ([]string, error) {
	body := map[string]any{
		"agent_id":      check.AgentID,
		"date_jour":     check.DateISO,
		"heure_arrivee": check.Arrival,
		"heure_depart":  check.Departure,
		"est_j_plus_1":  check.NextDay,
	}
	var resp struct {
		Erreurs []string `json:"erreurs"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/feuille-temps/valider-horaires/", body, &resp); err != nil {
		return nil, err
	}
	return resp.Erreurs, nil
}

func (c *HTTPClient) ReopenDay(ctx context.Context, centreID int64, dateISO string) error {
	body := map[string]any{"centre_id": centreID, "date_jour": dateISO}
	return c.do(ctx, http.MethodPost, "/api/feuille-temps/reouvrir/", body, nil)
}

func (c *HTTPClient) ForceLock(ctx context.Context, centreID int64) error {
	body := map[string]any{"centre_id": centreID}
	return c.do(ctx, http.MethodPost, "/api/feuille-temps/verrou/forcer/", body, nil)
}

func (c *HTTPClient) ServiceAction(ctx context.Context, centreID int64, action, details string) (string, error) {
	path := fmt.Sprintf("/api/service/%d/gerer/", centreID)
	body := map[string]any{"action": action, "details": details}
	var resp messageResponse
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *HTTPClient) ResolveFault(ctx context.Context, faultID int64) (string, error) {
	path := fmt.Sprintf("/api/pannes/%d/resoudre/", faultID)
	var resp messageResponse
	if err := c.do(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func positionBody(fields PositionFields) map[string]any {
	return map[string]any{
		"nom":         fields.Name,
		"description": fields.Description,
		"categorie":   string(fields.Category),
		"couleur":     fields.Color,
	}
}

func zoneBody(fields ZoneFields) map[string]any {
	return map[string]any{
		"nom":         fields.Name,
		"description": fields.Description,
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any, out any) error {
	if c.Client == nil {
		c.Client = &http.Client{Timeout: 15 * time.Second}
	}

	var reader *bytes.Buffer
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewBuffer(b)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("X-CSRFToken", c.CSRFToken)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var failure messageResponse
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		if failure.Message != "" {
			return fmt.Errorf("girrex %s: %s: %s", path, resp.Status, failure.Message)
		}
		return fmt.Errorf("girrex %s: %s", path, resp.Status)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return nil
}

func parsePlanning(raw planningResponse) (PlanningPayload, error) {
	if raw.Agents == nil || raw.Days == nil {
		return PlanningPayload{}, fmt.Errorf("%w: missing agents or days", ErrBadPayload)
	}
	payload := PlanningPayload{
		Agents: make([]models.Agent, 0, len(raw.Agents)),
		Days:   make([]models.Day, 0, len(raw.Days)),
		Tours:  map[string]models.Tour{},
	}
	for _, a := range raw.Agents {
		if a.IDAgent == 0 {
			return PlanningPayload{}, fmt.Errorf("%w: agent without id", ErrBadPayload)
		}
		payload.Agents = append(payload.Agents, models.Agent{
			ID:        a.IDAgent,
			Trigram:   a.Trigram,
			Reference: a.Reference,
		})
	}
	for _, d := range raw.Days {
		if d.DateISO == "" {
			return PlanningPayload{}, fmt.Errorf("%w: day without date", ErrBadPayload)
		}
		payload.Days = append(payload.Days, models.Day{
			DateISO:    d.DateISO,
			Weekday:    d.Weekday,
			ShortLabel: d.JourCourt,
			Num:        d.Num,
		})
	}
	for agentKey, byDate := range raw.PlanningData {
		agentID, err := strconv.ParseInt(agentKey, 10, 64)
		if err != nil {
			return PlanningPayload{}, fmt.Errorf("%w: planning_data key %q", ErrBadPayload, agentKey)
		}
		for dateISO, t := range byDate {
			payload.Tours[models.Key(agentID, dateISO)] = models.Tour{
				MorningID:     t.PositionMatinID,
				AfternoonID:   t.PositionApresMidiID,
				Comment:       t.Commentaire,
				MorningName:   t.PositionMatinNom,
				AfternoonName: t.PositionApresMidiNom,
			}
		}
	}
	return payload, nil
}
