package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/girrex/roster-web/internal/config"
	"github.com/girrex/roster-web/internal/girrex"
	"github.com/girrex/roster-web/internal/models"
)

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := config.Config{
		EditKey:     "secret",
		CORSAllowed: "*",
	}
	return Router(cfg, girrex.NewMock(), zerolog.Nop())
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any, editKey string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if editKey != "" {
		req.Header.Set("X-Edit-Key", editKey)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, decoded
}

func errorCode(t *testing.T, body map[string]any) string {
	t.Helper()
	e, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error envelope, got %v", body)
	}
	code, _ := e["code"].(string)
	return code
}

func TestHealthz(t *testing.T) {
	r := testRouter(t)
	w, body := doJSON(t, r, http.MethodGet, "/healthz", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected body: %v", body)
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected a request id header")
	}
}

func TestGetGridReadOnlyWithoutKey(t *testing.T) {
	r := testRouter(t)
	w, body := doJSON(t, r, http.MethodGet, "/api/roster/1/2024/3", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if body["can_edit"] != false {
		t.Fatalf("expected read-only grid without the edit key")
	}
	if _, ok := body["grid"].(map[string]any); !ok {
		t.Fatalf("expected a grid object, got %v", body["grid"])
	}
	if _, ok := body["positions"].([]any); !ok {
		t.Fatalf("expected a positions list, got %v", body["positions"])
	}
}

func TestGetGridEditableWithKey(t *testing.T) {
	r := testRouter(t)
	w, body := doJSON(t, r, http.MethodGet, "/api/roster/1/2024/3", nil, "secret")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body["can_edit"] != true {
		t.Fatalf("expected editable grid with the edit key")
	}
}

func TestGetGridRejectsBadMonth(t *testing.T) {
	r := testRouter(t)
	w, body := doJSON(t, r, http.MethodGet, "/api/roster/1/2024/13", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if errorCode(t, body) != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestMutationsRequireEditKey(t *testing.T) {
	r := testRouter(t)
	w, body := doJSON(t, r, http.MethodPost, "/api/roster/comment", map[string]any{
		"agent_id": 1, "date_iso": "2024-03-01", "comment": "hello",
	}, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", w.Code, w.Body.String())
	}
	if errorCode(t, body) != "FORBIDDEN" {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestSaveCommentReportsExistence(t *testing.T) {
	r := testRouter(t)
	w, body := doJSON(t, r, http.MethodPost, "/api/roster/comment", map[string]any{
		"agent_id": 1, "date_iso": "2024-03-01", "comment": "relief at 14:00",
	}, "secret")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if body["comment_exists"] != true {
		t.Fatalf("expected comment_exists true, got %v", body)
	}

	w, body = doJSON(t, r, http.MethodPost, "/api/roster/comment", map[string]any{
		"agent_id": 1, "date_iso": "2024-03-01", "comment": "   ",
	}, "secret")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if body["comment_exists"] != false {
		t.Fatalf("whitespace-only comment must not count, got %v", body)
	}
}

func TestSaveCellCopiesMorningToAfternoon(t *testing.T) {
	r := testRouter(t)
	w, body := doJSON(t, r, http.MethodPost, "/api/roster/1/2024/3/cell", map[string]any{
		"ref":        map[string]any{"agent_id": 1, "date_iso": "2024-03-04"},
		"state":      map[string]any{"active": map[string]any{"agent_id": 1, "date_iso": "2024-03-04"}},
		"morning_id": 1,
	}, "secret")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	patch, ok := body["patch"].(map[string]any)
	if !ok {
		t.Fatalf("expected a patch, got %v", body)
	}
	if patch["morning"] != "TWR" || patch["afternoon"] != "TWR" {
		t.Fatalf("expected afternoon to copy morning, got %v", patch)
	}

	// the grid now shows the saved assignment
	w, body = doJSON(t, r, http.MethodGet, "/api/roster/1/2024/3?detailed=1", nil, "secret")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestPositionBeginEditConflict(t *testing.T) {
	r := testRouter(t)
	w, body := doJSON(t, r, http.MethodPost, "/api/positions/edit-state", map[string]any{
		"state":       map[string]any{"active_row": 1},
		"position_id": 2,
	}, "secret")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", w.Code, w.Body.String())
	}
	if errorCode(t, body) != "EDIT_IN_PROGRESS" {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestPositionDeleteNeedsConfirmation(t *testing.T) {
	r := testRouter(t)
	w, body := doJSON(t, r, http.MethodPost, "/api/positions/4/delete", map[string]any{
		"confirm": false,
	}, "secret")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if errorCode(t, body) != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error body: %v", body)
	}

	w, body = doJSON(t, r, http.MethodPost, "/api/positions/4/delete", map[string]any{
		"confirm": true,
	}, "secret")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	inv, ok := body["invalidates"].([]any)
	if !ok || len(inv) != 2 {
		t.Fatalf("expected positions+roster invalidation, got %v", body)
	}
}

func TestZoneAddInvalidatesPage(t *testing.T) {
	r := testRouter(t)
	w, body := doJSON(t, r, http.MethodPost, "/api/centres/1/zones", map[string]any{
		"name": "Secteur Est",
	}, "secret")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	inv, ok := body["invalidates"].([]any)
	if !ok || len(inv) != 1 || inv[0] != "page" {
		t.Fatalf("expected page invalidation, got %v", body)
	}
}

func TestTimesheetOvernightConfirmationFlow(t *testing.T) {
	r := testRouter(t)
	payload := map[string]any{
		"agent_id":  1,
		"date_iso":  "2024-03-04",
		"field":     "heure_depart",
		"value":     "06:00",
		"arrival":   "22:00",
		"departure": "06:00",
	}

	w, body := doJSON(t, r, http.MethodPost, "/api/timesheet/field", payload, "secret")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if body["needs_confirmation"] != true {
		t.Fatalf("expected confirmation request, got %v", body)
	}

	payload["overnight_confirmed"] = true
	w, body = doJSON(t, r, http.MethodPost, "/api/timesheet/field", payload, "secret")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if body["needs_confirmation"] == true {
		t.Fatalf("confirmed overnight must save, got %v", body)
	}
}

func TestServiceManageFlow(t *testing.T) {
	r := testRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/service/1/manage", map[string]any{
		"action": "ouvrir",
	}, "secret")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected confirmation to be required, got %d: %s", w.Code, w.Body.String())
	}
	if errorCode(t, body) != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error body: %v", body)
	}

	// closing a service that was never opened fails upstream
	w, body = doJSON(t, r, http.MethodPost, "/api/service/1/manage", map[string]any{
		"action": "cloturer", "confirm": true,
	}, "secret")
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
	if errorCode(t, body) != "SAVE_FAILURE" {
		t.Fatalf("unexpected error body: %v", body)
	}

	for _, action := range []string{"ouvrir", "cloturer", "reouvrir"} {
		w, body = doJSON(t, r, http.MethodPost, "/api/service/1/manage", map[string]any{
			"action": action, "confirm": true,
		}, "secret")
		if w.Code != http.StatusOK {
			t.Fatalf("action %s: expected 200, got %d: %s", action, w.Code, w.Body.String())
		}
		inv, ok := body["invalidates"].([]any)
		if !ok || len(inv) != 1 || inv[0] != "page" {
			t.Fatalf("action %s: expected page invalidation, got %v", action, body)
		}
		if body["message"] == "" {
			t.Fatalf("action %s: expected a message", action)
		}
	}
}

func TestServiceManageRejectsUnknownAction(t *testing.T) {
	r := testRouter(t)
	w, body := doJSON(t, r, http.MethodPost, "/api/service/1/manage", map[string]any{
		"action": "detruire", "confirm": true,
	}, "secret")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if errorCode(t, body) != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error body: %v", body)
	}
}

type centreProbeClient struct {
	girrex.Client
	probed int64
}

func (c *centreProbeClient) FetchPositions(ctx context.Context, centreID int64) ([]models.DutyPosition, error) {
	c.probed = centreID
	return nil, nil
}

func TestHealthzProbesConfiguredCentre(t *testing.T) {
	gin.SetMode(gin.TestMode)
	client := &centreProbeClient{}
	cfg := config.Config{CORSAllowed: "*", HealthCentreID: 7}
	r := Router(cfg, client, zerolog.Nop())

	w, _ := doJSON(t, r, http.MethodGet, "/healthz", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if client.probed != 7 {
		t.Fatalf("expected probe against centre 7, got %d", client.probed)
	}
}

func TestValidateMonthRequiresConfirmation(t *testing.T) {
	r := testRouter(t)
	w, body := doJSON(t, r, http.MethodPost, "/api/roster/1/2024/3/validate", map[string]any{
		"confirm": false,
	}, "secret")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if errorCode(t, body) != "VALIDATION_ERROR" {
		t.Fatalf("unexpected error body: %v", body)
	}

	w, body = doJSON(t, r, http.MethodPost, "/api/roster/1/2024/3/validate", map[string]any{
		"confirm": true,
	}, "secret")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if body["message"] == "" {
		t.Fatalf("expected a validation message")
	}
}
