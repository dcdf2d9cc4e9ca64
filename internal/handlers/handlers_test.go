package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"asistencia-backend/internal/dashboard"
	"asistencia-backend/internal/database"
	"asistencia-backend/internal/models"

	"github.com/xuri/excelize/v2"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2025, 3, 14, 8, 15, 30, 0, time.UTC)

func newTestService(t *testing.T) *dashboard.Service {
	t.Helper()
	db, err := database.Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store := database.NewStore(db)
	_, err = store.UpsertTechnicians(context.Background(), []models.Technician{
		{Cedula: "100", Nombre: "Ana", Supervisor: "Ruiz", Ciudad: "Bogota"},
		{Cedula: "200", Nombre: "Beto", Supervisor: "Diaz", Ciudad: "Cali"},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return dashboard.NewService(store, time.UTC, dashboard.WithClock(func() time.Time { return testNow }))
}

func post(t *testing.T, h http.HandlerFunc, body string) (*httptest.ResponseRecorder, models.ActionResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	var resp models.ActionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rec, resp
}

func getSnapshot(t *testing.T, svc *dashboard.Service, query string) models.Snapshot {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/datos"+query, nil)
	rec := httptest.NewRecorder()
	GetDatos(svc)(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /datos status %d", rec.Code)
	}
	var snap models.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatal(err)
	}
	return snap
}

// ============================================================
// /datos
// ============================================================

func TestGetDatos(t *testing.T) {
	svc := newTestService(t)
	snap := getSnapshot(t, svc, "")

	if snap.Date != "2025-03-14" || snap.Total != 2 || snap.Pending != 2 || snap.Percentage != 0 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if len(snap.Supervisors) != 2 || len(snap.Cities) != 2 {
		t.Fatalf("filter lists missing: %+v", snap)
	}
}

func TestGetDatosWireFields(t *testing.T) {
	svc := newTestService(t)
	req := httptest.NewRequest(http.MethodGet, "/datos", nil)
	rec := httptest.NewRecorder()
	GetDatos(svc)(rec, req)

	body := rec.Body.String()
	for _, field := range []string{`"CEDULA"`, `"NOMBRE_TECNICO"`, `"ESTADO"`, `"HORA_ENTRADA"`, `"porcentaje_asistencia"`, `"supervisores"`} {
		if !strings.Contains(body, field) {
			t.Fatalf("response missing %s: %s", field, body)
		}
	}
}

func TestGetDatosUnknownStatus(t *testing.T) {
	svc := newTestService(t)
	req := httptest.NewRequest(http.MethodGet, "/datos?estado=FOO", nil)
	rec := httptest.NewRecorder()
	GetDatos(svc)(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "Estado inválido" {
		t.Fatalf("unexpected body: %v", body)
	}

	snap := getSnapshot(t, svc, "?estado=pendiente")
	if snap.Total != 2 {
		t.Fatalf("lower-case status should still match: %+v", snap)
	}
}

func TestGetDatosFiltered(t *testing.T) {
	svc := newTestService(t)
	post(t, MarkEntry(svc), `{"cedula":"100"}`)

	snap := getSnapshot(t, svc, "?estado=EN+PROCESO")
	if snap.Total != 1 || snap.Technicians[0].Cedula != "100" || snap.Percentage != 100 {
		t.Fatalf("unexpected filtered snapshot: %+v", snap)
	}
	if len(snap.Supervisors) != 2 {
		t.Fatal("filter lists should cover the whole day")
	}

	snap = getSnapshot(t, svc, "?q=bet&ciudad=cali")
	if snap.Total != 1 || snap.Technicians[0].Cedula != "200" {
		t.Fatalf("unexpected filtered snapshot: %+v", snap)
	}
}

// ============================================================
// Mutations
// ============================================================

func TestEntryExitFlow(t *testing.T) {
	svc := newTestService(t)

	rec, resp := post(t, MarkEntry(svc), `{"cedula":"100"}`)
	if rec.Code != http.StatusOK || !resp.Success || resp.Message != "Entrada registrada: 08:15:30" {
		t.Fatalf("entry: %d %+v", rec.Code, resp)
	}

	rec, resp = post(t, MarkEntry(svc), `{"cedula":"100"}`)
	if rec.Code != http.StatusConflict || resp.Success || resp.Message != "Ya tiene entrada registrada sin salida" {
		t.Fatalf("second entry: %d %+v", rec.Code, resp)
	}

	rec, resp = post(t, MarkExit(svc), `{"cedula":"100"}`)
	if rec.Code != http.StatusOK || !resp.Success {
		t.Fatalf("exit: %d %+v", rec.Code, resp)
	}

	snap := getSnapshot(t, svc, "")
	if snap.Technicians[0].Status != models.StatusCompleted || snap.Completed != 1 || snap.Percentage != 50 {
		t.Fatalf("unexpected snapshot after exit: %+v", snap)
	}
}

func TestMarkExitWithoutEntry(t *testing.T) {
	svc := newTestService(t)
	rec, resp := post(t, MarkExit(svc), `{"cedula":"200"}`)
	if rec.Code != http.StatusNotFound || resp.Success || resp.Message != "No hay entrada registrada hoy" {
		t.Fatalf("unexpected: %d %+v", rec.Code, resp)
	}
}

func TestEditAndDelete(t *testing.T) {
	svc := newTestService(t)
	post(t, MarkEntry(svc), `{"cedula":"100"}`)

	rec, resp := post(t, EditTime(svc), `{"cedula":"100","tipo":"entrada","hora":"07:45:00"}`)
	if rec.Code != http.StatusOK || resp.Message != "Entrada actualizada a: 07:45:00" {
		t.Fatalf("edit: %d %+v", rec.Code, resp)
	}

	rec, resp = post(t, EditTime(svc), `{"cedula":"100","tipo":"entrada","hora":""}`)
	if rec.Code != http.StatusBadRequest || resp.Success {
		t.Fatalf("empty edit should be rejected: %d %+v", rec.Code, resp)
	}

	rec, resp = post(t, DeleteRecord(svc), `{"cedula":"100"}`)
	if rec.Code != http.StatusOK || resp.Message != "Registro eliminado correctamente" {
		t.Fatalf("delete: %d %+v", rec.Code, resp)
	}

	snap := getSnapshot(t, svc, "")
	if snap.Technicians[0].Status != models.StatusPending {
		t.Fatalf("technician should be pending after delete: %+v", snap.Technicians[0])
	}
}

func TestMalformedBody(t *testing.T) {
	svc := newTestService(t)
	rec, resp := post(t, MarkEntry(svc), `{not json`)
	if rec.Code != http.StatusBadRequest || resp.Success {
		t.Fatalf("unexpected: %d %+v", rec.Code, resp)
	}
}

// ============================================================
// Page and export
// ============================================================

func TestIndexRendersRows(t *testing.T) {
	svc := newTestService(t)
	post(t, MarkEntry(svc), `{"cedula":"100"}`)

	req := httptest.NewRequest(http.MethodGet, "/?estado=PENDIENTE", nil)
	rec := httptest.NewRecorder()
	Index(svc, false)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `data-cedula="100"`) || !strings.Contains(body, `data-cedula="200"`) {
		t.Fatal("every row should be rendered")
	}
	if !strings.Contains(body, "14/03/2025") {
		t.Fatal("display date missing")
	}
	if !strings.Contains(body, `id="stat-total">1<`) {
		t.Fatal("stats should reflect the filtered rows")
	}
	if strings.Contains(body, "modalLogin") {
		t.Fatal("login modal should be absent without auth")
	}
}

func TestExportReport(t *testing.T) {
	svc := newTestService(t)
	req := httptest.NewRequest(http.MethodGet, "/exportar", nil)
	rec := httptest.NewRecorder()
	ExportReport(svc)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "asistencia_2025-03-14.xlsx") {
		t.Fatalf("unexpected disposition: %s", rec.Header().Get("Content-Disposition"))
	}
	f, err := excelize.OpenReader(rec.Body)
	if err != nil {
		t.Fatalf("export is not a workbook: %v", err)
	}
	f.Close()
}

// ============================================================
// Login
// ============================================================

func TestLogin(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("clave"), bcrypt.MinCost)
	h := Login([]models.Supervisor{{Email: "jefe@example.com", PasswordHash: string(hash)}}, "secret")

	cases := []struct {
		body string
		code int
	}{
		{`{"email":"JEFE@example.com","password":"clave"}`, http.StatusOK},
		{`{"email":"jefe@example.com","password":"mala"}`, http.StatusUnauthorized},
		{`{"email":"otro@example.com","password":"clave"}`, http.StatusUnauthorized},
		{`nope`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tc.body))
		rec := httptest.NewRecorder()
		h(rec, req)
		if rec.Code != tc.code {
			t.Fatalf("%s: expected %d, got %d", tc.body, tc.code, rec.Code)
		}
		if tc.code == http.StatusOK {
			var resp models.LoginResponse
			json.NewDecoder(rec.Body).Decode(&resp)
			if !resp.OK || resp.Token == "" || len(rec.Result().Cookies()) == 0 {
				t.Fatalf("login should return a token and cookie: %+v", resp)
			}
		}
	}
}
