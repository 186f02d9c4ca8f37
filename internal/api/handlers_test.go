package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/odontoweb/clinic-agenda/internal/appointment"
	"github.com/odontoweb/clinic-agenda/internal/config"
	"github.com/odontoweb/clinic-agenda/internal/schedule"
)

type passLocker struct{}

func (passLocker) WithAgendaLock(ctx context.Context, _ schedule.Date, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type testEnv struct {
	router    http.Handler
	repo      *appointment.MemoryRepository
	patientID uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo := appointment.NewMemoryRepository()
	cfg := config.Config{
		Hours:             schedule.DefaultHours(),
		SearchHorizonDays: 90,
		MissedGrace:       30 * time.Minute,
	}
	svc := appointment.NewService(repo, passLocker{}, cfg, zerolog.Nop())

	patient, err := repo.CreatePatient(context.Background(), appointment.Patient{
		ID:   uuid.New(),
		Name: "Ana Morales",
	})
	if err != nil {
		t.Fatalf("create patient: %v", err)
	}

	router := NewRouter(RouterConfig{
		Service: svc,
		Logger:  zerolog.Nop(),
		Env:     "test",
		Version: "test",
	})

	return &testEnv{router: router, repo: repo, patientID: patient.ID}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) schedule(t *testing.T, date, tod string, duration int) AppointmentResponse {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/appointments", ScheduleAppointmentRequest{
		PatientID:       e.patientID.String(),
		Date:            date,
		Time:            tod,
		DurationMinutes: duration,
		Kind:            "Consulta de valoración",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("schedule %s %s: status %d, body %s", date, tod, rec.Code, rec.Body)
	}

	var resp AppointmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestScheduleEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp := env.schedule(t, "2024-06-10", "10:00", 30)

	if resp.Status != "pending" {
		t.Errorf("status = %q, want pending", resp.Status)
	}
	if resp.DisplayTime != "10:00 a.m." {
		t.Errorf("display_time = %q, want \"10:00 a.m.\"", resp.DisplayTime)
	}
	if resp.DisplayDate != "10 de junio 2024" {
		t.Errorf("display_date = %q", resp.DisplayDate)
	}
}

func TestScheduleEndpointConflict(t *testing.T) {
	env := newTestEnv(t)
	env.schedule(t, "2024-06-10", "10:00", 30)

	rec := env.do(t, http.MethodPost, "/appointments", ScheduleAppointmentRequest{
		PatientID:       env.patientID.String(),
		Date:            "2024-06-10",
		Time:            "10:15",
		DurationMinutes: 30,
	})

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error != "slot_unavailable" || resp.Reason != "conflict" {
		t.Errorf("error = %q reason = %q", resp.Error, resp.Reason)
	}
	if len(resp.Conflicts) != 1 {
		t.Errorf("got %d conflicts, want 1", len(resp.Conflicts))
	}
	if resp.Suggestion == nil || resp.Suggestion.Time != "10:45" {
		t.Errorf("suggestion = %+v, want 10:45", resp.Suggestion)
	}
}

func TestScheduleEndpointValidation(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		name string
		req  ScheduleAppointmentRequest
		code string
	}{
		{"bad patient id", ScheduleAppointmentRequest{PatientID: "nope", Date: "2024-06-10", Time: "10:00", DurationMinutes: 30}, "invalid_patient_id"},
		{"bad date", ScheduleAppointmentRequest{PatientID: env.patientID.String(), Date: "10/06/2024", Time: "10:00", DurationMinutes: 30}, "invalid_date"},
		{"bad time", ScheduleAppointmentRequest{PatientID: env.patientID.String(), Date: "2024-06-10", Time: "10am", DurationMinutes: 30}, "invalid_time"},
		{"bad duration", ScheduleAppointmentRequest{PatientID: env.patientID.String(), Date: "2024-06-10", Time: "10:00", DurationMinutes: 0}, "invalid_duration"},
	}
	for _, tc := range cases {
		rec := env.do(t, http.MethodPost, "/appointments", tc.req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", tc.name, rec.Code)
			continue
		}
		var resp ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("%s: decode response: %v", tc.name, err)
		}
		if resp.Error != tc.code {
			t.Errorf("%s: error = %q, want %q", tc.name, resp.Error, tc.code)
		}
	}
}

func TestUpdateEndpointKeepsOwnSlot(t *testing.T) {
	env := newTestEnv(t)
	appt := env.schedule(t, "2024-06-10", "10:00", 30)

	rec := env.do(t, http.MethodPatch, "/appointments/"+appt.ID.String(), map[string]any{
		"notes": "trae radiografía",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp AppointmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Notes != "trae radiografía" || resp.Time != "10:00" {
		t.Errorf("unexpected update result: %+v", resp)
	}
}

func TestUpdateEndpointConflictHasNoSuggestion(t *testing.T) {
	env := newTestEnv(t)
	env.schedule(t, "2024-06-10", "10:00", 30)
	second := env.schedule(t, "2024-06-10", "11:00", 30)

	rec := env.do(t, http.MethodPatch, "/appointments/"+second.ID.String(), map[string]any{
		"time": "10:15",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Suggestion != nil {
		t.Error("edit rejection must not carry a suggestion")
	}
}

func TestConfirmAndCancelEndpoints(t *testing.T) {
	env := newTestEnv(t)
	appt := env.schedule(t, "2024-06-10", "10:00", 30)

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/appointments/%s/confirm", appt.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm: status = %d, body %s", rec.Code, rec.Body)
	}

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/appointments/%s/confirm", appt.ID), nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("double confirm: status = %d, want 409", rec.Code)
	}

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/appointments/%s/cancel", appt.ID), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: status = %d, body %s", rec.Code, rec.Body)
	}

	// The freed slot books again.
	env.schedule(t, "2024-06-10", "10:00", 30)
}

func TestConfirmUnknownAppointment(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, fmt.Sprintf("/appointments/%s/confirm", uuid.New()), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/appointments/not-a-uuid/confirm", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad uuid: status = %d, want 400", rec.Code)
	}
}

func TestNextSlotEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.schedule(t, "2024-06-10", "10:00", 30)

	rec := env.do(t, http.MethodGet, "/availability/next?date=2024-06-10&time=10:15&duration=30", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp SlotResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Date != "2024-06-10" || resp.Time != "10:45" {
		t.Errorf("got %s %s, want 2024-06-10 10:45", resp.Date, resp.Time)
	}
}

func TestListAppointmentsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.schedule(t, "2024-06-10", "10:00", 30)
	env.schedule(t, "2024-06-10", "11:00", 30)
	env.schedule(t, "2024-06-12", "09:00", 30)

	rec := env.do(t, http.MethodGet, "/appointments?from=2024-06-10&to=2024-06-11", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var resp []AppointmentResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("got %d appointments, want 2", len(resp))
	}
	if resp[0].Patient == nil || resp[0].Patient.Name != "Ana Morales" {
		t.Error("listing should hydrate the patient record")
	}
}

func TestPatientEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/patients", CreatePatientRequest{Name: "Luis Herrera"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body %s", rec.Code, rec.Body)
	}
	var created PatientResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	rec = env.do(t, http.MethodGet, "/patients?q=luis", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("search: status = %d", rec.Code)
	}
	var patients []PatientResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &patients); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(patients) != 1 || patients[0].ID != created.ID {
		t.Errorf("search results = %+v, want the created patient", patients)
	}

	rec = env.do(t, http.MethodGet, "/patients/"+created.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get: status = %d", rec.Code)
	}

	rec = env.do(t, http.MethodPost, "/patients", CreatePatientRequest{Name: "   "})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("blank name: status = %d, want 400", rec.Code)
	}
}
