package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/odontoweb/clinic-agenda/internal/appointment"
	"github.com/odontoweb/clinic-agenda/internal/schedule"
)

type ScheduleAppointmentRequest struct {
	PatientID       string `json:"patient_id"`
	Date            string `json:"date"` // 2006-01-02
	Time            string `json:"time"` // 15:04
	DurationMinutes int    `json:"duration_minutes"`
	Kind            string `json:"kind"`
	Notes           string `json:"notes,omitempty"`
}

// UpdateAppointmentRequest carries a partial edit; absent fields are left
// untouched.
type UpdateAppointmentRequest struct {
	Date            *string `json:"date,omitempty"`
	Time            *string `json:"time,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"`
	Kind            *string `json:"kind,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	Status          *string `json:"status,omitempty"`
}

type CreatePatientRequest struct {
	Name     string  `json:"name"`
	Guardian *string `json:"guardian,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty"`
}

type PatientResponse struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Guardian *string   `json:"guardian,omitempty"`
	Phone    *string   `json:"phone,omitempty"`
	Email    *string   `json:"email,omitempty"`
}

type AppointmentResponse struct {
	ID              uuid.UUID        `json:"id"`
	PatientID       uuid.UUID        `json:"patient_id"`
	Date            string           `json:"date"`
	Time            string           `json:"time"`
	DurationMinutes int              `json:"duration_minutes"`
	Kind            string           `json:"kind"`
	Notes           string           `json:"notes,omitempty"`
	Status          string           `json:"status"`
	DisplayDate     string           `json:"display_date"`
	DisplayTime     string           `json:"display_time"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	Patient         *PatientResponse `json:"patient,omitempty"`
}

type SlotResponse struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	DisplayDate string `json:"display_date"`
	DisplayTime string `json:"display_time"`
}

type ConflictResponse struct {
	AppointmentID   uuid.UUID `json:"appointment_id"`
	Date            string    `json:"date"`
	Time            string    `json:"time"`
	DurationMinutes int       `json:"duration_minutes"`
}

type ErrorResponse struct {
	Error      string             `json:"error"`
	Details    string             `json:"details,omitempty"`
	Reason     string             `json:"reason,omitempty"`
	Conflicts  []ConflictResponse `json:"conflicts,omitempty"`
	Suggestion *SlotResponse      `json:"suggestion,omitempty"`
}

func toAppointmentResponse(a appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:              a.ID,
		PatientID:       a.PatientID,
		Date:            a.Date.String(),
		Time:            a.Time.String(),
		DurationMinutes: a.DurationMinutes,
		Kind:            a.Kind,
		Notes:           a.Notes,
		Status:          string(a.Status),
		DisplayDate:     schedule.FormatDateSpanish(a.Date),
		DisplayTime:     schedule.Format12Hour(a.Time),
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func toDetailResponse(d appointment.AppointmentDetail) AppointmentResponse {
	resp := toAppointmentResponse(d.Appointment)
	if d.Patient != nil {
		resp.Patient = toPatientResponsePtr(*d.Patient)
	}
	return resp
}

func toPatientResponsePtr(p appointment.Patient) *PatientResponse {
	return &PatientResponse{
		ID:       p.ID,
		Name:     p.Name,
		Guardian: p.Guardian,
		Phone:    p.Phone,
		Email:    p.Email,
	}
}

func toSlotResponse(s schedule.Slot) *SlotResponse {
	return &SlotResponse{
		Date:        s.Date.String(),
		Time:        s.Time.String(),
		DisplayDate: schedule.FormatDateSpanish(s.Date),
		DisplayTime: schedule.Format12Hour(s.Time),
	}
}

func toConflictResponses(conflicts []schedule.Booking) []ConflictResponse {
	var result []ConflictResponse
	for _, c := range conflicts {
		result = append(result, ConflictResponse{
			AppointmentID:   c.ID,
			Date:            c.Date.String(),
			Time:            c.Time.String(),
			DurationMinutes: c.Duration,
		})
	}
	return result
}
