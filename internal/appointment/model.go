package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/odontoweb/clinic-agenda/internal/schedule"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// Patient is the registry record the agenda needs for display and
// validation. The registry owns everything else about the patient.
type Patient struct {
	ID        uuid.UUID
	Name      string
	Guardian  *string
	Phone     *string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Appointment is one scheduled visit. Date and Time are clinic wall-clock
// values with no timezone; Kind is a free label chosen by the front desk
// ("Consulta de valoración", "Urgencia", ...), never validated here.
type Appointment struct {
	ID              uuid.UUID
	PatientID       uuid.UUID
	Date            schedule.Date
	Time            schedule.TimeOfDay
	DurationMinutes int
	Kind            string
	Notes           string
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Booking projects the appointment into the scheduling core's snapshot row.
func (a Appointment) Booking() schedule.Booking {
	return schedule.Booking{
		ID:       a.ID,
		Date:     a.Date,
		Time:     a.Time,
		Duration: a.DurationMinutes,
	}
}

// Start returns the appointment's start instant.
func (a Appointment) Start() time.Time {
	return schedule.Combine(a.Date, a.Time)
}

// End returns the appointment's end instant.
func (a Appointment) End() time.Time {
	return schedule.AddMinutes(a.Start(), a.DurationMinutes)
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}

// AppointmentDetail is an appointment hydrated with its patient record.
type AppointmentDetail struct {
	Appointment
	Patient *Patient
}
