package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/odontoweb/clinic-agenda/internal/schedule"
)

var (
	ErrPatientNotFound     = errors.New("patient not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	// Patient registry
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	SearchPatients(ctx context.Context, query string, limit int) ([]Patient, error)
	CreatePatient(ctx context.Context, p Patient) (*Patient, error)

	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// Collision snapshot: every non-cancelled appointment starting on or
	// after the given date. Cancelled rows must never appear here.
	ListActiveOnOrAfter(ctx context.Context, from schedule.Date) ([]Appointment, error)

	// Day/week/month grid views.
	ListByDateRange(ctx context.Context, from, to schedule.Date) ([]AppointmentDetail, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]AppointmentDetail, error)

	// Creation and updates
	Insert(ctx context.Context, a Appointment) (*Appointment, error)
	Update(ctx context.Context, a Appointment) (*Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error)

	// Sweep worker: pending appointments whose start instant is before the
	// cutoff.
	FindMissedPending(ctx context.Context, cutoff time.Time) ([]Appointment, error)

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error
}
