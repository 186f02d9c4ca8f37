package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/odontoweb/clinic-agenda/internal/config"
	redisclient "github.com/odontoweb/clinic-agenda/internal/redis"
	"github.com/odontoweb/clinic-agenda/internal/schedule"
)

const (
	EventAppointmentScheduled   = "APPOINTMENT_SCHEDULED"
	EventAppointmentRescheduled = "APPOINTMENT_RESCHEDULED"
	EventAppointmentConfirmed   = "APPOINTMENT_CONFIRMED"
	EventAppointmentCancelled   = "APPOINTMENT_CANCELLED"
	EventAppointmentMissed      = "APPOINTMENT_MISSED"
)

// Service is the scheduling orchestrator: it runs the policy and collision
// checks from internal/schedule against a repository snapshot and relays
// accepted placements to persistence. All checks happen inside a per-day
// agenda lock so concurrent bookings cannot both pass the collision check.
type Service struct {
	repo   Repository
	locker redisclient.Locker
	cfg    config.Config
	log    zerolog.Logger
}

func NewService(repo Repository, locker redisclient.Locker, cfg config.Config, log zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		locker: locker,
		cfg:    cfg,
		log:    log,
	}
}

// ScheduleRequest is a candidate placement for a new appointment.
type ScheduleRequest struct {
	PatientID       uuid.UUID
	Date            schedule.Date
	Time            schedule.TimeOfDay
	DurationMinutes int
	Kind            string
	Notes           string
}

// Changes carries the fields of an edit; nil means "leave as is".
type Changes struct {
	Date            *schedule.Date
	Time            *schedule.TimeOfDay
	DurationMinutes *int
	Kind            *string
	Notes           *string
	Status          *Status
}

// Schedule places a new appointment. A start outside bookable hours or a
// collision with an existing appointment comes back as a
// *SlotUnavailableError carrying the next available slot; nothing is
// persisted in that case.
func (s *Service) Schedule(ctx context.Context, req ScheduleRequest) (*Appointment, error) {
	if req.DurationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}

	if _, err := s.repo.GetPatientByID(ctx, req.PatientID); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	var created *Appointment

	err := s.locker.WithAgendaLock(ctx, req.Date, func(lockCtx context.Context) error {
		bookings, err := s.activeBookings(lockCtx, req.Date)
		if err != nil {
			return err
		}

		cand := schedule.Candidate{Date: req.Date, Time: req.Time, Duration: req.DurationMinutes}

		if !s.cfg.Hours.IsBookable(req.Time) {
			return &SlotUnavailableError{
				Reason:     ReasonOutOfHours,
				Suggestion: s.suggest(cand, bookings),
			}
		}

		if conflicts := schedule.Conflicts(cand, bookings, uuid.Nil); len(conflicts) > 0 {
			return &SlotUnavailableError{
				Reason:     ReasonConflict,
				Conflicts:  conflicts,
				Suggestion: s.suggest(cand, bookings),
			}
		}

		appt, err := s.repo.Insert(lockCtx, Appointment{
			ID:              uuid.New(),
			PatientID:       req.PatientID,
			Date:            req.Date,
			Time:            req.Time,
			DurationMinutes: req.DurationMinutes,
			Kind:            req.Kind,
			Notes:           req.Notes,
			Status:          StatusPending,
		})
		if err != nil {
			return fmt.Errorf("insert appointment: %w", err)
		}

		created = appt

		s.logEvent(lockCtx, appt.ID, EventAppointmentScheduled, map[string]any{
			"patient_id": req.PatientID.String(),
			"date":       req.Date.String(),
			"time":       req.Time.String(),
			"duration":   req.DurationMinutes,
		})

		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrAgendaBusy
		}
		return nil, err
	}

	return created, nil
}

// Reschedule merges changes into an existing appointment and re-runs the
// collision check with the appointment excluded, so saving it back into its
// own slot always succeeds. Unlike Schedule it reports a collision without a
// suggestion; callers that want one ask NextAvailableSlot explicitly.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, changes Changes) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status == StatusCancelled {
		return nil, ErrAppointmentCancelled
	}

	merged := *appt
	if changes.Date != nil {
		merged.Date = *changes.Date
	}
	if changes.Time != nil {
		merged.Time = *changes.Time
	}
	if changes.DurationMinutes != nil {
		merged.DurationMinutes = *changes.DurationMinutes
	}
	if changes.Kind != nil {
		merged.Kind = *changes.Kind
	}
	if changes.Notes != nil {
		merged.Notes = *changes.Notes
	}
	if changes.Status != nil && *changes.Status != appt.Status {
		if !canTransition(appt.Status, *changes.Status) {
			return nil, ErrInvalidStatusTransition
		}
		merged.Status = *changes.Status
	}

	if merged.DurationMinutes <= 0 {
		return nil, ErrInvalidDuration
	}

	var updated *Appointment

	err = s.locker.WithAgendaLock(ctx, merged.Date, func(lockCtx context.Context) error {
		bookings, err := s.activeBookings(lockCtx, merged.Date)
		if err != nil {
			return err
		}

		if !s.cfg.Hours.IsBookable(merged.Time) {
			return &SlotUnavailableError{Reason: ReasonOutOfHours}
		}

		cand := schedule.Candidate{Date: merged.Date, Time: merged.Time, Duration: merged.DurationMinutes}
		if conflicts := schedule.Conflicts(cand, bookings, id); len(conflicts) > 0 {
			return &SlotUnavailableError{Reason: ReasonConflict, Conflicts: conflicts}
		}

		a, err := s.repo.Update(lockCtx, merged)
		if err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}

		updated = a

		s.logEvent(lockCtx, a.ID, EventAppointmentRescheduled, map[string]any{
			"date":     a.Date.String(),
			"time":     a.Time.String(),
			"duration": a.DurationMinutes,
			"status":   string(a.Status),
		})

		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrAgendaBusy
		}
		return nil, err
	}

	return updated, nil
}

// Confirm moves a pending appointment to confirmed.
func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != StatusPending {
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.repo.UpdateAppointmentStatus(ctx, id, StatusPending, StatusConfirmed)
	if err != nil {
		return nil, fmt.Errorf("confirm appointment: %w", err)
	}

	s.logEvent(ctx, updated.ID, EventAppointmentConfirmed, map[string]any{})

	return updated, nil
}

// Cancel frees the appointment's slot. No collision check is needed:
// releasing time cannot create a conflict, and cancelled rows drop out of
// every future snapshot.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status == StatusCancelled {
		return nil, ErrInvalidStatusTransition
	}

	updated, err := s.repo.UpdateAppointmentStatus(ctx, id, appt.Status, StatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("cancel appointment: %w", err)
	}

	s.logEvent(ctx, updated.ID, EventAppointmentCancelled, map[string]any{
		"previous_status": string(appt.Status),
	})

	return updated, nil
}

// NextAvailableSlot exposes the slot finder directly: the earliest bookable,
// collision-free slot at or after the candidate.
func (s *Service) NextAvailableSlot(ctx context.Context, cand schedule.Candidate) (schedule.Slot, error) {
	if cand.Duration <= 0 {
		return schedule.Slot{}, ErrInvalidDuration
	}

	bookings, err := s.activeBookings(ctx, cand.Date)
	if err != nil {
		return schedule.Slot{}, err
	}

	return schedule.NextSlot(cand, bookings, s.cfg.Hours, s.cfg.SearchHorizonDays)
}

// SweepMissedAppointments cancels pending appointments whose start time
// passed more than the configured grace ago. Intended to be called by the
// worker periodically.
func (s *Service) SweepMissedAppointments(ctx context.Context) error {
	cutoff := naiveNow().Add(-s.cfg.MissedGrace)

	missed, err := s.repo.FindMissedPending(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("find missed pending appointments: %w", err)
	}

	for _, appt := range missed {
		if _, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, StatusPending, StatusCancelled); err != nil {
			if !errors.Is(err, ErrAppointmentNotFound) {
				s.log.Error().Err(err).Stringer("appointment_id", appt.ID).Msg("failed to cancel missed appointment")
			}
			continue
		}
		s.logEvent(ctx, appt.ID, EventAppointmentMissed, map[string]any{
			"date": appt.Date.String(),
			"time": appt.Time.String(),
		})
	}

	return nil
}

// GetAppointment retrieves an appointment hydrated with its patient record.
func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*AppointmentDetail, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patient, err := s.repo.GetPatientByID(ctx, appt.PatientID)
	if err != nil && !errors.Is(err, ErrPatientNotFound) {
		return nil, fmt.Errorf("load patient: %w", err)
	}

	return &AppointmentDetail{Appointment: *appt, Patient: patient}, nil
}

// ListRange returns the appointments for a day/week/month grid view.
func (s *Service) ListRange(ctx context.Context, from, to schedule.Date) ([]AppointmentDetail, error) {
	details, err := s.repo.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("list appointments by range: %w", err)
	}
	return details, nil
}

// ListByPatient returns a patient's appointment history.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]AppointmentDetail, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	details, err := s.repo.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list appointments by patient: %w", err)
	}
	return details, nil
}

// SearchPatients looks up registry entries by name for the booking form.
func (s *Service) SearchPatients(ctx context.Context, query string, limit int) ([]Patient, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	patients, err := s.repo.SearchPatients(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search patients: %w", err)
	}
	return patients, nil
}

// GetPatient resolves a registry entry by ID.
func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetPatientByID(ctx, id)
}

// RegisterPatient adds a new registry entry.
func (s *Service) RegisterPatient(ctx context.Context, p Patient) (*Patient, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	created, err := s.repo.CreatePatient(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return created, nil
}

func canTransition(from, to Status) bool {
	switch {
	case from == StatusPending && to == StatusConfirmed:
		return true
	case from == StatusPending && to == StatusCancelled:
		return true
	case from == StatusConfirmed && to == StatusCancelled:
		return true
	}
	return false
}

// activeBookings loads the collision snapshot starting at the given date.
// The snapshot extends past the date because the slot finder may roll into
// following days.
func (s *Service) activeBookings(ctx context.Context, from schedule.Date) ([]schedule.Booking, error) {
	appts, err := s.repo.ListActiveOnOrAfter(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("load active appointments: %w", err)
	}

	bookings := make([]schedule.Booking, 0, len(appts))
	for _, a := range appts {
		bookings = append(bookings, a.Booking())
	}
	return bookings, nil
}

// suggest runs the slot finder, tolerating an exhausted horizon: a rejection
// without a suggestion is still a valid outcome.
func (s *Service) suggest(cand schedule.Candidate, bookings []schedule.Booking) *schedule.Slot {
	slot, err := schedule.NextSlot(cand, bookings, s.cfg.Hours, s.cfg.SearchHorizonDays)
	if err != nil {
		return nil
	}
	return &slot
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal event payload")
		data = nil
	}

	apptID := appointmentID

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.log.Error().Err(err).Str("event_type", eventType).Stringer("appointment_id", appointmentID).Msg("failed to insert event log")
	}
}

// naiveNow returns the host's wall-clock reading carried in UTC, matching
// how Combine builds appointment instants.
func naiveNow() time.Time {
	n := time.Now()
	return time.Date(n.Year(), n.Month(), n.Day(), n.Hour(), n.Minute(), n.Second(), 0, time.UTC)
}
