package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odontoweb/clinic-agenda/internal/schedule"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Appointment dates and times travel as text ("2006-01-02", "15:04") so the
// values stay naive wall-clock readings; letting the driver round-trip them
// through timestamptz is how date-shift bugs happen.
const appointmentColumns = `
	id, patient_id, to_char(date, 'YYYY-MM-DD'), to_char(start_time, 'HH24:MI'),
	duration_minutes, kind, notes, status, created_at, updated_at`

// Helpers

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var guardian, phone, email *string

	err := row.Scan(
		&p.ID,
		&p.Name,
		&guardian,
		&phone,
		&email,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	p.Guardian = guardian
	p.Phone = phone
	p.Email = email
	return &p, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var dateStr, timeStr string

	err := row.Scan(
		&a.ID,
		&a.PatientID,
		&dateStr,
		&timeStr,
		&a.DurationMinutes,
		&a.Kind,
		&a.Notes,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	if a.Date, err = schedule.ParseDate(dateStr); err != nil {
		return nil, err
	}
	if a.Time, err = schedule.ParseTimeOfDay(timeStr); err != nil {
		return nil, err
	}

	return &a, nil
}

// Interface methods

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, guardian, phone, email, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) SearchPatients(ctx context.Context, query string, limit int) ([]Patient, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, guardian, phone, email, created_at, updated_at
		FROM patients
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}

	return result, rows.Err()
}

func (r *PgRepository) CreatePatient(ctx context.Context, p Patient) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO patients (id, name, guardian, phone, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
		RETURNING id, name, guardian, phone, email, created_at, updated_at
	`, p.ID, p.Name, p.Guardian, p.Phone, p.Email)
	return scanPatient(row)
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) ListActiveOnOrAfter(ctx context.Context, from schedule.Date) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status <> 'cancelled'
		  AND date >= $1::date
		ORDER BY date, start_time
	`, from.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (r *PgRepository) ListByDateRange(ctx context.Context, from, to schedule.Date) ([]AppointmentDetail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.patient_id, to_char(a.date, 'YYYY-MM-DD'), to_char(a.start_time, 'HH24:MI'),
		       a.duration_minutes, a.kind, a.notes, a.status, a.created_at, a.updated_at,
		       p.id, p.name, p.guardian, p.phone, p.email, p.created_at, p.updated_at
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.status <> 'cancelled'
		  AND a.date BETWEEN $1::date AND $2::date
		ORDER BY a.date, a.start_time
	`, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDetails(rows)
}

func (r *PgRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]AppointmentDetail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.patient_id, to_char(a.date, 'YYYY-MM-DD'), to_char(a.start_time, 'HH24:MI'),
		       a.duration_minutes, a.kind, a.notes, a.status, a.created_at, a.updated_at,
		       p.id, p.name, p.guardian, p.phone, p.email, p.created_at, p.updated_at
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		WHERE a.patient_id = $1
		ORDER BY a.date DESC, a.start_time DESC
		LIMIT $2 OFFSET $3
	`, patientID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectDetails(rows)
}

func (r *PgRepository) Insert(ctx context.Context, a Appointment) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments
			(id, patient_id, date, start_time, duration_minutes, kind, notes, status, created_at, updated_at)
		VALUES ($1, $2, $3::date, $4::time, $5, $6, $7, $8, now(), now())
		RETURNING `+appointmentColumns+`
	`, a.ID, a.PatientID, a.Date.String(), a.Time.String(), a.DurationMinutes, a.Kind, a.Notes, a.Status)
	return scanAppointment(row)
}

func (r *PgRepository) Update(ctx context.Context, a Appointment) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET patient_id = $2,
		    date = $3::date,
		    start_time = $4::time,
		    duration_minutes = $5,
		    kind = $6,
		    notes = $7,
		    status = $8,
		    updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, a.ID, a.PatientID, a.Date.String(), a.Time.String(), a.DurationMinutes, a.Kind, a.Notes, a.Status)
	return scanAppointment(row)
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING `+appointmentColumns+`
	`, id, to, from)
	return scanAppointment(row)
}

func (r *PgRepository) FindMissedPending(ctx context.Context, cutoff time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE status = 'pending'
		  AND date + start_time < $1::timestamp
	`, cutoff.Format("2006-01-02 15:04:05"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectAppointments(rows)
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}
	return result, rows.Err()
}

func collectDetails(rows pgx.Rows) ([]AppointmentDetail, error) {
	var result []AppointmentDetail
	for rows.Next() {
		var a Appointment
		var p Patient
		var dateStr, timeStr string
		var guardian, phone, email *string

		err := rows.Scan(
			&a.ID, &a.PatientID, &dateStr, &timeStr,
			&a.DurationMinutes, &a.Kind, &a.Notes, &a.Status, &a.CreatedAt, &a.UpdatedAt,
			&p.ID, &p.Name, &guardian, &phone, &email, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}

		if a.Date, err = schedule.ParseDate(dateStr); err != nil {
			return nil, err
		}
		if a.Time, err = schedule.ParseTimeOfDay(timeStr); err != nil {
			return nil, err
		}

		p.Guardian = guardian
		p.Phone = phone
		p.Email = email

		result = append(result, AppointmentDetail{Appointment: a, Patient: &p})
	}
	return result, rows.Err()
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
