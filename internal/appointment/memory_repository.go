package appointment

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odontoweb/clinic-agenda/internal/schedule"
)

// MemoryRepository is an in-memory Repository used by tests and local
// experiments. It mirrors the Postgres implementation's semantics, including
// the compare-and-set status update.
type MemoryRepository struct {
	mu           sync.RWMutex
	patients     map[uuid.UUID]Patient
	appointments map[uuid.UUID]Appointment
	events       []EventLog
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		patients:     make(map[uuid.UUID]Patient),
		appointments: make(map[uuid.UUID]Appointment),
	}
}

func (r *MemoryRepository) GetPatientByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

func (r *MemoryRepository) SearchPatients(_ context.Context, query string, limit int) ([]Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(query)
	var result []Patient
	for _, p := range r.patients {
		if q == "" || strings.Contains(strings.ToLower(p.Name), q) {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *MemoryRepository) CreatePatient(_ context.Context, p Patient) (*Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.patients[p.ID] = p
	return &p, nil
}

func (r *MemoryRepository) GetAppointmentByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (r *MemoryRepository) ListActiveOnOrAfter(_ context.Context, from schedule.Date) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fromInstant := schedule.Combine(from, schedule.TimeOfDay{})
	var result []Appointment
	for _, a := range r.appointments {
		if a.Status != StatusCancelled && !a.Start().Before(fromInstant) {
			result = append(result, a)
		}
	}
	return result, nil
}

func (r *MemoryRepository) ListByDateRange(_ context.Context, from, to schedule.Date) ([]AppointmentDetail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []AppointmentDetail
	for _, a := range r.appointments {
		if a.Status == StatusCancelled {
			continue
		}
		if a.Date.String() >= from.String() && a.Date.String() <= to.String() {
			result = append(result, r.detail(a))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Start().Before(result[j].Start()) })
	return result, nil
}

func (r *MemoryRepository) ListByPatient(_ context.Context, patientID uuid.UUID, limit, offset int) ([]AppointmentDetail, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []AppointmentDetail
	for _, a := range r.appointments {
		if a.PatientID == patientID {
			result = append(result, r.detail(a))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[j].Start().Before(result[i].Start()) })

	if offset > len(result) {
		offset = len(result)
	}
	result = result[offset:]
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *MemoryRepository) Insert(_ context.Context, a Appointment) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
	r.appointments[a.ID] = a
	return &a, nil
}

func (r *MemoryRepository) Update(_ context.Context, a Appointment) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.appointments[a.ID]; !ok {
		return nil, ErrAppointmentNotFound
	}
	a.UpdatedAt = time.Now()
	r.appointments[a.ID] = a
	return &a, nil
}

func (r *MemoryRepository) UpdateAppointmentStatus(_ context.Context, id uuid.UUID, from, to Status) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.appointments[id]
	if !ok || a.Status != from {
		return nil, ErrAppointmentNotFound
	}
	a.Status = to
	a.UpdatedAt = time.Now()
	r.appointments[id] = a
	return &a, nil
}

func (r *MemoryRepository) FindMissedPending(_ context.Context, cutoff time.Time) ([]Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Appointment
	for _, a := range r.appointments {
		if a.Status == StatusPending && a.Start().Before(cutoff) {
			result = append(result, a)
		}
	}
	return result, nil
}

func (r *MemoryRepository) InsertEvent(_ context.Context, ev EventLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ev.ID = int64(len(r.events) + 1)
	r.events = append(r.events, ev)
	return nil
}

// Events returns a copy of the recorded event log.
func (r *MemoryRepository) Events() []EventLog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]EventLog, len(r.events))
	copy(out, r.events)
	return out
}

func (r *MemoryRepository) detail(a Appointment) AppointmentDetail {
	d := AppointmentDetail{Appointment: a}
	if p, ok := r.patients[a.PatientID]; ok {
		d.Patient = &p
	}
	return d
}
