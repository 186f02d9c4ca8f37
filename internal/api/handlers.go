package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/odontoweb/clinic-agenda/internal/appointment"
	redisclient "github.com/odontoweb/clinic-agenda/internal/redis"
	"github.com/odontoweb/clinic-agenda/internal/schedule"
)

func scheduleAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ScheduleAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}

		date, err := schedule.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be in YYYY-MM-DD form")
			return
		}

		tod, err := schedule.ParseTimeOfDay(req.Time)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_time", "time must be in HH:MM form")
			return
		}

		appt, err := svc.Schedule(r.Context(), appointment.ScheduleRequest{
			PatientID:       patientID,
			Date:            date,
			Time:            tod,
			DurationMinutes: req.DurationMinutes,
			Kind:            req.Kind,
			Notes:           req.Notes,
		})
		if err != nil {
			handleSchedulingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(*appt))
	}
}

func listAppointmentsHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		from, err := schedule.ParseDate(r.URL.Query().Get("from"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_from", "from must be in YYYY-MM-DD form")
			return
		}
		to := from
		if v := r.URL.Query().Get("to"); v != "" {
			if to, err = schedule.ParseDate(v); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_to", "to must be in YYYY-MM-DD form")
				return
			}
		}

		details, err := svc.ListRange(r.Context(), from, to)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		resp := make([]AppointmentResponse, 0, len(details))
		for _, d := range details {
			resp = append(resp, toDetailResponse(d))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func getAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r)
		if !ok {
			return
		}

		detail, err := svc.GetAppointment(r.Context(), id)
		if err != nil {
			handleSchedulingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toDetailResponse(*detail))
	}
}

func updateAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r)
		if !ok {
			return
		}

		var req UpdateAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		changes := appointment.Changes{
			DurationMinutes: req.DurationMinutes,
			Kind:            req.Kind,
			Notes:           req.Notes,
		}

		if req.Date != nil {
			date, err := schedule.ParseDate(*req.Date)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_date", "date must be in YYYY-MM-DD form")
				return
			}
			changes.Date = &date
		}
		if req.Time != nil {
			tod, err := schedule.ParseTimeOfDay(*req.Time)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_time", "time must be in HH:MM form")
				return
			}
			changes.Time = &tod
		}
		if req.Status != nil {
			status := appointment.Status(*req.Status)
			switch status {
			case appointment.StatusPending, appointment.StatusConfirmed, appointment.StatusCancelled:
			default:
				writeError(w, http.StatusBadRequest, "invalid_status", "status must be pending, confirmed or cancelled")
				return
			}
			changes.Status = &status
		}

		appt, err := svc.Reschedule(r.Context(), id, changes)
		if err != nil {
			handleSchedulingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(*appt))
	}
}

func confirmAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r)
		if !ok {
			return
		}

		appt, err := svc.Confirm(r.Context(), id)
		if err != nil {
			handleSchedulingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(*appt))
	}
}

func cancelAppointmentHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := appointmentID(w, r)
		if !ok {
			return
		}

		appt, err := svc.Cancel(r.Context(), id)
		if err != nil {
			handleSchedulingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(*appt))
	}
}

func nextSlotHandler(svc *appointment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		date, err := schedule.ParseDate(q.Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be in YYYY-MM-DD form")
			return
		}
		tod, err := schedule.ParseTimeOfDay(q.Get("time"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_time", "time must be in HH:MM form")
			return
		}
		duration := 30
		if v := q.Get("duration"); v != "" {
			if duration, err = strconv.Atoi(v); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_duration", "duration must be an integer number of minutes")
				return
			}
		}

		slot, err := svc.NextAvailableSlot(r.Context(), schedule.Candidate{
			Date: date, Time: tod, Duration: duration,
		})
		if err != nil {
			handleSchedulingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toSlotResponse(slot))
	}
}

func appointmentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func handleSchedulingError(w http.ResponseWriter, err error) {
	var unavailable *appointment.SlotUnavailableError

	switch {
	case errors.As(err, &unavailable):
		resp := ErrorResponse{
			Error:     "slot_unavailable",
			Details:   unavailable.Error(),
			Reason:    unavailable.Reason,
			Conflicts: toConflictResponses(unavailable.Conflicts),
		}
		if unavailable.Suggestion != nil {
			resp.Suggestion = toSlotResponse(*unavailable.Suggestion)
		}
		writeJSON(w, http.StatusConflict, resp)
	case errors.Is(err, appointment.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, appointment.ErrInvalidDuration):
		writeError(w, http.StatusBadRequest, "invalid_duration", err.Error())
	case errors.Is(err, appointment.ErrAppointmentCancelled):
		writeError(w, http.StatusConflict, "appointment_cancelled", err.Error())
	case errors.Is(err, appointment.ErrInvalidStatusTransition):
		writeError(w, http.StatusConflict, "invalid_status_transition", err.Error())
	case errors.Is(err, appointment.ErrAgendaBusy),
		errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "agenda_busy", "the agenda is being updated, please retry shortly")
	case errors.Is(err, schedule.ErrNoSlotFound):
		writeError(w, http.StatusNotFound, "no_slot_found", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
