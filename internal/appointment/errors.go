package appointment

import (
	"errors"
	"fmt"

	"github.com/odontoweb/clinic-agenda/internal/schedule"
)

var (
	ErrInvalidDuration         = errors.New("duration must be a positive number of minutes")
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	ErrAppointmentCancelled    = errors.New("appointment is cancelled and can no longer be edited")
	ErrAgendaBusy              = errors.New("the agenda is being updated, please retry")
)

// Rejection reasons carried by SlotUnavailableError.
const (
	ReasonConflict   = "conflict"
	ReasonOutOfHours = "out_of_hours"
)

// SlotUnavailableError is the ordinary business outcome for a placement that
// cannot be accepted: the start time is outside bookable hours, or the
// interval collides with existing appointments. It is not an internal
// failure — callers unwrap it to show the conflicts and, when scheduling a
// new appointment, the suggested alternative.
type SlotUnavailableError struct {
	Reason     string
	Conflicts  []schedule.Booking
	Suggestion *schedule.Slot
}

func (e *SlotUnavailableError) Error() string {
	if e.Suggestion != nil {
		return fmt.Sprintf("slot unavailable (%s), next available %s %s",
			e.Reason, e.Suggestion.Date, e.Suggestion.Time)
	}
	return fmt.Sprintf("slot unavailable (%s)", e.Reason)
}
