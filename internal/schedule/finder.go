package schedule

import (
	"errors"

	"github.com/google/uuid"
)

// ErrNoSlotFound is returned when the forward scan exhausts the search
// horizon without finding a bookable, collision-free slot.
var ErrNoSlotFound = errors.New("no available slot within the search horizon")

// Slot is a concrete placement suggestion: a date and a start time.
type Slot struct {
	Date Date
	Time TimeOfDay
}

// NextSlot finds the earliest bookable, collision-free start at or after the
// candidate's own start. It walks forward in hours.Step-minute increments,
// jumps over the lunch break in one hop, and rolls into the next day at
// opening time when a day is exhausted. horizonDays caps how many calendar
// days are scanned; past the cap the search gives up with ErrNoSlotFound
// rather than walking the calendar forever.
func NextSlot(c Candidate, existing []Booking, hours BusinessHours, horizonDays int) (Slot, error) {
	if horizonDays < 1 {
		horizonDays = 1
	}

	date := c.Date
	from := c.Time
	for day := 0; day < horizonDays; day++ {
		if t, ok := scanDay(date, from, c.Duration, existing, hours); ok {
			return Slot{Date: date, Time: t}, nil
		}
		date = date.AddDays(1)
		from = hours.Open
	}

	return Slot{}, ErrNoSlotFound
}

// scanDay scans a single day from the given start time to closing.
func scanDay(date Date, from TimeOfDay, duration int, existing []Booking, hours BusinessHours) (TimeOfDay, bool) {
	cur := Combine(date, from)
	dayEnd := Combine(date, hours.Close)
	lunchEnd := Combine(date, hours.LunchEnd)

	for cur.Before(dayEnd) {
		_, tod := Split(cur)

		if hours.InLunch(tod) {
			cur = lunchEnd
			continue
		}

		if hours.IsBookable(tod) {
			probe := Candidate{Date: date, Time: tod, Duration: duration}
			if !Overlaps(probe, existing, uuid.Nil) {
				return tod, true
			}
		}

		cur = AddMinutes(cur, hours.Step)
	}

	return TimeOfDay{}, false
}
