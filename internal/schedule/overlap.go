package schedule

import (
	"time"

	"github.com/google/uuid"
)

// Booking is the snapshot row the core needs from an existing appointment:
// when it starts and how long it runs. Cancelled appointments must not be
// included in a snapshot — a freed slot is bookable again.
type Booking struct {
	ID       uuid.UUID
	Date     Date
	Time     TimeOfDay
	Duration int // minutes
}

// Span returns the booking's start and end instants.
func (b Booking) Span() (start, end time.Time) {
	start = Combine(b.Date, b.Time)
	return start, AddMinutes(start, b.Duration)
}

// Candidate is a proposed placement to test against existing bookings.
type Candidate struct {
	Date     Date
	Time     TimeOfDay
	Duration int // minutes
}

// Span returns the candidate's start and end instants.
func (c Candidate) Span() (start, end time.Time) {
	start = Combine(c.Date, c.Time)
	return start, AddMinutes(start, c.Duration)
}

// Overlaps reports whether the candidate's interval collides with any
// booking in existing. A booking whose ID equals exclude is skipped, which
// is what lets an edited appointment be saved back into its own slot.
//
// The interval test is deliberately conservative: endpoints are compared
// inclusively on both sides, so an appointment ending at 10:30 collides
// with one starting at 10:30. The clinic prefers over-flagging a boundary
// touch to ever double-booking a chair, and the slot suggestions downstream
// assume this exact behavior. Do not relax it to half-open comparison.
func Overlaps(c Candidate, existing []Booking, exclude uuid.UUID) bool {
	return len(Conflicts(c, existing, exclude)) > 0
}

// Conflicts returns every booking whose interval collides with the
// candidate, under the same conservative test as Overlaps. The result is
// the collision evidence surfaced to the caller on rejection.
func Conflicts(c Candidate, existing []Booking, exclude uuid.UUID) []Booking {
	cStart, cEnd := c.Span()

	var hits []Booking
	for _, b := range existing {
		if exclude != uuid.Nil && b.ID == exclude {
			continue
		}
		bStart, bEnd := b.Span()
		if Within(cStart, bStart, bEnd) ||
			Within(cEnd, bStart, bEnd) ||
			(!cStart.After(bStart) && !cEnd.Before(bEnd)) {
			hits = append(hits, b)
		}
	}
	return hits
}
