package schedule

// BusinessHours describes when the clinic accepts appointment starts.
// Bookable start times are [Open, LunchStart) and [LunchEnd, Close).
type BusinessHours struct {
	Open       TimeOfDay
	Close      TimeOfDay
	LunchStart TimeOfDay
	LunchEnd   TimeOfDay
	Step       int // slot search granularity in minutes
}

// DefaultHours are the clinic's observed operating hours: open 09:00–20:30
// with a 13:00–16:30 lunch break, searching in 15-minute steps.
func DefaultHours() BusinessHours {
	return BusinessHours{
		Open:       TimeOfDay{Hour: 9},
		Close:      TimeOfDay{Hour: 20, Minute: 30},
		LunchStart: TimeOfDay{Hour: 13},
		LunchEnd:   TimeOfDay{Hour: 16, Minute: 30},
		Step:       15,
	}
}

// IsBookable reports whether an appointment may *start* at t. Only the start
// is gated: a long appointment that begins before lunch may run into the
// break, and overlap detection is what keeps its interior clear of other
// bookings.
func (h BusinessHours) IsBookable(t TimeOfDay) bool {
	m := t.Minutes()
	return (m >= h.Open.Minutes() && m < h.LunchStart.Minutes()) ||
		(m >= h.LunchEnd.Minutes() && m < h.Close.Minutes())
}

// InLunch reports whether t falls inside the lunch break [LunchStart,
// LunchEnd). The slot search uses this to jump straight to the end of the
// break instead of scanning through it.
func (h BusinessHours) InLunch(t TimeOfDay) bool {
	m := t.Minutes()
	return m >= h.LunchStart.Minutes() && m < h.LunchEnd.Minutes()
}
