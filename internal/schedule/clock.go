// Package schedule implements the clinic's appointment scheduling core:
// calendar-time utilities, the business-hours policy, overlap detection and
// the next-available-slot search. Everything here is pure — callers pass in
// a snapshot of existing bookings and get a deterministic answer back.
package schedule

import (
	"fmt"
	"time"
)

// Date is a calendar date with no timezone attached. Clinic dates are always
// local wall-clock dates; attaching a zone is what produced the off-by-one-day
// bugs this type exists to avoid.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// TimeOfDay is a wall-clock time with minute precision.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseDate parses a date in "2006-01-02" form.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// ParseTimeOfDay parses a time in "15:04" form.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// AddDays returns the date n days later, normalizing month/year rollover.
func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC)
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Minutes returns minutes since midnight, used for ordering times of day.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Before reports whether t is strictly earlier in the day than u.
func (t TimeOfDay) Before(u TimeOfDay) bool {
	return t.Minutes() < u.Minutes()
}

// Combine builds the absolute instant for a date and time of day. The result
// is carried in time.UTC purely as a fixed-offset container: no zone
// conversion is ever applied, so combining "2024-06-10" with "10:00" always
// yields 10:00 on June 10th regardless of the host timezone.
func Combine(d Date, t TimeOfDay) time.Time {
	return time.Date(d.Year, d.Month, d.Day, t.Hour, t.Minute, 0, 0, time.UTC)
}

// Split is the inverse of Combine.
func Split(instant time.Time) (Date, TimeOfDay) {
	return Date{Year: instant.Year(), Month: instant.Month(), Day: instant.Day()},
		TimeOfDay{Hour: instant.Hour(), Minute: instant.Minute()}
}

// AddMinutes returns the instant n minutes later; n may be negative.
func AddMinutes(instant time.Time, n int) time.Time {
	return instant.Add(time.Duration(n) * time.Minute)
}

// Within reports whether x lies in [start, end], inclusive on both
// endpoints. The overlap detector depends on this inclusiveness; see
// Overlaps before changing it.
func Within(x, start, end time.Time) bool {
	return !x.Before(start) && !x.After(end)
}

// Format12Hour renders a time of day as the 12-hour string shown in the
// agenda ("4:30 p.m.").
func Format12Hour(t TimeOfDay) string {
	hour := (t.Hour+11)%12 + 1
	ampm := "a.m."
	if t.Hour >= 12 {
		ampm = "p.m."
	}
	return fmt.Sprintf("%d:%02d %s", hour, t.Minute, ampm)
}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// FormatDateSpanish renders a date the way the front desk reads it:
// "10 de junio 2024".
func FormatDateSpanish(d Date) string {
	return fmt.Sprintf("%d de %s %d", d.Day, spanishMonths[int(d.Month)-1], d.Year)
}
