package schedule

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNextSlotSkipsOccupiedWindow(t *testing.T) {
	existing := []Booking{booking(10, TimeOfDay{10, 0}, 30)} // 10:00–10:30

	got, err := NextSlot(candidate(10, TimeOfDay{10, 15}, 30), existing, DefaultHours(), 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 10:30 still touches the existing booking's end under the inclusive
	// boundary test, so the first clear slot is 10:45.
	want := Slot{Date: Date{2024, time.June, 10}, Time: TimeOfDay{10, 45}}
	if got != want {
		t.Errorf("got %v %v, want %v %v", got.Date, got.Time, want.Date, want.Time)
	}
}

func TestNextSlotOnFreeCalendarReturnsCandidate(t *testing.T) {
	got, err := NextSlot(candidate(10, TimeOfDay{11, 0}, 30), nil, DefaultHours(), 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Time != (TimeOfDay{11, 0}) || got.Date != (Date{2024, time.June, 10}) {
		t.Errorf("free calendar should keep the candidate slot, got %v %v", got.Date, got.Time)
	}
}

func TestNextSlotJumpsLunch(t *testing.T) {
	got, err := NextSlot(candidate(10, TimeOfDay{13, 0}, 30), nil, DefaultHours(), 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Slot{Date: Date{2024, time.June, 10}, Time: TimeOfDay{16, 30}}
	if got != want {
		t.Errorf("lunch-start request: got %v %v, want 16:30 same day", got.Date, got.Time)
	}

	// Mid-lunch requests land on the same boundary.
	got, err = NextSlot(candidate(10, TimeOfDay{14, 45}, 30), nil, DefaultHours(), 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("mid-lunch request: got %v %v, want 16:30 same day", got.Date, got.Time)
	}
}

func TestNextSlotRollsOverToNextDay(t *testing.T) {
	// Block every evening slot from 20:15 onward; a late request has nowhere
	// to go today.
	existing := []Booking{booking(10, TimeOfDay{20, 0}, 30)} // runs to 20:30

	got, err := NextSlot(candidate(10, TimeOfDay{20, 15}, 60), existing, DefaultHours(), 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Slot{Date: Date{2024, time.June, 11}, Time: TimeOfDay{9, 0}}
	if got != want {
		t.Errorf("got %v %v, want next day at opening", got.Date, got.Time)
	}
}

func TestNextSlotAfterCloseRollsOver(t *testing.T) {
	got, err := NextSlot(candidate(10, TimeOfDay{21, 0}, 30), nil, DefaultHours(), 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Slot{Date: Date{2024, time.June, 11}, Time: TimeOfDay{9, 0}}
	if got != want {
		t.Errorf("got %v %v, want next day at opening", got.Date, got.Time)
	}
}

func TestNextSlotResultIsBookableAndClear(t *testing.T) {
	hours := DefaultHours()
	existing := []Booking{
		booking(10, TimeOfDay{9, 0}, 60),
		booking(10, TimeOfDay{10, 30}, 90),
		booking(10, TimeOfDay{16, 30}, 240),
	}

	starts := []TimeOfDay{{9, 0}, {9, 30}, {12, 0}, {13, 30}, {17, 0}, {19, 45}}
	for _, start := range starts {
		got, err := NextSlot(candidate(10, start, 30), existing, hours, 90)
		if err != nil {
			t.Fatalf("start %v: unexpected error: %v", start, err)
		}
		if !hours.IsBookable(got.Time) {
			t.Errorf("start %v: suggested %v is not bookable", start, got.Time)
		}
		probe := Candidate{Date: got.Date, Time: got.Time, Duration: 30}
		if Overlaps(probe, existing, uuid.Nil) {
			t.Errorf("start %v: suggested %v %v still collides", start, got.Date, got.Time)
		}
		if Combine(got.Date, got.Time).Before(Combine(Date{2024, time.June, 10}, start)) {
			t.Errorf("start %v: suggestion %v %v is earlier than the request", start, got.Date, got.Time)
		}
	}
}

func TestNextSlotHorizonCap(t *testing.T) {
	// Saturate every day inside the horizon so the scan has to give up.
	var existing []Booking
	for day := 10; day < 13; day++ {
		for h := 9; h < 21; h++ {
			existing = append(existing, booking(day, TimeOfDay{h, 0}, 60))
		}
	}

	_, err := NextSlot(candidate(10, TimeOfDay{9, 0}, 30), existing, DefaultHours(), 3)
	if !errors.Is(err, ErrNoSlotFound) {
		t.Fatalf("got %v, want ErrNoSlotFound", err)
	}
}

func TestNextSlotCrossesMultipleDays(t *testing.T) {
	// Two fully blocked days, then a free one.
	var existing []Booking
	for day := 10; day < 12; day++ {
		for h := 9; h < 21; h++ {
			existing = append(existing, booking(day, TimeOfDay{h, 0}, 60))
		}
	}

	got, err := NextSlot(candidate(10, TimeOfDay{9, 0}, 30), existing, DefaultHours(), 90)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Slot{Date: Date{2024, time.June, 12}, Time: TimeOfDay{9, 0}}
	if got != want {
		t.Errorf("got %v %v, want opening slot two days later", got.Date, got.Time)
	}
}
