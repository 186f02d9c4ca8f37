package schedule

import (
	"testing"
	"time"
)

func TestCombineIsNaive(t *testing.T) {
	d := Date{Year: 2024, Month: time.June, Day: 10}
	tod := TimeOfDay{Hour: 10, Minute: 15}

	got := Combine(d, tod)

	if got.Year() != 2024 || got.Month() != time.June || got.Day() != 10 {
		t.Errorf("date shifted during combine: got %v", got)
	}
	if got.Hour() != 10 || got.Minute() != 15 {
		t.Errorf("time shifted during combine: got %v", got)
	}
}

func TestSplitRoundTrip(t *testing.T) {
	d := Date{Year: 2024, Month: time.December, Day: 31}
	tod := TimeOfDay{Hour: 20, Minute: 15}

	gd, gt := Split(Combine(d, tod))
	if gd != d || gt != tod {
		t.Errorf("round trip changed values: got %v %v", gd, gt)
	}
}

func TestAddMinutes(t *testing.T) {
	base := Combine(Date{2024, time.June, 10}, TimeOfDay{10, 0})

	plus := AddMinutes(base, 90)
	if _, tod := Split(plus); tod != (TimeOfDay{11, 30}) {
		t.Errorf("AddMinutes(+90) = %v, want 11:30", tod)
	}

	minus := AddMinutes(base, -30)
	if _, tod := Split(minus); tod != (TimeOfDay{9, 30}) {
		t.Errorf("AddMinutes(-30) = %v, want 09:30", tod)
	}

	// Crossing midnight rolls the date.
	late := AddMinutes(Combine(Date{2024, time.June, 10}, TimeOfDay{23, 50}), 20)
	if d, tod := Split(late); d != (Date{2024, time.June, 11}) || tod != (TimeOfDay{0, 10}) {
		t.Errorf("midnight rollover: got %v %v", d, tod)
	}
}

func TestWithinIsInclusiveBothEnds(t *testing.T) {
	start := Combine(Date{2024, time.June, 10}, TimeOfDay{10, 0})
	end := Combine(Date{2024, time.June, 10}, TimeOfDay{10, 30})

	cases := []struct {
		name string
		x    time.Time
		want bool
	}{
		{"at start", start, true},
		{"at end", end, true},
		{"inside", AddMinutes(start, 15), true},
		{"just before", AddMinutes(start, -1), false},
		{"just after", AddMinutes(end, 1), false},
	}
	for _, tc := range cases {
		if got := Within(tc.x, start, end); got != tc.want {
			t.Errorf("%s: Within = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != (Date{2024, time.June, 10}) {
		t.Errorf("got %v", d)
	}
	if d.String() != "2024-06-10" {
		t.Errorf("String() = %q", d.String())
	}

	if _, err := ParseDate("10/06/2024"); err == nil {
		t.Error("expected error for malformed date")
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("16:30")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tod != (TimeOfDay{16, 30}) {
		t.Errorf("got %v", tod)
	}

	if _, err := ParseTimeOfDay("4:30 pm"); err == nil {
		t.Error("expected error for malformed time")
	}
}

func TestAddDays(t *testing.T) {
	got := Date{2024, time.June, 30}.AddDays(1)
	if got != (Date{2024, time.July, 1}) {
		t.Errorf("month rollover: got %v", got)
	}

	got = Date{2024, time.December, 31}.AddDays(1)
	if got != (Date{2025, time.January, 1}) {
		t.Errorf("year rollover: got %v", got)
	}
}

func TestFormat12Hour(t *testing.T) {
	cases := []struct {
		in   TimeOfDay
		want string
	}{
		{TimeOfDay{9, 0}, "9:00 a.m."},
		{TimeOfDay{12, 0}, "12:00 p.m."},
		{TimeOfDay{0, 5}, "12:05 a.m."},
		{TimeOfDay{16, 30}, "4:30 p.m."},
		{TimeOfDay{20, 15}, "8:15 p.m."},
	}
	for _, tc := range cases {
		if got := Format12Hour(tc.in); got != tc.want {
			t.Errorf("Format12Hour(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatDateSpanish(t *testing.T) {
	got := FormatDateSpanish(Date{2024, time.June, 10})
	if got != "10 de junio 2024" {
		t.Errorf("got %q", got)
	}
}
