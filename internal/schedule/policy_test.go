package schedule

import "testing"

func TestIsBookable(t *testing.T) {
	hours := DefaultHours()

	cases := []struct {
		time TimeOfDay
		want bool
	}{
		{TimeOfDay{9, 0}, true},    // opening, inclusive
		{TimeOfDay{8, 45}, false},  // before opening
		{TimeOfDay{12, 45}, true},  // last morning slot
		{TimeOfDay{13, 0}, false},  // lunch start, exclusive
		{TimeOfDay{14, 30}, false}, // mid lunch
		{TimeOfDay{16, 15}, false}, // just before lunch ends
		{TimeOfDay{16, 30}, true},  // lunch end, inclusive
		{TimeOfDay{20, 15}, true},  // last evening slot
		{TimeOfDay{20, 30}, false}, // closing, exclusive
		{TimeOfDay{22, 0}, false},  // after close
		{TimeOfDay{0, 0}, false},   // midnight
	}
	for _, tc := range cases {
		if got := hours.IsBookable(tc.time); got != tc.want {
			t.Errorf("IsBookable(%v) = %v, want %v", tc.time, got, tc.want)
		}
	}
}

func TestInLunch(t *testing.T) {
	hours := DefaultHours()

	cases := []struct {
		time TimeOfDay
		want bool
	}{
		{TimeOfDay{12, 59}, false},
		{TimeOfDay{13, 0}, true},
		{TimeOfDay{15, 0}, true},
		{TimeOfDay{16, 29}, true},
		{TimeOfDay{16, 30}, false}, // half-open: the jump target must not re-enter
	}
	for _, tc := range cases {
		if got := hours.InLunch(tc.time); got != tc.want {
			t.Errorf("InLunch(%v) = %v, want %v", tc.time, got, tc.want)
		}
	}
}
