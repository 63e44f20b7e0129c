package schedule

import (
	"testing"
	"time"
)

func at(hour, min int) time.Time {
	return time.Date(2025, time.March, 10, hour, min, 0, 0, time.UTC)
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name string
		a, b Interval
		want bool
	}{
		{
			name: "identical intervals overlap",
			a:    Interval{at(10, 0), at(11, 0)},
			b:    Interval{at(10, 0), at(11, 0)},
			want: true,
		},
		{
			name: "partial overlap",
			a:    Interval{at(10, 0), at(10, 30)},
			b:    Interval{at(10, 15), at(10, 45)},
			want: true,
		},
		{
			name: "containment",
			a:    Interval{at(9, 0), at(12, 0)},
			b:    Interval{at(10, 0), at(10, 15)},
			want: true,
		},
		{
			name: "touching endpoints do not overlap",
			a:    Interval{at(10, 0), at(10, 30)},
			b:    Interval{at(10, 30), at(11, 0)},
			want: false,
		},
		{
			name: "disjoint",
			a:    Interval{at(9, 0), at(9, 30)},
			b:    Interval{at(11, 0), at(11, 30)},
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Overlaps(tc.a, tc.b); got != tc.want {
				t.Fatalf("Overlaps(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
			// Symmetric predicate.
			if got := Overlaps(tc.b, tc.a); got != tc.want {
				t.Fatalf("Overlaps(%v, %v) = %v, want %v", tc.b, tc.a, got, tc.want)
			}
		})
	}
}

func TestIntervalIsValid(t *testing.T) {
	if !(Interval{at(10, 0), at(10, 15)}).IsValid() {
		t.Fatal("expected forward interval to be valid")
	}
	if (Interval{at(10, 0), at(10, 0)}).IsValid() {
		t.Fatal("expected empty interval to be invalid")
	}
	if (Interval{at(11, 0), at(10, 0)}).IsValid() {
		t.Fatal("expected inverted interval to be invalid")
	}
}

func TestIntervalContains(t *testing.T) {
	i := Interval{at(10, 0), at(11, 0)}
	if !i.Contains(at(10, 0)) {
		t.Fatal("start instant should be contained")
	}
	if !i.Contains(at(10, 59)) {
		t.Fatal("instant inside should be contained")
	}
	if i.Contains(at(11, 0)) {
		t.Fatal("end instant should not be contained")
	}
}
