package schedule

import "time"

// DefaultSlotMinutes is the standard grid granularity.
const DefaultSlotMinutes = 15

// Slot is one grid cell of a room's working day: the slot covers
// [Start, Start+granularity) and is either free or occupied.
type Slot struct {
	Start time.Time `json:"start"`
	Free  bool      `json:"is_free"`
}

// DayOf normalizes t to UTC midnight of its calendar date. All grid and
// cache keys are derived from this normalized date.
func DayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SlotIndex returns the 15-minute slot of the UTC day that t falls in
// (0..95). Reporting only; never used for overlap decisions.
func SlotIndex(t time.Time) int {
	t = t.UTC()
	return (t.Hour()*60 + t.Minute()) / DefaultSlotMinutes
}

// GenerateGrid builds the slot grid for one calendar day.
//
// date is normalized to UTC midnight; workingStart and workingEnd are
// offsets from that midnight. Slots start at date+workingStart and step
// by granularity up to, but excluding, date+workingEnd. A slot is
// occupied iff any busy interval overlaps it.
//
// An inverted or empty working window (workingStart >= workingEnd)
// yields an empty grid rather than an error. Output is deterministic for
// a given busy set, which the availability cache relies on.
func GenerateGrid(date time.Time, workingStart, workingEnd time.Duration, granularity time.Duration, busy []Interval) []Slot {
	if granularity <= 0 {
		granularity = DefaultSlotMinutes * time.Minute
	}
	day := DayOf(date)
	start := day.Add(workingStart)
	end := day.Add(workingEnd)

	var grid []Slot
	for t := start; t.Before(end); t = t.Add(granularity) {
		slot := Interval{Start: t, End: t.Add(granularity)}
		occupied := false
		for _, b := range busy {
			if Overlaps(slot, b) {
				occupied = true
				break
			}
		}
		grid = append(grid, Slot{Start: t, Free: !occupied})
	}
	return grid
}
