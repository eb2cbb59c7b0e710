package schedule

import "time"

// Slot is a resolved entry: the interval that contains the query time plus
// the two activities assigned to it.
type Slot struct {
	Boundary
	Activity
}

// Resolve finds the slot whose [start, end) interval contains t on the given
// day. The start is inclusive, the end exclusive: resolving exactly at a
// boundary start lands in the starting slot, resolving at its end lands in
// the next slot or nowhere.
//
// The second return value is false when the day has no schedule (rest day),
// when t falls outside every boundary, or when the day's table has no entry
// for the containing slot. Boundaries are validated non-overlapping at load
// time, so the first match is the only match.
func (w *Weekly) Resolve(day time.Weekday, t Minutes) (Slot, bool) {
	entries, ok := w.Days[day]
	if !ok {
		return Slot{}, false
	}

	for _, b := range w.Boundaries {
		if t >= b.Start && t < b.End {
			activity, ok := entries[b.Start]
			if !ok {
				return Slot{}, false
			}

			return Slot{Boundary: b, Activity: activity}, true
		}
	}

	return Slot{}, false
}
