package tool

import (
	"fmt"
	"sort"
	"time"
)

type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Duration() time.Duration { return i.End.Sub(i.Start) }

// WorkWindow is the bookable part of a day, as offsets from local midnight.
type WorkWindow struct {
	Start time.Duration
	End   time.Duration
}

func DefaultWorkWindow() WorkWindow {
	return WorkWindow{Start: 8 * time.Hour, End: 18 * time.Hour}
}

func (w WorkWindow) Bounds(day time.Time) (opens, closes time.Time) {
	return atClock(day, w.Start), atClock(day, w.End)
}

func (w WorkWindow) String() string {
	return fmt.Sprintf("%s-%s", clockString(w.Start), clockString(w.End))
}

func clockString(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

// FreeSlots sweeps the busy intervals from opens to closes and returns the gaps
// between them. Overlapping busy intervals are absorbed by advancing the
// cursor to the furthest end seen. Intervals with Start after End are not
// rejected here; use clipToWindow first.
func FreeSlots(busy []Interval, opens, closes time.Time) []Interval {
	sorted := make([]Interval, len(busy))
	copy(sorted, busy)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start.Before(sorted[j].Start) })

	var free []Interval
	cursor := opens
	for _, b := range sorted {
		if b.Start.After(cursor) {
			free = append(free, Interval{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(closes) {
		free = append(free, Interval{Start: cursor, End: closes})
	}
	return free
}

// clipToWindow drops inverted or empty intervals and trims the rest to
// [opens, closes), discarding anything that falls entirely outside.
func clipToWindow(busy []Interval, opens, closes time.Time) []Interval {
	out := make([]Interval, 0, len(busy))
	for _, b := range busy {
		if !b.End.After(b.Start) {
			continue
		}
		if !b.End.After(opens) || !b.Start.Before(closes) {
			continue
		}
		if b.Start.Before(opens) {
			b.Start = opens
		}
		if b.End.After(closes) {
			b.End = closes
		}
		out = append(out, b)
	}
	return out
}
