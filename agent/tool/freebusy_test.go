package tool

import (
	"sort"
	"testing"
	"time"
)

func clock(h, m int) time.Time {
	return time.Date(2026, 3, 10, h, m, 0, 0, time.UTC)
}

func TestFreeSlots(t *testing.T) {
	t.Parallel()

	opens, closes := clock(8, 0), clock(18, 0)
	cases := []struct {
		name string
		busy []Interval
		want []Interval
	}{
		{
			name: "empty day",
			want: []Interval{{clock(8, 0), clock(18, 0)}},
		},
		{
			name: "unsorted input",
			busy: []Interval{{clock(14, 0), clock(15, 0)}, {clock(9, 0), clock(10, 30)}},
			want: []Interval{{clock(8, 0), clock(9, 0)}, {clock(10, 30), clock(14, 0)}, {clock(15, 0), clock(18, 0)}},
		},
		{
			name: "overlap absorbed",
			busy: []Interval{{clock(9, 0), clock(11, 0)}, {clock(10, 0), clock(10, 30)}, {clock(10, 45), clock(12, 0)}},
			want: []Interval{{clock(8, 0), clock(9, 0)}, {clock(12, 0), clock(18, 0)}},
		},
		{
			name: "busy at open and close",
			busy: []Interval{{clock(8, 0), clock(9, 0)}, {clock(17, 0), clock(18, 0)}},
			want: []Interval{{clock(9, 0), clock(17, 0)}},
		},
		{
			name: "fully booked",
			busy: []Interval{{clock(8, 0), clock(18, 0)}},
		},
		{
			name: "back to back",
			busy: []Interval{{clock(9, 0), clock(10, 0)}, {clock(10, 0), clock(11, 0)}},
			want: []Interval{{clock(8, 0), clock(9, 0)}, {clock(11, 0), clock(18, 0)}},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := FreeSlots(tc.busy, opens, closes)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d slots, got %d: %v", len(tc.want), len(got), got)
			}
			for i := range got {
				if !got[i].Start.Equal(tc.want[i].Start) || !got[i].End.Equal(tc.want[i].End) {
					t.Fatalf("slot %d: expected %v, got %v", i, tc.want[i], got[i])
				}
			}
		})
	}
}

// Free and busy together must tile the window with no gap and no overlap
// when busy intervals are sorted and disjoint.
func TestFreeSlotsCoverWindowExactlyOnce(t *testing.T) {
	t.Parallel()

	opens, closes := clock(8, 0), clock(18, 0)
	step := 30 * time.Minute
	slots := int(closes.Sub(opens) / step)

	// every subset of a 20 slot grid would be too many; walk bit patterns with a stride
	for mask := 0; mask < 1<<slots; mask += 9973 {
		var busy []Interval
		for i := 0; i < slots; i++ {
			if mask&(1<<i) == 0 {
				continue
			}
			start := opens.Add(time.Duration(i) * step)
			if n := len(busy); n > 0 && busy[n-1].End.Equal(start) {
				busy[n-1].End = start.Add(step)
				continue
			}
			busy = append(busy, Interval{start, start.Add(step)})
		}

		free := FreeSlots(busy, opens, closes)
		all := append(append([]Interval{}, busy...), free...)
		sort.Slice(all, func(i, j int) bool { return all[i].Start.Before(all[j].Start) })

		cursor := opens
		for _, iv := range all {
			if !iv.Start.Equal(cursor) {
				t.Fatalf("mask %b: gap or overlap at %v (cursor %v)", mask, iv.Start, cursor)
			}
			if !iv.End.After(iv.Start) {
				t.Fatalf("mask %b: empty interval %v", mask, iv)
			}
			cursor = iv.End
		}
		if !cursor.Equal(closes) {
			t.Fatalf("mask %b: coverage ends at %v", mask, cursor)
		}
	}
}

func TestClipToWindow(t *testing.T) {
	t.Parallel()

	opens, closes := clock(8, 0), clock(18, 0)
	got := clipToWindow([]Interval{
		{clock(7, 0), clock(9, 0)},   // trimmed at open
		{clock(12, 0), clock(11, 0)}, // inverted, dropped
		{clock(6, 0), clock(7, 0)},   // before window, dropped
		{clock(17, 30), clock(19, 0)},
		{clock(13, 0), clock(13, 0)}, // empty, dropped
	}, opens, closes)

	if len(got) != 2 {
		t.Fatalf("expected 2 intervals, got %v", got)
	}
	if !got[0].Start.Equal(opens) || !got[1].End.Equal(closes) {
		t.Fatalf("unexpected clipping: %v", got)
	}
}

func TestWorkWindowString(t *testing.T) {
	t.Parallel()

	if got := DefaultWorkWindow().String(); got != "08:00-18:00" {
		t.Fatalf("unexpected window: %s", got)
	}
}
