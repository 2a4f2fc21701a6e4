// Package timeline contains placement helpers for clips on numbered tracks
package timeline

import (
	"cmp"
	"slices"

	"bitwise74/studio-api/internal/model"
)

// FixedClipDuration is the length in seconds of every appended clip. It
// does not depend on the duration of the source media
const FixedClipDuration = 5.0

// NextStart returns where the next appended clip on track begins: the
// largest end time on that track, 0 for an empty track
func NextStart(clips []model.TimelineClip, track int) float64 {
	var end float64
	for _, c := range clips {
		if c.TrackNumber == track && c.EndTime > end {
			end = c.EndTime
		}
	}

	return end
}

// Append returns the range a new clip of the given duration occupies when
// appended to track. A non-positive duration uses FixedClipDuration
func Append(clips []model.TimelineClip, track int, duration float64) (start, end float64) {
	if duration <= 0 {
		duration = FixedClipDuration
	}

	start = NextStart(clips, track)
	return start, start + duration
}

// Sort orders clips by track number, then start time
func Sort(clips []model.TimelineClip) {
	slices.SortStableFunc(clips, func(a, b model.TimelineClip) int {
		if c := cmp.Compare(a.TrackNumber, b.TrackNumber); c != 0 {
			return c
		}
		return cmp.Compare(a.StartTime, b.StartTime)
	})
}

// Overlap is a pair of clips on the same track sharing some time
type Overlap struct {
	A, B string
}

// Overlaps reports every overlapping pair on track. Touching clips
// (one ends where the next starts) don't overlap
func Overlaps(clips []model.TimelineClip, track int) []Overlap {
	var on []model.TimelineClip
	for _, c := range clips {
		if c.TrackNumber == track {
			on = append(on, c)
		}
	}
	Sort(on)

	var out []Overlap
	for i := range on {
		for j := i + 1; j < len(on) && on[j].StartTime < on[i].EndTime; j++ {
			out = append(out, Overlap{A: on[i].ID, B: on[j].ID})
		}
	}

	return out
}

// Length returns the end of the last clip on any track
func Length(clips []model.TimelineClip) float64 {
	var end float64
	for _, c := range clips {
		end = max(end, c.EndTime)
	}

	return end
}
