// Package availability holds the date arithmetic behind booking admission and the
// advisory sold-out badge.
package availability

import "time"

// StartOfDay drops the time-of-day component, keeping the calendar date of t.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Overlaps is the authoritative conflict test used at admission.
//
// It is intentionally the three-clause form and not s1 < e2 && s2 < e1: the two
// disagree on boundary touches. Callers normalize with StartOfDay first.
func Overlaps(existingStart, existingEnd, newStart, newEnd time.Time) bool {
	return (!existingStart.After(newStart) && existingEnd.After(newStart)) ||
		(existingStart.Before(newEnd) && !existingEnd.Before(newEnd)) ||
		(!existingStart.Before(newStart) && !existingEnd.After(newEnd))
}

// RangesIntersect is the two-clause overlap used only by the sold-out heuristic.
// Do not use it for admission.
func RangesIntersect(start1, end1, start2, end2 time.Time) bool {
	return start1.Before(end2) && start2.Before(end1)
}
