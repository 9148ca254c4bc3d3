package annotation

import "chordprep/model"

// Resolve returns the label of the first interval strictly containing t.
// Boundaries never match: an instant equal to a start or an end is unlabeled.
func Resolve(t float64, intervals []model.AnnotationInterval) (string, bool) {
	for _, iv := range intervals {
		if iv.Covers(t) {
			return iv.Label, true
		}
	}
	return "", false
}

// Aligner resolves non-decreasing timestamps against intervals sorted by start,
// as returned by Reader.Read. It gives the same answer as Resolve without
// rescanning intervals that ended before the current instant.
type Aligner struct {
	intervals []model.AnnotationInterval
	lo        int
	last      float64
}

func NewAligner(intervals []model.AnnotationInterval) *Aligner {
	return &Aligner{intervals: intervals}
}

// Resolve must be called with non-decreasing t; going backwards restarts the scan.
func (a *Aligner) Resolve(t float64) (string, bool) {
	if t < a.last {
		a.lo = 0
	}
	a.last = t

	for a.lo < len(a.intervals) && a.intervals[a.lo].End() <= t {
		a.lo++
	}
	for _, iv := range a.intervals[a.lo:] {
		if iv.Start >= t {
			break
		}
		if iv.Covers(t) {
			return iv.Label, true
		}
	}
	return "", false
}
