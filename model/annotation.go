package model

// AnnotationInterval is one chord label active over [Start, Start+Duration].
type AnnotationInterval struct {
	Start    float64 `json:"time"`
	Duration float64 `json:"duration"`
	Label    string  `json:"value"`
}

// End is the instant the interval stops covering.
func (a AnnotationInterval) End() float64 {
	return a.Start + a.Duration
}

// Covers reports whether t lies strictly inside the interval.
func (a AnnotationInterval) Covers(t float64) bool {
	return a.Start < t && t < a.Start+a.Duration
}
