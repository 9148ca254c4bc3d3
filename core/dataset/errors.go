package dataset

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCorpus is returned when no waveform has a matching annotation file.
	ErrEmptyCorpus = errors.New("no track has both a waveform and an annotation")
	// ErrAllTracksFailed is returned when not a single track could be processed.
	ErrAllTracksFailed = errors.New("every track failed")
)

// TrackError ties a track-fatal failure to the track it happened on.
type TrackError struct {
	TrackID string
	Err     error
}

func (e *TrackError) Error() string {
	return fmt.Sprintf("track %s: %v", e.TrackID, e.Err)
}

func (e *TrackError) Unwrap() error {
	return e.Err
}
