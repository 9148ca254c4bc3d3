package model

import "time"

// Track is one corpus member: a waveform and an annotation file sharing a stem.
type Track struct {
	ID             string `json:"id"`
	WaveformPath   string `json:"waveformPath"`
	AnnotationPath string `json:"annotationPath"`
}

// Waveform is a decoded mono signal.
type Waveform struct {
	Samples    []float64
	SampleRate int
}

// Duration of the signal in seconds.
func (w Waveform) Duration() float64 {
	if w.SampleRate <= 0 {
		return 0
	}
	return float64(len(w.Samples)) / float64(w.SampleRate)
}

// TrackStats is the per-track outcome of a dataset build.
type TrackStats struct {
	TrackID   string        `json:"trackId"`
	Tempo     float64       `json:"tempo"` // beats per second
	HopLength int           `json:"hopLength"`
	Frames    int           `json:"frames"`
	Kept      int           `json:"kept"`
	Unlabeled int           `json:"unlabeled"` // no interval covers the frame
	Unknown   int           `json:"unknown"`   // label not present in the index
	Elapsed   time.Duration `json:"elapsed"`
	Err       string        `json:"error,omitempty"`
}

// TrackRecord is the catalog row persisted for every processed track.
type TrackRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	RunID       string    `gorm:"size:36;index" json:"runId"`
	TrackID     string    `gorm:"size:255;index" json:"trackId"`
	Fingerprint string    `gorm:"size:16;index" json:"fingerprint"`
	Tempo       float64   `json:"tempo"`
	HopLength   int       `json:"hopLength"`
	Frames      int       `json:"frames"`
	Kept        int       `json:"kept"`
	Unlabeled   int       `json:"unlabeled"`
	Unknown     int       `json:"unknown"`
	ElapsedMs   int64     `json:"elapsedMs"`
	Error       string    `gorm:"type:text" json:"error,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (TrackRecord) TableName() string {
	return "track_records"
}

// NewTrackRecord converts a build report into its catalog row.
func NewTrackRecord(runID, fingerprint string, s TrackStats) *TrackRecord {
	return &TrackRecord{
		RunID:       runID,
		TrackID:     s.TrackID,
		Fingerprint: fingerprint,
		Tempo:       s.Tempo,
		HopLength:   s.HopLength,
		Frames:      s.Frames,
		Kept:        s.Kept,
		Unlabeled:   s.Unlabeled,
		Unknown:     s.Unknown,
		ElapsedMs:   s.Elapsed.Milliseconds(),
		Error:       s.Err,
	}
}
