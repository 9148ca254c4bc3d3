package audio

import (
	"chordprep/model"
)

// Loader decodes a waveform file into a mono signal.
type Loader interface {
	Load(path string) (model.Waveform, error)
}

// TempoEstimator estimates the global tempo of a signal in beats per second.
// A signal without a detectable pulse yields 0.
type TempoEstimator interface {
	EstimateTempo(w model.Waveform) (float64, error)
}

// Extractor turns a signal into magnitude frames with strictly increasing timestamps.
// Each vector has nFFT/2+1 bins.
type Extractor interface {
	Extract(samples []float64, sampleRate, nFFT, hop int) ([]model.FeatureFrame, error)
}
