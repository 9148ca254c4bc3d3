package audio

import (
	"math"

	"chordprep/model"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// OnsetTempo estimates tempo from the autocorrelation of a spectral-flux onset
// envelope, weighted by a log-normal prior around StartBPM.
type OnsetTempo struct {
	FrameSize int
	HopSize   int
	MinBPM    float64
	MaxBPM    float64
	StartBPM  float64
	StdOctave float64 // prior width in octaves
}

// NewOnsetTempo returns an estimator with the usual beat-tracking defaults.
func NewOnsetTempo() *OnsetTempo {
	return &OnsetTempo{
		FrameSize: 2048,
		HopSize:   512,
		MinBPM:    30,
		MaxBPM:    300,
		StartBPM:  120,
		StdOctave: 1,
	}
}

func (o *OnsetTempo) EstimateTempo(w model.Waveform) (float64, error) {
	if w.SampleRate <= 0 {
		return 0, &DegenerateInputError{Param: "sampleRate", Value: float64(w.SampleRate)}
	}
	env := o.onsetEnvelope(w.Samples)
	if len(env) < 4 {
		return 0, nil
	}

	framesPerSec := float64(w.SampleRate) / float64(o.HopSize)
	minLag := int(math.Max(1, math.Floor(framesPerSec*60/o.MaxBPM)))
	maxLag := int(math.Ceil(framesPerSec * 60 / o.MinBPM))
	if maxLag > len(env)-1 {
		maxLag = len(env) - 1
	}
	if minLag > maxLag {
		return 0, nil
	}

	bestLag, bestScore := 0, 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		acf := floats.Dot(env[:len(env)-lag], env[lag:])
		if acf <= 0 {
			continue
		}
		bpm := 60 * framesPerSec / float64(lag)
		z := math.Log2(bpm/o.StartBPM) / o.StdOctave
		score := acf * math.Exp(-0.5*z*z)
		if score > bestScore {
			bestLag, bestScore = lag, score
		}
	}
	if bestLag == 0 {
		return 0, nil
	}
	return framesPerSec / float64(bestLag), nil
}

// onsetEnvelope is the half-wave rectified frame-to-frame increase of the
// log-magnitude spectrum, mean removed.
func (o *OnsetTempo) onsetEnvelope(x []float64) []float64 {
	if len(x) < o.FrameSize {
		return nil
	}
	spec := magnitudes(x, o.FrameSize, o.HopSize)
	for _, row := range spec {
		for k, m := range row {
			row[k] = math.Log1p(100 * m)
		}
	}
	env := make([]float64, len(spec))
	for t := 1; t < len(spec); t++ {
		var flux float64
		for k := range spec[t] {
			if d := spec[t][k] - spec[t-1][k]; d > 0 {
				flux += d
			}
		}
		env[t] = flux
	}
	floats.AddConst(-stat.Mean(env, nil), env)
	return env
}
