package audio

import (
	"math"
	"math/cmplx"

	"chordprep/model"

	"gonum.org/v1/gonum/dsp/fourier"
)

// STFT is the magnitude short-time Fourier transform extractor.
// Frames start at i*hop and are stamped at their window centre.
type STFT struct{}

// NewSTFT creates an STFT extractor.
func NewSTFT() *STFT {
	return &STFT{}
}

func (s *STFT) Extract(samples []float64, sampleRate, nFFT, hop int) ([]model.FeatureFrame, error) {
	if sampleRate <= 0 {
		return nil, &DegenerateInputError{Param: "sampleRate", Value: float64(sampleRate)}
	}
	if nFFT < 2 {
		return nil, &DegenerateInputError{Param: "nFFT", Value: float64(nFFT)}
	}
	if hop < 1 {
		return nil, &DegenerateInputError{Param: "hopLength", Value: float64(hop)}
	}
	if len(samples) == 0 {
		return nil, nil
	}

	spec := magnitudes(samples, nFFT, hop)
	frames := make([]model.FeatureFrame, len(spec))
	for i, mags := range spec {
		frames[i] = model.FeatureFrame{
			Timestamp: float64(i*hop+nFFT/2) / float64(sampleRate),
			Vector:    mags,
		}
	}
	return frames, nil
}

// magnitudes computes |X_k| for k in [0, n/2] over hann-windowed frames.
// A signal shorter than one window is zero padded to a single frame.
func magnitudes(x []float64, n, hop int) [][]float64 {
	win := hann(n)
	fft := fourier.NewFFT(n)

	count := 1
	if len(x) > n {
		count = 1 + (len(x)-n)/hop
	}
	spec := make([][]float64, count)
	buf := make([]float64, n)
	var coeffs []complex128
	for i := 0; i < count; i++ {
		start := i * hop
		for k := 0; k < n; k++ {
			if start+k < len(x) {
				buf[k] = x[start+k] * win[k]
			} else {
				buf[k] = 0
			}
		}
		coeffs = fft.Coefficients(coeffs, buf)
		row := make([]float64, len(coeffs))
		for k, c := range coeffs {
			row[k] = cmplx.Abs(c)
		}
		spec[i] = row
	}
	return spec
}

// hann is the periodic Hann window used for spectral analysis.
func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n)))
	}
	return w
}
