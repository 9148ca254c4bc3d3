package audio

import (
	"testing"

	"chordprep/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clickTrack places a short burst every period samples.
func clickTrack(sampleRate, period, seconds int) model.Waveform {
	x := make([]float64, sampleRate*seconds)
	for start := 0; start < len(x); start += period {
		for i := 0; i < 64 && start+i < len(x); i++ {
			if i%2 == 0 {
				x[start+i] = 1
			} else {
				x[start+i] = -1
			}
		}
	}
	return model.Waveform{Samples: x, SampleRate: sampleRate}
}

func TestOnsetTempoFindsClickPeriod(t *testing.T) {
	est := NewOnsetTempo()
	// a period of exactly 22 analysis hops
	period := 22 * est.HopSize
	w := clickTrack(22050, period, 20)

	bps, err := est.EstimateTempo(w)
	require.NoError(t, err)
	assert.InEpsilon(t, 22050.0/float64(period), bps, 0.02)
}

func TestOnsetTempoSilenceIsZero(t *testing.T) {
	w := model.Waveform{Samples: make([]float64, 22050*3), SampleRate: 22050}
	bps, err := NewOnsetTempo().EstimateTempo(w)
	require.NoError(t, err)
	assert.Zero(t, bps)

	_, err = ComputeHopLength(w.SampleRate, bps, 48)
	assert.ErrorIs(t, err, ErrDegenerateInput)
}

func TestOnsetTempoShortSignal(t *testing.T) {
	bps, err := NewOnsetTempo().EstimateTempo(model.Waveform{Samples: make([]float64, 10), SampleRate: 22050})
	require.NoError(t, err)
	assert.Zero(t, bps)
}
