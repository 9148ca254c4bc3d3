package audio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeHopLength(t *testing.T) {
	hop, err := ComputeHopLength(22050, 2.0, 48)
	require.NoError(t, err)
	assert.Equal(t, 230, hop)
}

func TestComputeHopLengthShrinksWithTempo(t *testing.T) {
	slow, err := ComputeHopLength(22050, 1.0, 48)
	require.NoError(t, err)
	fast, err := ComputeHopLength(22050, 3.0, 48)
	require.NoError(t, err)
	assert.Greater(t, slow, fast)
}

func TestComputeHopLengthRejectsDegenerateInput(t *testing.T) {
	cases := []struct {
		name       string
		sampleRate int
		tempo      float64
		osr        float64
		param      string
	}{
		{"zero tempo", 22050, 0, 48, "tempo"},
		{"negative tempo", 22050, -1, 48, "tempo"},
		{"zero oversampling", 22050, 2, 0, "overSamplingRate"},
		{"zero sample rate", 0, 2, 48, "sampleRate"},
		{"hop rounds to zero", 10, 100, 48, "hopLength"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeHopLength(tc.sampleRate, tc.tempo, tc.osr)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDegenerateInput))

			var de *DegenerateInputError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tc.param, de.Param)
		})
	}
}
