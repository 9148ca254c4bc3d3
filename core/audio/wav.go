package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"

	"chordprep/model"

	"github.com/mjibson/go-dsp/wav"
)

const (
	wavFormatPCM   = 1
	wavFormatFloat = 3
)

// WavLoader reads 8/16-bit PCM and 32-bit float WAV files and mixes them down
// to mono. It does not resample: a file whose rate differs from SampleRate is
// rejected, use the ffmpeg loader for such corpora. A zero SampleRate accepts
// any rate.
type WavLoader struct {
	SampleRate int
}

// NewWavLoader creates a WavLoader expecting files at sampleRate.
func NewWavLoader(sampleRate int) *WavLoader {
	return &WavLoader{SampleRate: sampleRate}
}

func (l *WavLoader) Load(path string) (model.Waveform, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Waveform{}, &AudioLoadError{Path: path, Err: err}
	}

	r := bytes.NewReader(raw)
	w, err := wav.New(r)
	if err != nil {
		return model.Waveform{}, &AudioLoadError{Path: path, Err: fmt.Errorf("read header: %w", err)}
	}
	if w.NumChannels == 0 || w.SampleRate == 0 {
		return model.Waveform{}, &AudioLoadError{Path: path, Err: errors.New("header declares no channels or sample rate")}
	}
	if l.SampleRate > 0 && int(w.SampleRate) != l.SampleRate {
		return model.Waveform{}, &AudioLoadError{Path: path, Err: fmt.Errorf("sample rate %d Hz, want %d Hz (use the ffmpeg loader to resample)", w.SampleRate, l.SampleRate)}
	}

	// the reader stops right after the data chunk header, whose last
	// four bytes hold the chunk size
	start := len(raw) - r.Len()
	size := int(binary.LittleEndian.Uint32(raw[start-4 : start]))
	data := raw[start:]
	if len(data) < size {
		return model.Waveform{}, &AudioLoadError{Path: path, Err: fmt.Errorf("truncated data chunk: %d of %d bytes", len(data), size)}
	}

	samples, err := decodePCM(data[:size], w.AudioFormat, w.BitsPerSample)
	if err != nil {
		return model.Waveform{}, &AudioLoadError{Path: path, Err: err}
	}

	return model.Waveform{
		Samples:    mixDown(samples, int(w.NumChannels)),
		SampleRate: int(w.SampleRate),
	}, nil
}

// decodePCM converts little-endian sample data to floats in [-1, 1).
// A trailing partial sample is ignored.
func decodePCM(data []byte, format, bits uint16) ([]float32, error) {
	switch {
	case format == wavFormatPCM && bits == 8:
		out := make([]float32, len(data))
		for i, v := range data {
			out[i] = (float32(v) - 128) / 128
		}
		return out, nil
	case format == wavFormatPCM && bits == 16:
		out := make([]float32, len(data)/2)
		for i := range out {
			out[i] = float32(int16(binary.LittleEndian.Uint16(data[2*i:]))) / 32768
		}
		return out, nil
	case format == wavFormatFloat && bits == 32:
		out := make([]float32, len(data)/4)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported sample format %d with %d bits per sample", format, bits)
}

// mixDown averages interleaved channels into one. A trailing partial block is dropped.
func mixDown(interleaved []float32, channels int) []float64 {
	if channels <= 1 {
		out := make([]float64, len(interleaved))
		for i, v := range interleaved {
			out[i] = float64(v)
		}
		return out
	}
	n := len(interleaved) / channels
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(interleaved[i*channels+c])
		}
		out[i] = sum / float64(channels)
	}
	return out
}
