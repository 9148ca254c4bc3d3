package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"strconv"
	"time"

	"chordprep/logger"
	"chordprep/model"
)

// FFmpegLoader decodes any format ffmpeg understands into mono float32 PCM
// resampled to a fixed rate (22050 Hz by default).
type FFmpegLoader struct {
	ffmpegPath string
	sampleRate int
	timeout    time.Duration
}

// NewFFmpegLoader creates an FFmpegLoader resampling to sampleRate.
func NewFFmpegLoader(ffmpegPath string, sampleRate int) *FFmpegLoader {
	return &FFmpegLoader{ffmpegPath: ffmpegPath, sampleRate: sampleRate, timeout: 5 * time.Minute}
}

func (p *FFmpegLoader) Load(path string) (model.Waveform, error) {
	if _, err := os.Stat(path); err != nil {
		return model.Waveform{}, &AudioLoadError{Path: path, Err: err}
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	args := []string{
		"-hide_banner", "-v", "error",
		"-i", path,
		"-ac", "1",
		"-ar", strconv.Itoa(p.sampleRate),
		"-f", "f32le",
		"pipe:1",
	}
	cmd := exec.CommandContext(ctx, p.ffmpegPath, args...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	logger.Debug("decoding with ffmpeg",
		logger.String("path", path),
		logger.Int("sampleRate", p.sampleRate))

	if err := cmd.Run(); err != nil {
		return model.Waveform{}, &AudioLoadError{Path: path, Err: fmt.Errorf("ffmpeg: %w: %s", err, stderr.String())}
	}

	samples, err := decodeF32LE(out.Bytes())
	if err != nil {
		return model.Waveform{}, &AudioLoadError{Path: path, Err: err}
	}
	return model.Waveform{Samples: samples, SampleRate: p.sampleRate}, nil
}

func decodeF32LE(raw []byte) ([]float64, error) {
	if len(raw)%4 != 0 {
		return nil, errors.New("unexpected byte length for f32le stream")
	}
	samples := make([]float64, len(raw)/4)
	for i := range samples {
		samples[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:])))
	}
	return samples, nil
}
