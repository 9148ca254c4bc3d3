package audio

import (
	"errors"
	"fmt"
)

var (
	// ErrDegenerateInput matches every *DegenerateInputError.
	ErrDegenerateInput = errors.New("degenerate input")
	// ErrAudioLoad matches every *AudioLoadError.
	ErrAudioLoad = errors.New("audio load failed")
)

// DegenerateInputError reports a parameter that would make framing undefined,
// such as a non-positive tempo.
type DegenerateInputError struct {
	Param string
	Value float64
}

func (e *DegenerateInputError) Error() string {
	return fmt.Sprintf("degenerate input: %s = %v", e.Param, e.Value)
}

func (e *DegenerateInputError) Is(target error) bool {
	return target == ErrDegenerateInput
}

// AudioLoadError wraps any failure to open or decode a waveform file.
type AudioLoadError struct {
	Path string
	Err  error
}

func (e *AudioLoadError) Error() string {
	return fmt.Sprintf("load audio %s: %v", e.Path, e.Err)
}

func (e *AudioLoadError) Unwrap() error {
	return e.Err
}

func (e *AudioLoadError) Is(target error) bool {
	return target == ErrAudioLoad
}
