package audio

import "math"

// ComputeHopLength returns the hop, in samples, that makes every frame span
// 1/overSamplingRate of a beat at the given tempo (beats per second).
func ComputeHopLength(sampleRate int, tempoBPS, overSamplingRate float64) (int, error) {
	switch {
	case sampleRate <= 0:
		return 0, &DegenerateInputError{Param: "sampleRate", Value: float64(sampleRate)}
	case !(tempoBPS > 0) || math.IsInf(tempoBPS, 0):
		return 0, &DegenerateInputError{Param: "tempo", Value: tempoBPS}
	case !(overSamplingRate > 0) || math.IsInf(overSamplingRate, 0):
		return 0, &DegenerateInputError{Param: "overSamplingRate", Value: overSamplingRate}
	}

	// round half up
	hop := int(float64(sampleRate)/(tempoBPS*overSamplingRate) + .5)
	if hop < 1 {
		return 0, &DegenerateInputError{Param: "hopLength", Value: float64(hop)}
	}
	return hop, nil
}
