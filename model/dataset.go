package model

import "fmt"

// FeatureFrame is one magnitude spectrum and the instant it represents.
type FeatureFrame struct {
	Timestamp float64
	Vector    []float64
}

// TrainingExample pairs a feature vector with its class id.
type TrainingExample struct {
	Vector  []float64
	ClassID int
}

// Dataset is the assembled supervised training set. Classes names each class id.
type Dataset struct {
	Features [][]float64
	Labels   []int
	Classes  []string
}

// Append adds one example.
func (d *Dataset) Append(ex TrainingExample) {
	d.Features = append(d.Features, ex.Vector)
	d.Labels = append(d.Labels, ex.ClassID)
}

// Len is the number of examples.
func (d *Dataset) Len() int {
	return len(d.Labels)
}

// Check verifies the shape contract handed to training: one label per feature row,
// every label a valid class id.
func (d *Dataset) Check() error {
	if len(d.Features) != len(d.Labels) {
		return fmt.Errorf("%d feature rows but %d labels", len(d.Features), len(d.Labels))
	}
	for i, l := range d.Labels {
		if l < 0 || l >= len(d.Classes) {
			return fmt.Errorf("label %d at row %d outside [0, %d)", l, i, len(d.Classes))
		}
	}
	return nil
}
