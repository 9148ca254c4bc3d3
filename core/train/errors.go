package train

import "errors"

var (
	// ErrEmptyDataset is returned when there is nothing to fit.
	ErrEmptyDataset = errors.New("dataset has no examples")
	// ErrShapeMismatch is returned when features and labels do not line up.
	ErrShapeMismatch = errors.New("dataset shape mismatch")
)
