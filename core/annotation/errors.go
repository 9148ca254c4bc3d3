package annotation

import (
	"errors"
	"fmt"
)

// ErrAnnotationParse matches every *AnnotationParseError.
var ErrAnnotationParse = errors.New("annotation parse failed")

// AnnotationParseError wraps a failure to read or decode an annotation file.
type AnnotationParseError struct {
	Path string
	Err  error
}

func (e *AnnotationParseError) Error() string {
	return fmt.Sprintf("parse annotation %s: %v", e.Path, e.Err)
}

func (e *AnnotationParseError) Unwrap() error {
	return e.Err
}

func (e *AnnotationParseError) Is(target error) bool {
	return target == ErrAnnotationParse
}
