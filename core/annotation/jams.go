package annotation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"chordprep/model"
)

// Ext is the annotation file extension.
const Ext = ".jams"

type jamsFile struct {
	Annotations []jamsAnnotation `json:"annotations"`
}

type jamsAnnotation struct {
	Namespace string          `json:"namespace"`
	Data      json.RawMessage `json:"data"`
}

type jamsObservation struct {
	Time     float64         `json:"time"`
	Duration float64         `json:"duration"`
	Value    json.RawMessage `json:"value"`
}

// older JAMS files store data column-wise
type jamsDense struct {
	Time     []float64         `json:"time"`
	Duration []float64         `json:"duration"`
	Value    []json.RawMessage `json:"value"`
}

// Reader extracts chord intervals from JAMS files.
type Reader struct {
	// Namespace prefix selecting chord annotations.
	Namespace string
	// Preferred picks which of several chord annotations to use; when the file has
	// fewer, the first one is used.
	Preferred int
}

// NewReader returns a Reader that prefers the second chord annotation, the one
// carrying the performed chords in the hexaphonic guitar corpus.
func NewReader() *Reader {
	return &Reader{Namespace: "chord", Preferred: 1}
}

// Read loads one file and returns its chord intervals sorted by start time
// (stable, so file order breaks ties).
func (r *Reader) Read(path string) ([]model.AnnotationInterval, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &AnnotationParseError{Path: path, Err: err}
	}
	var doc jamsFile
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, &AnnotationParseError{Path: path, Err: err}
	}

	var chords []jamsAnnotation
	for _, a := range doc.Annotations {
		if strings.HasPrefix(a.Namespace, r.Namespace) {
			chords = append(chords, a)
		}
	}
	if len(chords) == 0 {
		return nil, &AnnotationParseError{Path: path, Err: fmt.Errorf("no %q annotation", r.Namespace)}
	}
	pick := chords[0]
	if r.Preferred >= 0 && r.Preferred < len(chords) {
		pick = chords[r.Preferred]
	}

	intervals, err := decodeData(pick.Data)
	if err != nil {
		return nil, &AnnotationParseError{Path: path, Err: err}
	}
	sort.SliceStable(intervals, func(i, j int) bool {
		return intervals[i].Start < intervals[j].Start
	})
	return intervals, nil
}

func decodeData(data json.RawMessage) ([]model.AnnotationInterval, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	if trimmed[0] == '{' {
		var dense jamsDense
		if err := json.Unmarshal(data, &dense); err != nil {
			return nil, err
		}
		if len(dense.Time) != len(dense.Duration) || len(dense.Time) != len(dense.Value) {
			return nil, errors.New("dense data columns differ in length")
		}
		out := make([]model.AnnotationInterval, len(dense.Time))
		for i := range dense.Time {
			label, err := labelOf(dense.Value[i])
			if err != nil {
				return nil, err
			}
			out[i] = model.AnnotationInterval{Start: dense.Time[i], Duration: dense.Duration[i], Label: label}
		}
		return out, nil
	}

	var obs []jamsObservation
	if err := json.Unmarshal(data, &obs); err != nil {
		return nil, err
	}
	out := make([]model.AnnotationInterval, len(obs))
	for i, o := range obs {
		label, err := labelOf(o.Value)
		if err != nil {
			return nil, err
		}
		out[i] = model.AnnotationInterval{Start: o.Time, Duration: o.Duration, Label: label}
	}
	return out, nil
}

// labelOf accepts string values and falls back to the raw JSON text otherwise.
func labelOf(v json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s, nil
	}
	t := strings.TrimSpace(string(v))
	if t == "" {
		return "", errors.New("observation without value")
	}
	return t, nil
}

// List returns the annotation files in dir keyed by track id.
func List(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != Ext {
			continue
		}
		out[strings.TrimSuffix(e.Name(), Ext)] = filepath.Join(dir, e.Name())
	}
	return out, nil
}
