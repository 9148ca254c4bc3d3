package cache

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"time"

	"chordprep/model"
)

const codecVersion = 1

// Envelope is the serialized form of a cached dataset. gob does not transmit
// empty slices, so empty Features, Labels, Classes or feature rows come back
// as nil. Compare decoded datasets by length, not with nil checks.
type Envelope struct {
	Version     int
	Fingerprint string
	CreatedAt   time.Time
	Dataset     model.Dataset
}

// Encode serializes ds tagged with its fingerprint.
func Encode(fingerprint string, ds *model.Dataset) ([]byte, error) {
	buf := new(bytes.Buffer)
	env := Envelope{
		Version:     codecVersion,
		Fingerprint: fingerprint,
		CreatedAt:   time.Now().UTC(),
		Dataset:     *ds,
	}
	if err := gob.NewEncoder(buf).Encode(&env); err != nil {
		return nil, fmt.Errorf("encode dataset: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses an artifact written by Encode.
func Decode(data []byte) (*Envelope, error) {
	var env Envelope
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if env.Version != codecVersion {
		return nil, fmt.Errorf("dataset artifact version %d, want %d", env.Version, codecVersion)
	}
	return &env, nil
}
