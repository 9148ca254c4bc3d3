package cache

import (
	"bytes"
	"encoding/gob"
	"testing"

	"chordprep/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodecEmptyDatasetDecodesAsNil(t *testing.T) {
	data, err := Encode("abc", &model.Dataset{
		Features: [][]float64{},
		Labels:   []int{},
		Classes:  []string{},
	})
	require.NoError(t, err)

	env, err := Decode(data)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal("abc", env.Fingerprint)
	assert.Zero(env.Dataset.Len())
	assert.Nil(env.Dataset.Features)
	assert.Nil(env.Dataset.Labels)
	assert.Nil(env.Dataset.Classes)
	assert.NoError(env.Dataset.Check())
}

func TestCodecKeepsRowsAndClasses(t *testing.T) {
	ds := sampleDataset()
	data, err := Encode("abc", ds)
	require.NoError(t, err)

	env, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, *ds, env.Dataset)
	assert.False(t, env.CreatedAt.IsZero())
}

func TestCodecRejectsOtherVersion(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, gob.NewEncoder(buf).Encode(&Envelope{Version: codecVersion + 1, Fingerprint: "abc"}))

	_, err := Decode(buf.Bytes())
	assert.ErrorContains(t, err, "version")

	_, err = Decode([]byte("garbage"))
	assert.Error(t, err)
}
