package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintTracksCorpusAndParameters(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a_hex.wav")
	b := filepath.Join(dir, "a.jams")
	require.NoError(t, os.WriteFile(a, []byte("wave"), 0644))
	require.NoError(t, os.WriteFile(b, []byte("{}"), 0644))

	p := Params{OverSamplingRate: 48, NFFT: 128, Loader: "wav"}
	base, err := Fingerprint([]string{a, b}, p)
	require.NoError(t, err)

	assert := assert.New(t)

	again, err := Fingerprint([]string{b, a}, p)
	require.NoError(t, err)
	assert.Equal(base, again, "order of the file list must not matter")

	p2 := p
	p2.NFFT = 256
	other, err := Fingerprint([]string{a, b}, p2)
	require.NoError(t, err)
	assert.NotEqual(base, other)

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(b, later, later))
	touched, err := Fingerprint([]string{a, b}, p)
	require.NoError(t, err)
	assert.NotEqual(base, touched)

	fewer, err := Fingerprint([]string{a}, p)
	require.NoError(t, err)
	assert.NotEqual(touched, fewer)
}

func TestFingerprintMissingFile(t *testing.T) {
	_, err := Fingerprint([]string{filepath.Join(t.TempDir(), "gone")}, Params{})
	assert.Error(t, err)
}
