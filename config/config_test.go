package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert := assert.New(t)
	assert.Equal(48.0, cfg.Features.OverSamplingRate)
	assert.Equal(128, cfg.Features.NFFT)
	assert.Equal("file", cfg.Cache.Backend)
	assert.NoError(cfg.Validate())
}

func TestLoadLayersFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chordprep.yaml")
	yml := `
corpus:
  root: /data/corpus
features:
  over_sampling_rate: 24
  n_fft: 256
cache:
  backend: badger
  path: /tmp/badger
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))
	t.Setenv("CHORDPREP_N_FFT", "512")
	t.Setenv("CHORDPREP_WORKERS", "4")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(24.0, cfg.Features.OverSamplingRate)
	assert.Equal(512, cfg.Features.NFFT)
	assert.Equal(4, cfg.Build.Workers)
	assert.Equal("badger", cfg.Cache.Backend)
	assert.Equal(filepath.Join("/data/corpus", "musics"), cfg.AudioPath())
	assert.Equal(filepath.Join("/data/corpus", "annotations"), cfg.AnnotationPath())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateRejectsDegenerateParameters(t *testing.T) {
	cases := map[string]func(c *Config){
		"zero oversampling": func(c *Config) { c.Features.OverSamplingRate = 0 },
		"tiny fft":          func(c *Config) { c.Features.NFFT = 1 },
		"unknown loader":    func(c *Config) { c.Features.Loader = "mp3" },
		"unknown backend":   func(c *Config) { c.Cache.Backend = "memcached" },
		"file without path": func(c *Config) { c.Cache.Path = "" },
		"no trees":          func(c *Config) { c.Model.Trees = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestAbsoluteDirsIgnoreRoot(t *testing.T) {
	cfg := Default()
	cfg.Corpus.AudioDir = "/abs/audio"
	assert.Equal(t, "/abs/audio", cfg.AudioPath())
}
