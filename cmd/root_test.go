package cmd

import (
	"testing"

	"chordprep/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyFlagsOnlyOverridesChangedFlags(t *testing.T) {
	c := config.Default()
	c.Build.Workers = 3

	require.NoError(t, rootCmd.ParseFlags([]string{"--corpus", "/data/gs", "--cache-backend", "badger"}))
	applyFlags(rootCmd, c)

	assert := assert.New(t)
	assert.Equal("/data/gs", c.Corpus.Root)
	assert.Equal("badger", c.Cache.Backend)
	assert.Equal(3, c.Build.Workers)
	assert.Equal("wav", c.Features.Loader)
}

func TestSubcommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"build", "train", "cache", "watch", "tracks", "models"} {
		assert.True(t, names[want], want)
	}
}
