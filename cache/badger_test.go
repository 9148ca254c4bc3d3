package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerStoreRoundTrip(t *testing.T) {
	s, err := OpenBadger(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	_, err = s.Get(ctx, "dataset:x")
	assert.ErrorIs(t, err, ErrNotFound)

	c := New(s)
	ds := sampleDataset()
	require.NoError(t, c.Save(ctx, "x", ds))
	got, ok := c.Load(ctx, "x")
	require.True(t, ok)
	assert.Equal(t, ds, got)

	require.NoError(t, c.Clear(ctx, "x"))
	_, ok = c.Load(ctx, "x")
	assert.False(t, ok)
}
