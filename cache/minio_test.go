package cache

import (
	"context"
	"testing"

	"chordprep/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObjects struct {
	objects map[string][]byte
}

func (f *fakeObjects) PutObject(_ context.Context, name string, data []byte, _ string) error {
	f.objects[name] = data
	return nil
}

func (f *fakeObjects) GetObject(_ context.Context, name string) ([]byte, error) {
	d, ok := f.objects[name]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return d, nil
}

func (f *fakeObjects) RemoveObject(_ context.Context, name string) error {
	delete(f.objects, name)
	return nil
}

func (f *fakeObjects) Bucket() string { return "chordprep" }

func TestMinioStoreUsesPrefixedObjects(t *testing.T) {
	objects := &fakeObjects{objects: map[string][]byte{}}
	s := NewMinioStore(objects, "datasets/")
	c := New(s)
	ctx := context.Background()

	_, ok := c.Load(ctx, "fp")
	assert.False(t, ok)

	require.NoError(t, c.Save(ctx, "fp", sampleDataset()))
	assert.Contains(t, objects.objects, "datasets/dataset:fp.gob")
	assert.Equal(t, "minio:chordprep/datasets/", s.Name())

	got, ok := c.Load(ctx, "fp")
	require.True(t, ok)
	assert.Equal(t, sampleDataset(), got)
}
