package cache

import (
	"context"
	"errors"

	"chordprep/storage"
)

// objectStore is the part of storage.MinioClient the cache needs.
type objectStore interface {
	PutObject(ctx context.Context, name string, data []byte, contentType string) error
	GetObject(ctx context.Context, name string) ([]byte, error)
	RemoveObject(ctx context.Context, name string) error
	Bucket() string
}

// MinioStore keeps artifacts as objects under a prefix.
type MinioStore struct {
	objects objectStore
	prefix  string
}

func NewMinioStore(objects objectStore, prefix string) *MinioStore {
	return &MinioStore{objects: objects, prefix: prefix}
}

func (s *MinioStore) Name() string { return "minio:" + s.objects.Bucket() + "/" + s.prefix }

func (s *MinioStore) object(key string) string {
	return s.prefix + key + ".gob"
}

func (s *MinioStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.objects.GetObject(ctx, s.object(key))
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *MinioStore) Put(ctx context.Context, key string, data []byte) error {
	return s.objects.PutObject(ctx, s.object(key), data, "application/octet-stream")
}

func (s *MinioStore) Delete(ctx context.Context, key string) error {
	return s.objects.RemoveObject(ctx, s.object(key))
}

func (s *MinioStore) Close() error { return nil }
