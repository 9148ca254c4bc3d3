package cache

import (
	"context"
	"errors"
)

// ErrNotFound is returned by a Store when nothing is stored under a key.
var ErrNotFound = errors.New("cache entry not found")

// Store is a byte-oriented backend for cached artifacts. Put must replace the
// previous value atomically.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Name() string
	Close() error
}

// NopStore never holds anything; every build recomputes the dataset.
type NopStore struct{}

func (NopStore) Get(context.Context, string) ([]byte, error) { return nil, ErrNotFound }
func (NopStore) Put(context.Context, string, []byte) error   { return nil }
func (NopStore) Delete(context.Context, string) error        { return nil }
func (NopStore) Name() string                                { return "none" }
func (NopStore) Close() error                                { return nil }
