package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chordprep/logger"
	"chordprep/model"
)

// DatasetCache persists assembled datasets keyed by corpus fingerprint.
type DatasetCache struct {
	store Store
}

func New(store Store) *DatasetCache {
	return &DatasetCache{store: store}
}

func datasetKey(fingerprint string) string {
	return "dataset:" + fingerprint
}

// Load returns the cached dataset for fingerprint. Every failure, including a
// missing artifact, a corrupt one or one built from another corpus, is a miss.
func (c *DatasetCache) Load(ctx context.Context, fingerprint string) (*model.Dataset, bool) {
	data, err := c.store.Get(ctx, datasetKey(fingerprint))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			logger.Info("dataset cache miss",
				logger.String("store", c.store.Name()),
				logger.String("fingerprint", fingerprint))
		} else {
			logger.Warn("dataset cache unreadable, treating as miss",
				logger.String("store", c.store.Name()),
				logger.ErrorField(err))
		}
		return nil, false
	}

	env, err := Decode(data)
	if err != nil {
		logger.Warn("dataset cache corrupt, treating as miss",
			logger.String("store", c.store.Name()),
			logger.ErrorField(err))
		return nil, false
	}
	if env.Fingerprint != fingerprint {
		logger.Info("dataset cache stale, corpus or parameters changed",
			logger.String("store", c.store.Name()),
			logger.String("cached", env.Fingerprint),
			logger.String("current", fingerprint))
		return nil, false
	}

	logger.Info("dataset cache hit",
		logger.String("store", c.store.Name()),
		logger.String("fingerprint", fingerprint),
		logger.Int("examples", env.Dataset.Len()),
		logger.Duration("age", time.Since(env.CreatedAt)))
	return &env.Dataset, true
}

// Save overwrites whatever is cached for fingerprint.
func (c *DatasetCache) Save(ctx context.Context, fingerprint string, ds *model.Dataset) error {
	data, err := Encode(fingerprint, ds)
	if err != nil {
		return err
	}
	if err := c.store.Put(ctx, datasetKey(fingerprint), data); err != nil {
		return fmt.Errorf("save dataset to %s: %w", c.store.Name(), err)
	}
	logger.Info("dataset cached",
		logger.String("store", c.store.Name()),
		logger.String("fingerprint", fingerprint),
		logger.Int("examples", ds.Len()),
		logger.Int("bytes", len(data)))
	return nil
}

// Info describes a cached artifact without returning its arrays.
type Info struct {
	Store       string
	Fingerprint string
	CreatedAt   time.Time
	Examples    int
	Classes     int
	Dimensions  int
	Bytes       int
}

// Inspect reads the artifact stored for fingerprint.
func (c *DatasetCache) Inspect(ctx context.Context, fingerprint string) (*Info, error) {
	data, err := c.store.Get(ctx, datasetKey(fingerprint))
	if err != nil {
		return nil, err
	}
	env, err := Decode(data)
	if err != nil {
		return nil, err
	}
	info := &Info{
		Store:       c.store.Name(),
		Fingerprint: env.Fingerprint,
		CreatedAt:   env.CreatedAt,
		Examples:    env.Dataset.Len(),
		Classes:     len(env.Dataset.Classes),
		Bytes:       len(data),
	}
	if len(env.Dataset.Features) > 0 {
		info.Dimensions = len(env.Dataset.Features[0])
	}
	return info, nil
}

// Clear drops the artifact stored for fingerprint.
func (c *DatasetCache) Clear(ctx context.Context, fingerprint string) error {
	return c.store.Delete(ctx, datasetKey(fingerprint))
}
