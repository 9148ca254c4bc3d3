package cache

import (
	"context"
	"fmt"

	"chordprep/config"
	"chordprep/storage"
)

// Open builds the Store selected by cfg.Cache.Backend.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.Cache.Backend {
	case "file":
		return NewFileStore(cfg.Cache.Path), nil
	case "badger":
		return OpenBadger(cfg.Cache.Path)
	case "redis":
		return ConnectRedis(ctx, cfg)
	case "minio":
		client, err := storage.NewMinioClient(ctx, cfg.Minio)
		if err != nil {
			return nil, err
		}
		return NewMinioStore(client, "datasets/"), nil
	case "none":
		return NopStore{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}
