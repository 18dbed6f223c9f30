package config

import (
	"context"
	"fmt"

	"github.com/agentrep/trustledger/pkg/storage"
)

// OpenStorage builds the record backend described by e, wrapped in a read
// cache when CacheSize is positive.
func OpenStorage(ctx context.Context, e *StorageEnv) (storage.Storage, error) {
	var (
		store storage.Storage
		err   error
	)
	switch e.Type {
	case "s3":
		store, err = storage.NewS3Storage(ctx, e.S3Bucket, e.S3Prefix, e.S3Region)
		if err != nil {
			return nil, fmt.Errorf("failed to create S3 storage: %w", err)
		}
	default:
		store, err = storage.NewLocalStorage(e.BaseDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create local storage: %w", err)
		}
	}
	if e.CacheSize <= 0 {
		return store, nil
	}
	cached, err := storage.NewCachedStorage(store, e.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage cache: %w", err)
	}
	return cached, nil
}
