package config

import (
	"context"
	"fmt"

	"hrai/recruiter/internal/services"
)

// InitStorage builds the resume store selected by STORAGE_DRIVER and checks
// that it is reachable.
func InitStorage(ctx context.Context, cfg *Config) (services.StorageService, error) {
	var storage services.StorageService

	switch cfg.Storage.Driver {
	case "", "local":
		storage = services.NewStorageService(cfg.Storage.UploadPath)
	case "s3":
		client, err := services.NewS3Client(ctx, services.S3Options{
			Bucket:    cfg.Storage.S3.Bucket,
			Region:    cfg.Storage.S3.Region,
			Endpoint:  cfg.Storage.S3.Endpoint,
			AccessKey: cfg.Storage.S3.AccessKey,
			SecretKey: cfg.Storage.S3.SecretKey,
		})
		if err != nil {
			return nil, err
		}
		storage = services.NewS3StorageService(client, cfg.Storage.S3.Bucket)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if err := storage.EnsureReady(ctx); err != nil {
		return nil, fmt.Errorf("storage is not ready: %w", err)
	}

	return storage, nil
}
