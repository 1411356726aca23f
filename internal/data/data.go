package data

import (
	"context"
	"fmt"

	"github.com/lk2023060901/cloudvault-backend/internal/conf"
	filebiz "github.com/lk2023060901/cloudvault-backend/internal/file/biz"
	filedata "github.com/lk2023060901/cloudvault-backend/internal/file/data"
	"github.com/lk2023060901/cloudvault-backend/internal/file/storage"
	"github.com/lk2023060901/cloudvault-backend/internal/pkg/database"
	"github.com/lk2023060901/cloudvault-backend/internal/pkg/logger"
	userdata "github.com/lk2023060901/cloudvault-backend/internal/user/data"
	"go.uber.org/zap"
)

// Data bundles the shared infrastructure resources: the database
// connection and the blob store backend
type Data struct {
	DB    *database.DB
	Blobs filebiz.BlobStore

	logger *logger.Logger
}

// NewData initializes the database and the configured blob store.
// The returned cleanup function releases all held resources.
func NewData(ctx context.Context, cfg *conf.Config, log *logger.Logger) (*Data, func(), error) {
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("init database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(&userdata.UserPO{}, &filedata.FileMetadataPO{}); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("auto migrate: %w", err)
		}
	}

	blobs, err := newBlobStore(ctx, cfg.Storage, log)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	d := &Data{
		DB:     db,
		Blobs:  blobs,
		logger: log,
	}

	cleanup := func() {
		log.Info("closing data resources")
		if err := db.Close(); err != nil {
			log.Error("failed to close database", zap.Error(err))
		}
	}

	return d, cleanup, nil
}

func newBlobStore(ctx context.Context, cfg conf.StorageConfig, log *logger.Logger) (filebiz.BlobStore, error) {
	switch cfg.Driver {
	case "", "local":
		return storage.NewLocalStore(cfg.LocalPath, log)
	case "minio":
		return storage.NewMinIOStore(ctx, storage.MinIOConfig{
			Endpoint:        cfg.MinIO.Endpoint,
			AccessKeyID:     cfg.MinIO.AccessKey,
			SecretAccessKey: cfg.MinIO.SecretKey,
			UseSSL:          cfg.MinIO.UseSSL,
			Bucket:          cfg.MinIO.Bucket,
		}, log)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}
