package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	apperrors "github.com/lk2023060901/cloudvault-backend/internal/pkg/errors"
	"github.com/lk2023060901/cloudvault-backend/internal/pkg/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinIOConfig holds the object storage connection settings
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Bucket          string `mapstructure:"bucket"`
}

// MinIOStore keeps blobs as objects in a single bucket
type MinIOStore struct {
	client *minio.Client
	bucket string
	logger *logger.Logger
}

// NewMinIOStore connects to the object store and creates the bucket if
// it does not exist yet
func NewMinIOStore(ctx context.Context, cfg MinIOConfig, log *logger.Logger) (*MinIOStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.Bucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.Bucket, err)
		}
	}

	log.Info("minio blob store initialized",
		zap.String("endpoint", cfg.Endpoint),
		zap.String("bucket", cfg.Bucket))

	return &MinIOStore{
		client: client,
		bucket: cfg.Bucket,
		logger: log,
	}, nil
}

func (s *MinIOStore) Store(ctx context.Context, originalFilename string, declaredSize int64, data []byte) (string, error) {
	name, err := newStorageName(originalFilename, declaredSize, data)
	if err != nil {
		return "", err
	}

	reader := bytes.NewReader(data)
	_, err = s.client.PutObject(ctx, s.bucket, name, reader, int64(len(data)), minio.PutObjectOptions{})
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "failed to upload object")
	}

	s.logger.Debug("blob stored",
		zap.String("name", name),
		zap.Int("bytes", len(data)))
	return name, nil
}

func (s *MinIOStore) Load(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "failed to get object")
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, apperrors.Newf(apperrors.ErrFileNotFound, "blob not found: %s", name)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "failed to read object")
	}
	return data, nil
}

func (s *MinIOStore) Delete(ctx context.Context, name string) error {
	// StatObject first: RemoveObject succeeds silently on missing keys,
	// but callers need to know the blob was already gone.
	if _, err := s.client.StatObject(ctx, s.bucket, name, minio.StatObjectOptions{}); err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return apperrors.Newf(apperrors.ErrFileNotFound, "blob not found: %s", name)
		}
		return apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "failed to stat object")
	}

	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "failed to delete object")
	}

	s.logger.Debug("blob deleted", zap.String("name", name))
	return nil
}
