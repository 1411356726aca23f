package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/lk2023060901/cloudvault-backend/internal/pkg/errors"
	"github.com/lk2023060901/cloudvault-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// LocalStore keeps blobs as flat files under a base directory. Names are
// validated again here so the store stays safe even if a caller skips
// the use case checks.
type LocalStore struct {
	baseDir string
	logger  *logger.Logger
}

func NewLocalStore(baseDir string, log *logger.Logger) (*LocalStore, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve storage directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	log.Info("local blob store initialized", zap.String("dir", abs))

	return &LocalStore{
		baseDir: abs,
		logger:  log,
	}, nil
}

// resolve maps a blob name to an absolute path inside baseDir, rejecting
// anything that could escape it
func (s *LocalStore) resolve(name string) (string, error) {
	if name == "" {
		return "", apperrors.New(apperrors.ErrFileInvalidInput, "blob name is required")
	}
	if strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return "", apperrors.Newf(apperrors.ErrFileInvalidInput, "invalid blob name: %s", name)
	}

	path := filepath.Join(s.baseDir, filepath.Clean(name))
	if path != s.baseDir && !strings.HasPrefix(path, s.baseDir+string(filepath.Separator)) {
		// A path outside the root is indistinguishable from an absent blob.
		return "", apperrors.Newf(apperrors.ErrFileNotFound, "blob not found: %s", name)
	}
	return path, nil
}

func (s *LocalStore) Store(ctx context.Context, originalFilename string, declaredSize int64, data []byte) (string, error) {
	name, err := newStorageName(originalFilename, declaredSize, data)
	if err != nil {
		return "", err
	}

	path, err := s.resolve(name)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "failed to write blob")
	}

	s.logger.Debug("blob stored",
		zap.String("name", name),
		zap.Int("bytes", len(data)))
	return name, nil
}

func (s *LocalStore) Load(ctx context.Context, name string) ([]byte, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Newf(apperrors.ErrFileNotFound, "blob not found: %s", name)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "failed to read blob")
	}
	return data, nil
}

func (s *LocalStore) Delete(ctx context.Context, name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return apperrors.Newf(apperrors.ErrFileNotFound, "blob not found: %s", name)
		}
		return apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "failed to delete blob")
	}

	s.logger.Debug("blob deleted", zap.String("name", name))
	return nil
}
