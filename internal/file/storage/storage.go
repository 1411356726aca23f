package storage

import (
	"github.com/google/uuid"

	"github.com/lk2023060901/cloudvault-backend/internal/file/biz"
	apperrors "github.com/lk2023060901/cloudvault-backend/internal/pkg/errors"
)

// newStorageName validates an incoming upload and assigns its opaque
// blob name: a fresh uuid plus the original file's lower-cased
// extension. The checks repeat the use case's so a store is safe to
// call on its own.
func newStorageName(originalFilename string, declaredSize int64, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperrors.New(apperrors.ErrFileInvalidInput, "Cannot upload empty file")
	}
	if err := biz.ValidateFilename(originalFilename); err != nil {
		return "", err
	}
	if declaredSize > biz.MaxFileSize {
		return "", apperrors.Newf(apperrors.ErrFileTooLarge, "file exceeds maximum size of %d bytes", int64(biz.MaxFileSize))
	}
	return uuid.Must(uuid.NewV7()).String() + biz.FileExtension(originalFilename), nil
}
