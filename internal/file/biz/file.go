package biz

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/lk2023060901/cloudvault-backend/internal/pkg/errors"
	"github.com/lk2023060901/cloudvault-backend/internal/pkg/logger"
	"go.uber.org/zap"
)

// Pagination defaults for file listings
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// MaxShareExpirationHours caps share link lifetimes at one year
const MaxShareExpirationHours = 8760

// FileRecord is the metadata for a stored file. StorageName is the
// server-assigned blob name; OriginalFilename is what the client sent.
type FileRecord struct {
	ID                  string
	OwnerID             string
	StorageName         string
	OriginalFilename    string
	ContentType         string
	SizeBytes           int64
	IsPublic            bool
	PublicLinkID        string
	PublicLinkExpiresAt *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// ShareActive reports whether the share link grants access at the given
// instant. IsPublic is checked on its own: the flag and the link id are
// stored separately and could in principle diverge.
func (f *FileRecord) ShareActive(now time.Time) bool {
	if !f.IsPublic || f.PublicLinkID == "" {
		return false
	}
	if f.PublicLinkExpiresAt == nil {
		return true
	}
	return now.Before(*f.PublicLinkExpiresAt)
}

// FileRepo is the metadata persistence contract
type FileRepo interface {
	Create(ctx context.Context, record *FileRecord) error
	Update(ctx context.Context, record *FileRecord) error
	Delete(ctx context.Context, id string) error
	FindByIDAndOwner(ctx context.Context, id, ownerID string) (*FileRecord, error)
	FindByPublicLinkID(ctx context.Context, publicLinkID string) (*FileRecord, error)
	// FindByOwner returns one page ordered by creation time descending,
	// plus the total match count.
	FindByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*FileRecord, int64, error)
	SearchByOwner(ctx context.Context, ownerID, query string, offset, limit int) ([]*FileRecord, int64, error)
	StatsForOwner(ctx context.Context, ownerID string) (count int64, totalSize int64, err error)
}

// BlobStore is the contract for the byte storage backend. Store owns
// storage-name generation: it validates the upload, writes the bytes
// under a fresh opaque name, and returns that name.
type BlobStore interface {
	Store(ctx context.Context, originalFilename string, declaredSize int64, data []byte) (string, error)
	Load(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
}

// FileUseCase implements upload, listing, download, sharing, deletion
// and usage stats
type FileUseCase struct {
	repo   FileRepo
	blobs  BlobStore
	logger *logger.Logger
}

func NewFileUseCase(repo FileRepo, blobs BlobStore, log *logger.Logger) *FileUseCase {
	return &FileUseCase{
		repo:   repo,
		blobs:  blobs,
		logger: log,
	}
}

// Upload validates the file, hands the bytes to the blob store, and
// records the metadata under the name the store assigned. The recorded
// size is the size the client declared, not the byte count received.
func (uc *FileUseCase) Upload(ctx context.Context, ownerID, originalFilename, contentType string, declaredSize int64, data []byte) (*FileRecord, error) {
	if len(data) == 0 {
		return nil, apperrors.New(apperrors.ErrFileInvalidInput, "Cannot upload empty file")
	}
	if err := ValidateUpload(originalFilename, declaredSize); err != nil {
		return nil, err
	}

	storageName, err := uc.blobs.Store(ctx, originalFilename, declaredSize, data)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "failed to store file")
	}

	now := time.Now().UTC()
	record := &FileRecord{
		ID:               uuid.Must(uuid.NewV7()).String(),
		OwnerID:          ownerID,
		StorageName:      storageName,
		OriginalFilename: originalFilename,
		ContentType:      contentType,
		SizeBytes:        declaredSize,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := uc.repo.Create(ctx, record); err != nil {
		// The blob and the record live in separate systems with no shared
		// transaction. A failed insert leaves the written blob orphaned;
		// there is no compensating rollback.
		uc.logger.Warn("metadata insert failed, blob left orphaned",
			zap.String("storage_name", storageName),
			zap.Error(err))
		return nil, apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "failed to save file metadata")
	}

	uc.logger.Info("file uploaded",
		zap.String("file_id", record.ID),
		zap.String("owner_id", ownerID),
		zap.String("original_filename", originalFilename),
		zap.Int64("size", declaredSize))

	return record, nil
}

// List returns one page of the owner's files, newest first. A non-empty
// search term filters by substring match on the original filename.
func (uc *FileUseCase) List(ctx context.Context, ownerID string, page, size int, search string) ([]*FileRecord, int64, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	offset := page * size

	// A blank search term means no filter at all.
	if search = strings.TrimSpace(search); search != "" {
		return uc.repo.SearchByOwner(ctx, ownerID, search, offset, size)
	}
	return uc.repo.FindByOwner(ctx, ownerID, offset, size)
}

// Download returns the metadata and bytes of one of the owner's files.
// A file belonging to someone else is reported as not found.
func (uc *FileUseCase) Download(ctx context.Context, ownerID, fileID string) (*FileRecord, []byte, error) {
	record, err := uc.repo.FindByIDAndOwner(ctx, fileID, ownerID)
	if err != nil {
		return nil, nil, err
	}

	data, err := uc.blobs.Load(ctx, record.StorageName)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "failed to read file")
	}
	return record, data, nil
}

// CreateShareLink issues a public link for the file. Issuing a new link
// replaces and invalidates any previous one. expirationHours of zero or
// less means the link never expires; values beyond one year are rejected.
func (uc *FileUseCase) CreateShareLink(ctx context.Context, ownerID, fileID string, expirationHours int) (*FileRecord, error) {
	record, err := uc.repo.FindByIDAndOwner(ctx, fileID, ownerID)
	if err != nil {
		return nil, err
	}

	// Authorization first: the expiry bound is only checked on files the
	// caller can actually see.
	if expirationHours > MaxShareExpirationHours {
		return nil, apperrors.Newf(apperrors.ErrShareInvalidExpiry,
			"expiration must not exceed %d hours", MaxShareExpirationHours)
	}

	record.IsPublic = true
	record.PublicLinkID = uuid.Must(uuid.NewV7()).String()
	if expirationHours > 0 {
		expires := time.Now().UTC().Add(time.Duration(expirationHours) * time.Hour)
		record.PublicLinkExpiresAt = &expires
	} else {
		record.PublicLinkExpiresAt = nil
	}
	record.UpdatedAt = time.Now().UTC()

	if err := uc.repo.Update(ctx, record); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "failed to save share link")
	}

	uc.logger.Info("share link created",
		zap.String("file_id", record.ID),
		zap.String("owner_id", ownerID),
		zap.Int("expiration_hours", expirationHours))

	return record, nil
}

// DownloadShared resolves a public link and returns the file without
// authentication. Expired links behave exactly like unknown ones.
func (uc *FileUseCase) DownloadShared(ctx context.Context, publicLinkID string) (*FileRecord, []byte, error) {
	record, err := uc.repo.FindByPublicLinkID(ctx, publicLinkID)
	if err != nil {
		return nil, nil, err
	}

	if !record.ShareActive(time.Now().UTC()) {
		return nil, nil, apperrors.New(apperrors.ErrShareLinkNotFound, "share link not found or expired")
	}

	data, err := uc.blobs.Load(ctx, record.StorageName)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "failed to read file")
	}
	return record, data, nil
}

// Delete removes the blob first, then the metadata. A blob deletion
// failure leaves the record in place so the operation can be retried.
func (uc *FileUseCase) Delete(ctx context.Context, ownerID, fileID string) error {
	record, err := uc.repo.FindByIDAndOwner(ctx, fileID, ownerID)
	if err != nil {
		return err
	}

	if err := uc.blobs.Delete(ctx, record.StorageName); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "failed to delete file")
	}

	if err := uc.repo.Delete(ctx, record.ID); err != nil {
		return apperrors.Wrap(err, apperrors.ErrFileStorageFailed, "failed to delete file metadata")
	}

	uc.logger.Info("file deleted",
		zap.String("file_id", record.ID),
		zap.String("owner_id", ownerID))

	return nil
}

// Stats returns the owner's file count and total declared bytes
func (uc *FileUseCase) Stats(ctx context.Context, ownerID string) (count int64, totalSize int64, err error) {
	return uc.repo.StatsForOwner(ctx, ownerID)
}
