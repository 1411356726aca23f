package data

import (
	"context"
	"strings"
	"time"

	"github.com/lk2023060901/cloudvault-backend/internal/file/biz"
	"github.com/lk2023060901/cloudvault-backend/internal/pkg/database"
	apperrors "github.com/lk2023060901/cloudvault-backend/internal/pkg/errors"
	"gorm.io/gorm"
)

// FileMetadataPO represents the database model. PublicLinkID is a
// pointer so multiple unshared rows can coexist under the unique index.
type FileMetadataPO struct {
	ID                  string     `gorm:"type:uuid;primarykey"`
	OwnerID             string     `gorm:"type:uuid;not null;index:idx_file_metadata_owner"`
	StorageName         string     `gorm:"size:255;not null"`
	OriginalFilename    string     `gorm:"size:255;not null"`
	ContentType         string     `gorm:"size:127"`
	SizeBytes           int64      `gorm:"not null"`
	IsPublic            bool       `gorm:"not null;default:false"`
	PublicLinkID        *string    `gorm:"type:uuid;uniqueIndex:idx_file_metadata_public_link"`
	PublicLinkExpiresAt *time.Time
	CreatedAt           time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt           time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (FileMetadataPO) TableName() string {
	return "file_metadata"
}

// FileRepo implements biz.FileRepo
type FileRepo struct {
	db *gorm.DB
}

func NewFileRepo(db *gorm.DB) biz.FileRepo {
	return &FileRepo{db: db}
}

func (r *FileRepo) Create(ctx context.Context, record *biz.FileRecord) error {
	return r.db.WithContext(ctx).Create(r.toPO(record)).Error
}

func (r *FileRepo) Update(ctx context.Context, record *biz.FileRecord) error {
	return r.db.WithContext(ctx).Save(r.toPO(record)).Error
}

func (r *FileRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&FileMetadataPO{}).Error
}

func (r *FileRepo) FindByIDAndOwner(ctx context.Context, id, ownerID string) (*biz.FileRecord, error) {
	var po FileMetadataPO
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&po).Error
	if err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, apperrors.New(apperrors.ErrFileNotFound)
		}
		return nil, err
	}
	return r.toRecord(&po), nil
}

func (r *FileRepo) FindByPublicLinkID(ctx context.Context, publicLinkID string) (*biz.FileRecord, error) {
	var po FileMetadataPO
	err := r.db.WithContext(ctx).
		Where("public_link_id = ?", publicLinkID).
		First(&po).Error
	if err != nil {
		if database.IsRecordNotFoundError(err) {
			return nil, apperrors.New(apperrors.ErrShareLinkNotFound)
		}
		return nil, err
	}
	return r.toRecord(&po), nil
}

func (r *FileRepo) FindByOwner(ctx context.Context, ownerID string, offset, limit int) ([]*biz.FileRecord, int64, error) {
	return r.page(ctx, r.db.WithContext(ctx).
		Model(&FileMetadataPO{}).
		Where("owner_id = ?", ownerID), offset, limit)
}

func (r *FileRepo) SearchByOwner(ctx context.Context, ownerID, query string, offset, limit int) ([]*biz.FileRecord, int64, error) {
	pattern := "%" + escapeLike(query) + "%"
	return r.page(ctx, r.db.WithContext(ctx).
		Model(&FileMetadataPO{}).
		Where("owner_id = ?", ownerID).
		Where("LOWER(original_filename) LIKE LOWER(?) ESCAPE '\\' OR LOWER(storage_name) LIKE LOWER(?) ESCAPE '\\'", pattern, pattern), offset, limit)
}

func (r *FileRepo) StatsForOwner(ctx context.Context, ownerID string) (int64, int64, error) {
	var result struct {
		Count     int64
		TotalSize int64
	}
	err := r.db.WithContext(ctx).
		Model(&FileMetadataPO{}).
		Select("COUNT(*) AS count, COALESCE(SUM(size_bytes), 0) AS total_size").
		Where("owner_id = ?", ownerID).
		Scan(&result).Error
	if err != nil {
		return 0, 0, err
	}
	return result.Count, result.TotalSize, nil
}

// page runs the count-then-fetch pattern shared by listing and search
func (r *FileRepo) page(ctx context.Context, query *gorm.DB, offset, limit int) ([]*biz.FileRecord, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pos []FileMetadataPO
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&pos).Error
	if err != nil {
		return nil, 0, err
	}

	records := make([]*biz.FileRecord, 0, len(pos))
	for i := range pos {
		records = append(records, r.toRecord(&pos[i]))
	}
	return records, total, nil
}

// escapeLike neutralizes LIKE wildcards in user-supplied search terms
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

func (r *FileRepo) toPO(record *biz.FileRecord) *FileMetadataPO {
	po := &FileMetadataPO{
		ID:                  record.ID,
		OwnerID:             record.OwnerID,
		StorageName:         record.StorageName,
		OriginalFilename:    record.OriginalFilename,
		ContentType:         record.ContentType,
		SizeBytes:           record.SizeBytes,
		IsPublic:            record.IsPublic,
		PublicLinkExpiresAt: record.PublicLinkExpiresAt,
		CreatedAt:           record.CreatedAt,
		UpdatedAt:           record.UpdatedAt,
	}
	if record.PublicLinkID != "" {
		linkID := record.PublicLinkID
		po.PublicLinkID = &linkID
	}
	return po
}

func (r *FileRepo) toRecord(po *FileMetadataPO) *biz.FileRecord {
	record := &biz.FileRecord{
		ID:                  po.ID,
		OwnerID:             po.OwnerID,
		StorageName:         po.StorageName,
		OriginalFilename:    po.OriginalFilename,
		ContentType:         po.ContentType,
		SizeBytes:           po.SizeBytes,
		IsPublic:            po.IsPublic,
		PublicLinkExpiresAt: po.PublicLinkExpiresAt,
		CreatedAt:           po.CreatedAt,
		UpdatedAt:           po.UpdatedAt,
	}
	if po.PublicLinkID != nil {
		record.PublicLinkID = *po.PublicLinkID
	}
	return record
}
