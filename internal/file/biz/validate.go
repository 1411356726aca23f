package biz

import (
	"path/filepath"
	"strings"

	apperrors "github.com/lk2023060901/cloudvault-backend/internal/pkg/errors"
)

// MaxFileSize is the upload cap: 100 MiB
const MaxFileSize = 100 * 1024 * 1024

// allowedExtensions is the upload allowlist, matched case-insensitively
var allowedExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".pdf": true,
	".doc": true, ".docx": true,
	".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true,
	".txt": true, ".zip": true, ".rar": true,
}

// FileExtension returns the lowercased extension of name, including the
// leading dot
func FileExtension(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// ValidateFilename rejects empty names, path traversal attempts and
// extensions outside the allowlist
func ValidateFilename(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperrors.New(apperrors.ErrFileInvalidInput, "filename is required")
	}
	if strings.Contains(name, "..") {
		return apperrors.Newf(apperrors.ErrFileInvalidInput, "filename contains invalid path sequence: %s", name)
	}
	ext := FileExtension(name)
	if ext == "" || !allowedExtensions[ext] {
		return apperrors.Newf(apperrors.ErrFileTypeNotAllowed, "file type not allowed: %s", name)
	}
	return nil
}

// ValidateUpload checks the filename and the size the client declared
func ValidateUpload(name string, size int64) error {
	if err := ValidateFilename(name); err != nil {
		return err
	}
	if size > MaxFileSize {
		return apperrors.Newf(apperrors.ErrFileTooLarge, "file exceeds maximum size of %d bytes", int64(MaxFileSize))
	}
	return nil
}
