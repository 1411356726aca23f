package service

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lk2023060901/cloudvault-backend/internal/auth/middleware"
	"github.com/lk2023060901/cloudvault-backend/internal/file/biz"
	"github.com/lk2023060901/cloudvault-backend/internal/pkg/logger"
	"github.com/lk2023060901/cloudvault-backend/internal/pkg/response"
)

// FileService exposes the file management endpoints
type FileService struct {
	uc     *biz.FileUseCase
	logger *logger.Logger
}

func NewFileService(uc *biz.FileUseCase, log *logger.Logger) *FileService {
	return &FileService{
		uc:     uc,
		logger: log,
	}
}

// FileResponse is the wire representation of a file record
type FileResponse struct {
	ID                  string     `json:"id"`
	Filename            string     `json:"filename"`
	OriginalFilename    string     `json:"originalFilename"`
	FileSize            int64      `json:"fileSize"`
	ContentType         string     `json:"contentType"`
	PublicLinkID        *string    `json:"publicLinkId"`
	PublicLinkExpiresAt *time.Time `json:"publicLinkExpiresAt"`
	IsPublic            bool       `json:"isPublic"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

func toFileResponse(record *biz.FileRecord) FileResponse {
	resp := FileResponse{
		ID:                  record.ID,
		Filename:            record.StorageName,
		OriginalFilename:    record.OriginalFilename,
		FileSize:            record.SizeBytes,
		ContentType:         record.ContentType,
		PublicLinkExpiresAt: record.PublicLinkExpiresAt,
		IsPublic:            record.IsPublic,
		CreatedAt:           record.CreatedAt,
		UpdatedAt:           record.UpdatedAt,
	}
	if record.PublicLinkID != "" {
		linkID := record.PublicLinkID
		resp.PublicLinkID = &linkID
	}
	return resp
}

// Upload accepts a multipart form with a single "file" part
func (s *FileService) Upload(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "missing authentication")
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file is required")
		return
	}

	f, err := header.Open()
	if err != nil {
		response.BadRequest(c, "failed to open uploaded file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.InternalError(c, "failed to read uploaded file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	record, err := s.uc.Upload(c.Request.Context(), ownerID, header.Filename, contentType, header.Size, data)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, toFileResponse(record))
}

// List returns one page of the caller's files. Pages are zero-based;
// an optional search term filters by filename substring.
func (s *FileService) List(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "missing authentication")
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		page = 0
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(biz.DefaultPageSize)))
	if err != nil || size <= 0 {
		size = biz.DefaultPageSize
	}
	if size > biz.MaxPageSize {
		size = biz.MaxPageSize
	}
	search := c.Query("search")

	records, total, err := s.uc.List(c.Request.Context(), ownerID, page, size, search)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	files := make([]FileResponse, 0, len(records))
	for _, record := range records {
		files = append(files, toFileResponse(record))
	}

	totalPages := int((total + int64(size) - 1) / int64(size))

	response.Success(c, gin.H{
		"files":       files,
		"currentPage": page,
		"totalItems":  total,
		"totalPages":  totalPages,
	})
}

// Download streams one of the caller's files as an attachment
func (s *FileService) Download(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "missing authentication")
		return
	}

	record, data, err := s.uc.Download(c.Request.Context(), ownerID, c.Param("id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	serveAttachment(c, record, data)
}

// Share issues a public link for a file. expirationHours is optional;
// omitting it or passing zero makes a link that never expires.
func (s *FileService) Share(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "missing authentication")
		return
	}

	expirationHours := 0
	if raw := c.Query("expirationHours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(c, "expirationHours must be an integer")
			return
		}
		expirationHours = parsed
	}

	record, err := s.uc.CreateShareLink(c.Request.Context(), ownerID, c.Param("id"), expirationHours)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, gin.H{
		"publicLinkId": record.PublicLinkID,
		"shareUrl":     "/files/share/" + record.PublicLinkID,
		"expiresAt":    record.PublicLinkExpiresAt,
	})
}

// DownloadShared resolves a public link without authentication
func (s *FileService) DownloadShared(c *gin.Context) {
	record, data, err := s.uc.DownloadShared(c.Request.Context(), c.Param("publicLinkId"))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	serveAttachment(c, record, data)
}

// Delete removes a file and its metadata
func (s *FileService) Delete(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "missing authentication")
		return
	}

	if err := s.uc.Delete(c.Request.Context(), ownerID, c.Param("id")); err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "File deleted successfully"})
}

// Stats returns the caller's file count and total stored bytes
func (s *FileService) Stats(c *gin.Context) {
	ownerID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "missing authentication")
		return
	}

	count, totalSize, err := s.uc.Stats(c.Request.Context(), ownerID)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, gin.H{
		"totalFiles": count,
		"totalSize":  totalSize,
	})
}

func serveAttachment(c *gin.Context, record *biz.FileRecord, data []byte) {
	contentType := record.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", record.OriginalFilename))
	c.Data(200, contentType, data)
}

// RegisterRoutes mounts the file endpoints. The shared download route is
// public; everything else requires a bearer token.
func (s *FileService) RegisterRoutes(r *gin.RouterGroup, authRequired gin.HandlerFunc) {
	files := r.Group("/files")
	{
		files.GET("/share/:publicLinkId", s.DownloadShared)

		authed := files.Group("", authRequired)
		{
			authed.POST("/upload", s.Upload)
			authed.GET("", s.List)
			authed.GET("/stats", s.Stats)
			authed.GET("/:id/download", s.Download)
			authed.POST("/:id/share", s.Share)
			authed.DELETE("/:id", s.Delete)
		}
	}
}
