package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/publora/publora-backend/pkg/storage"
)

// MediaService handles post attachment uploads to S3-compatible storage
type MediaService struct {
	s3        *storage.S3Client
	maxSize   int64
	allowExts []string
}

// NewMediaService creates a new MediaService
func NewMediaService(s3Client *storage.S3Client) *MediaService {
	return &MediaService{
		s3:      s3Client,
		maxSize: 25 * 1024 * 1024, // 25MB
		allowExts: []string{
			".jpg", ".jpeg", ".png", ".gif", ".webp",
			".mp4", ".webm", ".mov",
		},
	}
}

// Upload stores a post attachment and returns its storage key and URL
func (s *MediaService) Upload(ctx context.Context, file *multipart.FileHeader) (*storage.UploadResult, error) {
	if s.s3 == nil {
		return nil, fmt.Errorf("media storage not configured")
	}
	if file.Size > s.maxSize {
		return nil, fmt.Errorf("file too large (max %dMB)", s.maxSize/(1024*1024))
	}

	ext := strings.ToLower(path.Ext(file.Filename))
	allowed := false
	for _, e := range s.allowExts {
		if e == ext {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, fmt.Errorf("unsupported media format: %s", ext)
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := src.Read(head)
	if err != nil && err != io.EOF {
		return nil, err
	}
	contentType := http.DetectContentType(head[:n])
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	return s.s3.Upload(ctx, key, src, contentType, file.Size)
}
