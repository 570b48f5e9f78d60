package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"reviewhub/internal/domain"
)

const (
	MaxImageBytes = 5 << 20

	FolderCompanyLogos = "company-logos"
	FolderUserProfiles = "user-profiles"
)

var (
	allowedImageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

	ErrMediaDisabled = errors.New("image storage is not configured")
)

type MediaService struct {
	blobs domain.BlobStore
}

// NewMediaService accepts a nil blob store; uploads then fail with ErrMediaDisabled.
func NewMediaService(b domain.BlobStore) *MediaService { return &MediaService{blobs: b} }

// UploadImage checks size and sniffed content type, then stores the image
// under folder with a random public id.
func (s *MediaService) UploadImage(ctx context.Context, folder string, r io.Reader) (domain.UploadedBlob, error) {
	if s.blobs == nil {
		return domain.UploadedBlob{}, ErrMediaDisabled
	}
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return domain.UploadedBlob{}, err
	}
	if len(data) == 0 {
		return domain.UploadedBlob{}, fmt.Errorf("%w: no image file provided", domain.ErrValidation)
	}
	if len(data) > MaxImageBytes {
		return domain.UploadedBlob{}, fmt.Errorf("%w: image exceeds %d MB", domain.ErrValidation, MaxImageBytes>>20)
	}
	mt := mimetype.Detect(data)
	ok := false
	for _, t := range allowedImageTypes {
		if mt.Is(t) {
			ok = true
			break
		}
	}
	if !ok {
		return domain.UploadedBlob{}, fmt.Errorf("%w: only image files are allowed", domain.ErrValidation)
	}
	return s.blobs.Upload(ctx, folder, uuid.NewString(), bytes.NewReader(data))
}

func (s *MediaService) DeleteImage(ctx context.Context, publicID string) error {
	if s.blobs == nil {
		return ErrMediaDisabled
	}
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return fmt.Errorf("%w: public ID is required", domain.ErrValidation)
	}
	return s.blobs.Destroy(ctx, publicID)
}
