package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/formforge/formforge-backend/mediahost"
	apierrors "github.com/formforge/formforge-backend/pkg/errors"
	"github.com/formforge/formforge-backend/v1/models"
)

const maxUploadBytes = 5 * 1024 * 1024

var allowedUploadTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// MediaService validates and stores image uploads on the external media host,
// recording one media row per accepted asset
type MediaService struct {
	db       *gorm.DB
	uploader mediahost.Uploader
}

// NewMediaService creates a new media service
func NewMediaService(db *gorm.DB, uploader mediahost.Uploader) *MediaService {
	return &MediaService{db: db, uploader: uploader}
}

// UploadImage validates the blob, pushes it to the media host, and records
// the resulting URL. uploadedBy is optional: anonymous respondents upload too.
func (s *MediaService) UploadImage(ctx context.Context, data []byte, filename, contentType string, uploadedBy *string) (*models.Media, error) {
	if len(data) == 0 {
		return nil, apierrors.ValidationError("FILE_REQUIRED", "An image file is required")
	}
	if len(data) > maxUploadBytes {
		return nil, apierrors.ValidationError("FILE_TOO_LARGE", "Image must be 5MB or smaller")
	}
	if _, ok := allowedUploadTypes[contentType]; !ok {
		return nil, apierrors.ValidationError("UNSUPPORTED_FILE_TYPE", "Only JPEG, PNG, and WebP images are accepted")
	}

	url, err := s.uploader.Upload(ctx, data, filename)
	if err != nil {
		return nil, apierrors.NetworkError("upload image", err)
	}

	media := &models.Media{
		MediaID:    "med_" + uuid.New().String(),
		URL:        url,
		UploadedBy: uploadedBy,
		Context:    models.MediaContextSubmission,
	}
	if err := s.db.WithContext(ctx).Create(media).Error; err != nil {
		return nil, apierrors.HandleDatabaseError(err, "Media", "create media")
	}
	return media, nil
}
