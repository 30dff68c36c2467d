package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"

	"bloommarket/internal/domain/service"
	"bloommarket/pkg/errors"
	"bloommarket/pkg/logger"
)

const MaxPlantImageSize = 5 * 1024 * 1024

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

type UploadUseCase struct {
	files service.FileUploadService
}

func NewUploadUseCase(files service.FileUploadService) *UploadUseCase {
	return &UploadUseCase{
		files: files,
	}
}

func plantImageFolder(userID string) string {
	return "plants/" + userID
}

// UploadPlantImage stores a public listing image under the seller's folder.
func (uc *UploadUseCase) UploadPlantImage(ctx context.Context, userID string, file io.Reader, contentType string, size int64) (string, error) {
	if size > MaxPlantImageSize {
		return "", errors.BadRequest(fmt.Sprintf("File size exceeds maximum allowed (%dMB)", MaxPlantImageSize/(1024*1024)), nil)
	}
	if !allowedImageTypes[contentType] {
		return "", errors.BadRequest("File type not supported", nil)
	}

	url, err := uc.files.UploadFile(ctx, file, contentType, plantImageFolder(userID), true)
	if err != nil {
		return "", errors.Internal("Failed to upload image", err)
	}
	logger.Debug("uploaded plant image for %s: %s", userID, url)

	return url, nil
}

// DeletePlantImage removes an image previously uploaded by userID.
func (uc *UploadUseCase) DeletePlantImage(ctx context.Context, userID, url string) error {
	if !strings.Contains(url, "/"+plantImageFolder(userID)+"/") {
		return errors.Forbidden("You can only delete your own images", nil)
	}

	if err := uc.files.DeleteFile(ctx, url); err != nil {
		return errors.Internal("Failed to delete image", err)
	}
	return nil
}
