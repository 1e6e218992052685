package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// PhotoService uploads delivery photos (a snapshot of the materials at the
// drop-off point) to Cloudinary.
type PhotoService struct {
	cld *cloudinary.Cloudinary
}

var Photos *PhotoService

func InitializePhotos(cloudinaryURL string) error {
	if cloudinaryURL == "" {
		return fmt.Errorf("cloudinary URL is required")
	}

	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}

	Photos = &PhotoService{cld: cld}
	return nil
}

// UploadDeliveryPhoto uploads an image and returns its HTTPS URL.
func (ps *PhotoService) UploadDeliveryPhoto(ctx context.Context, file multipart.File) (string, error) {
	publicID := fmt.Sprintf("deliveries/%d", time.Now().UnixNano())

	truth := true
	falsehood := false
	result, err := ps.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         "deliveries",
		UseFilename:    &truth,
		UniqueFilename: &truth,
		Overwrite:      &falsehood,
		ResourceType:   "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload photo: %w", err)
	}

	url := result.SecureURL
	if url == "" {
		url = result.URL
	}
	return forceHTTPS(url), nil
}

// forceHTTPS rewrites http URLs to https; some Cloudinary responses still
// carry plain-http URLs which browsers block on production origins.
func forceHTTPS(url string) string {
	if strings.HasPrefix(url, "http://") {
		return "https://" + strings.TrimPrefix(url, "http://")
	}
	return url
}
