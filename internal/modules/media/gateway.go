package media

import (
	"context"
	"fmt"
	"io"

	"github.com/almadegranja/alma-backend/internal/config"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// UploadResult is what the storefront keeps of an uploaded image.
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// ImageHost is the provider-agnostic interface for the external image host.
type ImageHost interface {
	// Upload stores the image read from file and returns its public URL.
	Upload(ctx context.Context, filename string, file io.Reader) (*UploadResult, error)
}

// ── Cloudinary adapter ────────────────────────────────────────────────────────

type cloudinaryHost struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryHost returns nil when the account is not configured; the
// upload handler answers 500 in that case.
func NewCloudinaryHost(cfg config.MediaConfig) (ImageHost, error) {
	if !cfg.Configured() {
		return nil, nil
	}
	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &cloudinaryHost{cld: cld, folder: cfg.Folder}, nil
}

// Upload passes ctx through unchanged; no timeout is added here.
func (h *cloudinaryHost) Upload(ctx context.Context, filename string, file io.Reader) (*UploadResult, error) {
	res, err := h.cld.Upload.Upload(ctx, file, uploader.UploadParams{Folder: h.folder})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload %q: %w", filename, err)
	}
	if res.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload %q: %s", filename, res.Error.Message)
	}
	return &UploadResult{URL: res.SecureURL, PublicID: res.PublicID}, nil
}
