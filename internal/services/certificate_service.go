package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// MaxCertificateSize bounds uploaded certificate files
const MaxCertificateSize = 5 << 20

var allowedCertificateTypes = map[string]string{
	".pdf":  "image", // cloudinary serves PDFs as image resources
	".jpg":  "image",
	".jpeg": "image",
	".png":  "image",
	".webp": "image",
}

// CertificateService stores donation certificates on Cloudinary
type CertificateService struct {
	cld *cloudinary.Cloudinary
}

func NewCertificateService(cloudName, apiKey, apiSecret string) (*CertificateService, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("missing Cloudinary configuration")
	}

	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CertificateService{cld: cld}, nil
}

// ValidateCertificateFile checks extension and size before upload
func ValidateCertificateFile(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedCertificateTypes[ext]; !ok {
		return fmt.Errorf("invalid file type: %s. Allowed types: pdf, jpg, jpeg, png, webp", ext)
	}
	if size > MaxCertificateSize {
		return fmt.Errorf("file too large: %d bytes (max %d bytes)", size, MaxCertificateSize)
	}
	return nil
}

// Upload stores the certificate for a donation and returns its HTTPS URL
func (s *CertificateService) Upload(ctx context.Context, file io.Reader, filename, donationID string) (string, error) {
	overwrite := true
	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:     "donation_" + donationID,
		Folder:       "bloodlink/certificates",
		Overwrite:    &overwrite,
		ResourceType: allowedCertificateTypes[strings.ToLower(filepath.Ext(filename))],
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload certificate: %w", err)
	}
	return result.SecureURL, nil
}
