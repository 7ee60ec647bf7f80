package imagehost

import (
	"context"
	"fmt"

	"github.com/gdgjkuat/techdigest/config"
)

// New returns the backend selected by cfg.ImageBackend.
func New(ctx context.Context, cfg config.AppConfig) (Host, error) {
	switch cfg.ImageBackend {
	case "cloudinary":
		return NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	case "minio":
		return NewMinIO(ctx, MinIOOptions{
			Endpoint:  cfg.MinIOEndpoint,
			AccessKey: cfg.MinIOAccessKey,
			SecretKey: cfg.MinIOSecretKey,
			Bucket:    cfg.MinIOBucket,
			UseSSL:    cfg.MinIOUseSSL,
			PublicURL: cfg.MinIOPublicURL,
		})
	case "", "none":
		return Unavailable{}, nil
	default:
		return nil, fmt.Errorf("unsupported image backend %q", cfg.ImageBackend)
	}
}
