package imagehost

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIO hosts images in an S3 compatible bucket. It serves originals only, so
// transforms are ignored when building URLs.
type MinIO struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

// MinIOOptions configures NewMinIO.
type MinIOOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// PublicURL is the externally reachable base of the bucket's endpoint.
	PublicURL string
}

// NewMinIO connects to the endpoint and creates the bucket when missing.
func NewMinIO(ctx context.Context, opts MinIOOptions) (*MinIO, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: %w", err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
	}

	publicURL := opts.PublicURL
	if publicURL == "" {
		scheme := "http"
		if opts.UseSSL {
			scheme = "https"
		}
		publicURL = scheme + "://" + opts.Endpoint
	}
	return &MinIO{client: client, bucket: opts.Bucket, publicURL: strings.TrimSuffix(publicURL, "/")}, nil
}

func (m *MinIO) Upload(ctx context.Context, data []byte, filename, folder, publicID string) UploadResult {
	if len(data) == 0 {
		return failed("upload", "empty file")
	}
	if publicID == "" {
		publicID = generatePublicID(filename)
	}
	objectName := path.Join(strings.Trim(folder, "/"), publicID)

	ext := "." + extension(filename)
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	info, err := m.client.PutObject(ctx, m.bucket, objectName, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{
			ContentType: contentType,
			UserMetadata: map[string]string{
				"original-filename": filename,
				"uploaded-at":       time.Now().UTC().Format(time.RFC3339),
			},
		})
	if err != nil {
		return failed("upload", "%v", err)
	}
	return succeeded(Asset{
		URL:      m.URL(objectName, Original),
		PublicID: objectName,
		Format:   strings.TrimPrefix(ext, "."),
		Bytes:    int(info.Size),
	})
}

func (m *MinIO) Delete(ctx context.Context, publicID string) bool {
	err := m.client.RemoveObject(ctx, m.bucket, publicID, minio.RemoveObjectOptions{GovernanceBypass: true})
	return err == nil
}

func (m *MinIO) URL(publicID string, _ Transform) string {
	return MinIOURL(m.publicURL, m.bucket, publicID)
}

// MinIOURL builds the path-style object URL.
func MinIOURL(base, bucket, objectName string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(base, "/"), bucket, strings.TrimPrefix(objectName, "/"))
}
