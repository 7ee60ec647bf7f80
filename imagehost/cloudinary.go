package imagehost

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var uploadTags = []string{"gdg-jkuat", "blog", "auto-upload"}

// Cloudinary hosts images on Cloudinary.
type Cloudinary struct {
	cld       *cloudinary.Cloudinary
	cloudName string
}

// NewCloudinary builds a Cloudinary host from account credentials.
func NewCloudinary(cloudName, apiKey, apiSecret string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	cld.Config.URL.Secure = true
	return &Cloudinary{cld: cld, cloudName: cloudName}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, data []byte, filename, folder, publicID string) UploadResult {
	if len(data) == 0 {
		return failed("upload", "empty file")
	}
	if publicID == "" {
		publicID = generatePublicID(filename)
	}

	res, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		PublicID:       publicID,
		Folder:         folder,
		Tags:           uploadTags,
		Transformation: Original.String(),
	})
	if err != nil {
		return failed("upload", "%v", err)
	}
	if res.Error.Message != "" {
		return failed("upload", "%s", res.Error.Message)
	}
	return succeeded(Asset{
		URL:      res.SecureURL,
		PublicID: res.PublicID,
		Width:    res.Width,
		Height:   res.Height,
		Format:   res.Format,
		Bytes:    res.Bytes,
	})
}

func (c *Cloudinary) Delete(ctx context.Context, publicID string) bool {
	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID})
	if err != nil {
		return false
	}
	return res.Result == "ok"
}

func (c *Cloudinary) URL(publicID string, t Transform) string {
	return CloudinaryURL(c.cloudName, publicID, t)
}

// CloudinaryURL builds a secure delivery URL for publicID in cloudName.
func CloudinaryURL(cloudName, publicID string, t Transform) string {
	var b strings.Builder
	b.WriteString("https://res.cloudinary.com/")
	b.WriteString(cloudName)
	b.WriteString("/image/upload/")
	if tr := t.String(); tr != "" {
		b.WriteString(tr)
		b.WriteByte('/')
	}
	b.WriteString(strings.TrimPrefix(publicID, "/"))
	return b.String()
}
