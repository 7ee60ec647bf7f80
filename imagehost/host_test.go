package imagehost

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gdgjkuat/techdigest/config"
)

type recordingHost struct {
	folder, publicID string
}

func (r *recordingHost) Upload(_ context.Context, data []byte, filename, folder, publicID string) UploadResult {
	r.folder, r.publicID = folder, publicID
	return succeeded(Asset{URL: "raw", PublicID: folder + "/" + publicID, Bytes: len(data)})
}

func (r *recordingHost) Delete(context.Context, string) bool { return true }

func (r *recordingHost) URL(publicID string, t Transform) string {
	return CloudinaryURL("demo", publicID, t)
}

func TestTransformString(t *testing.T) {
	assert.Equal(t, "c_fill,f_auto,h_630,q_auto,w_1200", Featured.String())
	assert.Equal(t, "c_scale,q_auto,w_800", Medium.String())
	assert.Equal(t, "f_auto,q_auto", Original.String())
	assert.Equal(t, "", Transform{}.String())
}

func TestCloudinaryURL(t *testing.T) {
	assert.Equal(t,
		"https://res.cloudinary.com/demo/image/upload/c_thumb,h_150,q_auto,w_150/gdg-jkuat-blog/abc.jpg",
		CloudinaryURL("demo", "gdg-jkuat-blog/abc.jpg", Thumbnail))
	assert.Equal(t,
		"https://res.cloudinary.com/demo/image/upload/sample",
		CloudinaryURL("demo", "/sample", Transform{}))
}

func TestMinIOURL(t *testing.T) {
	assert.Equal(t, "http://localhost:9000/images/gdg-jkuat-blog/a.png",
		MinIOURL("http://localhost:9000/", "images", "/gdg-jkuat-blog/a.png"))
}

func TestGeneratePublicID(t *testing.T) {
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{12}\.png$`), generatePublicID("Photo.PNG"))
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{12}\.jpg$`), generatePublicID("noext"))
	assert.NotEqual(t, generatePublicID("a.jpg"), generatePublicID("a.jpg"))
}

func TestUploadFeaturedAndContent(t *testing.T) {
	h := &recordingHost{}
	ctx := context.Background()

	res := UploadFeatured(ctx, h, "gdg-jkuat-blog", []byte("img"), "cover.jpg", "post1")
	require.True(t, res.OK())
	assert.Equal(t, "gdg-jkuat-blog/featured", h.folder)
	assert.Regexp(t, regexp.MustCompile(`^featured_post1_[0-9a-f]{8}$`), h.publicID)
	assert.True(t, strings.Contains(res.Asset.URL, "/c_fill,f_auto,h_630,q_auto,w_1200/"))

	res = UploadContent(ctx, h, "/gdg-jkuat-blog/", []byte("img"), "inline.jpg", "post1")
	require.True(t, res.OK())
	assert.Equal(t, "gdg-jkuat-blog/content", h.folder)
	assert.Regexp(t, regexp.MustCompile(`^content_post1_[0-9a-f]{8}$`), h.publicID)
}

func TestResponsiveURLs(t *testing.T) {
	urls := ResponsiveURLs(&recordingHost{}, "x")
	assert.Len(t, urls, 5)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/c_scale,q_auto,w_400/x", urls["small"])
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/f_auto,q_auto/x", urls["original"])
}

func TestAltTextFromFilename(t *testing.T) {
	assert.Equal(t, "My Cool Photo", AltTextFromFilename("my-cool_photo.png"))
	assert.Equal(t, "Banner", AltTextFromFilename("uploads/banner.final.jpg"))
}

func TestUnavailable(t *testing.T) {
	res := Unavailable{}.Upload(context.Background(), []byte("x"), "a.jpg", "f", "")
	assert.False(t, res.OK())
	require.NotNil(t, res.Failure)
	assert.Equal(t, "upload", res.Failure.Op)
	assert.Contains(t, res.Failure.Error(), "not configured")
	assert.False(t, Unavailable{}.Delete(context.Background(), "x"))
}

func TestNew(t *testing.T) {
	h, err := New(context.Background(), config.AppConfig{})
	require.NoError(t, err)
	assert.IsType(t, Unavailable{}, h)

	_, err = New(context.Background(), config.AppConfig{ImageBackend: "ftp"})
	assert.Error(t, err)

	h, err = New(context.Background(), config.AppConfig{ImageBackend: "cloudinary", CloudinaryCloudName: "demo", CloudinaryAPIKey: "k", CloudinaryAPISecret: "s"})
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/sample", h.URL("sample", Transform{}))
}

func TestCloudinaryRejectsEmptyFile(t *testing.T) {
	c, err := NewCloudinary("demo", "k", "s")
	require.NoError(t, err)
	res := c.Upload(context.Background(), nil, "a.jpg", "f", "")
	assert.False(t, res.OK())
}
