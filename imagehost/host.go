// Package imagehost uploads, deletes and addresses hosted images. Uploads never return
// an error: the result carries either the stored asset or a failure description.
package imagehost

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Folder layout under the configured root.
const (
	FeaturedFolder = "featured"
	ContentFolder  = "content"
)

// Host is an image hosting backend.
type Host interface {
	// Upload stores data under folder. An empty publicID gets a generated one.
	Upload(ctx context.Context, data []byte, filename, folder, publicID string) UploadResult
	// Delete removes the asset and reports whether the backend confirmed it.
	Delete(ctx context.Context, publicID string) bool
	// URL builds a delivery URL for publicID without calling the backend.
	URL(publicID string, t Transform) string
}

// Asset describes a stored image.
type Asset struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
	Format   string `json:"format,omitempty"`
	Bytes    int    `json:"bytes,omitempty"`
}

// Failure explains why a hosting call did not succeed.
type Failure struct {
	Op      string
	Message string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("image %s failed: %s", f.Op, f.Message)
}

// UploadResult holds exactly one of Asset or Failure.
type UploadResult struct {
	Asset   *Asset
	Failure *Failure
}

// OK reports whether the upload produced an asset.
func (r UploadResult) OK() bool { return r.Failure == nil && r.Asset != nil }

func succeeded(a Asset) UploadResult { return UploadResult{Asset: &a} }

func failed(op, format string, args ...interface{}) UploadResult {
	return UploadResult{Failure: &Failure{Op: op, Message: fmt.Sprintf(format, args...)}}
}

// Transform is a delivery-time resize/quality instruction.
type Transform struct {
	Width   int
	Height  int
	Crop    string
	Quality string
	Format  string
}

// Common transforms.
var (
	Original  = Transform{Quality: "auto", Format: "auto"}
	Featured  = Transform{Width: 1200, Height: 630, Crop: "fill", Quality: "auto", Format: "auto"}
	Content   = Transform{Width: 800, Crop: "scale", Quality: "auto", Format: "auto"}
	Thumbnail = Transform{Width: 150, Height: 150, Crop: "thumb", Quality: "auto"}
	Small     = Transform{Width: 400, Crop: "scale", Quality: "auto"}
	Medium    = Transform{Width: 800, Crop: "scale", Quality: "auto"}
	Large     = Transform{Width: 1200, Crop: "scale", Quality: "auto"}
)

// String renders the transform as sorted Cloudinary URL parameters, e.g. c_fill,h_630,w_1200.
func (t Transform) String() string {
	var parts []string
	if t.Crop != "" {
		parts = append(parts, "c_"+t.Crop)
	}
	if t.Format != "" {
		parts = append(parts, "f_"+t.Format)
	}
	if t.Height > 0 {
		parts = append(parts, fmt.Sprintf("h_%d", t.Height))
	}
	if t.Quality != "" {
		parts = append(parts, "q_"+t.Quality)
	}
	if t.Width > 0 {
		parts = append(parts, fmt.Sprintf("w_%d", t.Width))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

// ResponsiveURLs returns the standard size variants of an asset.
func ResponsiveURLs(h Host, publicID string) map[string]string {
	return map[string]string{
		"thumbnail": h.URL(publicID, Thumbnail),
		"small":     h.URL(publicID, Small),
		"medium":    h.URL(publicID, Medium),
		"large":     h.URL(publicID, Large),
		"original":  h.URL(publicID, Original),
	}
}

// UploadFeatured stores a post's featured image and points the asset URL at the
// 1200x630 rendition.
func UploadFeatured(ctx context.Context, h Host, root string, data []byte, filename, postID string) UploadResult {
	res := h.Upload(ctx, data, filename, joinFolder(root, FeaturedFolder), prefixedID("featured", postID))
	if res.OK() {
		res.Asset.URL = h.URL(res.Asset.PublicID, Featured)
	}
	return res
}

// UploadContent stores an inline post image scaled to 800 wide.
func UploadContent(ctx context.Context, h Host, root string, data []byte, filename, postID string) UploadResult {
	res := h.Upload(ctx, data, filename, joinFolder(root, ContentFolder), prefixedID("content", postID))
	if res.OK() {
		res.Asset.URL = h.URL(res.Asset.PublicID, Content)
	}
	return res
}

// AltTextFromFilename turns "my-cool_photo.png" into "My Cool Photo".
func AltTextFromFilename(filename string) string {
	base := filepath.Base(filename)
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}
	base = strings.NewReplacer("-", " ", "_", " ").Replace(base)
	return cases.Title(language.English).String(strings.TrimSpace(base))
}

// generatePublicID returns 12 hex characters plus the file's extension.
func generatePublicID(filename string) string {
	return hexID(12) + "." + extension(filename)
}

func prefixedID(kind, postID string) string {
	return fmt.Sprintf("%s_%s_%s", kind, postID, hexID(8))
}

func hexID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}

func extension(filename string) string {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		return "jpg"
	}
	return strings.ToLower(ext)
}

func joinFolder(root, sub string) string {
	root = strings.Trim(root, "/")
	if root == "" {
		return sub
	}
	return root + "/" + sub
}
