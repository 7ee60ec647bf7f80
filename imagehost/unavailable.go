package imagehost

import "context"

// Unavailable is used when no backend is configured. Every upload fails.
type Unavailable struct{}

func (Unavailable) Upload(context.Context, []byte, string, string, string) UploadResult {
	return failed("upload", "image hosting is not configured")
}

func (Unavailable) Delete(context.Context, string) bool { return false }

func (Unavailable) URL(string, Transform) string { return "" }
