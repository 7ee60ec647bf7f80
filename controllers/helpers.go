package controllers

import (
	"io"
	"mime/multipart"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gdgjkuat/techdigest/utils"
)

// parsePaging reads skip and limit. Out of range values are left for the service to reject.
func parsePaging(ctx *gin.Context, defaultLimit int) (int, int, error) {
	skip, err := strconv.Atoi(ctx.DefaultQuery("skip", "0"))
	if err != nil {
		return 0, 0, utils.BadRequest(40001, "skip must be an integer")
	}
	limit, err := strconv.Atoi(ctx.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil {
		return 0, 0, utils.BadRequest(40001, "limit must be an integer")
	}
	return skip, limit, nil
}

// upload is an image file read from a multipart request.
type upload struct {
	Filename string
	Data     []byte
}

// readImageUpload reads the "image" form field, falling back to "file".
func readImageUpload(ctx *gin.Context, maxMB int) (*upload, error) {
	header, err := ctx.FormFile("image")
	if err != nil {
		header, err = ctx.FormFile("file")
	}
	if err != nil {
		return nil, utils.BadRequest(40004, "No image file provided")
	}
	if maxMB > 0 && header.Size > int64(maxMB)<<20 {
		return nil, utils.BadRequest(40005, "Image must be at most %d MB", maxMB)
	}
	if ct := header.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, utils.BadRequest(40006, "File must be an image")
	}
	data, err := readFileHeader(header)
	if err != nil {
		return nil, utils.Internal(50030, err, "failed to read uploaded file")
	}
	if len(data) == 0 {
		return nil, utils.BadRequest(40004, "Uploaded file is empty")
	}
	return &upload{Filename: header.Filename, Data: data}, nil
}

func readFileHeader(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
