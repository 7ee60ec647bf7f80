package utils

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   int    `json:"code"`
}

// MessageResponse confirms a mutation that has no resource to return.
type MessageResponse struct {
	Message   string `json:"message"`
	EpisodeID *uint  `json:"episode_id,omitempty"`
}

// Respond writes data as JSON with the given status code.
func Respond(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, data)
}

// Success returns a 200 response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, 200, data)
}

// Created returns a 201 response.
func Created(ctx *gin.Context, data interface{}) {
	Respond(ctx, 201, data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, ErrorResponse{Detail: message, Code: code})
}

// Fail maps err onto an error response. Errors that are not AppErrors are logged and
// reported as a generic internal failure.
func Fail(ctx *gin.Context, err error) {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		Logger.Error("unhandled error",
			zap.String("path", ctx.Request.URL.Path),
			zap.String("method", ctx.Request.Method),
			zap.Error(err))
		Error(ctx, 500, 50000, "internal server error")
		return
	}
	if appErr.Kind == KindInternal {
		Logger.Error(appErr.Message,
			zap.String("path", ctx.Request.URL.Path),
			zap.Int("code", appErr.Code),
			zap.Error(appErr.Err))
	}
	Error(ctx, appErr.Kind.Status(), appErr.Code, appErr.Message)
}
