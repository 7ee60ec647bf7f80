package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gdgjkuat/techdigest/utils"
)

// ContextAdminKey stores whether the request carried the admin credential.
const ContextAdminKey = "is_admin"

// AdminRequired rejects requests that do not present the admin bearer key.
func AdminRequired(apiKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, ok := bearerToken(ctx.GetHeader("Authorization"))
		if !ok {
			unauthorized(ctx, 40101, "Authorization header required")
			return
		}
		if !validKey(token, apiKey) {
			unauthorized(ctx, 40102, "Invalid API key")
			return
		}
		ctx.Set(ContextAdminKey, true)
		ctx.Next()
	}
}

// AdminOptional records whether the caller is admin without rejecting anyone.
func AdminOptional(apiKey string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, ok := bearerToken(ctx.GetHeader("Authorization"))
		ctx.Set(ContextAdminKey, ok && validKey(token, apiKey))
		ctx.Next()
	}
}

// IsAdmin reports the outcome of AdminRequired or AdminOptional.
func IsAdmin(ctx *gin.Context) bool {
	return ctx.GetBool(ContextAdminKey)
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func validKey(token, apiKey string) bool {
	if apiKey == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) == 1
}

func unauthorized(ctx *gin.Context, code int, message string) {
	ctx.Header("WWW-Authenticate", "Bearer")
	utils.Fail(ctx, utils.Unauthorized(code, "%s", message))
	ctx.Abort()
}
