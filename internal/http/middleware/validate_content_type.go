package middleware

import (
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ValidateContentType rejects uploads that are not multipart forms. Image
// bytes themselves are checked by the decoder, not by their declared type.
func ValidateContentType() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method != http.MethodPost {
			ctx.Next()
			return
		}

		mediaType, _, err := mime.ParseMediaType(ctx.GetHeader("Content-Type"))
		if err != nil || mediaType != "multipart/form-data" {
			ctx.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
				"success": false,
				"error":   "Content-Type must be multipart/form-data",
			})
			return
		}

		ctx.Next()
	}
}
