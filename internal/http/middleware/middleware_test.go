package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func newTestEngine(t *testing.T, handlers ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(handlers...)
	router.POST("/upload", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })
	router.GET("/panic", func(ctx *gin.Context) { panic("boom") })
	router.GET("/ok", func(ctx *gin.Context) { ctx.Status(http.StatusOK) })
	return router
}

func TestValidateContentType(t *testing.T) {
	router := newTestEngine(t, ValidateContentType())

	tests := []struct {
		name        string
		contentType string
		want        int
	}{
		{"multipart", "multipart/form-data; boundary=xyz", http.StatusOK},
		{"json", "application/json", http.StatusUnsupportedMediaType},
		{"missing", "", http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader(""))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestErrorHandlerRecoversPanic(t *testing.T) {
	router := newTestEngine(t, ErrorHandler(zaptest.NewLogger(t)))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Internal server error")
}

func TestCORSPreflight(t *testing.T) {
	router := newTestEngine(t, CORS())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/upload", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSecurityHeadersAndLogger(t *testing.T) {
	router := newTestEngine(t, Logger(zaptest.NewLogger(t)), SecurityHeaders())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
