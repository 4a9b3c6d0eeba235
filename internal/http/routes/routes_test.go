package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/phambaophuc/image-converter/internal/config"
	"github.com/phambaophuc/image-converter/internal/http/handlers"
	"github.com/phambaophuc/image-converter/internal/models"
	"github.com/phambaophuc/image-converter/internal/services/storage"
)

type emptyStore struct {
	handlers.SessionStore
}

func (emptyStore) LoadArchive(ctx context.Context, sessionID string) (*storage.StoredFile, error) {
	return nil, storage.ErrNotFound
}

func (emptyStore) GetJob(ctx context.Context, jobID string) (*models.ConversionJob, error) {
	return nil, storage.ErrNotFound
}

func (emptyStore) HealthCheck(ctx context.Context) map[string]string {
	return map[string]string{"redis": "healthy"}
}

func (emptyStore) GetStats(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zaptest.NewLogger(t)

	handler := handlers.NewConvertHandler(nil, emptyStore{}, nil, logger, &config.Config{})
	return NewRouter(handler, logger).SetupRoutes()
}

func TestSetupRoutes(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		ctype  string
		want   int
	}{
		{"root", http.MethodGet, "/", "", "", http.StatusOK},
		{"health", http.MethodGet, "/api/v1/health", "", "", http.StatusOK},
		{"stats", http.MethodGet, "/api/v1/stats", "", "", http.StatusOK},
		{"archive missing", http.MethodGet, "/api/v1/sessions/abc/archive", "", "", http.StatusNotFound},
		{"job missing", http.MethodGet, "/api/v1/jobs/abc", "", "", http.StatusNotFound},
		{"convert needs multipart", http.MethodPost, "/api/v1/images/convert", `{"format":"png"}`, "application/json", http.StatusUnsupportedMediaType},
		{"jobs need multipart", http.MethodPost, "/api/v1/jobs", `{}`, "application/json", http.StatusUnsupportedMediaType},
		{"unknown route", http.MethodGet, "/api/v1/images/resize", "", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.ctype != "" {
				req.Header.Set("Content-Type", tt.ctype)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
		})
	}
}
