package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/phambaophuc/image-converter/internal/models"
	"github.com/phambaophuc/image-converter/internal/services/pipeline"
	"github.com/phambaophuc/image-converter/internal/services/storage"
)

// requestError carries an HTTP status for problems found while reading
// the request, before any conversion starts.
type requestError struct {
	status  int
	message string
}

func (e *requestError) Error() string {
	return e.message
}

// === REQUEST PARSING ===

func (h *ConvertHandler) parseConversionRequest(c *gin.Context) ([]models.InputImage, models.ConversionConfig, error) {
	files, err := h.parseMultipartFiles(c)
	if err != nil {
		return nil, models.ConversionConfig{}, err
	}

	cfg, err := h.parseConversionConfig(c)
	if err != nil {
		return nil, models.ConversionConfig{}, err
	}

	inputs, err := h.readFiles(files)
	if err != nil {
		return nil, models.ConversionConfig{}, err
	}

	return inputs, cfg, nil
}

func (h *ConvertHandler) parseConversionConfig(c *gin.Context) (models.ConversionConfig, error) {
	format := h.config.Conversion.DefaultFormat
	if value := c.PostForm(formatParamKey); value != "" {
		parsed, err := models.ParseFormat(value)
		if err != nil {
			return models.ConversionConfig{}, err
		}
		format = parsed
	}

	quality, err := parseQuality(c.PostForm(qualityParamKey), h.config.Conversion.DefaultQuality)
	if err != nil {
		return models.ConversionConfig{}, err
	}

	cfg := models.ConversionConfig{TargetFormat: format, Quality: quality}
	return cfg, cfg.Validate()
}

// parseQuality accepts a normalized value in [0, 1] or a whole number on
// the 1-10 scale of the upload form, which is divided by 10. Values that
// fit both readings are taken as normalized: "1" is 1.0, not 0.1, and
// "0" is 0.0.
func parseQuality(value string, defaultQuality float64) (float64, error) {
	if value == "" {
		return defaultQuality, nil
	}

	quality, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(quality) || math.IsInf(quality, 0) {
		return 0, &models.ValidationError{Field: qualityParamKey, Message: "quality must be a number"}
	}

	if quality > 1 && quality <= 10 && quality == math.Trunc(quality) {
		quality /= 10
	}

	if quality < 0 || quality > 1 {
		return 0, &models.ValidationError{Field: qualityParamKey, Message: fmt.Sprintf("quality %v is outside [0, 1] and not a 1-10 step", quality)}
	}

	return quality, nil
}

func (h *ConvertHandler) parseMultipartFiles(c *gin.Context) ([]*multipart.FileHeader, error) {
	maxMemory := h.config.Storage.MaxFileSize * int64(h.config.Storage.MaxBatchFiles)
	if err := c.Request.ParseMultipartForm(maxMemory); err != nil {
		return nil, &requestError{status: http.StatusBadRequest, message: fmt.Sprintf("failed to parse form data: %v", err)}
	}

	form := c.Request.MultipartForm
	files := append([]*multipart.FileHeader{}, form.File[imagesParamKey]...)
	files = append(files, form.File[imagesAltParamKey]...)

	if len(files) > h.config.Storage.MaxBatchFiles {
		return nil, &requestError{
			status:  http.StatusRequestEntityTooLarge,
			message: fmt.Sprintf("too many images: %d exceeds the limit of %d", len(files), h.config.Storage.MaxBatchFiles),
		}
	}

	return files, nil
}

// === FILE OPERATIONS ===

func (h *ConvertHandler) readFiles(files []*multipart.FileHeader) ([]models.InputImage, error) {
	inputs := make([]models.InputImage, 0, len(files))

	for _, fh := range files {
		if fh.Size > h.config.Storage.MaxFileSize {
			return nil, &requestError{
				status:  http.StatusRequestEntityTooLarge,
				message: fmt.Sprintf("file %s size %d exceeds maximum allowed size %d", fh.Filename, fh.Size, h.config.Storage.MaxFileSize),
			}
		}

		content, err := readFile(fh, h.config.Storage.MaxFileSize)
		if err != nil {
			return nil, &requestError{status: http.StatusBadRequest, message: fmt.Sprintf("failed to read %s: %v", fh.Filename, err)}
		}

		inputs = append(inputs, models.NewInputImage(fh.Filename, content))
	}

	return inputs, nil
}

func readFile(fh *multipart.FileHeader, maxSize int64) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(content)) > maxSize {
		return nil, fmt.Errorf("file exceeds maximum allowed size %d", maxSize)
	}
	return content, nil
}

// === RESPONSE HANDLING ===

func (h *ConvertHandler) respondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

func (h *ConvertHandler) respondStoreError(c *gin.Context, err error, notFoundMessage string) {
	if errors.Is(err, storage.ErrNotFound) {
		h.respondError(c, http.StatusNotFound, notFoundMessage)
		return
	}

	h.logger.Error("Session store error", zap.Error(err))
	h.respondError(c, http.StatusServiceUnavailable, "Session storage unavailable")
}

func (h *ConvertHandler) respondWithFile(c *gin.Context, file *storage.StoredFile) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

// === UTILITY METHODS ===

func (h *ConvertHandler) saveSession(ctx context.Context, sessionID string, result *models.ConversionResult, format models.Format) bool {
	if !pipeline.HasOutputs(result) {
		return false
	}

	if err := h.store.SaveSession(ctx, sessionID, result, format); err != nil {
		h.logger.Warn("Failed to store session, download links disabled",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return false
	}
	return true
}

func (h *ConvertHandler) calculateOverallHealth(services map[string]string) string {
	for _, status := range services {
		if status != "healthy" && status != "not configured" {
			return "unhealthy"
		}
	}
	return "healthy"
}
