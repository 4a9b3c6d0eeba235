package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/phambaophuc/image-converter/internal/config"
	"github.com/phambaophuc/image-converter/internal/models"
	"github.com/phambaophuc/image-converter/internal/services/batch"
	"github.com/phambaophuc/image-converter/internal/services/pipeline"
	"github.com/phambaophuc/image-converter/internal/services/storage"
)

const (
	imagesParamKey    = "images"
	imagesAltParamKey = "images[]"
	formatParamKey    = "format"
	qualityParamKey   = "quality"
)

type Converter interface {
	Convert(ctx context.Context, inputs []models.InputImage, cfg models.ConversionConfig, observers ...batch.ProgressFunc) (*models.ConversionResult, error)
}

type SessionStore interface {
	SaveSession(ctx context.Context, sessionID string, result *models.ConversionResult, format models.Format) error
	LoadSummary(ctx context.Context, sessionID string) (*models.BatchSummary, error)
	LoadFile(ctx context.Context, sessionID string, index int) (*storage.StoredFile, error)
	LoadArchive(ctx context.Context, sessionID string) (*storage.StoredFile, error)
	SaveJob(ctx context.Context, job *models.ConversionJob) error
	GetJob(ctx context.Context, jobID string) (*models.ConversionJob, error)
	HealthCheck(ctx context.Context) map[string]string
	GetStats(ctx context.Context) (map[string]interface{}, error)
}

type JobQueue interface {
	PublishJob(ctx context.Context, job *models.ConversionJob) error
	HealthCheck() string
	GetQueueStats() (map[string]interface{}, error)
}

type ConvertHandler struct {
	converter Converter
	store     SessionStore
	queue     JobQueue
	logger    *zap.Logger
	config    *config.Config
}

// NewConvertHandler wires the handler. queue may be nil, in which case the
// async job endpoints answer 503.
func NewConvertHandler(
	converter Converter,
	store SessionStore,
	queue JobQueue,
	logger *zap.Logger,
	config *config.Config,
) *ConvertHandler {
	return &ConvertHandler{
		converter: converter,
		store:     store,
		queue:     queue,
		logger:    logger,
		config:    config,
	}
}

// === MAIN API ENDPOINTS ===

func (h *ConvertHandler) ConvertImages(c *gin.Context) {
	inputs, cfg, err := h.parseConversionRequest(c)
	if err != nil {
		h.respondError(c, statusFor(err), err.Error())
		return
	}

	result, err := h.converter.Convert(c.Request.Context(), inputs, cfg)
	if err != nil {
		h.logger.Warn("Conversion rejected", zap.Error(err))
		h.respondError(c, statusFor(err), err.Error())
		return
	}

	sessionID := uuid.New().String()
	stored := h.saveSession(c.Request.Context(), sessionID, result, cfg.TargetFormat)

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    pipeline.BuildResponse(sessionID, cfg, result, stored),
	})
}

func (h *ConvertHandler) GetSession(c *gin.Context) {
	sessionID := c.Param("id")

	summary, err := h.store.LoadSummary(c.Request.Context(), sessionID)
	if err != nil {
		h.respondStoreError(c, err, "Session not found or expired")
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data: gin.H{
			"session_id":            sessionID,
			"successes":             summary.Successes,
			"failures":              summary.Failures,
			"warnings":              summary.Warnings,
			"total_original_bytes":  summary.TotalOriginalBytes,
			"total_converted_bytes": summary.TotalConvertedBytes,
			"savings_percent":       summary.SavingsPercent(),
		},
	})
}

func (h *ConvertHandler) DownloadFile(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		h.respondError(c, http.StatusBadRequest, "invalid file index")
		return
	}

	file, err := h.store.LoadFile(c.Request.Context(), c.Param("id"), index)
	if err != nil {
		h.respondStoreError(c, err, "File not found or expired")
		return
	}

	h.respondWithFile(c, file)
}

func (h *ConvertHandler) DownloadArchive(c *gin.Context) {
	file, err := h.store.LoadArchive(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondStoreError(c, err, "Archive not found or expired")
		return
	}

	h.respondWithFile(c, file)
}

func (h *ConvertHandler) SubmitJob(c *gin.Context) {
	if h.queue == nil {
		h.respondError(c, http.StatusServiceUnavailable, "Job queue is not available")
		return
	}

	inputs, cfg, err := h.parseConversionRequest(c)
	if err != nil {
		h.respondError(c, statusFor(err), err.Error())
		return
	}
	if len(inputs) == 0 {
		h.respondError(c, http.StatusBadRequest, (&models.ValidationError{Field: imagesParamKey, Message: "at least one image is required"}).Error())
		return
	}

	now := time.Now()
	job := &models.ConversionJob{
		ID:        uuid.New().String(),
		Images:    inputs,
		Config:    cfg,
		Status:    models.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	job.SessionID = job.ID

	if err := h.store.SaveJob(c.Request.Context(), job); err != nil {
		h.logger.Error("Failed to store job", zap.String("job_id", job.ID), zap.Error(err))
		h.respondError(c, http.StatusServiceUnavailable, "Failed to store job")
		return
	}

	if err := h.queue.PublishJob(c.Request.Context(), job); err != nil {
		h.logger.Error("Failed to publish job", zap.String("job_id", job.ID), zap.Error(err))
		h.respondError(c, http.StatusServiceUnavailable, "Failed to queue job")
		return
	}

	c.JSON(http.StatusAccepted, models.APIResponse{
		Success: true,
		Data: models.JobAccepted{
			JobID:     job.ID,
			Status:    job.Status,
			StatusURL: "/api/v1/jobs/" + job.ID,
		},
	})
}

func (h *ConvertHandler) GetJob(c *gin.Context) {
	job, err := h.store.GetJob(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondStoreError(c, err, "Job not found or expired")
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    job,
	})
}

// HealthCheck
func (h *ConvertHandler) HealthCheck(c *gin.Context) {
	services := h.store.HealthCheck(c.Request.Context())

	if h.queue == nil {
		services["queue"] = "not configured"
	} else {
		services["queue"] = h.queue.HealthCheck()
	}

	overall := h.calculateOverallHealth(services)

	statusCode := http.StatusOK
	if overall == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, models.APIResponse{
		Success: overall == "healthy",
		Data: models.HealthCheck{
			Status:    overall,
			Timestamp: time.Now(),
			Services:  services,
		},
	})
}

func (h *ConvertHandler) GetStats(c *gin.Context) {
	stats := gin.H{}

	storageStats, err := h.store.GetStats(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to get storage stats", zap.Error(err))
		stats["storage"] = gin.H{"error": err.Error()}
	} else {
		stats["storage"] = storageStats
	}

	if h.queue != nil {
		queueStats, err := h.queue.GetQueueStats()
		if err != nil {
			h.logger.Error("Failed to get queue stats", zap.Error(err))
			stats["queue"] = gin.H{"error": err.Error()}
		} else {
			stats["queue"] = queueStats
		}
	}

	stats["limits"] = gin.H{
		"max_file_size":   h.config.Storage.MaxFileSize,
		"max_batch_files": h.config.Storage.MaxBatchFiles,
		"default_format":  h.config.Conversion.DefaultFormat,
		"default_quality": h.config.Conversion.DefaultQuality,
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    stats,
	})
}

func statusFor(err error) int {
	var requestErr *requestError
	switch {
	case errors.As(err, &requestErr):
		return requestErr.status
	case errors.Is(err, models.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
