package queue

import (
	"context"

	"github.com/phambaophuc/image-converter/internal/models"
	"github.com/phambaophuc/image-converter/internal/services/batch"
)

type Converter interface {
	Convert(ctx context.Context, inputs []models.InputImage, cfg models.ConversionConfig, observers ...batch.ProgressFunc) (*models.ConversionResult, error)
}

type JobStore interface {
	SaveJob(ctx context.Context, job *models.ConversionJob) error
	SaveSession(ctx context.Context, sessionID string, result *models.ConversionResult, format models.Format) error
}
