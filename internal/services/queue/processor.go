package queue

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/phambaophuc/image-converter/internal/models"
	"github.com/phambaophuc/image-converter/internal/services/pipeline"
)

func (q *QueueService) processJob(ctx context.Context, job *models.ConversionJob) (*models.ConvertResponse, error) {
	result, err := q.converter.Convert(ctx, job.Images, job.Config, func(p models.Progress) {
		q.logger.Debug("Job progress",
			zap.String("job_id", job.ID),
			zap.Int("done", p.Done),
			zap.Int("total", p.Total))
	})
	if err != nil {
		return nil, fmt.Errorf("failed to convert images: %w", err)
	}

	sessionID := job.SessionID
	if sessionID == "" {
		sessionID = job.ID
	}

	stored := pipeline.HasOutputs(result)
	if stored {
		if err := q.store.SaveSession(ctx, sessionID, result, job.Config.TargetFormat); err != nil {
			q.logger.Warn("Failed to store session", zap.String("job_id", job.ID), zap.Error(err))
			stored = false
		}
	}

	response := pipeline.BuildResponse(sessionID, job.Config, result, stored)
	return &response, nil
}
