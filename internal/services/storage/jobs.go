package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/phambaophuc/image-converter/internal/models"
)

// SaveJob stores the job status without its source images.
func (s *StorageService) SaveJob(ctx context.Context, job *models.ConversionJob) error {
	stored := *job
	stored.Images = nil

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	if err := s.redisClient.Set(ctx, jobKey(job.ID), data, s.sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save job %s: %w", job.ID, err)
	}
	return nil
}

func (s *StorageService) GetJob(ctx context.Context, jobID string) (*models.ConversionJob, error) {
	data, err := s.get(ctx, jobKey(jobID))
	if err != nil {
		return nil, err
	}

	var job models.ConversionJob
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("corrupt job %s: %w", jobID, err)
	}
	return &job, nil
}
