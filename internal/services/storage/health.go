package storage

import (
	"context"
	"fmt"
)

// HealthCheck checks Redis
func (s *StorageService) HealthCheck(ctx context.Context) map[string]string {
	status := make(map[string]string)

	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		status["redis"] = "unhealthy: " + err.Error()
	} else {
		status["redis"] = "healthy"
	}

	return status
}

func (s *StorageService) GetStats(ctx context.Context) (map[string]interface{}, error) {
	pipeline := s.redisClient.Pipeline()

	infoCmd := pipeline.Info(ctx, "memory")
	dbSizeCmd := pipeline.DBSize(ctx)

	if _, err := pipeline.Exec(ctx); err != nil {
		return nil, fmt.Errorf("pipeline error: %w", err)
	}

	return map[string]interface{}{
		"db_keys":     dbSizeCmd.Val(),
		"info":        infoCmd.Val(),
		"session_ttl": s.sessionTTL.String(),
	}, nil
}
