package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/phambaophuc/image-converter/internal/models"
	"github.com/phambaophuc/image-converter/pkg/utils"
)

// StoredFile is a downloadable blob of a session.
type StoredFile struct {
	Name        string
	ContentType string
	Data        []byte
}

type manifestFile struct {
	OutputName  string `json:"output_name"`
	ContentType string `json:"content_type"`
}

type sessionManifest struct {
	Files       []manifestFile `json:"files"`
	ArchiveName string         `json:"archive_name,omitempty"`
}

// SaveSession stores every successful output and the archive, if any, under
// sessionID. All keys share the session TTL.
func (s *StorageService) SaveSession(ctx context.Context, sessionID string, result *models.ConversionResult, format models.Format) error {
	manifest := sessionManifest{}
	for _, success := range result.Summary.Successes {
		manifest.Files = append(manifest.Files, manifestFile{
			OutputName:  success.OutputName,
			ContentType: format.ContentType(),
		})
	}
	if result.Archive != nil {
		// downloads from different sessions should not overwrite each other
		manifest.ArchiveName = utils.ArchiveName(sessionID)
	}

	manifestBytes, err := json.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("failed to marshal session manifest: %w", err)
	}

	summaryBytes, err := json.Marshal(result.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal batch summary: %w", err)
	}

	pipe := s.redisClient.TxPipeline()
	pipe.Set(ctx, manifestKey(sessionID), manifestBytes, s.sessionTTL)
	pipe.Set(ctx, summaryKey(sessionID), summaryBytes, s.sessionTTL)
	for i, success := range result.Summary.Successes {
		pipe.Set(ctx, fileKey(sessionID, i), success.OutputBytes, s.sessionTTL)
	}
	if result.Archive != nil {
		pipe.Set(ctx, archiveKey(sessionID), result.Archive.Bytes, s.sessionTTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save session %s: %w", sessionID, err)
	}

	s.logger.Info("Session saved",
		zap.String("session_id", sessionID),
		zap.Int("files", len(manifest.Files)),
		zap.Bool("archive", result.Archive != nil),
		zap.Duration("ttl", s.sessionTTL),
	)
	return nil
}

// LoadSummary returns the stored batch summary. Output bytes are not part of
// it; fetch them with LoadFile.
func (s *StorageService) LoadSummary(ctx context.Context, sessionID string) (*models.BatchSummary, error) {
	data, err := s.get(ctx, summaryKey(sessionID))
	if err != nil {
		return nil, err
	}

	var summary models.BatchSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("corrupt summary for session %s: %w", sessionID, err)
	}
	return &summary, nil
}

func (s *StorageService) LoadFile(ctx context.Context, sessionID string, index int) (*StoredFile, error) {
	manifest, err := s.loadManifest(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(manifest.Files) {
		return nil, fmt.Errorf("file %d of session %s: %w", index, sessionID, ErrNotFound)
	}

	data, err := s.get(ctx, fileKey(sessionID, index))
	if err != nil {
		return nil, err
	}

	return &StoredFile{
		Name:        manifest.Files[index].OutputName,
		ContentType: manifest.Files[index].ContentType,
		Data:        data,
	}, nil
}

func (s *StorageService) LoadArchive(ctx context.Context, sessionID string) (*StoredFile, error) {
	manifest, err := s.loadManifest(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if manifest.ArchiveName == "" {
		return nil, fmt.Errorf("archive of session %s: %w", sessionID, ErrNotFound)
	}

	data, err := s.get(ctx, archiveKey(sessionID))
	if err != nil {
		return nil, err
	}

	return &StoredFile{
		Name:        manifest.ArchiveName,
		ContentType: "application/zip",
		Data:        data,
	}, nil
}

func (s *StorageService) loadManifest(ctx context.Context, sessionID string) (*sessionManifest, error) {
	data, err := s.get(ctx, manifestKey(sessionID))
	if err != nil {
		return nil, err
	}

	var manifest sessionManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("corrupt manifest for session %s: %w", sessionID, err)
	}
	return &manifest, nil
}

func (s *StorageService) get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.redisClient.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
		}
		return nil, fmt.Errorf("redis get error: %w", err)
	}
	return data, nil
}
