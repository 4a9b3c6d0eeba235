package storage

import (
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/phambaophuc/image-converter/internal/config"
)

const (
	SessionKeyPrefix = "convert_session:"
	JobKeyPrefix     = "convert_job:"
)

var ErrNotFound = errors.New("not found")

// StorageService keeps the outputs of a conversion session in Redis until
// the session TTL expires.
type StorageService struct {
	redisClient *redis.Client
	sessionTTL  time.Duration
	logger      *zap.Logger
}

func NewStorageService(cfg *config.Config, logger *zap.Logger) *StorageService {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	return NewStorageServiceWithClient(redisClient, cfg.Storage.SessionTTL, logger)
}

func NewStorageServiceWithClient(client *redis.Client, sessionTTL time.Duration, logger *zap.Logger) *StorageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StorageService{
		redisClient: client,
		sessionTTL:  sessionTTL,
		logger:      logger,
	}
}

func (s *StorageService) SessionTTL() time.Duration {
	return s.sessionTTL
}

func (s *StorageService) Close() error {
	return s.redisClient.Close()
}
