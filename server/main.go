package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/phambaophuc/image-converter/internal/config"
	"github.com/phambaophuc/image-converter/internal/http/handlers"
	"github.com/phambaophuc/image-converter/internal/http/routes"
	"github.com/phambaophuc/image-converter/internal/services/archive"
	"github.com/phambaophuc/image-converter/internal/services/batch"
	"github.com/phambaophuc/image-converter/internal/services/codec"
	"github.com/phambaophuc/image-converter/internal/services/pipeline"
	"github.com/phambaophuc/image-converter/internal/services/queue"
	"github.com/phambaophuc/image-converter/internal/services/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	// Initialize services
	converter := codec.NewCodec(logger, codec.Options{AutoOrient: cfg.Conversion.AutoOrient})
	orchestrator := batch.NewOrchestrator(converter, logger, batch.Options{Workers: cfg.Conversion.BatchWorkers})

	packager, err := archive.NewPackager(logger, archive.Options{Method: cfg.Conversion.ArchiveMethod})
	if err != nil {
		logger.Fatal("Failed to initialize archive packager", zap.Error(err))
	}

	conversionPipeline := pipeline.NewPipeline(orchestrator, packager, logger)

	store := storage.NewStorageService(cfg, logger)
	defer store.Close()

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	// Continue without queue service for synchronous conversion
	var jobQueue handlers.JobQueue
	queueService, err := queue.NewQueueService(cfg.RabbitMQ.URL, cfg.RabbitMQ.QueueName, conversionPipeline, store, logger)
	if err != nil {
		logger.Warn("Failed to initialize queue service", zap.Error(err))
	} else {
		defer queueService.Close()
		jobQueue = queueService

		for i := 1; i <= cfg.RabbitMQ.Workers; i++ {
			if err := queueService.StartWorker(workerCtx, i); err != nil {
				logger.Error("Failed to start worker", zap.Int("worker_id", i), zap.Error(err))
			}
		}
	}

	// Initialize handlers
	convertHandler := handlers.NewConvertHandler(conversionPipeline, store, jobQueue, logger, cfg)

	router := routes.NewRouter(convertHandler, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Handler:      router.SetupRoutes(),
	}

	// Start server
	go func() {
		logger.Info("Starting server",
			zap.String("addr", server.Addr),
			zap.String("default_format", cfg.Conversion.DefaultFormat.String()),
			zap.Int("batch_workers", cfg.Conversion.BatchWorkers),
			zap.Bool("queue_enabled", jobQueue != nil),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	stopWorkers()

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(level string) (*zap.Logger, error) {
	if level == "debug" {
		return zap.NewDevelopment()
	}

	zapConfig := zap.NewProductionConfig()
	if err := zapConfig.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}
	return zapConfig.Build()
}
