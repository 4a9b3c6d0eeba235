package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/phambaophuc/image-converter/internal/models"
	"github.com/phambaophuc/image-converter/internal/services/archive"
	"github.com/phambaophuc/image-converter/internal/services/batch"
)

type BatchRunner interface {
	RunBatch(ctx context.Context, inputs []models.InputImage, cfg models.ConversionConfig, observers ...batch.ProgressFunc) (*models.BatchSummary, error)
}

type ArchivePackager interface {
	PackageArchive(ctx context.Context, entries []archive.Entry) (*models.Archive, error)
}

// Pipeline runs one batch and, when more than one item succeeded, bundles
// the outputs. Nothing is carried over between runs.
type Pipeline struct {
	runner   BatchRunner
	packager ArchivePackager
	logger   *zap.Logger
}

func NewPipeline(runner BatchRunner, packager ArchivePackager, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		runner:   runner,
		packager: packager,
		logger:   logger,
	}
}

// HasOutputs reports whether a run produced anything worth keeping for
// download. Runs where every item failed are not stored.
func HasOutputs(result *models.ConversionResult) bool {
	return result != nil && result.Summary != nil && len(result.Summary.Successes) > 0
}

// Convert returns an error only when the batch could not start. A failed
// archive leaves the summary intact and is reported in ArchiveError.
func (p *Pipeline) Convert(ctx context.Context, inputs []models.InputImage, cfg models.ConversionConfig, observers ...batch.ProgressFunc) (*models.ConversionResult, error) {
	summary, err := p.runner.RunBatch(ctx, inputs, cfg, observers...)
	if err != nil {
		return nil, err
	}

	result := &models.ConversionResult{Summary: summary}
	if !archive.ShouldPackage(len(summary.Successes)) {
		return result, nil
	}

	bundle, err := p.packager.PackageArchive(context.WithoutCancel(ctx), archive.EntriesFromSuccesses(summary.Successes))
	if err != nil {
		p.logger.Error("Archive packaging failed", zap.Error(err))
		result.ArchiveError = err.Error()
		return result, nil
	}

	result.Archive = bundle
	return result, nil
}
