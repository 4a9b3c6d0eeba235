package batch

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/phambaophuc/image-converter/internal/models"
	"github.com/phambaophuc/image-converter/internal/services/codec"
	"github.com/phambaophuc/image-converter/pkg/utils"
)

const DefaultWorkers = 1

// Converter turns one source image into the target encoding.
type Converter interface {
	Convert(ctx context.Context, content []byte, cfg models.ConversionConfig) ([]byte, error)
}

// ProgressFunc is called after every recorded outcome, in input order.
type ProgressFunc func(models.Progress)

type Options struct {
	// Workers above 1 convert items concurrently. Outcomes are still
	// recorded one at a time in input order.
	Workers int
}

type Orchestrator struct {
	converter Converter
	logger    *zap.Logger
	workers   int
}

func NewOrchestrator(converter Converter, logger *zap.Logger, opts ...Options) *Orchestrator {
	workers := DefaultWorkers
	if len(opts) > 0 && opts[0].Workers > 0 {
		workers = opts[0].Workers
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Orchestrator{
		converter: converter,
		logger:    logger,
		workers:   workers,
	}
}

// RunBatch converts every input with cfg and returns the aggregated summary.
// A failing item is recorded and the batch moves on; the only error
// returned is a *models.ValidationError for an empty batch or a bad config.
// Once started the batch runs to completion: cancellation of ctx is not
// propagated to the conversions.
func (o *Orchestrator) RunBatch(ctx context.Context, inputs []models.InputImage, cfg models.ConversionConfig, observers ...ProgressFunc) (*models.BatchSummary, error) {
	if len(inputs) == 0 {
		return nil, &models.ValidationError{Field: "images", Message: "at least one image is required"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	acc := newAccumulator(len(inputs))

	record := func(outcome models.Outcome) {
		acc.record(outcome)
		o.logOutcome(inputs[outcome.Index], outcome)

		progress := acc.progress()
		for _, observe := range observers {
			observe(progress)
		}
	}

	o.logger.Info("Batch started",
		zap.Int("images", len(inputs)),
		zap.String("format", cfg.TargetFormat.String()),
		zap.Float64("quality", cfg.Quality),
		zap.Int("workers", o.workers),
	)

	if o.workers <= 1 || len(inputs) == 1 {
		for i := range inputs {
			record(o.convertOne(ctx, i, inputs[i], cfg))
		}
	} else {
		o.runPool(ctx, inputs, cfg, record)
	}

	summary := acc.finish()

	for _, w := range summary.Warnings {
		o.logger.Warn("Output name collision",
			zap.String("output_name", w.OutputName),
			zap.Strings("sources", w.SourceNames),
		)
	}

	o.logger.Info("Batch completed",
		zap.Int("succeeded", len(summary.Successes)),
		zap.Int("failed", len(summary.Failures)),
		zap.Int64("original_bytes", summary.TotalOriginalBytes),
		zap.Int64("converted_bytes", summary.TotalConvertedBytes),
	)

	return summary, nil
}

// runPool converts with a bounded set of workers. Each item gets its own
// result slot so the recorder can consume outcomes strictly in order.
func (o *Orchestrator) runPool(ctx context.Context, inputs []models.InputImage, cfg models.ConversionConfig, record func(models.Outcome)) {
	numWorkers := min(o.workers, len(inputs))

	slots := make([]chan models.Outcome, len(inputs))
	for i := range slots {
		slots[i] = make(chan models.Outcome, 1)
	}

	jobs := make(chan int, len(inputs))
	var wg sync.WaitGroup

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				slots[i] <- o.convertOne(ctx, i, inputs[i], cfg)
			}
		}()
	}

	for i := range inputs {
		jobs <- i
	}
	close(jobs)

	for i := range slots {
		record(<-slots[i])
	}

	wg.Wait()
}

func (o *Orchestrator) convertOne(ctx context.Context, index int, input models.InputImage, cfg models.ConversionConfig) models.Outcome {
	output, err := o.converter.Convert(ctx, input.Content, cfg)
	if err != nil {
		return models.Outcome{
			Index: index,
			Failure: &models.Failure{
				SourceName: input.Name,
				Reason:     failureReason(err),
				Message:    err.Error(),
			},
		}
	}

	return models.Outcome{
		Index: index,
		Success: &models.Success{
			SourceName:       input.Name,
			OutputName:       utils.OutputName(input.Name, cfg.TargetFormat.String()),
			OutputBytes:      output,
			OutputByteSize:   int64(len(output)),
			OriginalByteSize: input.ByteSize,
		},
	}
}

func (o *Orchestrator) logOutcome(input models.InputImage, outcome models.Outcome) {
	if outcome.Succeeded() {
		o.logger.Debug("Image converted",
			zap.Int("index", outcome.Index),
			zap.String("source", input.Name),
			zap.String("output", outcome.Success.OutputName),
			zap.Int64("output_bytes", outcome.Success.OutputByteSize),
		)
		return
	}

	o.logger.Warn("Image conversion failed",
		zap.Int("index", outcome.Index),
		zap.String("source", input.Name),
		zap.String("reason", string(outcome.Failure.Reason)),
		zap.String("error", outcome.Failure.Message),
	)
}

// failureReason maps converter errors onto the two failure kinds. Anything
// the converter did not classify is treated as an encoder rejection.
func failureReason(err error) models.FailureReason {
	var convErr *codec.ConversionError
	if errors.As(err, &convErr) {
		return convErr.Reason
	}
	if errors.Is(err, codec.ErrDecode) {
		return models.ReasonDecodeError
	}
	return models.ReasonEncodeError
}
