package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phambaophuc/image-converter/internal/models"
	"github.com/phambaophuc/image-converter/internal/services/archive"
	"github.com/phambaophuc/image-converter/internal/services/batch"
	"github.com/phambaophuc/image-converter/internal/services/codec"
	"github.com/phambaophuc/image-converter/internal/services/pipeline"
)

const defaultArchiveName = "images.zip"

var errSomeFailed = errors.New("some images failed to convert")

type convertOptions struct {
	format        string
	quality       float64
	outDir        string
	workers       int
	archiveMethod string
	archiveName   string
	autoOrient    bool
	verbose       bool
}

func newConvertCmd() *cobra.Command {
	opts := convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert [files...]",
		Short: "Convert images and write the results to a directory",
		Example: `  imgconvert convert --format webp --quality 0.8 --out ./converted photos/*.jpg
  imgconvert convert -f png -o ./out scan.tiff diagram.bmp`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zap.NewNop()
			if opts.verbose {
				l, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				defer l.Sync()
				logger = l
			}
			return runConvert(cmd.Context(), opts, args, cmd.OutOrStdout(), logger)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", string(models.FormatWebP), "Target format: jpeg, png or webp")
	cmd.Flags().Float64VarP(&opts.quality, "quality", "q", models.DefaultQuality, "Encoder quality in [0, 1], ignored for png")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", ".", "Directory for converted files and the archive")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", batch.DefaultWorkers, "Images converted concurrently")
	cmd.Flags().StringVar(&opts.archiveMethod, "archive-method", archive.MethodNameDeflate, "Zip compression: deflate, store or zstd")
	cmd.Flags().StringVar(&opts.archiveName, "archive-name", defaultArchiveName, "File name of the archive")
	cmd.Flags().BoolVar(&opts.autoOrient, "auto-orient", false, "Apply EXIF orientation while decoding")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log every conversion step")

	return cmd
}

func runConvert(ctx context.Context, opts convertOptions, paths []string, out io.Writer, logger *zap.Logger) error {
	format, err := models.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	cfg := models.ConversionConfig{TargetFormat: format, Quality: opts.quality}

	inputs, err := readInputs(paths)
	if err != nil {
		return err
	}

	packager, err := archive.NewPackager(logger, archive.Options{Method: opts.archiveMethod, Name: opts.archiveName})
	if err != nil {
		return err
	}
	converter := codec.NewCodec(logger, codec.Options{AutoOrient: opts.autoOrient})
	p := pipeline.NewPipeline(batch.NewOrchestrator(converter, logger, batch.Options{Workers: opts.workers}), packager, logger)

	result, err := p.Convert(ctx, inputs, cfg, func(progress models.Progress) {
		fmt.Fprintf(out, "\r[%d/%d] %d converted, %d failed", progress.Done, progress.Total, progress.Succeeded, progress.Failed)
	})
	fmt.Fprintln(out)
	if err != nil {
		return err
	}

	if err := writeOutputs(opts.outDir, result); err != nil {
		return err
	}

	printSummary(out, opts.outDir, result)

	if len(result.Summary.Failures) > 0 {
		return fmt.Errorf("%d of %d: %w", len(result.Summary.Failures), result.Summary.Total(), errSomeFailed)
	}
	return nil
}

func readInputs(paths []string) ([]models.InputImage, error) {
	inputs := make([]models.InputImage, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		inputs = append(inputs, models.NewInputImage(filepath.Base(path), content))
	}
	return inputs, nil
}

func writeOutputs(outDir string, result *models.ConversionResult) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for _, success := range result.Summary.Successes {
		if err := os.WriteFile(filepath.Join(outDir, success.OutputName), success.OutputBytes, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", success.OutputName, err)
		}
	}

	if result.Archive != nil {
		if err := os.WriteFile(filepath.Join(outDir, result.Archive.Name), result.Archive.Bytes, 0o644); err != nil {
			return fmt.Errorf("failed to write archive: %w", err)
		}
	}
	return nil
}

func printSummary(out io.Writer, outDir string, result *models.ConversionResult) {
	summary := result.Summary

	fmt.Fprintln(out, "--------------------------------------------")
	for _, s := range summary.Successes {
		fmt.Fprintf(out, "  ok    %s -> %s (%d -> %d bytes)\n", s.SourceName, s.OutputName, s.OriginalByteSize, s.OutputByteSize)
	}
	for _, f := range summary.Failures {
		fmt.Fprintf(out, "  fail  %s: %s %s\n", f.SourceName, f.Reason, f.Message)
	}
	for _, w := range summary.Warnings {
		fmt.Fprintf(out, "  warn  %s is produced by %v, only the last one is kept\n", w.OutputName, w.SourceNames)
	}
	fmt.Fprintln(out, "--------------------------------------------")
	fmt.Fprintf(out, "Converted: %d, failed: %d\n", len(summary.Successes), len(summary.Failures))
	fmt.Fprintf(out, "Size: %d -> %d bytes (%.1f%% saved)\n", summary.TotalOriginalBytes, summary.TotalConvertedBytes, summary.SavingsPercent())

	switch {
	case result.Archive != nil:
		fmt.Fprintf(out, "Archive: %s (%d files)\n", filepath.Join(outDir, result.Archive.Name), result.Archive.EntryCount)
	case result.ArchiveError != "":
		fmt.Fprintf(out, "Archive failed: %s\n", result.ArchiveError)
	}
}
