package pipeline

import (
	"fmt"

	"github.com/phambaophuc/image-converter/internal/models"
)

const sessionsPath = "/api/v1/sessions"

func FileDownloadPath(sessionID string, index int) string {
	return fmt.Sprintf("%s/%s/files/%d", sessionsPath, sessionID, index)
}

func ArchiveDownloadPath(sessionID string) string {
	return fmt.Sprintf("%s/%s/archive", sessionsPath, sessionID)
}

// BuildResponse shapes a run for the presenter. Download links are only
// filled in when withLinks is set, i.e. the session was stored.
func BuildResponse(sessionID string, cfg models.ConversionConfig, result *models.ConversionResult, withLinks bool) models.ConvertResponse {
	summary := result.Summary

	response := models.ConvertResponse{
		SessionID:           sessionID,
		Format:              cfg.TargetFormat,
		Quality:             cfg.Quality,
		Files:               make([]models.FileResponse, 0, len(summary.Successes)),
		Failures:            summary.Failures,
		Warnings:            summary.Warnings,
		TotalOriginalBytes:  summary.TotalOriginalBytes,
		TotalConvertedBytes: summary.TotalConvertedBytes,
		SavingsPercent:      summary.SavingsPercent(),
		ArchiveError:        result.ArchiveError,
	}

	for i, s := range summary.Successes {
		file := models.FileResponse{
			SourceName:       s.SourceName,
			OutputName:       s.OutputName,
			OriginalByteSize: s.OriginalByteSize,
			OutputByteSize:   s.OutputByteSize,
		}
		if withLinks {
			file.DownloadURL = FileDownloadPath(sessionID, i)
		}
		response.Files = append(response.Files, file)
	}

	if result.Archive != nil {
		response.Archive = &models.ArchiveResponse{
			Name:       result.Archive.Name,
			EntryCount: result.Archive.EntryCount,
			ByteSize:   result.Archive.Size(),
		}
		if withLinks {
			response.Archive.DownloadURL = ArchiveDownloadPath(sessionID)
		}
	}

	return response
}
