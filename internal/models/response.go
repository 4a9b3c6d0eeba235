package models

import "time"

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type FileResponse struct {
	SourceName       string `json:"source_name"`
	OutputName       string `json:"output_name"`
	OriginalByteSize int64  `json:"original_byte_size"`
	OutputByteSize   int64  `json:"output_byte_size"`
	DownloadURL      string `json:"download_url,omitempty"`
}

type ArchiveResponse struct {
	Name        string `json:"name"`
	EntryCount  int    `json:"entry_count"`
	ByteSize    int64  `json:"byte_size"`
	DownloadURL string `json:"download_url,omitempty"`
}

type ConvertResponse struct {
	SessionID           string                 `json:"session_id"`
	Format              Format                 `json:"format"`
	Quality             float64                `json:"quality"`
	Files               []FileResponse         `json:"files"`
	Failures            []Failure              `json:"failures"`
	Warnings            []NameCollisionWarning `json:"warnings,omitempty"`
	TotalOriginalBytes  int64                  `json:"total_original_bytes"`
	TotalConvertedBytes int64                  `json:"total_converted_bytes"`
	SavingsPercent      float64                `json:"savings_percent"`
	Archive             *ArchiveResponse       `json:"archive,omitempty"`
	ArchiveError        string                 `json:"archive_error,omitempty"`
}

type JobAccepted struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	StatusURL string `json:"status_url"`
}

// HealthCheck maps each backing service to "healthy", "not configured" or
// an "unhealthy: ..." reason.
type HealthCheck struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}
