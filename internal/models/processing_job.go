package models

import "time"

type ConversionJob struct {
	ID        string           `json:"id"`
	Images    []InputImage     `json:"images,omitempty"`
	Config    ConversionConfig `json:"config"`
	Status    string           `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at,omitempty"`
	SessionID string           `json:"session_id,omitempty"`
	Result    *ConvertResponse `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
}

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)
