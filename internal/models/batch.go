package models

// BatchSummary aggregates the outcomes of one run. Byte totals only cover
// successful items.
type BatchSummary struct {
	Successes           []Success              `json:"successes"`
	Failures            []Failure              `json:"failures"`
	TotalOriginalBytes  int64                  `json:"total_original_bytes"`
	TotalConvertedBytes int64                  `json:"total_converted_bytes"`
	Warnings            []NameCollisionWarning `json:"warnings,omitempty"`
}

func (s *BatchSummary) Total() int {
	return len(s.Successes) + len(s.Failures)
}

func (s *BatchSummary) SavedBytes() int64 {
	return s.TotalOriginalBytes - s.TotalConvertedBytes
}

// SavingsPercent is negative when the converted outputs grew.
func (s *BatchSummary) SavingsPercent() float64 {
	if s.TotalOriginalBytes == 0 {
		return 0
	}
	return float64(s.SavedBytes()) / float64(s.TotalOriginalBytes) * 100
}

// NameCollisionWarning reports sources that map to the same output name.
// Archive entries for such a name keep the last source's bytes.
type NameCollisionWarning struct {
	OutputName  string   `json:"output_name"`
	SourceNames []string `json:"source_names"`
}

// Progress is a snapshot taken after each recorded outcome.
type Progress struct {
	Done                int   `json:"done"`
	Total               int   `json:"total"`
	Succeeded           int   `json:"succeeded"`
	Failed              int   `json:"failed"`
	TotalOriginalBytes  int64 `json:"total_original_bytes"`
	TotalConvertedBytes int64 `json:"total_converted_bytes"`
}
