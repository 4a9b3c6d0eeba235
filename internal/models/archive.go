package models

type Archive struct {
	Name       string `json:"name"`
	Bytes      []byte `json:"-"`
	EntryCount int    `json:"entry_count"`
}

func (a *Archive) Size() int64 {
	return int64(len(a.Bytes))
}

// ConversionResult is everything a run hands to the presenter. Archive is
// nil when fewer than two items succeeded or packaging failed; in the
// latter case ArchiveError holds the reason.
type ConversionResult struct {
	Summary      *BatchSummary `json:"summary"`
	Archive      *Archive      `json:"archive,omitempty"`
	ArchiveError string        `json:"archive_error,omitempty"`
}
