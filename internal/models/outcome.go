package models

type FailureReason string

const (
	ReasonDecodeError FailureReason = "DecodeError"
	ReasonEncodeError FailureReason = "EncodeError"
)

type Success struct {
	SourceName       string `json:"source_name"`
	OutputName       string `json:"output_name"`
	OutputBytes      []byte `json:"-"`
	OutputByteSize   int64  `json:"output_byte_size"`
	OriginalByteSize int64  `json:"original_byte_size"`
}

type Failure struct {
	SourceName string        `json:"source_name"`
	Reason     FailureReason `json:"reason"`
	Message    string        `json:"message,omitempty"`
}

// Outcome is the result of one conversion attempt. Exactly one of
// Success and Failure is set.
type Outcome struct {
	Index   int
	Success *Success
	Failure *Failure
}

func (o Outcome) Succeeded() bool {
	return o.Success != nil
}
