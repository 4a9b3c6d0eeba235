package models

// InputImage is one source file of a batch. It is read-only for the
// duration of a run.
type InputImage struct {
	Name     string `json:"name"`
	ByteSize int64  `json:"byte_size"`
	Content  []byte `json:"content"`
}

func NewInputImage(name string, content []byte) InputImage {
	return InputImage{
		Name:     name,
		ByteSize: int64(len(content)),
		Content:  content,
	}
}
