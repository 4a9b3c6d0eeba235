package models

import (
	"fmt"
	"math"
	"strings"
)

type Format string

const (
	FormatJPEG Format = "jpeg"
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

const DefaultQuality = 0.8

var SupportedFormats = []Format{FormatJPEG, FormatPNG, FormatWebP}

// ParseFormat accepts the supported format names case-insensitively,
// with "jpg" as an alias of "jpeg".
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	default:
		return "", &ValidationError{Field: "format", Message: fmt.Sprintf("unsupported format %q, expected one of %s", value, supportedFormatNames())}
	}
}

func supportedFormatNames() string {
	names := make([]string, 0, len(SupportedFormats))
	for _, f := range SupportedFormats {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

func (f Format) Valid() bool {
	switch f {
	case FormatJPEG, FormatPNG, FormatWebP:
		return true
	}
	return false
}

// Lossy reports whether the quality setting affects the encoder output.
func (f Format) Lossy() bool {
	return f == FormatJPEG || f == FormatWebP
}

func (f Format) ContentType() string {
	return "image/" + string(f)
}

func (f Format) String() string {
	return string(f)
}

// ConversionConfig is shared by every item of a batch. Quality is in
// [0.0, 1.0] and has no effect for png.
type ConversionConfig struct {
	TargetFormat Format  `json:"target_format"`
	Quality      float64 `json:"quality"`
}

func (c ConversionConfig) Validate() error {
	if !c.TargetFormat.Valid() {
		return &ValidationError{Field: "format", Message: fmt.Sprintf("unsupported format %q", c.TargetFormat)}
	}
	if math.IsNaN(c.Quality) || c.Quality < 0 || c.Quality > 1 {
		return &ValidationError{Field: "quality", Message: fmt.Sprintf("quality %v is outside [0, 1]", c.Quality)}
	}
	return nil
}
