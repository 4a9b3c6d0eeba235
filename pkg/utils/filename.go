package utils

import (
	"fmt"
	"path/filepath"
	"strings"
)

// OutputName strips the trailing extension of a source file name and
// appends the target format, e.g. "photo.png" -> "photo.webp".
func OutputName(sourceName, format string) string {
	base := sourceName
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + "." + format
}

// CollisionKey folds an output name for comparisons that must also hold on
// case-insensitive filesystems.
func CollisionKey(outputName string) string {
	return strings.ToLower(outputName)
}

func ArchiveName(sessionID string) string {
	if sessionID == "" {
		return "converted_images.zip"
	}
	if len(sessionID) > 8 {
		sessionID = sessionID[:8]
	}
	return fmt.Sprintf("converted_images_%s.zip", sessionID)
}
