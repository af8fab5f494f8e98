package errors

import (
	"strings"
	"unicode"
)

// DPI bounds accepted for raster and vector export.
const (
	MinDPI = 72
	MaxDPI = 600
)

// maxNameLength bounds export base names and upload filenames.
const maxNameLength = 128

// ValidateExportName validates a user-supplied export base name.
// The name becomes a file inside the export directory, so it must be a
// plain basename:
//   - No empty names
//   - No control characters
//   - No path separators or traversal sequences
//   - No hidden files
//   - Maximum length of 128 characters
func ValidateExportName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "export name cannot be empty")
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "export name too long (max %d characters)", maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidName, "export name contains invalid control characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidName, "export name cannot contain path separators")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidName, "export name cannot contain path traversal sequences (..)")
	}

	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidName, "export name cannot be a hidden file")
	}

	return nil
}

// ValidateDPI checks that dpi lies within [MinDPI, MaxDPI].
func ValidateDPI(dpi int) error {
	if dpi < MinDPI || dpi > MaxDPI {
		return New(ErrCodeInvalidDPI, "invalid dpi: %d (must be %d-%d)", dpi, MinDPI, MaxDPI)
	}
	return nil
}

// ValidateRetentionDays checks a sweep threshold. Zero is allowed and
// matches every file.
func ValidateRetentionDays(days int) error {
	if days < 0 {
		return New(ErrCodeInvalidInput, "retention days cannot be negative: %d", days)
	}
	return nil
}
