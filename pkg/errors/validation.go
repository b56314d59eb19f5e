package errors

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ValidateTitle validates a composition title before it is written as a TITLE tag.
//
// The rules are conservative:
//   - No empty titles
//   - Maximum length of 256 characters
//   - No control characters (newlines included)
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return New(ErrCodeInvalidInput, "title cannot be empty")
	}

	if utf8.RuneCountInString(title) > 256 {
		return New(ErrCodeInvalidInput, "title too long (max 256 characters)")
	}

	for _, r := range title {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "title contains invalid control characters")
		}
	}

	return nil
}

// ValidateWatermark validates watermark text supplied by a creator.
// Newlines are allowed; other control characters and invalid UTF-8 are not.
func ValidateWatermark(content string) error {
	if !utf8.ValidString(content) {
		return New(ErrCodeInvalidInput, "watermark is not valid UTF-8")
	}

	const maxWatermarkLength = 64 * 1024
	if len(content) > maxWatermarkLength {
		return New(ErrCodeInvalidInput, "watermark too long (max %d bytes)", maxWatermarkLength)
	}

	for _, r := range content {
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return New(ErrCodeInvalidInput, "watermark contains invalid control characters")
		}
	}

	return nil
}

// ValidateExtension checks that path ends with ext (case-sensitive, like the
// device tooling).
func ValidateExtension(path, ext string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "path cannot be empty")
	}
	if got := filepath.Ext(path); got != ext {
		return New(ErrCodeFormat, "file %q has the wrong extension (got: %q, expected: %q)", filepath.Base(path), got, ext)
	}
	return nil
}

// ValidateOutputName validates a base file name used for generated outputs.
// It rejects names that could escape the output directory.
func ValidateOutputName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "output name cannot be empty")
	}

	if len(name) > 255 {
		return New(ErrCodeInvalidInput, "output name too long (max 255 characters)")
	}

	for _, r := range name {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "output name contains invalid characters")
		}
	}

	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidInput, "output name cannot contain path separators")
	}

	if name == "." || name == ".." {
		return New(ErrCodeInvalidInput, "output name cannot be %q", name)
	}

	return nil
}

// compositionIDRegex matches the canonical UUID form used for stored compositions.
var compositionIDRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ValidateCompositionID validates an id handed to the composition store.
func ValidateCompositionID(id string) error {
	if !compositionIDRegex.MatchString(id) {
		return New(ErrCodeInvalidInput, "invalid composition id: %q", id)
	}
	return nil
}
