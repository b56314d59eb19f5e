// Package pipeline provides the composition pipeline shared by the CLI and
// the HTTP service.
//
// # Operations
//
//  1. Translate: label file -> frame build -> NGlyph container
//  2. Compose: NGlyph container + audio file -> tagged audio file
//  3. Extract: tagged audio file -> NGlyph container
//
// Translate results are cached by the label file's content hash. The
// watermark is applied after the cache lookup so every run seals with a
// fresh salt.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, media.New(logger), logger)
//	res, err := runner.Translate(ctx, pipeline.TranslateOptions{
//	    Source: data,
//	    Name:   "song.txt",
//	})
//	if err != nil {
//	    return err
//	}
//	err = nglyph.WriteFile(res.File, res.OutputName())
package pipeline

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/glyph"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// ToolVersion is the Glyph Tools release the composer identifies as in
	// the ALBUM tag.
	ToolVersion = "2.2.0"

	// DefaultTitle is written as TITLE when none is given.
	DefaultTitle = "MyCustomSong"

	// DefaultOutputDir is where output files land when none is given.
	DefaultOutputDir = "."

	// DefaultFallbackTag is assumed for compositions without CUSTOM2, which
	// predate multi-device support.
	DefaultFallbackTag = "5cols"
)

// Audio metadata keys.
const (
	TagTitle     = "TITLE"
	TagAlbum     = "ALBUM"
	TagAuthor    = "AUTHOR"
	TagComposer  = "COMPOSER"
	TagCustom1   = "CUSTOM1"
	TagCustom2   = "CUSTOM2"
	TagWatermark = "GLYPHER_WATERMARK"
)

// Album returns the ALBUM tag value, "Glyph Tools v<major>".
func Album() string {
	major, _, _ := strings.Cut(ToolVersion, ".")
	return "Glyph Tools v" + major
}

// Composer returns the COMPOSER tag value for a columns model.
func Composer(cm glyph.ColumnsModel) string {
	return "v1-" + cm.Codename() + " Glyph Composer"
}

// =============================================================================
// Results
// =============================================================================

// Stats contains per-stage timing and size information.
type Stats struct {
	Rows         int
	Directives   int
	AuthorBytes  int
	Custom1Bytes int
	CompileTime  time.Duration
	CodecTime    time.Duration
	ToolTime     time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	BuildHit bool
}

// =============================================================================
// Helpers
// =============================================================================

func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// validateOutputDir applies the default and checks that dir exists.
func validateOutputDir(dir *string) error {
	if *dir == "" {
		*dir = DefaultOutputDir
	}
	info, err := os.Stat(*dir)
	if err != nil || !info.IsDir() {
		return errors.New(errors.ErrCodeInvalidInput, "can't write the output files there, the directory does not exist: %q", *dir)
	}
	return nil
}

// stem returns the base name of path without its extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
