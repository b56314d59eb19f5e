package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/nglyph"
	"github.com/matzehuels/glyphtools/pkg/observability"
)

// ExtractOptions configures reading a composition from an audio file.
type ExtractOptions struct {
	Audio     string
	OutputDir string
	Logger    *log.Logger

	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// It is idempotent.
func (o *ExtractOptions) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Audio == "" {
		return errors.New(errors.ErrCodeInvalidInput, "audio file is required")
	}
	if info, err := os.Stat(o.Audio); err != nil || info.IsDir() {
		return errors.New(errors.ErrCodeInvalidInput, "audio file does not exist: %q", o.Audio)
	}
	if err := validateOutputDir(&o.OutputDir); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = discardLogger()
	}
	o.validated = true
	return nil
}

// ExtractResult is the output of Extract.
type ExtractResult struct {
	File     *nglyph.File
	Output   string
	Warnings []string
	Stats    Stats
}

// Extract decodes the Glyph tags of an audio file and writes them as
// "<audio>.nglyph" to the output directory. A creator watermark found in
// the tags is carried over and the AUTHOR rows are sealed with a fresh salt.
func (r *Runner) Extract(ctx context.Context, opts ExtractOptions) (*ExtractResult, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	name := filepath.Base(opts.Audio)
	observability.Pipeline().OnStart(ctx, observability.OpExtract, name)
	res, err := r.extract(ctx, opts)
	observability.Pipeline().OnComplete(ctx, observability.OpExtract, name, time.Since(start), err)
	return res, err
}

func (r *Runner) extract(ctx context.Context, opts ExtractOptions) (*ExtractResult, error) {
	logger := opts.Logger
	res := &ExtractResult{}

	toolStart := time.Now()
	stream, err := r.Media.Probe(ctx, opts.Audio)
	if err != nil {
		return nil, err
	}
	res.Stats.ToolTime = time.Since(toolStart)

	if stream.Streams > 1 {
		warn(logger, &res.Warnings, "the file has more than one audio stream, using the first one")
	}
	if stream.CodecName != "opus" {
		warn(logger, &res.Warnings, "the audio file has the wrong codec (got: "+stream.CodecName+", expected: opus)")
	}
	if ext := filepath.Ext(opts.Audio); ext != ".ogg" {
		warn(logger, &res.Warnings, "the audio file has the wrong extension (got: "+ext+", expected: .ogg)")
	}

	codecStart := time.Now()
	f, warnings, err := DecodeTags(stream.Tag, logger)
	if err != nil {
		return nil, err
	}
	res.Warnings = append(res.Warnings, warnings...)
	t, err := f.Table()
	if err != nil {
		return nil, err
	}
	res.File = f
	res.Stats.Rows = len(t.Rows)
	res.Stats.Directives = len(f.Custom1)
	author, _ := stream.Tag(TagAuthor)
	custom1, _ := stream.Tag(TagCustom1)
	res.Stats.AuthorBytes = len(strings.ReplaceAll(author, "\n", ""))
	res.Stats.Custom1Bytes = len(strings.ReplaceAll(custom1, "\n", ""))
	res.Stats.CodecTime = time.Since(codecStart)

	logger.Info("read composition",
		"phone", f.Phone,
		"author_bytes", res.Stats.AuthorBytes,
		"custom1_bytes", res.Stats.Custom1Bytes,
		"rows", res.Stats.Rows)

	res.Output = filepath.Join(opts.OutputDir, stem(opts.Audio)+nglyph.Extension)
	logger.Info("writing nglyph file", "output", res.Output)
	if err := nglyph.WriteFile(f, res.Output); err != nil {
		return nil, err
	}
	return res, nil
}
