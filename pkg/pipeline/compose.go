package pipeline

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/glyph"
	"github.com/matzehuels/glyphtools/pkg/media"
	"github.com/matzehuels/glyphtools/pkg/nglyph"
	"github.com/matzehuels/glyphtools/pkg/observability"
)

// ComposeOptions configures writing a composition into an audio file.
type ComposeOptions struct {
	Audio       string
	Composition *nglyph.File
	Title       string
	OutputDir   string

	// AutoFix converts audio with the wrong codec or extension without
	// asking. Otherwise Confirm is asked; a nil Confirm refuses.
	AutoFix bool
	Confirm func(question string) bool

	Logger *log.Logger

	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// It is idempotent.
func (o *ComposeOptions) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Audio == "" {
		return errors.New(errors.ErrCodeInvalidInput, "audio file is required")
	}
	if info, err := os.Stat(o.Audio); err != nil || info.IsDir() {
		return errors.New(errors.ErrCodeInvalidInput, "audio file does not exist: %q", o.Audio)
	}
	if o.Composition == nil {
		return errors.New(errors.ErrCodeInvalidInput, "composition is required")
	}
	if o.Title == "" {
		o.Title = DefaultTitle
	}
	if err := errors.ValidateTitle(o.Title); err != nil {
		return err
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

// ComposeResult is the output of Compose.
type ComposeResult struct {
	// Output is the written audio file.
	Output string

	// Source is the audio file the tags were copied onto. It differs from
	// the input when the codec or extension was fixed.
	Source string
	Fixed  bool

	// Padded is set when one empty row was appended so the composition
	// covers the whole audio.
	Padded bool

	Tags     []media.Tag
	Warnings []string
	Stats    Stats
}

// Compose writes the composition's Glyph tags into a copy of the audio file
// named "<audio>_composed<ext>".
func (r *Runner) Compose(ctx context.Context, opts ComposeOptions) (*ComposeResult, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	name := filepath.Base(opts.Audio)
	observability.Pipeline().OnStart(ctx, observability.OpCompose, name)
	res, err := r.compose(ctx, opts)
	observability.Pipeline().OnComplete(ctx, observability.OpCompose, name, time.Since(start), err)
	return res, err
}

func (r *Runner) compose(ctx context.Context, opts ComposeOptions) (*ComposeResult, error) {
	logger := opts.Logger
	f := opts.Composition
	res := &ComposeResult{Source: opts.Audio}

	if f.Legacy {
		warn(logger, &res.Warnings, "this is an old composition, it might desync when played back on device")
	}

	toolStart := time.Now()
	stream, err := r.Media.Probe(ctx, opts.Audio)
	if err != nil {
		return nil, err
	}
	if stream.Streams > 1 {
		warn(logger, &res.Warnings, "the file has more than one audio stream, using the first one")
	}

	if err := r.fixAudio(ctx, opts, stream, res); err != nil {
		return nil, err
	}
	res.Stats.ToolTime = time.Since(toolStart)

	codecStart := time.Now()
	t, err := f.Table()
	if err != nil {
		return nil, err
	}
	if err := t.Validate(f.MaxLevel()); err != nil {
		return nil, err
	}
	required := int(math.Ceil(stream.DurationMS() / glyph.TimeStepMS))
	if missing := required - len(t.Rows); missing > 0 {
		if missing > 1 {
			return nil, errors.New(errors.ErrCodeValidation,
				"the AUTHOR data does not cover the whole audio, is the END label at the end of the audio? (got: %d rows, expected: %d)",
				len(t.Rows), required)
		}
		t = t.Clone()
		t.Pad(1)
		res.Padded = true
		logger.Debug("padded AUTHOR data by one row", "rows", len(t.Rows))
	}

	if res.Tags, err = EncodeTags(f, t, opts.Title); err != nil {
		return nil, err
	}
	res.Stats.Rows = len(t.Rows)
	res.Stats.Directives = len(f.Custom1)
	for _, tag := range res.Tags {
		switch tag.Key {
		case TagAuthor:
			res.Stats.AuthorBytes = len(tag.Value)
		case TagCustom1:
			res.Stats.Custom1Bytes = len(tag.Value)
		}
	}
	res.Stats.CodecTime = time.Since(codecStart)
	if f.Watermark != nil {
		logger.Info("watermark by creator detected, always give credit to the creator", "watermark", f.Watermark.Content)
	}

	ext := filepath.Ext(res.Source)
	res.Output = filepath.Join(opts.OutputDir, stem(res.Source)+"_composed"+ext)
	logger.Info("writing composition", "output", res.Output)

	toolStart = time.Now()
	if err := r.Media.WriteTags(ctx, res.Source, res.Output, res.Tags); err != nil {
		return nil, err
	}
	res.Stats.ToolTime += time.Since(toolStart)

	logger.Info("wrote composition",
		"author_bytes", res.Stats.AuthorBytes,
		"custom1_bytes", res.Stats.Custom1Bytes,
		"rows", res.Stats.Rows)
	return res, nil
}

// fixAudio converts the input to an Opus .ogg sibling ("<audio>_fixed.ogg")
// when the codec or extension is wrong.
func (r *Runner) fixAudio(ctx context.Context, opts ComposeOptions, stream *media.Stream, res *ComposeResult) error {
	logger := opts.Logger
	ext := filepath.Ext(opts.Audio)
	fixed := strings.TrimSuffix(opts.Audio, ext) + "_fixed.ogg"

	var problem string
	switch {
	case stream.CodecName != "opus":
		problem = fmt.Sprintf("the audio file has the wrong codec (got: %s, expected: opus)", stream.CodecName)
	case ext != ".ogg":
		problem = fmt.Sprintf("the audio file has the wrong extension (got: %s, expected: .ogg)", ext)
	default:
		return nil
	}

	if opts.AutoFix {
		warn(logger, &res.Warnings, problem+", fixing it automatically")
	} else if opts.Confirm == nil || !opts.Confirm(problem+". Do you want to fix it? (Recommended)") {
		return errors.New(errors.ErrCodeValidation, "%s, convert it to Opus in an .ogg container and try again", problem)
	}

	if stream.CodecName != "opus" {
		if err := r.Media.FixCodec(ctx, opts.Audio, fixed); err != nil {
			return err
		}
	} else if err := copyFile(opts.Audio, fixed); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "could not fix the file extension")
	}
	logger.Info("fixed audio file", "path", fixed)
	res.Source = fixed
	res.Fixed = true
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
