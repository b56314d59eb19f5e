package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/glyphtools/pkg/cache"
	"github.com/matzehuels/glyphtools/pkg/codec"
	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/frame"
	"github.com/matzehuels/glyphtools/pkg/glyph"
	"github.com/matzehuels/glyphtools/pkg/labels"
	"github.com/matzehuels/glyphtools/pkg/nglyph"
	"github.com/matzehuels/glyphtools/pkg/observability"
	"github.com/matzehuels/glyphtools/pkg/watermark"
)

// TranslateOptions configures a label file translation.
type TranslateOptions struct {
	// Source is the label file content.
	Source []byte `json:"labels"`

	// Name is the label file's base name; the output is named after it.
	Name string `json:"name,omitempty"`

	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Watermark *watermark.Watermark `json:"-"`
	StepMS    float64              `json:"-"`
	Logger    *log.Logger          `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// It is idempotent.
func (o *TranslateOptions) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(bytes.TrimSpace(o.Source)) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "label data is empty")
	}
	if o.Name == "" {
		o.Name = "composition.txt"
	}
	if err := errors.ValidateOutputName(o.Name); err != nil {
		return err
	}
	if o.StepMS == 0 {
		o.StepMS = glyph.TimeStepMS
	}
	if o.StepMS < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "time step must be positive, got %v", o.StepMS)
	}
	if o.Logger == nil {
		o.Logger = discardLogger()
	}
	o.validated = true
	return nil
}

// OutputName returns the NGlyph file name for the translated labels.
func (o *TranslateOptions) OutputName() string {
	return stem(o.Name) + nglyph.Extension
}

// TranslateResult is the output of Translate.
type TranslateResult struct {
	File  *nglyph.File
	Build *frame.Result

	Phone glyph.PhoneModel

	// LegacyLabels is set when the label file had no version header.
	LegacyLabels bool

	Warnings  []string
	Stats     Stats
	CacheInfo CacheInfo

	name string
}

// OutputName returns the NGlyph file name for the result.
func (r *TranslateResult) OutputName() string {
	return stem(r.name) + nglyph.Extension
}

// compiled is the cached form of a frame build.
type compiled struct {
	Phone      glyph.PhoneModel   `json:"phone"`
	Columns    glyph.ColumnsModel `json:"columns"`
	Legacy     bool               `json:"legacy"`
	Reordered  bool               `json:"reordered"`
	Directives int                `json:"directives"`
	Author     []string           `json:"author"`
	Custom1    []string           `json:"custom1"`
	Overwrites []frame.Overwrite  `json:"overwrites,omitempty"`
}

func (c *compiled) result() (*frame.Result, error) {
	t, err := codec.ParseAuthor(c.Author)
	if err != nil {
		return nil, err
	}
	ix, err := codec.ParseIndex(c.Custom1)
	if err != nil {
		return nil, err
	}
	return &frame.Result{Table: t, Index: ix, Columns: c.Columns, Overwrites: c.Overwrites}, nil
}

// Translate compiles a label file into an NGlyph container.
func (r *Runner) Translate(ctx context.Context, opts TranslateOptions) (*TranslateResult, error) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Pipeline().OnStart(ctx, observability.OpTranslate, opts.Name)
	res, err := r.translate(ctx, opts)
	observability.Pipeline().OnComplete(ctx, observability.OpTranslate, opts.Name, time.Since(start), err)
	return res, err
}

func (r *Runner) translate(ctx context.Context, opts TranslateOptions) (*TranslateResult, error) {
	logger := opts.Logger
	res := &TranslateResult{name: opts.Name}

	compileStart := time.Now()
	c, hit, err := r.compile(ctx, opts)
	if err != nil {
		return nil, err
	}
	build, err := c.result()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "restore frame build")
	}
	res.Build = build
	res.Phone = c.Phone
	res.LegacyLabels = c.Legacy
	res.CacheInfo.BuildHit = hit
	res.Stats.CompileTime = time.Since(compileStart)
	res.Stats.Rows = len(build.Table.Rows)
	res.Stats.Directives = c.Directives

	if c.Legacy {
		warn(logger, &res.Warnings, "label file has no LABEL_VERSION and PHONE_MODEL, reading it as a legacy PHONE1 file")
	}
	if c.Reordered {
		warn(logger, &res.Warnings, "labels were not sorted by start time and have been reordered")
	}
	for _, o := range build.Overwrites {
		warn(logger, &res.Warnings,
			fmt.Sprintf("label %q in line %d overwrites %d lit cell(s)", o.Label.Text, o.Label.Line, o.Cells))
	}

	logger.Info("compiled labels",
		"phone", c.Phone,
		"columns", c.Columns,
		"rows", res.Stats.Rows,
		"directives", c.Directives,
		"cached", hit,
		"duration", res.Stats.CompileTime)

	codecStart := time.Now()
	f, err := nglyph.New(c.Phone, build, opts.Watermark, false)
	if err != nil {
		return nil, err
	}
	res.File = f
	res.Stats.CodecTime = time.Since(codecStart)
	if f.Sealed() {
		logger.Info("sealed AUTHOR data with watermark", "duration", res.Stats.CodecTime)
	}
	return res, nil
}

// compile parses and builds the label file, consulting the cache first.
func (r *Runner) compile(ctx context.Context, opts TranslateOptions) (*compiled, bool, error) {
	key := r.Keyer.BuildKey(cache.Hash(opts.Source), cache.BuildKeyOpts{
		StepMS:        opts.StepMS,
		FormatVersion: nglyph.FormatVersion,
	})

	if !opts.Refresh {
		if data, hit := r.cacheGet(ctx, "build", key); hit {
			var c compiled
			if err := json.Unmarshal(data, &c); err == nil {
				return &c, true, nil
			}
		}
	}

	lf, err := labels.Parse(bytes.NewReader(opts.Source))
	if err != nil {
		return nil, false, err
	}
	build, err := frame.Build(lf.Labels, lf.Columns, opts.StepMS)
	if err != nil {
		return nil, false, err
	}
	if len(build.Table.Rows) == 0 {
		return nil, false, errors.New(errors.ErrCodeValidation,
			"the END label in line %d is at 0s, the composition would be empty", lf.End.Line)
	}

	c := &compiled{
		Phone:      lf.Phone,
		Columns:    lf.Columns,
		Legacy:     lf.Legacy,
		Reordered:  lf.Reordered,
		Directives: len(build.Index),
		Author:     codec.FormatAuthor(build.Table),
		Custom1:    codec.FormatIndex(build.Index),
		Overwrites: build.Overwrites,
	}
	if data, err := json.Marshal(c); err == nil {
		r.cacheSet(ctx, "build", key, data)
	}
	return c, false, nil
}
