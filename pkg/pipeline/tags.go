package pipeline

import (
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/glyphtools/pkg/codec"
	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/frame"
	"github.com/matzehuels/glyphtools/pkg/glyph"
	"github.com/matzehuels/glyphtools/pkg/media"
	"github.com/matzehuels/glyphtools/pkg/nglyph"
	"github.com/matzehuels/glyphtools/pkg/watermark"
)

// EncodeTags renders the Glyph tags for composition f in write order. t is
// the plain table to write, which may be a padded copy of f's table.
func EncodeTags(f *nglyph.File, t *frame.Table, title string) ([]media.Tag, error) {
	cm, err := glyph.ColumnsFromWidth(t.Columns)
	if err != nil {
		return nil, err
	}
	if cm.Phone() != f.Phone {
		return nil, errors.New(errors.ErrCodeValidation,
			"AUTHOR data has %d columns, which does not fit %v", t.Columns, f.Phone)
	}
	ix, err := f.Index()
	if err != nil {
		return nil, err
	}

	author, err := codec.EncodeAuthor(t)
	if err != nil {
		return nil, err
	}
	custom1, err := codec.EncodeIndex(ix)
	if err != nil {
		return nil, err
	}

	tags := []media.Tag{
		{Key: TagTitle, Value: title},
		{Key: TagAlbum, Value: Album()},
		{Key: TagAuthor, Value: author},
		{Key: TagComposer, Value: Composer(cm)},
		{Key: TagCustom1, Value: custom1},
		{Key: TagCustom2, Value: cm.Tag()},
	}
	if f.Watermark != nil {
		tags = append(tags, media.Tag{Key: TagWatermark, Value: "\n" + f.Watermark.Content})
	}
	return tags, nil
}

// DecodeTags rebuilds a composition from audio tags; get looks a tag up by
// key. Warnings about legacy or inconsistent tags are logged and returned.
// A GLYPHER_WATERMARK tag seals the result with a fresh salt.
func DecodeTags(get func(key string) (string, bool), logger *log.Logger) (*nglyph.File, []string, error) {
	if logger == nil {
		logger = discardLogger()
	}
	var warnings []string

	values := map[string]string{}
	var missing []string
	for _, key := range []string{TagAuthor, TagCustom1, TagComposer, TagAlbum} {
		v, ok := get(key)
		if !ok {
			missing = append(missing, key)
		}
		values[key] = v
	}
	if len(missing) > 0 {
		return nil, nil, errors.New(errors.ErrCodeFormat,
			"not a valid composition, the audio file does not contain the required metadata (missing: %s)", strings.Join(missing, ", "))
	}

	custom2, ok := get(TagCustom2)
	if !ok {
		custom2 = DefaultFallbackTag
	}

	legacy := false
	if !strings.HasPrefix(values[TagComposer], "v1-") {
		warn(logger, &warnings, "this is an old composition, it might desync when played back on device")
		legacy = true
	}
	switch values[TagAlbum] {
	case "Glyphify":
		warn(logger, &warnings, "this looks like an old Glyphify composition, it might desync when played back on device")
		legacy = true
	case "custom":
		warn(logger, &warnings, "this looks like an old better-nothing-glyph-composer composition, it might desync when played back on device")
		legacy = true
	}

	phone, err := glyph.PhoneFromTag(custom2)
	if err != nil {
		return nil, nil, err
	}

	t, err := codec.DecodeAuthor(values[TagAuthor])
	if err != nil {
		return nil, nil, err
	}
	ix, err := codec.DecodeIndex(values[TagCustom1])
	if err != nil {
		return nil, nil, err
	}
	if cm, err := glyph.ColumnsFromWidth(t.Columns); err == nil && cm.Phone() != phone {
		warn(logger, &warnings, "AUTHOR data width does not match the CUSTOM2 tag "+custom2)
	}

	var wm *watermark.Watermark
	if content, ok := get(TagWatermark); ok {
		if wm, err = watermark.Generate(strings.TrimPrefix(content, "\n")); err != nil {
			return nil, nil, err
		}
		logger.Info("watermark by creator detected, always give credit to the creator", "watermark", wm.Content)
	}

	f, err := nglyph.FromTable(phone, t, ix, wm, legacy)
	if err != nil {
		return nil, nil, err
	}
	return f, warnings, nil
}
