package nglyph

import (
	"github.com/matzehuels/glyphtools/pkg/codec"
	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/frame"
	"github.com/matzehuels/glyphtools/pkg/glyph"
	"github.com/matzehuels/glyphtools/pkg/watermark"
)

// Extension is the required file extension.
const Extension = ".nglyph"

// FormatVersion is the only supported VERSION value.
const FormatVersion = 1

// File is an NGlyph composition.
//
// Author and Custom1 hold the rows exactly as stored; Author is sealed when
// Watermark is set.
type File struct {
	Version   int
	Phone     glyph.PhoneModel
	Author    []string
	Custom1   []string
	Watermark *watermark.Watermark
	Legacy    bool

	table *frame.Table
}

// New builds a container from a frame build. With a watermark the AUTHOR
// rows are sealed with the watermark key.
func New(phone glyph.PhoneModel, res *frame.Result, wm *watermark.Watermark, legacy bool) (*File, error) {
	return FromTable(phone, res.Table, res.Index, wm, legacy)
}

// FromTable builds a container from a plain table and index.
func FromTable(phone glyph.PhoneModel, t *frame.Table, ix frame.Index, wm *watermark.Watermark, legacy bool) (*File, error) {
	if !phone.Valid() {
		return nil, errors.New(errors.ErrCodeValidation, "unsupported phone model %v", phone)
	}

	f := &File{
		Version:   FormatVersion,
		Phone:     phone,
		Custom1:   codec.FormatIndex(ix),
		Watermark: wm,
		Legacy:    legacy,
		table:     t,
	}

	author := t
	if wm != nil {
		key, err := wm.Key()
		if err != nil {
			return nil, err
		}
		if author, err = codec.Seal(t, key); err != nil {
			return nil, err
		}
	}
	f.Author = codec.FormatAuthor(author)
	return f, nil
}

// Sealed reports whether the AUTHOR rows are encrypted.
func (f *File) Sealed() bool {
	return f.Watermark != nil
}

// Table returns the plain frame table, opening sealed rows with the
// watermark key.
func (f *File) Table() (*frame.Table, error) {
	if f.table != nil {
		return f.table, nil
	}

	t, err := codec.ParseAuthor(f.Author)
	if err != nil {
		return nil, err
	}
	if f.Watermark != nil {
		key, err := f.Watermark.Key()
		if err != nil {
			return nil, err
		}
		if t, err = codec.Open(t, key); err != nil {
			return nil, err
		}
	}
	f.table = t
	return t, nil
}

// Index parses the CUSTOM1 entries.
func (f *File) Index() (frame.Index, error) {
	return codec.ParseIndex(f.Custom1)
}

// Columns returns the columns model implied by the plain table width.
func (f *File) Columns() (glyph.ColumnsModel, error) {
	t, err := f.Table()
	if err != nil {
		return 0, err
	}
	return glyph.ColumnsFromWidth(t.Columns)
}

// MaxLevel returns the highest light level allowed in the table.
func (f *File) MaxLevel() int {
	if f.Legacy {
		return glyph.LegacyMaxLevel
	}
	return glyph.MaxLevel
}
