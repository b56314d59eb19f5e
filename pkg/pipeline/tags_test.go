package pipeline

import (
	"testing"

	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/frame"
	"github.com/matzehuels/glyphtools/pkg/glyph"
	"github.com/matzehuels/glyphtools/pkg/nglyph"
	"github.com/matzehuels/glyphtools/pkg/watermark"
)

func sampleFile(t *testing.T, wm *watermark.Watermark) *nglyph.File {
	t.Helper()
	tbl := frame.NewTable(5, 4)
	tbl.Rows[1][2] = 4095
	f, err := nglyph.FromTable(glyph.Phone1, tbl, frame.Index{{StartMS: 16, Coarse: 2}}, wm, false)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func tagMap(t *testing.T, f *nglyph.File) map[string]string {
	t.Helper()
	tbl, err := f.Table()
	if err != nil {
		t.Fatal(err)
	}
	tags, err := EncodeTags(f, tbl, "Song")
	if err != nil {
		t.Fatalf("EncodeTags: %v", err)
	}
	m := map[string]string{}
	for _, tag := range tags {
		m[tag.Key] = tag.Value
	}
	return m
}

func lookup(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestEncodeDecodeTags(t *testing.T) {
	wm, _ := watermark.Generate("credits")
	orig := sampleFile(t, wm)
	m := tagMap(t, orig)

	if m[TagWatermark] != "\ncredits" {
		t.Errorf("watermark tag = %q", m[TagWatermark])
	}

	f, warnings, err := DecodeTags(lookup(m), nil)
	if err != nil {
		t.Fatalf("DecodeTags: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("warnings = %v", warnings)
	}
	if !f.Sealed() || f.Watermark.Content != "credits" || f.Legacy {
		t.Errorf("decoded file: sealed=%v legacy=%v", f.Sealed(), f.Legacy)
	}
	got, _ := f.Table()
	want, _ := orig.Table()
	if !got.Equal(want) {
		t.Error("tables differ after a tag round trip")
	}
}

func TestEncodeTagsPhoneMismatch(t *testing.T) {
	f := sampleFile(t, nil)
	f.Phone = glyph.Phone2
	tbl, _ := f.Table()
	if _, err := EncodeTags(f, tbl, "Song"); !errors.Is(err, errors.ErrCodeValidation) {
		t.Errorf("error = %v, want validation error", err)
	}
}

func TestDecodeTagsLegacyAlbums(t *testing.T) {
	for _, album := range []string{"Glyphify", "custom"} {
		t.Run(album, func(t *testing.T) {
			m := tagMap(t, sampleFile(t, nil))
			m[TagAlbum] = album
			delete(m, TagCustom2)

			f, warnings, err := DecodeTags(lookup(m), nil)
			if err != nil {
				t.Fatal(err)
			}
			if !f.Legacy || len(warnings) != 1 {
				t.Errorf("legacy=%v warnings=%v", f.Legacy, warnings)
			}
		})
	}
}
