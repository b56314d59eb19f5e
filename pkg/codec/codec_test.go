package codec

import (
	"encoding/base64"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/frame"
	"github.com/matzehuels/glyphtools/pkg/glyph"
	"github.com/matzehuels/glyphtools/pkg/watermark"
)

func testKey() string {
	raw := make([]byte, 32)
	for i := range raw {
		raw[i] = byte(i)
	}
	return base64.URLEncoding.EncodeToString(raw)
}

// pattern fills a table with a deterministic, non-trivial pattern.
func pattern(columns, rows int) *frame.Table {
	t := frame.NewTable(columns, rows)
	for r := range t.Rows {
		for c := range t.Rows[r] {
			t.Rows[r][c] = (r*37 + c*11) % (glyph.MaxLevel + 1)
		}
	}
	return t
}

func allModels() []glyph.ColumnsModel {
	return []glyph.ColumnsModel{
		glyph.FiveZone, glyph.FifteenZone, glyph.ElevenZone, glyph.ThirtyThreeZone,
		glyph.ThreeZone2A, glyph.TwentySixZone, glyph.ThreeZone3A, glyph.ThirtySixZone,
		glyph.SixTwentyFiveZone,
	}
}

// =============================================================================
// Rows
// =============================================================================

func TestFormatAuthor(t *testing.T) {
	tbl := &frame.Table{Columns: 5, Rows: [][]int{{0, 0, 0, 0, 0}, {4095, 1, 2, 3, 4}}}
	want := []string{"0,0,0,0,0,", "4095,1,2,3,4,"}
	if got := FormatAuthor(tbl); !reflect.DeepEqual(got, want) {
		t.Errorf("FormatAuthor = %q, want %q", got, want)
	}
}

func TestParseAuthor(t *testing.T) {
	got, err := ParseAuthor([]string{"1,2,3,4,5,", "", " , ,", "6, 7,8,9,10"})
	if err != nil {
		t.Fatalf("ParseAuthor: %v", err)
	}
	want := &frame.Table{Columns: 5, Rows: [][]int{{1, 2, 3, 4, 5}, {6, 7, 8, 9, 10}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseAuthor = %+v, want %+v", got, want)
	}
}

func TestParseAuthorErrors(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
	}{
		{"empty", nil},
		{"only blank lines", []string{"", ",,"}},
		{"ragged", []string{"1,2,3,4,5,", "1,2,3,4,"}},
		{"unknown width", []string{"1,2,3,4,5,6,"}},
		{"not a number", []string{"1,2,x,4,5,"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAuthor(tt.lines)
			if !errors.Is(err, errors.ErrCodeCodec) || errors.GetStage(err) != errors.StageRows {
				t.Errorf("error = %v, want codec error at stage rows", err)
			}
		})
	}
}

func TestIndexRoundTrip(t *testing.T) {
	ix := frame.Index{{StartMS: 0, Coarse: 2}, {StartMS: 1000, Coarse: 0}, {StartMS: 1000, Coarse: 4}}
	entries := FormatIndex(ix)
	if want := []string{"0-2", "1000-0", "1000-4"}; !reflect.DeepEqual(entries, want) {
		t.Fatalf("FormatIndex = %q, want %q", entries, want)
	}
	got, err := ParseIndex(entries)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, ix) {
		t.Errorf("ParseIndex(FormatIndex(ix)) = %v, want %v", got, ix)
	}
}

func TestParseIndexErrors(t *testing.T) {
	for _, entries := range [][]string{{"1000"}, {"1-2-3"}, {"a-1"}} {
		_, err := ParseIndex(entries)
		if errors.GetStage(err) != errors.StageIndex {
			t.Errorf("ParseIndex(%q) error = %v, want stage index", entries, err)
		}
	}
}

// =============================================================================
// Tags
// =============================================================================

func TestEncodeTagWrapsAndStripsPadding(t *testing.T) {
	s, err := EncodeTag([]byte(strings.Repeat("4095,0,0,0,0,\r\n", 2000) + "1,2,3"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(s, "\n") {
		t.Error("tag text must end with a newline")
	}
	lines := strings.Split(strings.TrimSuffix(s, "\n"), "\n")
	for i, l := range lines {
		if i < len(lines)-1 && len(l) != LineWidth {
			t.Errorf("line %d has %d characters, want %d", i, len(l), LineWidth)
		}
		if len(l) > LineWidth {
			t.Errorf("line %d exceeds %d characters", i, LineWidth)
		}
	}
	if strings.Contains(s, "=") {
		t.Error("tag text must not carry base64 padding")
	}
}

// Tags written by the original desktop tooling must decode.
func TestDecodeForeignTags(t *testing.T) {
	tbl, err := DecodeAuthor("eNoz0DGAQl4uEwNLUySukYGJBZRjaAASAACn6gdL\n")
	if err != nil {
		t.Fatalf("DecodeAuthor: %v", err)
	}
	want := &frame.Table{Columns: 5, Rows: [][]int{{0, 0, 0, 0, 0}, {4095, 0, 0, 0, 0}, {2048, 0, 0, 0, 100}}}
	if !reflect.DeepEqual(tbl, want) {
		t.Errorf("DecodeAuthor = %+v, want %+v", tbl, want)
	}

	ix, err := DecodeIndex("eNozNDAw0DXQMTIFUiY6ABO1Ap8\n")
	if err != nil {
		t.Fatalf("DecodeIndex: %v", err)
	}
	if want := (frame.Index{{StartMS: 1000, Coarse: 0}, {StartMS: 2500, Coarse: 4}}); !reflect.DeepEqual(ix, want) {
		t.Errorf("DecodeIndex = %v, want %v", ix, want)
	}
}

func TestDecodeTagStages(t *testing.T) {
	if _, err := DecodeTag("not*base64\n"); errors.GetStage(err) != errors.StageBase64 {
		t.Errorf("bad base64: error = %v, want stage base64", err)
	}
	notZlib := base64.RawStdEncoding.EncodeToString([]byte("plain text"))
	if _, err := DecodeTag(notZlib); errors.GetStage(err) != errors.StageDecompress {
		t.Errorf("not zlib: error = %v, want stage decompress", err)
	}

	s, _ := EncodeTag([]byte{0xff, 0xfe, 0xfd})
	if _, err := DecodeAuthor(s); errors.GetStage(err) != errors.StageUTF8 {
		t.Errorf("invalid UTF-8: error = %v, want stage utf8", err)
	}
}

func TestDecodeTagSizeLimit(t *testing.T) {
	defer func(n int64) { maxDecompressed = n }(maxDecompressed)
	maxDecompressed = 1024

	s, err := EncodeTag(make([]byte, 1024))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeTag(s); err != nil {
		t.Errorf("payload at the limit: %v", err)
	}

	s, err = EncodeTag(make([]byte, 1025))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := DecodeTag(s); errors.GetStage(err) != errors.StageDecompress {
		t.Errorf("payload past the limit: error = %v, want stage decompress", err)
	}
}

func TestIndexTagRoundTrip(t *testing.T) {
	ix := frame.Index{{StartMS: 16, Coarse: 1}, {StartMS: 120000, Coarse: 3}}
	s, err := EncodeIndex(ix)
	if err != nil {
		t.Fatal(err)
	}
	got, err := DecodeIndex(s)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, ix) {
		t.Errorf("round trip = %v, want %v", got, ix)
	}
}

// =============================================================================
// Full chain
// =============================================================================

func TestRoundTripEveryModel(t *testing.T) {
	key := testKey()
	for _, cm := range allModels() {
		for _, withKey := range []bool{false, true} {
			name := cm.String()
			k := ""
			if withKey {
				name += "/sealed"
				k = key
			}
			t.Run(name, func(t *testing.T) {
				tbl := pattern(cm.Columns(), 120)
				s, err := Encode(tbl, k)
				if err != nil {
					t.Fatalf("Encode: %v", err)
				}
				got, err := Decode(s, k)
				if err != nil {
					t.Fatalf("Decode: %v", err)
				}
				if !got.Equal(tbl) {
					t.Error("decode(encode(table)) differs from table")
				}
			})
		}
	}
}

func TestSealLayout(t *testing.T) {
	tbl := pattern(15, 40)
	sealed, err := Seal(tbl, testKey())
	if err != nil {
		t.Fatal(err)
	}
	if sealed.Columns != 15 {
		t.Errorf("sealed width = %d, want 15", sealed.Columns)
	}
	n := sealed.Rows[0][0]
	if want := (n + 1 + 14) / 15; len(sealed.Rows) != want {
		t.Errorf("sealed rows = %d, want %d for %d bytes", len(sealed.Rows), want, n)
	}

	var flat []int
	for _, r := range sealed.Rows {
		flat = append(flat, r...)
	}
	for i, v := range flat[1 : n+1] {
		if v < 0 || v > 255 {
			t.Fatalf("cell %d = %d, not a byte", i+1, v)
		}
	}
	for i, v := range flat[n+1:] {
		if v != 0 {
			t.Errorf("padding cell %d = %d, want 0", n+1+i, v)
		}
	}
}

func TestOpenDetectsTampering(t *testing.T) {
	sealed, err := Seal(pattern(5, 200), testKey())
	if err != nil {
		t.Fatal(err)
	}
	n := sealed.Rows[0][0]
	mid := n/2 + 1
	row, col := mid/5, mid%5
	sealed.Rows[row][col] = (sealed.Rows[row][col] + 1) % 256

	s, err := EncodeAuthor(sealed)
	if err != nil {
		t.Fatal(err)
	}
	_, err = Decode(s, testKey())
	if !errors.Is(err, errors.ErrCodeCodec) || errors.GetStage(err) != errors.StageDecrypt {
		t.Errorf("tampered payload: error = %v, want codec error at stage decrypt", err)
	}
}

func TestOpenWithWrongWatermark(t *testing.T) {
	salt := make([]byte, watermark.SaltSize)
	right, err := watermark.DeriveKey("Alice", salt)
	if err != nil {
		t.Fatal(err)
	}
	wrong, _ := watermark.DeriveKey("Mallory", salt)

	sealed, err := Seal(pattern(26, 10), right)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Open(sealed, wrong); errors.GetStage(err) != errors.StageDecrypt {
		t.Errorf("wrong key: error = %v, want stage decrypt", err)
	}
	if _, err := Open(sealed, right); err != nil {
		t.Errorf("right key: %v", err)
	}
}

func TestOpenHeaderErrors(t *testing.T) {
	tests := []struct {
		name string
		tbl  *frame.Table
	}{
		{"zero length", &frame.Table{Columns: 5, Rows: [][]int{{0, 1, 2, 3, 4}}}},
		{"length past the table", &frame.Table{Columns: 5, Rows: [][]int{{9, 1, 2, 3, 4}}}},
		{"cell is not a byte", &frame.Table{Columns: 5, Rows: [][]int{{3, 1, 300, 3, 4}}}},
		{"length overflows", &frame.Table{Columns: 5, Rows: [][]int{{math.MaxInt, 1, 2, 3, 4}}}},
		{"negative length", &frame.Table{Columns: 5, Rows: [][]int{{math.MinInt, 1, 2, 3, 4}}}},
		{"empty", &frame.Table{Columns: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Open(tt.tbl, testKey()); errors.GetStage(err) != errors.StageHeader {
				t.Errorf("error = %v, want stage header", err)
			}
		})
	}
}

func TestSealRejectsBadKey(t *testing.T) {
	if _, err := Seal(pattern(5, 2), "short"); errors.GetStage(err) != errors.StageEncrypt {
		t.Errorf("bad key: error = %v, want stage encrypt", err)
	}
}
