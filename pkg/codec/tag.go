package codec

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/zlib"

	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/frame"
)

// LineWidth is the hard wrap column of tag text.
const LineWidth = 76

// maxDecompressed caps the inflated size of one payload. A ten minute
// 625 column composition stays well below it.
var maxDecompressed int64 = 256 << 20

func compress(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(raw); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	raw, err := io.ReadAll(io.LimitReader(r, maxDecompressed+1))
	if err != nil {
		return nil, err
	}
	if int64(len(raw)) > maxDecompressed {
		return nil, fmt.Errorf("payload inflates beyond %d bytes", maxDecompressed)
	}
	return raw, nil
}

// EncodeTag compresses raw and renders it as unpadded base64 wrapped at
// LineWidth columns with a trailing newline.
func EncodeTag(raw []byte) (string, error) {
	z, err := compress(raw)
	if err != nil {
		return "", errors.Codec(errors.StageCompress, err, "compress tag payload")
	}
	enc := base64.RawStdEncoding.EncodeToString(z)

	var sb strings.Builder
	for i := 0; i < len(enc); i += LineWidth {
		end := min(i+LineWidth, len(enc))
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(enc[i:end])
	}
	sb.WriteByte('\n')
	return sb.String(), nil
}

// DecodeTag reverses EncodeTag. Line breaks are ignored and missing
// padding is restored.
func DecodeTag(s string) ([]byte, error) {
	s = strings.NewReplacer("\n", "", "\r", "").Replace(s)
	s = strings.TrimRight(s, "=")
	if r := len(s) % 4; r != 0 {
		s += strings.Repeat("=", 4-r)
	}
	z, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, errors.Codec(errors.StageBase64, err, "tag is not valid base64")
	}
	raw, err := decompress(z)
	if err != nil {
		return nil, errors.Codec(errors.StageDecompress, err, "tag payload is not valid zlib data")
	}
	return raw, nil
}

// EncodeAuthor renders a table as AUTHOR tag text.
func EncodeAuthor(t *frame.Table) (string, error) {
	return EncodeTag([]byte(strings.Join(FormatAuthor(t), "\r\n") + "\r\n"))
}

// DecodeAuthor parses AUTHOR tag text.
func DecodeAuthor(s string) (*frame.Table, error) {
	raw, err := DecodeTag(s)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(raw) {
		return nil, errors.Codec(errors.StageUTF8, nil, "AUTHOR payload is not valid UTF-8")
	}
	return ParseAuthor(splitLines(string(raw)))
}

// EncodeIndex renders an index as CUSTOM1 tag text.
func EncodeIndex(ix frame.Index) (string, error) {
	return EncodeTag([]byte(strings.Join(FormatIndex(ix), ",") + ","))
}

// DecodeIndex parses CUSTOM1 tag text.
func DecodeIndex(s string) (frame.Index, error) {
	raw, err := DecodeTag(s)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(raw) {
		return nil, errors.Codec(errors.StageUTF8, nil, "CUSTOM1 payload is not valid UTF-8")
	}
	return ParseIndex(strings.Split(string(raw), ","))
}

// splitLines splits on any of "\r\n", "\n" or "\r". A trailing line break
// does not produce a trailing empty line.
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
