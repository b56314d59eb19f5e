package codec

import (
	"strings"
	"unicode/utf8"

	"github.com/fernet/fernet-go"

	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/frame"
)

// Seal encrypts a table with a watermark key.
//
// The rows are joined by CRLF, compressed, encrypted into a Fernet token and
// compressed again. The resulting bytes are laid out in a table of the same
// width: cell [0][0] holds the byte count, the bytes follow from the second
// cell on and the remainder of the last row is zero.
func Seal(t *frame.Table, key string) (*frame.Table, error) {
	k, err := fernet.DecodeKey(key)
	if err != nil {
		return nil, errors.Codec(errors.StageEncrypt, err, "invalid watermark key")
	}
	if t.Columns <= 0 {
		return nil, errors.Codec(errors.StageRows, nil, "table has no columns")
	}

	inner, err := compress([]byte(strings.Join(FormatAuthor(t), "\r\n")))
	if err != nil {
		return nil, errors.Codec(errors.StageCompress, err, "compress AUTHOR rows")
	}
	tok, err := fernet.EncryptAndSign(inner, k)
	if err != nil {
		return nil, errors.Codec(errors.StageEncrypt, err, "encrypt AUTHOR rows")
	}
	outer, err := compress(tok)
	if err != nil {
		return nil, errors.Codec(errors.StageCompress, err, "compress sealed token")
	}

	rows := (len(outer) + 1 + t.Columns - 1) / t.Columns
	sealed := frame.NewTable(t.Columns, rows)
	sealed.Rows[0][0] = len(outer)
	for i, b := range outer {
		n := i + 1
		sealed.Rows[n/t.Columns][n%t.Columns] = int(b)
	}
	return sealed, nil
}

// Open reverses Seal. A wrong key or any tampering with the sealed bytes
// fails at the decrypt stage.
func Open(t *frame.Table, key string) (*frame.Table, error) {
	k, err := fernet.DecodeKey(key)
	if err != nil {
		return nil, errors.Codec(errors.StageDecrypt, err, "invalid watermark key")
	}

	var flat []int
	for _, row := range t.Rows {
		flat = append(flat, row...)
	}
	if len(flat) == 0 {
		return nil, errors.Codec(errors.StageHeader, nil, "sealed AUTHOR data is empty")
	}
	n := flat[0]
	if n <= 0 || n > len(flat)-1 {
		return nil, errors.Codec(errors.StageHeader, nil,
			"sealed AUTHOR length %d does not fit the %d available cells", n, len(flat)-1)
	}

	outer := make([]byte, n)
	for i, v := range flat[1 : n+1] {
		if v < 0 || v > 255 {
			return nil, errors.Codec(errors.StageHeader, nil, "sealed AUTHOR cell %d holds %d, not a byte", i+1, v)
		}
		outer[i] = byte(v)
	}

	tok, err := decompress(outer)
	if err != nil {
		return nil, errors.Codec(errors.StageDecrypt, err, "sealed AUTHOR data is corrupt")
	}
	inner := fernet.VerifyAndDecrypt(tok, -1, []*fernet.Key{k})
	if inner == nil {
		return nil, errors.Codec(errors.StageDecrypt, nil, "AUTHOR decryption failed: wrong watermark or tampered data")
	}
	raw, err := decompress(inner)
	if err != nil {
		return nil, errors.Codec(errors.StageDecompress, err, "decrypted AUTHOR data is not valid zlib data")
	}
	if !utf8.Valid(raw) {
		return nil, errors.Codec(errors.StageUTF8, nil, "decrypted AUTHOR data is not valid UTF-8")
	}
	return ParseAuthor(splitLines(string(raw)))
}
