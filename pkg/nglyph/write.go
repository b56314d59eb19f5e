package nglyph

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/matzehuels/glyphtools/pkg/errors"
)

type document struct {
	Version   int       `json:"VERSION"`
	Phone     string    `json:"PHONE_MODEL"`
	Author    []string  `json:"AUTHOR"`
	Custom1   []string  `json:"CUSTOM1"`
	Watermark *[]string `json:"WATERMARK,omitempty"`
	Salt      string    `json:"SALT,omitempty"`
	Legacy    bool      `json:"LEGACY,omitempty"`
}

// Marshal renders f as 4-space indented JSON with CRLF line endings.
func (f *File) Marshal() ([]byte, error) {
	doc := document{
		Version: f.Version,
		Phone:   f.Phone.String(),
		Author:  f.Author,
		Custom1: f.Custom1,
		Legacy:  f.Legacy,
	}
	if doc.Author == nil {
		doc.Author = []string{}
	}
	if doc.Custom1 == nil {
		doc.Custom1 = []string{}
	}
	if f.Watermark != nil {
		lines := f.Watermark.Lines()
		doc.Watermark = &lines
		doc.Salt = f.Watermark.EncodedSalt()
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode nglyph")
	}
	out := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return bytes.ReplaceAll(out, []byte("\n"), []byte("\r\n")), nil
}

// Write encodes f to w.
func Write(f *File, w io.Writer) error {
	data, err := f.Marshal()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// WriteFile writes f to path atomically. The path must end in ".nglyph".
func WriteFile(f *File, path string) error {
	if err := errors.ValidateExtension(path, Extension); err != nil {
		return err
	}
	data, err := f.Marshal()
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, "."+filepath.Base(path)+"."+uuid.NewString()+".tmp")

	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "write %s", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "write %s", path)
	}
	return nil
}
