package nglyph

import (
	"encoding/json"
	"io"
	"os"

	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/glyph"
	"github.com/matzehuels/glyphtools/pkg/watermark"
)

// Read decodes and validates an NGlyph document from r. Sealed AUTHOR rows
// are opened once to prove the watermark matches. Read does not close r.
func Read(r io.Reader) (*File, error) {
	var doc map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFormat, err, "not a valid nglyph file: could not parse the JSON data")
	}

	f := &File{}

	var version json.Number
	if err := field(doc, "VERSION", &version); err != nil {
		return nil, err
	}
	v, err := version.Int64()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFormat, err, "not a valid nglyph file: no valid VERSION found")
	}
	if v != FormatVersion {
		return nil, errors.New(errors.ErrCodeValidation, "nglyph VERSION %d is not supported (supported: %d)", v, FormatVersion)
	}
	f.Version = int(v)

	var phone string
	if err := field(doc, "PHONE_MODEL", &phone); err != nil {
		return nil, err
	}
	if f.Phone, err = glyph.ParsePhoneModel(phone); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFormat, err, "not a valid nglyph file: invalid PHONE_MODEL")
	}

	if err := field(doc, "AUTHOR", &f.Author); err != nil {
		return nil, err
	}
	if err := field(doc, "CUSTOM1", &f.Custom1); err != nil {
		return nil, err
	}
	if _, err := f.Index(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFormat, err, "not a valid nglyph file: invalid CUSTOM1 data")
	}

	if raw, ok := doc["LEGACY"]; ok && string(raw) != "null" {
		if err := json.Unmarshal(raw, &f.Legacy); err != nil {
			return nil, errors.Wrap(errors.ErrCodeFormat, err, "not a valid nglyph file: LEGACY must be a boolean")
		}
	}

	if raw, ok := doc["WATERMARK"]; ok && string(raw) != "null" {
		var lines []string
		if err := json.Unmarshal(raw, &lines); err != nil {
			return nil, errors.Wrap(errors.ErrCodeFormat, err, "not a valid nglyph file: no valid WATERMARK data found")
		}
		var salt string
		if err := field(doc, "SALT", &salt); err != nil {
			return nil, err
		}
		wm, err := watermark.FromLines(lines, salt)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeFormat, err, "not a valid nglyph file: SALT data is not valid")
		}
		f.Watermark = wm
	}

	if _, err := f.Table(); err != nil {
		// Failures past the rows stage of sealed data keep their codec stage.
		if f.Sealed() && errors.Is(err, errors.ErrCodeCodec) && errors.GetStage(err) != errors.StageRows {
			return nil, err
		}
		return nil, errors.Wrap(errors.ErrCodeFormat, err, "not a valid nglyph file: invalid AUTHOR data")
	}
	return f, nil
}

// ReadFile reads an NGlyph file. The path must end in ".nglyph".
func ReadFile(path string) (*File, error) {
	if err := errors.ValidateExtension(path, Extension); err != nil {
		return nil, err
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", path)
	}
	defer fh.Close()
	return Read(fh)
}

// field decodes a required key.
func field(doc map[string]json.RawMessage, key string, dst any) error {
	raw, ok := doc[key]
	if !ok || string(raw) == "null" {
		return errors.New(errors.ErrCodeFormat, "not a valid nglyph file: no %s found", key)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return errors.Wrap(errors.ErrCodeFormat, err, "not a valid nglyph file: no valid %s found", key)
	}
	return nil
}
