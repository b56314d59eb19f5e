// Package codec serializes frame tables and indexes to and from the text
// carried in audio tags and NGlyph files.
//
// The AUTHOR chain, encoding direction:
//
//	rows ("a,b,c,")  ->  CRLF text  ->  zlib (best)  ->  base64  ->  76 column wrap
//
// With a watermark key the table is sealed first (see [Seal]): the rows are
// compressed, encrypted into a Fernet token and compressed again, and the
// bytes are stored as cells of a table of the same width. The outer
// compression pass belongs to the wire format and is never skipped.
//
// Every failure is a CODEC_ERROR carrying the [errors.Stage] that broke, so
// a partial decode is never mistaken for a valid table:
//
//	tbl, err := codec.Decode(tag, key)
//	if errors.GetStage(err) == errors.StageDecrypt {
//	    // wrong watermark or tampered payload
//	}
package codec

import "github.com/matzehuels/glyphtools/pkg/frame"

// Encode renders t as AUTHOR tag text, sealing it first when key is set.
func Encode(t *frame.Table, key string) (string, error) {
	if key != "" {
		sealed, err := Seal(t, key)
		if err != nil {
			return "", err
		}
		t = sealed
	}
	return EncodeAuthor(t)
}

// Decode parses AUTHOR tag text, opening it when key is set.
func Decode(s, key string) (*frame.Table, error) {
	t, err := DecodeAuthor(s)
	if err != nil {
		return nil, err
	}
	if key != "" {
		return Open(t, key)
	}
	return t, nil
}
