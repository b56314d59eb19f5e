// Package watermark derives composition encryption keys from a creator's
// watermark text.
//
// A watermark is free text (usually a name and a link) plus a 16 byte salt
// drawn when the composition is authored. The key is
// PBKDF2-HMAC-SHA256(content, salt, 480000 iterations, 32 bytes), encoded as
// URL-safe base64 so it can be handed to a Fernet cipher directly.
//
// Deriving a key is deliberately slow (hundreds of milliseconds). Callers
// that need the key more than once should hold on to it.
package watermark

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"os"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	"github.com/matzehuels/glyphtools/pkg/errors"
)

const (
	// SaltSize is the required salt length in bytes.
	SaltSize = 16

	// Iterations is the PBKDF2 round count.
	Iterations = 480000

	keySize = 32
)

// DeriveKey returns the URL-safe base64 key for content and salt.
func DeriveKey(content string, salt []byte) (string, error) {
	if len(salt) != SaltSize {
		return "", errors.New(errors.ErrCodeValidation, "salt must be %d bytes long, got %d", SaltSize, len(salt))
	}
	raw := pbkdf2.Key([]byte(content), salt, Iterations, keySize, sha256.New)
	return base64.URLEncoding.EncodeToString(raw), nil
}

// Watermark is a creator watermark with its salt.
type Watermark struct {
	Content string
	Salt    []byte
}

// New returns a watermark with newlines normalized to "\n".
func New(content string, salt []byte) (*Watermark, error) {
	if len(salt) != SaltSize {
		return nil, errors.New(errors.ErrCodeValidation, "salt must be %d bytes long, got %d", SaltSize, len(salt))
	}
	return &Watermark{
		Content: normalize(content),
		Salt:    append([]byte(nil), salt...),
	}, nil
}

// Generate returns a watermark with a fresh random salt.
func Generate(content string) (*Watermark, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "generate salt")
	}
	return New(content, salt)
}

// ReadFile reads a watermark from a .txt file and gives it a fresh salt.
func ReadFile(path string) (*Watermark, error) {
	if err := errors.ValidateExtension(path, ".txt"); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read watermark file")
	}
	if err := errors.ValidateWatermark(string(data)); err != nil {
		return nil, err
	}
	return Generate(string(data))
}

// FromLines rebuilds a watermark from the NGlyph WATERMARK array and the
// standard base64 SALT value.
func FromLines(lines []string, encodedSalt string) (*Watermark, error) {
	salt, err := base64.StdEncoding.Strict().DecodeString(encodedSalt)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFormat, err, "SALT is not valid base64")
	}
	return New(strings.Join(lines, "\n"), salt)
}

// Lines splits the content for the NGlyph WATERMARK array. A trailing
// newline yields a trailing empty line so FromLines restores it.
func (w *Watermark) Lines() []string {
	if w.Content == "" {
		return []string{}
	}
	return strings.Split(w.Content, "\n")
}

// EncodedSalt returns the salt as standard base64.
func (w *Watermark) EncodedSalt() string {
	return base64.StdEncoding.EncodeToString(w.Salt)
}

// Key derives the encryption key of w.
func (w *Watermark) Key() (string, error) {
	return DeriveKey(w.Content, w.Salt)
}

// Resalt returns a copy of w with a fresh random salt. Re-sealing a
// composition read back from audio tags uses it.
func (w *Watermark) Resalt() (*Watermark, error) {
	return Generate(w.Content)
}

func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
