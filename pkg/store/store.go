// Package store keeps NGlyph compositions for the HTTP service.
//
// Compositions are stored as their serialized NGlyph documents under a
// random UUID. [MemoryStore] serves tests and single-instance deployments;
// [MongoStore] persists to MongoDB.
package store

import (
	"bytes"
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/nglyph"
)

// Store persists compositions.
type Store interface {
	// Put stores f and returns its new id.
	Put(ctx context.Context, f *nglyph.File) (string, error)

	// Get loads the composition with the given id. A missing id is a
	// NOT_FOUND error.
	Get(ctx context.Context, id string) (*nglyph.File, error)

	Close() error
}

// record is the stored form of a composition.
type record struct {
	ID        string    `bson:"_id"`
	Phone     string    `bson:"phone_model"`
	Sealed    bool      `bson:"sealed"`
	Document  []byte    `bson:"document"`
	CreatedAt time.Time `bson:"created_at"`
}

func newRecord(f *nglyph.File) (*record, error) {
	data, err := f.Marshal()
	if err != nil {
		return nil, err
	}
	return &record{
		ID:        uuid.NewString(),
		Phone:     f.Phone.String(),
		Sealed:    f.Sealed(),
		Document:  data,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (r *record) file() (*nglyph.File, error) {
	f, err := nglyph.Read(bytes.NewReader(r.Document))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "stored composition %s is corrupt", r.ID)
	}
	return f, nil
}

func notFound(id string) error {
	return errors.New(errors.ErrCodeNotFound, "composition %s not found", id)
}
