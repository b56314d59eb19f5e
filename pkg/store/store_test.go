package store

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/frame"
	"github.com/matzehuels/glyphtools/pkg/glyph"
	"github.com/matzehuels/glyphtools/pkg/nglyph"
	"github.com/matzehuels/glyphtools/pkg/watermark"
)

func sampleFile(t *testing.T, wm *watermark.Watermark) *nglyph.File {
	t.Helper()
	tbl := frame.NewTable(5, 2)
	tbl.Rows[1][3] = 4095
	f, err := nglyph.FromTable(glyph.Phone1, tbl, frame.Index{{StartMS: 16, Coarse: 3}}, wm, false)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

// exercise runs the behavior every Store must share.
func exercise(t *testing.T, s Store) {
	ctx := context.Background()

	wm, err := watermark.Generate("by test")
	if err != nil {
		t.Fatal(err)
	}
	for _, tc := range []struct {
		name string
		wm   *watermark.Watermark
	}{
		{"plain", nil},
		{"sealed", wm},
	} {
		t.Run(tc.name, func(t *testing.T) {
			in := sampleFile(t, tc.wm)
			id, err := s.Put(ctx, in)
			if err != nil {
				t.Fatalf("Put: %v", err)
			}
			if err := errors.ValidateCompositionID(id); err != nil {
				t.Fatalf("Put returned id %q: %v", id, err)
			}

			got, err := s.Get(ctx, id)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if got.Phone != glyph.Phone1 || got.Sealed() != (tc.wm != nil) {
				t.Errorf("Get = phone %v sealed %v", got.Phone, got.Sealed())
			}
			tbl, err := got.Table()
			if err != nil {
				t.Fatal(err)
			}
			if tbl.Rows[1][3] != 4095 {
				t.Errorf("table not preserved: %v", tbl.Rows)
			}
		})
	}

	if _, err := s.Get(ctx, uuid.NewString()); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Get(unknown) error = %v, want NOT_FOUND", err)
	}
	if _, err := s.Get(ctx, "../etc/passwd"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("Get(bad id) error = %v, want INVALID_INPUT", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exercise(t, s)
	if s.Len() != 2 {
		t.Errorf("Len = %d, want 2", s.Len())
	}
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("GLYPHTOOLS_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("GLYPHTOOLS_TEST_MONGO_URI not set")
	}
	s, err := NewMongoStore(context.Background(), uri, "glyphtools_test", "compositions")
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	defer s.Close()
	defer s.coll.Drop(context.Background())
	exercise(t, s)
}
