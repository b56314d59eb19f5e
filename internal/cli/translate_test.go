package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/glyphtools/pkg/nglyph"
)

const songLabels = "0\t0\tLABEL_VERSION=1\n" +
	"0\t0\tPHONE_MODEL=PHONE1\n" +
	"1\t2\t1-0-100-LIN\n" +
	"3\t4\t2-100\n" +
	"5\t5\tEND\n"

func TestRunTranslate(t *testing.T) {
	c := newTestCLI(t)
	in, out := t.TempDir(), t.TempDir()
	a := writeFile(t, filepath.Join(in, "a.txt"), songLabels)
	b := writeFile(t, filepath.Join(in, "b.txt"), strings.Replace(songLabels, "2-100", "3-50", 1))

	err := c.runTranslate(context.Background(), []string{a, b}, translateFlags{outputDir: out, jobs: 2, noCache: true})
	if err != nil {
		t.Fatalf("runTranslate: %v", err)
	}
	for _, name := range []string{"a.nglyph", "b.nglyph"} {
		f, err := nglyph.ReadFile(filepath.Join(out, name))
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if f.Sealed() {
			t.Errorf("%s is sealed without a watermark", name)
		}
	}
}

func TestRunTranslatePartialFailure(t *testing.T) {
	c := newTestCLI(t)
	in, out := t.TempDir(), t.TempDir()
	good := writeFile(t, filepath.Join(in, "good.txt"), songLabels)
	bad := writeFile(t, filepath.Join(in, "bad.txt"), strings.Replace(songLabels, "END", "1-10", 1))

	err := c.runTranslate(context.Background(), []string{bad, good}, translateFlags{outputDir: out, noCache: true})
	if err == nil || !strings.Contains(err.Error(), "1 of 2 label files failed") {
		t.Fatalf("error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "good.nglyph")); err != nil {
		t.Errorf("good file was not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "bad.nglyph")); !os.IsNotExist(err) {
		t.Error("failed file should not be written")
	}
}

func TestRunTranslateWatermark(t *testing.T) {
	c := newTestCLI(t)
	in, out := t.TempDir(), t.TempDir()
	a := writeFile(t, filepath.Join(in, "a.txt"), songLabels)
	b := writeFile(t, filepath.Join(in, "b.txt"), songLabels)
	wm := writeFile(t, filepath.Join(in, "credits.txt"), "Made by Alice\n")

	err := c.runTranslate(context.Background(), []string{a, b}, translateFlags{outputDir: out, watermark: wm, noCache: true})
	if err != nil {
		t.Fatal(err)
	}
	fa, err := nglyph.ReadFile(filepath.Join(out, "a.nglyph"))
	if err != nil {
		t.Fatal(err)
	}
	fb, err := nglyph.ReadFile(filepath.Join(out, "b.nglyph"))
	if err != nil {
		t.Fatal(err)
	}
	if !fa.Sealed() || fa.Watermark.Content != "Made by Alice\n" {
		t.Errorf("watermark = %+v", fa.Watermark)
	}
	if fa.Watermark.EncodedSalt() == fb.Watermark.EncodedSalt() {
		t.Error("files of one batch share a salt")
	}
}

func TestRunTranslateMissingOutputDir(t *testing.T) {
	c := newTestCLI(t)
	err := c.runTranslate(context.Background(), []string{"x.txt"}, translateFlags{outputDir: filepath.Join(t.TempDir(), "nope")})
	if err == nil {
		t.Error("expected an error for a missing output directory")
	}
}

func TestDefaultJobs(t *testing.T) {
	if got := defaultJobs(3); got != 3 {
		t.Errorf("defaultJobs(3) = %d", got)
	}
	if got := defaultJobs(0); got < 1 {
		t.Errorf("defaultJobs(0) = %d, want at least 1", got)
	}
}
