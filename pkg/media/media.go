// Package media reads and writes Glyph metadata in audio containers by
// shelling out to ffmpeg and ffprobe.
//
// The package never decodes audio itself. It probes the first audio stream,
// rewrites stream tags with a stream copy, and re-encodes to Opus when a
// composition needs a Nothing-compatible container.
//
// All commands go through a [Runner] so tests can substitute canned output.
package media

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/observability"
)

// Runner executes an external command.
type Runner interface {
	Run(ctx context.Context, name string, args []string, stdin []byte) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, name string, args []string, stdin []byte) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	err := cmd.Run()
	return out.Bytes(), errBuf.Bytes(), err
}

// Tool bundles the ffmpeg and ffprobe binaries.
type Tool struct {
	FFmpeg  string
	FFprobe string
	Runner  Runner
	Logger  *log.Logger
}

// New returns a Tool using the binaries found on PATH.
func New(logger *log.Logger) *Tool {
	return (&Tool{Logger: logger}).withDefaults()
}

func (t *Tool) withDefaults() *Tool {
	if t.FFmpeg == "" {
		t.FFmpeg = "ffmpeg"
	}
	if t.FFprobe == "" {
		t.FFprobe = "ffprobe"
	}
	if t.Runner == nil {
		t.Runner = ExecRunner{}
	}
	if t.Logger == nil {
		t.Logger = log.Default()
	}
	return t
}

// run executes name and turns a failure into an EXTERNAL_TOOL_ERROR that
// carries the tool's stderr.
func (t *Tool) run(ctx context.Context, name string, args []string, stdin []byte) ([]byte, error) {
	t.withDefaults()
	t.Logger.Debug("exec", "cmd", name, "args", strings.Join(args, " "))

	tool := filepath.Base(name)
	observability.Tool().OnExec(ctx, tool)
	start := time.Now()
	stdout, stderr, err := t.Runner.Run(ctx, name, args, stdin)
	observability.Tool().OnExit(ctx, tool, time.Since(start), err)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		msg := strings.TrimSpace(string(stderr))
		if msg == "" {
			msg = "no output"
		}
		return nil, errors.Wrap(errors.ErrCodeExternalTool, err, "%s failed: %s", tool, msg)
	}
	return stdout, nil
}

// bitexact keeps ffmpeg from stamping encoder versions into the output so
// repeated runs produce identical files.
var bitexact = []string{"-fflags", "+bitexact", "-flags:v", "+bitexact", "-flags:a", "+bitexact"}

// FixCodec re-encodes in to Opus at out, keeping the first audio stream's
// metadata.
func (t *Tool) FixCodec(ctx context.Context, in, out string) error {
	args := []string{"-v", "error", "-y", "-i", in, "-strict", "-2", "-c:a", "opus", "-map_metadata", "0:s:a:0"}
	args = append(args, bitexact...)
	args = append(args, out)
	_, err := t.run(ctx, t.withDefaults().FFmpeg, args, nil)
	return err
}

// tempSibling returns a hidden path next to path with the same extension,
// so ffmpeg picks the same muxer.
func tempSibling(path string) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	return filepath.Join(filepath.Dir(path), "."+stem+"."+uuid.NewString()+ext)
}

// commit moves tmp over path, removing tmp on failure.
func commit(tmp, path string) error {
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "write %s", path)
	}
	return nil
}

func removeQuietly(path string) {
	_ = os.Remove(path)
}
