package media

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/glyphtools/pkg/errors"
)

// Stream describes the first audio stream of a file.
type Stream struct {
	CodecName string
	Duration  float64 // seconds
	Tags      map[string]string

	// Streams is the number of audio streams in the file. Only the first
	// is read or written.
	Streams int
}

// DurationMS returns the stream duration in milliseconds.
func (s *Stream) DurationMS() float64 {
	return s.Duration * 1000
}

// Tag looks up a tag by key, ignoring case. Containers disagree on key case.
func (s *Stream) Tag(key string) (string, bool) {
	if v, ok := s.Tags[key]; ok {
		return v, true
	}
	for k, v := range s.Tags {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return "", false
}

type probeOutput struct {
	Streams []struct {
		CodecName string            `json:"codec_name"`
		Duration  string            `json:"duration"`
		Tags      map[string]string `json:"tags"`
	} `json:"streams"`
}

// Probe reads the first audio stream of path.
func (t *Tool) Probe(ctx context.Context, path string) (*Stream, error) {
	t.withDefaults()
	out, err := t.run(ctx, t.FFprobe, []string{"-v", "error", "-of", "json", "-show_streams", "-select_streams", "a", path}, nil)
	if err != nil {
		return nil, err
	}
	return parseProbe(out)
}

func parseProbe(data []byte) (*Stream, error) {
	var po probeOutput
	if err := json.Unmarshal(data, &po); err != nil {
		return nil, errors.Wrap(errors.ErrCodeExternalTool, err, "could not parse ffprobe output")
	}
	if len(po.Streams) == 0 {
		return nil, errors.New(errors.ErrCodeFormat, "no audio stream found")
	}

	first := po.Streams[0]
	s := &Stream{
		CodecName: first.CodecName,
		Tags:      first.Tags,
		Streams:   len(po.Streams),
	}
	if s.Tags == nil {
		s.Tags = map[string]string{}
	}
	if first.Duration != "" {
		d, err := strconv.ParseFloat(first.Duration, 64)
		if err != nil || math.IsNaN(d) || d < 0 {
			return nil, errors.New(errors.ErrCodeFormat, "invalid audio duration %q", first.Duration)
		}
		s.Duration = d
	}
	return s, nil
}
