package media

import (
	"context"
	"strings"
)

// Tag is one metadata key/value pair.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

var metadataEscaper = strings.NewReplacer(
	`\`, `\\`,
	`=`, `\=`,
	`;`, `\;`,
	`#`, `\#`,
	"\n", "\\\n",
)

// EscapeMetadata escapes s for an FFMETADATA1 document.
func EscapeMetadata(s string) string {
	return metadataEscaper.Replace(s)
}

// MetadataDocument renders tags as an FFMETADATA1 document.
func MetadataDocument(tags []Tag) []byte {
	var b strings.Builder
	b.WriteString(";FFMETADATA1\n")
	for i, tag := range tags {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(EscapeMetadata(tag.Key))
		b.WriteByte('=')
		b.WriteString(EscapeMetadata(tag.Value))
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

// WriteTags copies the audio of in to out and sets tags on its first audio
// stream. Each key is cleared before the new value is applied so stale
// stream-level values never shadow it. The output is written to a
// temporary sibling and renamed into place.
func (t *Tool) WriteTags(ctx context.Context, in, out string, tags []Tag) error {
	t.withDefaults()
	tmp := tempSibling(out)

	args := []string{"-v", "error", "-i", in, "-i", "-", "-y"}
	for _, tag := range tags {
		args = append(args, "-metadata:s:a:0", tag.Key+"=")
	}
	args = append(args, "-map_metadata", "1", "-c:a", "copy")
	args = append(args, bitexact...)
	args = append(args, tmp)

	if _, err := t.run(ctx, t.FFmpeg, args, MetadataDocument(tags)); err != nil {
		removeQuietly(tmp)
		return err
	}
	return commit(tmp, out)
}
