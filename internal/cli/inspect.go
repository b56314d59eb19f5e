package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/glyph"
	"github.com/matzehuels/glyphtools/pkg/nglyph"
)

// Output formats of the inspect command.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// summary describes an NGlyph file.
type summary struct {
	Path       string  `json:"path" yaml:"path"`
	Version    int     `json:"version" yaml:"version"`
	Phone      string  `json:"phone" yaml:"phone"`
	Columns    string  `json:"columns" yaml:"columns"`
	Rows       int     `json:"rows" yaml:"rows"`
	DurationMS float64 `json:"duration_ms" yaml:"duration_ms"`
	Directives int     `json:"directives" yaml:"directives"`
	LitCells   int     `json:"lit_cells" yaml:"lit_cells"`
	PeakLevel  int     `json:"peak_level" yaml:"peak_level"`
	MaxLevel   int     `json:"max_level" yaml:"max_level"`
	Legacy     bool    `json:"legacy" yaml:"legacy"`
	Sealed     bool    `json:"sealed" yaml:"sealed"`
	Watermark  string  `json:"watermark,omitempty" yaml:"watermark,omitempty"`
}

func summarize(path string, f *nglyph.File) (*summary, error) {
	t, err := f.Table()
	if err != nil {
		return nil, err
	}
	cm, err := f.Columns()
	if err != nil {
		return nil, err
	}
	s := &summary{
		Path:       path,
		Version:    f.Version,
		Phone:      f.Phone.String(),
		Columns:    cm.String(),
		Rows:       len(t.Rows),
		DurationMS: float64(len(t.Rows)) * glyph.TimeStepMS,
		Directives: len(f.Custom1),
		MaxLevel:   f.MaxLevel(),
		Legacy:     f.Legacy,
		Sealed:     f.Sealed(),
	}
	if f.Watermark != nil {
		s.Watermark = f.Watermark.Content
	}
	for _, row := range t.Rows {
		for _, v := range row {
			if v > 0 {
				s.LitCells++
			}
			s.PeakLevel = max(s.PeakLevel, v)
		}
	}
	return s, nil
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "inspect <composition.nglyph>",
		Short: "Summarize an NGlyph composition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := nglyph.ReadFile(args[0])
			if err != nil {
				return err
			}
			s, err := summarize(args[0], f)
			if err != nil {
				return err
			}
			return writeSummary(c.Out, s, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json, yaml")
	return cmd
}

func writeSummary(w io.Writer, s *summary, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case formatText:
		fmt.Fprintln(w, StyleTitle.Render(s.Path))
		rows := [][2]string{
			{"Version", strconv.Itoa(s.Version)},
			{"Phone", s.Phone},
			{"Columns", s.Columns},
			{"Rows", fmt.Sprintf("%d (%s)", s.Rows, formatDuration(s.Rows))},
			{"Directives", strconv.Itoa(s.Directives)},
			{"Lit cells", strconv.Itoa(s.LitCells)},
			{"Peak level", fmt.Sprintf("%d / %d", s.PeakLevel, s.MaxLevel)},
			{"Legacy", strconv.FormatBool(s.Legacy)},
			{"Sealed", strconv.FormatBool(s.Sealed)},
		}
		if s.Watermark != "" {
			rows = append(rows, [2]string{"Watermark", s.Watermark})
		}
		for _, r := range rows {
			fmt.Fprintln(w, keyValueLine(r[0], r[1]))
		}
		return nil
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (use text, json or yaml)", format)
	}
}
