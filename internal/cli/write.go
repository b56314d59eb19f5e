package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/glyphtools/pkg/nglyph"
	"github.com/matzehuels/glyphtools/pkg/pipeline"
)

// toolFlags are shared by the commands that run ffmpeg.
type toolFlags struct {
	ffmpeg         string
	ffprobe        string
	noVersionCheck bool
}

func (f *toolFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.ffmpeg, "ffmpeg", "", "path to the ffmpeg binary (default: config ffmpeg)")
	cmd.Flags().StringVar(&f.ffprobe, "ffprobe", "", "path to the ffprobe binary (default: config ffprobe)")
	cmd.Flags().BoolVar(&f.noVersionCheck, "disable-ff-version-check", false, "skip the ffmpeg/ffprobe version check")
}

// apply copies set flags over the configuration.
func (f *toolFlags) apply(cfg *Config) {
	if f.ffmpeg != "" {
		cfg.FFmpeg = f.ffmpeg
	}
	if f.ffprobe != "" {
		cfg.FFprobe = f.ffprobe
	}
	if f.noVersionCheck {
		cfg.SkipVersionCheck = true
	}
}

// writeFlags holds flags for the write command.
type writeFlags struct {
	toolFlags
	title     string
	outputDir string
	autoFix   bool
}

// writeCommand creates the write command.
func (c *CLI) writeCommand() *cobra.Command {
	flags := writeFlags{}

	cmd := &cobra.Command{
		Use:   "write <audio.ogg> <composition.nglyph>",
		Short: "Write a composition into an audio file",
		Long: `Write a composition into the metadata of an Opus audio file.

The output is written as <audio>_composed.ogg to the output directory. Audio
with the wrong codec or extension is converted to <audio>_fixed.ogg first,
after asking (or right away with --auto-fix).`,
		Example: `  glyphtools write song.ogg song.nglyph
  glyphtools write -t "My Song" --auto-fix song.mp3 song.nglyph`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.apply(c.Config)
			if !cmd.Flags().Changed("title") {
				flags.title = c.Config.Title
			}
			if !cmd.Flags().Changed("output-dir") {
				flags.outputDir = c.Config.OutputDir
			}
			return c.runWrite(cmd.Context(), args[0], args[1], flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&flags.title, "title", "t", "", "song title (default: config title)")
	cmd.Flags().StringVarP(&flags.outputDir, "output-dir", "o", "", "directory for the composed audio (default: config output_dir)")
	cmd.Flags().BoolVar(&flags.autoFix, "auto-fix", false, "fix the audio codec or extension without asking")

	return cmd
}

func (c *CLI) runWrite(ctx context.Context, audio, composition string, flags writeFlags) error {
	f, err := nglyph.ReadFile(composition)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return err
	}
	defer runner.Close()
	if err := c.checkTools(ctx, runner.Media); err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	res, err := runner.Compose(ctx, pipeline.ComposeOptions{
		Audio:       audio,
		Composition: f,
		Title:       flags.title,
		OutputDir:   flags.outputDir,
		AutoFix:     flags.autoFix,
		Confirm:     confirmer(os.Stdin, os.Stderr),
		Logger:      c.Logger,
	})
	if err != nil {
		return err
	}
	prog.done("Wrote composition")

	printSuccess("Composed %s", filepath.Base(audio))
	printWarnings(res.Warnings)
	if res.Fixed {
		printDetail("Fixed audio: %s", res.Source)
	}
	if res.Padded {
		printDetail("Padded the composition by one row to cover the audio")
	}
	printKeyValue("Phone", f.Phone.String())
	printKeyValue("Rows", fmt.Sprintf("%d (%s)", res.Stats.Rows, formatDuration(res.Stats.Rows)))
	printKeyValue("AUTHOR", fmt.Sprintf("%d bytes", res.Stats.AuthorBytes))
	printKeyValue("CUSTOM1", fmt.Sprintf("%d bytes", res.Stats.Custom1Bytes))
	printFile(res.Output)
	return nil
}
