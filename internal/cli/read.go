package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/glyphtools/pkg/pipeline"
)

// readFlags holds flags for the read command.
type readFlags struct {
	toolFlags
	outputDir string
}

// readCommand creates the read command.
func (c *CLI) readCommand() *cobra.Command {
	flags := readFlags{}

	cmd := &cobra.Command{
		Use:   "read <audio.ogg>",
		Short: "Extract the composition from an audio file",
		Long: `Extract the Glyph composition stored in an audio file's metadata and
write it as <audio>.nglyph to the output directory. A creator watermark in
the file is kept and the composition is sealed with a fresh salt.`,
		Example: `  glyphtools read song_composed.ogg`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.apply(c.Config)
			if !cmd.Flags().Changed("output-dir") {
				flags.outputDir = c.Config.OutputDir
			}
			return c.runRead(cmd.Context(), args[0], flags)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&flags.outputDir, "output-dir", "o", "", "directory for the .nglyph file (default: config output_dir)")

	return cmd
}

func (c *CLI) runRead(ctx context.Context, audio string, flags readFlags) error {
	runner, err := c.newRunner(ctx, true)
	if err != nil {
		return err
	}
	defer runner.Close()
	if err := c.checkTools(ctx, runner.Media); err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	res, err := runner.Extract(ctx, pipeline.ExtractOptions{
		Audio:     audio,
		OutputDir: flags.outputDir,
		Logger:    c.Logger,
	})
	if err != nil {
		return err
	}
	prog.done("Read composition")

	printSuccess("Extracted %s", filepath.Base(audio))
	printWarnings(res.Warnings)
	printKeyValue("Phone", res.File.Phone.String())
	printKeyValue("Rows", fmt.Sprintf("%d (%s)", res.Stats.Rows, formatDuration(res.Stats.Rows)))
	if res.File.Sealed() {
		printKeyValue("Watermark", res.File.Watermark.Content)
	}
	printFile(res.Output)
	printNextStep("Inspect", fmt.Sprintf("%s inspect %s", appName, res.Output))
	return nil
}
