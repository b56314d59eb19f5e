package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/glyphtools/pkg/buildinfo"
)

// RootCommand creates the root cobra command with all subcommands registered.
// The configuration is loaded before any subcommand runs.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Glyph Tools compose light shows for Nothing phones",
		Long: `Glyph Tools compiles Audacity label files into Glyph compositions and
writes them into (or reads them from) the metadata of Opus audio files, the
way the Nothing Glyph Composer stores them.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/glyphtools/config.toml)")

	root.AddCommand(c.translateCommand())
	root.AddCommand(c.writeCommand())
	root.AddCommand(c.readCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
