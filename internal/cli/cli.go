// Package cli implements the glyphtools command-line interface.
//
// # Commands
//
//   - translate: compile label files into NGlyph compositions
//   - write: write a composition into an audio file's metadata
//   - read: extract the composition from a composed audio file
//   - inspect: summarize an NGlyph file
//   - serve: run the HTTP service
//   - config, cache, completion: housekeeping
//
// All commands support --verbose (-v) for debug-level logging and
// --config to point at a TOML configuration file.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/glyphtools/pkg/cache"
	"github.com/matzehuels/glyphtools/pkg/media"
	"github.com/matzehuels/glyphtools/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "glyphtools"

	// envPrefix prefixes every environment override.
	envPrefix = "GLYPHTOOLS_"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *Config

	// Out receives command output; status lines go through the print
	// helpers.
	Out io.Writer

	configPath string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, nil, c.newMediaTool(), c.Logger), nil
}

// newCache picks Redis when a URL is configured and the file cache
// otherwise. A missing cache directory silently disables caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache || c.Config.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	if url := c.Config.Cache.RedisURL; url != "" {
		var rc *cache.RedisCache
		err := connectWithRetry(ctx, c.Logger, "redis", func(ctx context.Context) error {
			var err error
			rc, err = cache.NewRedisCache(ctx, url)
			return err
		})
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

func (c *CLI) newMediaTool() *media.Tool {
	return &media.Tool{
		FFmpeg:  c.Config.FFmpeg,
		FFprobe: c.Config.FFprobe,
		Logger:  c.Logger,
	}
}

// checkTools verifies the ffmpeg and ffprobe versions unless disabled.
func (c *CLI) checkTools(ctx context.Context, tool *media.Tool) error {
	if c.Config.SkipVersionCheck {
		c.Logger.Debug("skipping ffmpeg version check")
		return nil
	}
	for _, bin := range []string{tool.FFmpeg, tool.FFprobe} {
		if bin == "" {
			continue
		}
		if err := tool.CheckVersion(ctx, bin); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory or the XDG default
// (~/.cache/glyphtools/).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cache.DefaultDir(appName)
}

// configDir returns the configuration directory using the XDG standard
// (~/.config/glyphtools/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
