package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/pipeline"
	"github.com/matzehuels/glyphtools/pkg/store"
)

// configFile is the config file name inside the config directory.
const configFile = "config.toml"

// Config is the CLI configuration. Values come from the TOML file, then
// from GLYPHTOOLS_* environment variables (a .env file in the working
// directory is loaded first), then from flags.
type Config struct {
	FFmpeg           string `toml:"ffmpeg"`
	FFprobe          string `toml:"ffprobe"`
	SkipVersionCheck bool   `toml:"disable_ff_version_check"`
	OutputDir        string `toml:"output_dir"`
	Title            string `toml:"title"`

	// Watermark is the path of a .txt watermark applied by translate.
	Watermark string `toml:"watermark"`

	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects the translate cache backend.
type CacheConfig struct {
	Disabled bool   `toml:"disabled"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
}

// ServerConfig configures "glyphtools serve".
type ServerConfig struct {
	Addr       string `toml:"addr"`
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
	MaxBody    int64  `toml:"max_body_bytes"`
}

func defaultConfig() *Config {
	return &Config{
		FFmpeg:    "ffmpeg",
		FFprobe:   "ffprobe",
		OutputDir: pipeline.DefaultOutputDir,
		Title:     pipeline.DefaultTitle,
		Server: ServerConfig{
			Addr:       ":8080",
			Database:   store.DefaultDatabase,
			Collection: store.DefaultCollection,
		},
	}
}

// defaultConfigPath returns ~/.config/glyphtools/config.toml.
func defaultConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// loadConfig reads the config file at path (or the default location) and
// applies environment overrides. A missing default file is not an error; a
// missing explicit file is.
func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	explicit := path != ""
	if !explicit {
		p, err := defaultConfigPath()
		if err == nil {
			path = p
		}
	}
	if path != "" {
		md, err := toml.DecodeFile(path, cfg)
		switch {
		case err == nil:
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				keys := make([]string, len(undecoded))
				for i, k := range undecoded {
					keys[i] = k.String()
				}
				return nil, errors.New(errors.ErrCodeInvalidInput, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
			}
		case os.IsNotExist(err) && !explicit:
		default:
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
		}
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "load .env")
		}
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides cfg from GLYPHTOOLS_* variables.
func applyEnv(cfg *Config) error {
	strs := map[string]*string{
		"FFMPEG":           &cfg.FFmpeg,
		"FFPROBE":          &cfg.FFprobe,
		"OUTPUT_DIR":       &cfg.OutputDir,
		"TITLE":            &cfg.Title,
		"WATERMARK":        &cfg.Watermark,
		"CACHE_DIR":        &cfg.Cache.Dir,
		"REDIS_URL":        &cfg.Cache.RedisURL,
		"ADDR":             &cfg.Server.Addr,
		"MONGO_URI":        &cfg.Server.MongoURI,
		"MONGO_DATABASE":   &cfg.Server.Database,
		"MONGO_COLLECTION": &cfg.Server.Collection,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"DISABLE_FF_VERSION_CHECK": &cfg.SkipVersionCheck,
		"NO_CACHE":                 &cfg.Cache.Disabled,
	}
	for name, dst := range bools {
		v, ok := os.LookupEnv(envPrefix + name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidInput, "%s%s must be a boolean, got %q", envPrefix, name, v)
		}
		*dst = b
	}
	return nil
}

// =============================================================================
// Commands
// =============================================================================

// configCommand creates the config management command.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or initialize the configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.resolvedConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(c.Out, path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			return toml.NewEncoder(c.Out).Encode(c.Config)
		},
	})

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default values",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := c.resolvedConfigPath()
			if err != nil {
				return err
			}
			if err := writeDefaultConfig(path, force); err != nil {
				return err
			}
			printSuccess("Wrote default configuration")
			printFile(path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")
	cmd.AddCommand(initCmd)

	return cmd
}

func (c *CLI) resolvedConfigPath() (string, error) {
	if c.configPath != "" {
		return c.configPath, nil
	}
	return defaultConfigPath()
}

func writeDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.New(errors.ErrCodeInvalidInput, "config file %s already exists (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "create config directory")
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "create config file")
	}
	if err := toml.NewEncoder(f).Encode(defaultConfig()); err != nil {
		f.Close()
		return errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	return f.Close()
}
