package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/glyphtools/pkg/errors"
	"github.com/matzehuels/glyphtools/pkg/pipeline"
)

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	newTestCLI(t)

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.FFmpeg != "ffmpeg" || cfg.Title != pipeline.DefaultTitle || cfg.Server.Addr != ":8080" {
		t.Errorf("defaults = %+v", cfg)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	newTestCLI(t)
	path := writeFile(t, filepath.Join(t.TempDir(), "config.toml"), `
ffmpeg = "/opt/ffmpeg"
title = "From File"
disable_ff_version_check = true

[cache]
redis_url = "redis://cache:6379/0"

[server]
addr = ":9000"
`)
	t.Setenv("GLYPHTOOLS_TITLE", "From Env")
	t.Setenv("GLYPHTOOLS_NO_CACHE", "true")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.FFmpeg != "/opt/ffmpeg" || cfg.FFprobe != "ffprobe" {
		t.Errorf("binaries = %q, %q", cfg.FFmpeg, cfg.FFprobe)
	}
	if cfg.Title != "From Env" {
		t.Errorf("Title = %q, env should win over the file", cfg.Title)
	}
	if !cfg.SkipVersionCheck || !cfg.Cache.Disabled || cfg.Cache.RedisURL != "redis://cache:6379/0" || cfg.Server.Addr != ":9000" {
		t.Errorf("config = %+v", cfg)
	}
}

func TestLoadConfigDotEnv(t *testing.T) {
	newTestCLI(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ".env"), "GLYPHTOOLS_MONGO_DATABASE=fromdotenv\n")
	t.Chdir(dir)
	t.Cleanup(func() { os.Unsetenv("GLYPHTOOLS_MONGO_DATABASE") })

	cfg, err := loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Database != "fromdotenv" {
		t.Errorf("Database = %q, want the .env value", cfg.Server.Database)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	newTestCLI(t)
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		env  string
	}{
		{"missing explicit file", filepath.Join(dir, "missing.toml"), ""},
		{"bad toml", writeFile(t, filepath.Join(dir, "bad.toml"), "title = "), ""},
		{"unknown key", writeFile(t, filepath.Join(dir, "unknown.toml"), "colour = \"red\"\n"), ""},
		{"bad bool env", "", "maybe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.env != "" {
				t.Setenv("GLYPHTOOLS_DISABLE_FF_VERSION_CHECK", tt.env)
			}
			if _, err := loadConfig(tt.path); !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("error = %v, want invalid input", err)
			}
		})
	}
}

func TestConfigCommands(t *testing.T) {
	c := newTestCLI(t)

	root := c.RootCommand()
	root.SetArgs([]string{"config", "init"})
	if err := root.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	def, _ := defaultConfigPath()
	if _, err := os.Stat(def); err != nil {
		t.Fatalf("config init did not write %s: %v", def, err)
	}

	root = c.RootCommand()
	root.SetArgs([]string{"config", "init"})
	if err := root.Execute(); err == nil {
		t.Error("second config init should refuse to overwrite")
	}

	writeFile(t, def, "title = \"Configured\"\n")
	var out bytes.Buffer
	c.Out = &out
	root = c.RootCommand()
	root.SetArgs([]string{"config", "show"})
	if err := root.Execute(); err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out.String(), `title = "Configured"`) {
		t.Errorf("config show output:\n%s", out.String())
	}
}
