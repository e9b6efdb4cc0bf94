package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func newFlagSet(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return fs
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "elevtool.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
	if cfg.Textures.Pattern != "terrain%d.jpg" {
		t.Errorf("expected pattern terrain%%d.jpg, got %s", cfg.Textures.Pattern)
	}
	if cfg.Textures.MaxID != 1023 {
		t.Errorf("expected max id 1023, got %d", cfg.Textures.MaxID)
	}
	if cfg.Image.WaterLevel != 0 {
		t.Errorf("expected water level 0, got %d", cfg.Image.WaterLevel)
	}
	if cfg.Image.Scale != 1 {
		t.Errorf("expected scale 1, got %d", cfg.Image.Scale)
	}
	if !cfg.Mesh.MaterialLibrary {
		t.Error("expected material library on by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := writeConfig(t, `
logging:
  level: "debug"
  log_file: "elevtool.log"

textures:
  dir: "/srv/aw/textures"
  pattern: "terrain%d.png"
  max_id: 255

image:
  water_level: 1850
  format: webp
  scale: 2

mesh:
  material_library: false
`)

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "elevtool.log" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}
	if cfg.Textures.Dir != "/srv/aw/textures" || cfg.Textures.Pattern != "terrain%d.png" || cfg.Textures.MaxID != 255 {
		t.Errorf("unexpected texture config %+v", cfg.Textures)
	}
	if cfg.Image.WaterLevel != 1850 || cfg.Image.Format != FormatWebP || cfg.Image.Scale != 2 {
		t.Errorf("unexpected image config %+v", cfg.Image)
	}
	if cfg.Mesh.MaterialLibrary {
		t.Error("expected material library disabled")
	}
}

func TestLoadFromFilePartial(t *testing.T) {
	configPath := writeConfig(t, "image:\n  water_level: 1900\n")

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Image.WaterLevel != 1900 {
		t.Errorf("expected water level 1900, got %d", cfg.Image.WaterLevel)
	}
	// Untouched sections keep defaults
	if cfg.Textures.Pattern != "terrain%d.jpg" || cfg.Image.Scale != 1 {
		t.Errorf("defaults were lost: %+v", cfg)
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, writeConfig(t, "")); err != nil {
		t.Fatalf("empty config should load: %v", err)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tests := map[string]string{
		"bad type":    "image:\n  scale: not a number\n",
		"bad syntax":  "image:\n  scale: 2\n  invalid syntax here\n",
		"unknown key": "graphics:\n  width: 800\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			if err := loadFromFile(cfg, writeConfig(t, content)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/elevtool.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "elevtool.yaml")

	cfg := Default()
	cfg.Textures.Dir = "/tmp/textures"
	cfg.Image.WaterLevel = -50
	cfg.Image.Format = FormatPNG

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("loaded config %+v differs from saved %+v", loaded, cfg)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !strings.Contains(dir, "elevtool") {
		t.Errorf("ConfigDir should be elevtool specific, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv("HOME", tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "elevtool.yaml"), []byte("image:\n  scale: 3\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path := findConfigFile(); path == "" {
		t.Error("expected to find elevtool.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(*testing.T, *Config)
	}{
		{
			name: "debug flag",
			args: []string{"--debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "debug false keeps level",
			args: []string{"--debug=false"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "info" {
					t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "texture flags",
			args: []string{"--textures", "/data/tex", "--texture-pattern", "t%d.bmp"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Textures.Dir != "/data/tex" || cfg.Textures.Pattern != "t%d.bmp" {
					t.Errorf("unexpected texture config %+v", cfg.Textures)
				}
			},
		},
		{
			name: "image flags",
			args: []string{"--water-level", "-20", "--format", "webp", "--scale", "4", "--log-file", "x.log"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Image.WaterLevel != -20 || cfg.Image.Format != "webp" || cfg.Image.Scale != 4 {
					t.Errorf("unexpected image config %+v", cfg.Image)
				}
				if cfg.Logging.LogFile != "x.log" {
					t.Errorf("expected log file x.log, got %s", cfg.Logging.LogFile)
				}
			},
		},
		{
			name: "unset flags change nothing",
			args: nil,
			verify: func(t *testing.T, cfg *Config) {
				if *cfg != *Default() {
					t.Errorf("expected defaults, got %+v", cfg)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			if err := applyFlags(cfg, newFlagSet(t, tt.args...)); err != nil {
				t.Fatalf("applyFlags failed: %v", err)
			}
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := writeConfig(t, `
image:
  water_level: 1000
  scale: 2
`)

	cfg, err := Load(newFlagSet(t, "--config", configPath, "--water-level", "1850"))
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Water level from flag, not file
	if cfg.Image.WaterLevel != 1850 {
		t.Errorf("expected water level 1850 from flag, got %d", cfg.Image.WaterLevel)
	}
	// Scale from file since no flag override
	if cfg.Image.Scale != 2 {
		t.Errorf("expected scale 2 from file, got %d", cfg.Image.Scale)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	configPath := writeConfig(t, "image:\n  format: gif\n")
	if _, err := Load(newFlagSet(t, "--config", configPath)); err == nil {
		t.Error("expected validation error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"pattern without verb", func(c *Config) { c.Textures.Pattern = "terrain.jpg" }},
		{"negative max id", func(c *Config) { c.Textures.MaxID = -1 }},
		{"unknown format", func(c *Config) { c.Image.Format = "gif" }},
		{"zero scale", func(c *Config) { c.Image.Scale = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
