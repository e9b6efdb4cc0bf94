// Package config handles elevtool configuration loading and management.
package config

import (
	"fmt"
	"strings"

	"github.com/Faultbox/elevmesh/internal/logger"
)

// Config holds all tool settings.
type Config struct {
	Logging  LoggingConfig `yaml:"logging"`
	Textures TextureConfig `yaml:"textures"`
	Image    ImageConfig   `yaml:"image"`
	Mesh     MeshConfig    `yaml:"mesh"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// TextureConfig describes where terrain textures live.
type TextureConfig struct {
	Dir     string `yaml:"dir"`
	Pattern string `yaml:"pattern"` // file name with a %d verb for the id
	MaxID   int    `yaml:"max_id"`
}

// ImageConfig holds flat image export settings.
type ImageConfig struct {
	WaterLevel int32  `yaml:"water_level"`
	Format     string `yaml:"format"` // png, webp, or empty to use the output extension
	Scale      int    `yaml:"scale"`
}

// MeshConfig holds mesh export settings.
type MeshConfig struct {
	MaterialLibrary bool `yaml:"material_library"`
}

// Image formats accepted by ImageConfig.Format.
const (
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Textures: TextureConfig{
			Dir:     "data",
			Pattern: "terrain%d.jpg",
			MaxID:   1023,
		},
		Image: ImageConfig{
			WaterLevel: 0,
			Format:     "",
			Scale:      1,
		},
		Mesh: MeshConfig{
			MaterialLibrary: true,
		},
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	if !strings.Contains(c.Textures.Pattern, "%d") {
		return fmt.Errorf("textures.pattern %q must contain %%d", c.Textures.Pattern)
	}
	if c.Textures.MaxID < 0 {
		return fmt.Errorf("textures.max_id must not be negative, got %d", c.Textures.MaxID)
	}
	switch c.Image.Format {
	case "", FormatPNG, FormatWebP:
	default:
		return fmt.Errorf("image.format %q is not one of png, webp", c.Image.Format)
	}
	if c.Image.Scale < 1 {
		return fmt.Errorf("image.scale must be at least 1, got %d", c.Image.Scale)
	}
	return nil
}
