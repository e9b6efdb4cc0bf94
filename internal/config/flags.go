package config

import "github.com/spf13/pflag"

// Flag names registered by BindFlags.
const (
	flagConfig         = "config"
	flagDebug          = "debug"
	flagLogFile        = "log-file"
	flagTextures       = "textures"
	flagTexturePattern = "texture-pattern"
	flagWaterLevel     = "water-level"
	flagFormat         = "format"
	flagScale          = "scale"
)

// BindFlags registers the config override flags on fs.
func BindFlags(fs *pflag.FlagSet) {
	fs.String(flagConfig, "", "Path to config file")
	fs.Bool(flagDebug, false, "Enable debug logging")
	fs.String(flagLogFile, "", "Also write logs to this file")
	fs.String(flagTextures, "", "Directory containing terrain textures")
	fs.String(flagTexturePattern, "", `Texture file name pattern, e.g. "terrain%d.jpg"`)
	fs.Int32(flagWaterLevel, 0, "Water level in raw height units")
	fs.String(flagFormat, "", "Image format: png or webp (default: from output extension)")
	fs.Int(flagScale, 0, "Integer upscale factor for image export")
}

// ConfigPath returns the explicit config path if provided via --config.
func ConfigPath(fs *pflag.FlagSet) string {
	if fs == nil || fs.Lookup(flagConfig) == nil {
		return ""
	}
	path, _ := fs.GetString(flagConfig)
	return path
}

// applyFlags applies flags that were set on the command line.
func applyFlags(cfg *Config, fs *pflag.FlagSet) error {
	var err error
	changed := func(name string) bool {
		return err == nil && fs.Lookup(name) != nil && fs.Changed(name)
	}

	if changed(flagDebug) {
		var debug bool
		if debug, err = fs.GetBool(flagDebug); debug {
			cfg.Logging.Level = "debug"
		}
	}
	if changed(flagLogFile) {
		cfg.Logging.LogFile, err = fs.GetString(flagLogFile)
	}
	if changed(flagTextures) {
		cfg.Textures.Dir, err = fs.GetString(flagTextures)
	}
	if changed(flagTexturePattern) {
		cfg.Textures.Pattern, err = fs.GetString(flagTexturePattern)
	}
	if changed(flagWaterLevel) {
		cfg.Image.WaterLevel, err = fs.GetInt32(flagWaterLevel)
	}
	if changed(flagFormat) {
		cfg.Image.Format, err = fs.GetString(flagFormat)
	}
	if changed(flagScale) {
		cfg.Image.Scale, err = fs.GetInt(flagScale)
	}
	return err
}
