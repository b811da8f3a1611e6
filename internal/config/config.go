package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/pixelscan/pixelscan/internal/colordist"
)

// Config holds every tunable of the scanner. The compiled-in defaults are
// the complete configuration; a pixelscan.yaml or PIXELSCAN_* environment
// overrides are optional.
type Config struct {
	DisplayIndex int `mapstructure:"display_index" yaml:"display_index"`

	// Region of interest, centered on the primary display's midpoint.
	RegionWidth  int `mapstructure:"region_width" yaml:"region_width"`
	RegionHeight int `mapstructure:"region_height" yaml:"region_height"`

	// Target palette as hex colors ("#EA2301"), matched in order, and the
	// shared redmean-distance tolerance.
	TargetColors []string `mapstructure:"target_colors" yaml:"target_colors"`
	Tolerance    float64  `mapstructure:"tolerance" yaml:"tolerance"`

	// Polling loop tuning.
	AcquireTimeoutMs int `mapstructure:"acquire_timeout_ms" yaml:"acquire_timeout_ms"`
	MaxAttempts      int `mapstructure:"max_attempts" yaml:"max_attempts"`
	NoFrameBackoffMs int `mapstructure:"no_frame_backoff_ms" yaml:"no_frame_backoff_ms"`
	ErrorBackoffMs   int `mapstructure:"error_backoff_ms" yaml:"error_backoff_ms"`

	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Default returns the reference configuration: a 40x40 box at screen center,
// the built-in red palette with tolerance 15, 100 ms acquire timeout, five
// attempts, 50/100 ms backoffs.
func Default() *Config {
	return &Config{
		DisplayIndex: 0,
		RegionWidth:  40,
		RegionHeight: 40,
		TargetColors: []string{
			"#EA2301", // 234, 35, 1
			"#DA0901", // 218, 9, 1
			"#E34535", // 227, 69, 53
			"#E34535",
		},
		Tolerance:        15,
		AcquireTimeoutMs: 100,
		MaxAttempts:      5,
		NoFrameBackoffMs: 50,
		ErrorBackoffMs:   100,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// Load reads the optional config file and environment on top of Default.
// A missing file is not an error; the defaults alone are a full config.
func Load(cfgFile string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("pixelscan")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("PIXELSCAN")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Palette parses TargetColors into RGB values, preserving order.
func (c *Config) Palette() ([]colordist.RGB, error) {
	palette := make([]colordist.RGB, 0, len(c.TargetColors))
	for _, s := range c.TargetColors {
		rgb, err := parseHexColor(s)
		if err != nil {
			return nil, err
		}
		palette = append(palette, rgb)
	}
	return palette, nil
}

func parseHexColor(s string) (colordist.RGB, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) != 6 {
		return colordist.RGB{}, fmt.Errorf("color %q: want #RRGGBB", s)
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(h, "%02x%02x%02x", &r, &g, &b); err != nil {
		return colordist.RGB{}, fmt.Errorf("color %q: %w", s, err)
	}
	return colordist.RGB{R: r, G: g, B: b}, nil
}
