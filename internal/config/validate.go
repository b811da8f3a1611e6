package config

import (
	"fmt"
	"log/slog"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// Validate checks the config and returns all problems found. Zero-values
// that would break the capture loop are clamped to safe defaults; the
// remaining findings are logged as warnings but do not prevent startup,
// except an empty or unparseable palette, which is returned as-is for the
// caller to treat as fatal.
func (c *Config) Validate() []error {
	var errs []error

	if c.DisplayIndex < 0 {
		errs = append(errs, fmt.Errorf("display_index %d is negative, clamping to 0", c.DisplayIndex))
		c.DisplayIndex = 0
	}

	if c.RegionWidth < 1 {
		errs = append(errs, fmt.Errorf("region_width %d is below minimum 1, clamping", c.RegionWidth))
		c.RegionWidth = 1
	} else if c.RegionWidth > 4096 {
		errs = append(errs, fmt.Errorf("region_width %d exceeds maximum 4096, clamping", c.RegionWidth))
		c.RegionWidth = 4096
	}

	if c.RegionHeight < 1 {
		errs = append(errs, fmt.Errorf("region_height %d is below minimum 1, clamping", c.RegionHeight))
		c.RegionHeight = 1
	} else if c.RegionHeight > 4096 {
		errs = append(errs, fmt.Errorf("region_height %d exceeds maximum 4096, clamping", c.RegionHeight))
		c.RegionHeight = 4096
	}

	if c.Tolerance < 0 {
		errs = append(errs, fmt.Errorf("tolerance %v is negative, clamping to 0", c.Tolerance))
		c.Tolerance = 0
	}

	if len(c.TargetColors) == 0 {
		errs = append(errs, fmt.Errorf("target_colors is empty"))
	} else if _, err := c.Palette(); err != nil {
		errs = append(errs, err)
	}

	if c.AcquireTimeoutMs < 1 {
		errs = append(errs, fmt.Errorf("acquire_timeout_ms %d is below minimum 1, clamping", c.AcquireTimeoutMs))
		c.AcquireTimeoutMs = 1
	} else if c.AcquireTimeoutMs > 10000 {
		errs = append(errs, fmt.Errorf("acquire_timeout_ms %d exceeds maximum 10000, clamping", c.AcquireTimeoutMs))
		c.AcquireTimeoutMs = 10000
	}

	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("max_attempts %d is below minimum 1, clamping", c.MaxAttempts))
		c.MaxAttempts = 1
	} else if c.MaxAttempts > 100 {
		errs = append(errs, fmt.Errorf("max_attempts %d exceeds maximum 100, clamping", c.MaxAttempts))
		c.MaxAttempts = 100
	}

	if c.NoFrameBackoffMs < 0 {
		errs = append(errs, fmt.Errorf("no_frame_backoff_ms %d is negative, clamping to 0", c.NoFrameBackoffMs))
		c.NoFrameBackoffMs = 0
	}
	if c.ErrorBackoffMs < 0 {
		errs = append(errs, fmt.Errorf("error_backoff_ms %d is negative, clamping to 0", c.ErrorBackoffMs))
		c.ErrorBackoffMs = 0
	}

	if c.LogLevel != "" && !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Errorf("log_level %q is not valid (use debug, info, warn, error)", c.LogLevel))
	}

	if c.LogFormat != "" && c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format %q is not valid (use text or json)", c.LogFormat))
	}

	for _, err := range errs {
		slog.Warn("config validation", "error", err)
	}

	return errs
}
