package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fjglira/visualtestgen/internal/domain"
)

// Validate checks the Config for required fields and valid values.
func Validate(cfg *Config) error {
	var errs []string

	// Input validation
	switch cfg.Input.Dialect {
	case "naive", "quoted":
	default:
		errs = append(errs, fmt.Sprintf("input.dialect must be one of: naive, quoted (got %q)", cfg.Input.Dialect))
	}
	if utf8.RuneCountInString(cfg.Input.Delimiter) != 1 {
		errs = append(errs, fmt.Sprintf("input.delimiter must be a single character (got %q)", cfg.Input.Delimiter))
	} else if strings.ContainsAny(cfg.Input.Delimiter, "\"\r\n") {
		errs = append(errs, "input.delimiter must not be a quote or line break")
	}

	// Output validation
	switch cfg.Output.Representative {
	case "first", "all", "none":
	default:
		errs = append(errs, fmt.Sprintf("output.representative must be one of: first, all, none (got %q)", cfg.Output.Representative))
	}

	// Environment validation
	if cfg.Environments.ScreenshotRoot == "" {
		errs = append(errs, "environments.screenshot_root must not be empty")
	}
	if cfg.Environments.TimeoutMs <= 0 {
		errs = append(errs, "environments.timeout_ms must be positive")
	}

	// Server validation
	if cfg.Server.Name == "" {
		errs = append(errs, "server.name must not be empty")
	}

	// Validate logging level
	if cfg.Logging.Level != "" {
		validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
		if !validLevels[cfg.Logging.Level] {
			errs = append(errs, fmt.Sprintf("logging.level must be one of: debug, info, warn, error (got %q)", cfg.Logging.Level))
		}
	}

	if len(errs) > 0 {
		return domain.NewError("config", "", 0, fmt.Sprintf("validation failed: %s", strings.Join(errs, "; ")), nil)
	}

	return nil
}
