package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mvp-joe/modelguard/internal/scan"
)

var (
	// ErrInvalidMode indicates an unsupported check mode
	ErrInvalidMode = errors.New("invalid check mode")

	// ErrInvalidBinder indicates an unsupported binder
	ErrInvalidBinder = errors.New("invalid binder")

	// ErrInvalidSeverity indicates an unsupported finding severity
	ErrInvalidSeverity = errors.New("invalid severity")

	// ErrInvalidFileSize indicates an invalid size gate threshold
	ErrInvalidFileSize = errors.New("invalid max file size")

	// ErrInvalidDebounce indicates a negative debounce interval
	ErrInvalidDebounce = errors.New("invalid debounce")

	// ErrInvalidWorkers indicates a non-positive worker count
	ErrInvalidWorkers = errors.New("invalid worker count")

	// ErrEmptyInclude indicates no include patterns were configured
	ErrEmptyInclude = errors.New("empty include patterns")
)

// Validate checks that the configuration is valid and complete.
func Validate(cfg *Config) error {
	var errs []error

	// Validate check configuration
	if err := validateCheck(&cfg.Check); err != nil {
		errs = append(errs, err)
	}

	// Validate host configuration
	if err := validateHost(&cfg.Host); err != nil {
		errs = append(errs, err)
	}

	// Validate paths configuration
	if err := validatePaths(&cfg.Paths); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateCheck(cfg *CheckConfig) error {
	var errs []error

	// An empty allowlist is valid: it simply matches nothing.
	mode := scan.Mode(strings.ToLower(cfg.Mode))
	if mode != scan.ModeAllowlist && mode != scan.ModeOpen {
		errs = append(errs, fmt.Errorf("%w: must be 'allowlist' or 'open', got '%s'", ErrInvalidMode, cfg.Mode))
	} else {
		cfg.Mode = string(mode)
	}

	binder := strings.ToLower(cfg.Binder)
	switch binder {
	case "":
		cfg.Binder = BinderLine
	case BinderLine, BinderAST:
		cfg.Binder = binder
	default:
		errs = append(errs, fmt.Errorf("%w: must be 'line' or 'ast', got '%s'", ErrInvalidBinder, cfg.Binder))
	}

	if severity, err := scan.ParseSeverity(cfg.Severity); err != nil {
		errs = append(errs, fmt.Errorf("%w: must be 'error', 'warning' or 'info', got '%s'", ErrInvalidSeverity, cfg.Severity))
	} else {
		cfg.Severity = string(severity)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateHost(cfg *HostConfig) error {
	var errs []error

	if cfg.SkipLargeFiles && cfg.MaxFileSizeBytes <= 0 {
		errs = append(errs, fmt.Errorf("%w: max_file_size_bytes must be positive, got %d", ErrInvalidFileSize, cfg.MaxFileSizeBytes))
	}

	if cfg.DebounceMs < 0 {
		errs = append(errs, fmt.Errorf("%w: debounce_ms cannot be negative, got %d", ErrInvalidDebounce, cfg.DebounceMs))
	}

	if cfg.Workers <= 0 {
		errs = append(errs, fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidWorkers, cfg.Workers))
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validatePaths(cfg *PathsConfig) error {
	// Ignore can be empty; include cannot or discovery finds nothing.
	if len(cfg.Include) == 0 {
		return fmt.Errorf("%w: at least one include pattern required", ErrEmptyInclude)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
