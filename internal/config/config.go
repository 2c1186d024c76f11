// Package config provides configuration loading for modelguard.
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Environment variables (MODELGUARD_*)
//  2. Config file (.modelguard/config.yml, or the file passed via --config)
//  3. Built-in defaults
//
// Environment Variable Convention:
//   - Prefix: MODELGUARD_
//   - Nested fields: use underscores (MODELGUARD_HOST_DEBOUNCE_MS)
//   - Lists: comma separated (MODELGUARD_CHECK_MODEL_METHODS=find,create)
package config

import (
	"time"

	"github.com/mvp-joe/modelguard/internal/scan"
)

// Config represents the complete modelguard configuration.
type Config struct {
	Check CheckConfig `yaml:"check" mapstructure:"check"`
	Host  HostConfig  `yaml:"host" mapstructure:"host"`
	Paths PathsConfig `yaml:"paths" mapstructure:"paths"`
}

// CheckConfig controls how the scanner matches model usage.
type CheckConfig struct {
	Mode              string   `yaml:"mode" mapstructure:"mode"`                             // "allowlist" or "open"
	Binder            string   `yaml:"binder" mapstructure:"binder"`                         // "line" or "ast"
	ModelMethods      []string `yaml:"model_methods" mapstructure:"model_methods"`           // allowlist mode method names
	BuiltinExclusions []string `yaml:"builtin_exclusions" mapstructure:"builtin_exclusions"` // open mode global names to skip
	Severity          string   `yaml:"severity" mapstructure:"severity"`                     // "error", "warning" or "info"
}

// HostConfig holds the policies the host applies around the scanner.
type HostConfig struct {
	CheckOnChange    bool  `yaml:"check_on_change" mapstructure:"check_on_change"`         // rescan on file changes in watch mode
	DebounceMs       int   `yaml:"debounce_ms" mapstructure:"debounce_ms"`                 // quiet period before a change-driven rescan
	SkipLargeFiles   bool  `yaml:"skip_large_files" mapstructure:"skip_large_files"`       // enable the size gate
	MaxFileSizeBytes int64 `yaml:"max_file_size_bytes" mapstructure:"max_file_size_bytes"` // size gate threshold
	Workers          int   `yaml:"workers" mapstructure:"workers"`                         // concurrent file checks
}

// PathsConfig defines which files to check and which to ignore.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for source files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to ignore
}

const (
	BinderLine = "line"
	BinderAST  = "ast"
)

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Check: CheckConfig{
			Mode:              string(scan.ModeAllowlist),
			Binder:            BinderLine,
			ModelMethods:      append([]string(nil), scan.DefaultModelMethods...),
			BuiltinExclusions: append([]string(nil), scan.DefaultBuiltinExclusions...),
			Severity:          string(scan.SeverityWarning),
		},
		Host: HostConfig{
			CheckOnChange:    true,
			DebounceMs:       500,
			SkipLargeFiles:   true,
			MaxFileSizeBytes: 100000,
			Workers:          8,
		},
		Paths: PathsConfig{
			Include: []string{
				"**/*.js",
				"**/*.jsx",
				"**/*.mjs",
				"**/*.cjs",
				"**/*.ts",
				"**/*.tsx",
			},
			Ignore: []string{
				"node_modules/**",
				".git/**",
				"dist/**",
				"build/**",
				"coverage/**",
				".next/**",
				"**/*.min.js",
				"**/*.d.ts",
			},
		},
	}
}

// ScanOptions converts the check section into scanner options. The binder is
// left unset; callers pick it from Check.Binder.
func (c *Config) ScanOptions() scan.Options {
	return scan.Options{
		Mode:              scan.Mode(c.Check.Mode),
		ModelMethods:      append([]string(nil), c.Check.ModelMethods...),
		BuiltinExclusions: append([]string(nil), c.Check.BuiltinExclusions...),
		Severity:          scan.Severity(c.Check.Severity),
	}
}

// Debounce returns the change debounce as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Host.DebounceMs) * time.Millisecond
}

// SourceExtensions extracts unique file extensions from the include patterns.
// Returns extensions with leading dot (e.g., []string{".js", ".ts"}).
func (c *Config) SourceExtensions() []string {
	seen := make(map[string]bool)
	extensions := make([]string, 0, len(c.Paths.Include))
	for _, pattern := range c.Paths.Include {
		ext := extractExtension(pattern)
		if ext == "" || seen[ext] {
			continue
		}
		seen[ext] = true
		extensions = append(extensions, ext)
	}
	return extensions
}

// extractExtension extracts the file extension from a glob pattern.
// Returns empty string if pattern doesn't match a simple extension pattern.
// Examples: "**/*.js" -> ".js", "*.ts" -> ".ts", "src/**/*.tsx" -> ".tsx"
func extractExtension(pattern string) string {
	for i := len(pattern) - 1; i >= 1; i-- {
		if pattern[i] == '.' && pattern[i-1] == '*' {
			return pattern[i:]
		}
	}
	return ""
}
