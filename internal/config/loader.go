package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ConfigDirName is the per-project configuration directory.
const ConfigDirName = ".modelguard"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a new configuration loader for the given root directory.
// It looks for .modelguard/config.yml (or .yaml) under rootDir.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

// NewFileLoader creates a loader that reads an explicit config file.
// A missing explicit file is an error.
func NewFileLoader(path string) Loader {
	return &loader{configFile: path}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (MODELGUARD_*)
// 2. Config file
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(l.rootDir, ConfigDirName))
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("MODELGUARD")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., MODELGUARD_CHECK_MODE)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Check configuration
	v.BindEnv("check.mode")
	v.BindEnv("check.binder")
	v.BindEnv("check.model_methods")
	v.BindEnv("check.builtin_exclusions")
	v.BindEnv("check.severity")

	// Host configuration
	v.BindEnv("host.check_on_change")
	v.BindEnv("host.debounce_ms")
	v.BindEnv("host.skip_large_files")
	v.BindEnv("host.max_file_size_bytes")
	v.BindEnv("host.workers")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable when searching - we'll use defaults + env vars
		var notFound viper.ConfigFileNotFoundError
		if l.configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("check.mode", defaults.Check.Mode)
	v.SetDefault("check.binder", defaults.Check.Binder)
	v.SetDefault("check.model_methods", defaults.Check.ModelMethods)
	v.SetDefault("check.builtin_exclusions", defaults.Check.BuiltinExclusions)
	v.SetDefault("check.severity", defaults.Check.Severity)

	v.SetDefault("host.check_on_change", defaults.Host.CheckOnChange)
	v.SetDefault("host.debounce_ms", defaults.Host.DebounceMs)
	v.SetDefault("host.skip_large_files", defaults.Host.SkipLargeFiles)
	v.SetDefault("host.max_file_size_bytes", defaults.Host.MaxFileSizeBytes)
	v.SetDefault("host.workers", defaults.Host.Workers)

	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)
}
