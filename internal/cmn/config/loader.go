package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dagucloud/txtwriter/internal/cmn/fileutil"
	"github.com/spf13/viper"
)

// ConfigLoader reads and merges configuration from a config file and the
// environment.
type ConfigLoader struct {
	v          *viper.Viper
	configFile string
	warnings   []string
}

// ConfigLoaderOption defines a functional option for configuring a ConfigLoader.
type ConfigLoaderOption func(*ConfigLoader)

// WithConfigFile sets an explicit config file. When unset the loader looks
// for config.yaml in the user config directory and the working directory.
func WithConfigFile(file string) ConfigLoaderOption {
	return func(l *ConfigLoader) {
		l.configFile = file
	}
}

// NewConfigLoader creates a ConfigLoader with the given viper instance and options.
func NewConfigLoader(v *viper.Viper, options ...ConfigLoaderOption) *ConfigLoader {
	loader := &ConfigLoader{v: v}
	for _, opt := range options {
		opt(loader)
	}
	return loader
}

// Load is a shortcut for NewConfigLoader(viper.New(), opts...).Load().
func Load(opts ...ConfigLoaderOption) (*Config, error) {
	return NewConfigLoader(viper.New(), opts...).Load()
}

// Load reads the config file, applies defaults and environment overrides,
// and returns a validated Config instance.
func (l *ConfigLoader) Load() (*Config, error) {
	l.setupViper()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var def Definition
	if err := l.v.Unmarshal(&def); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg, err := l.buildConfig(def)
	if err != nil {
		return nil, fmt.Errorf("failed to build config: %w", err)
	}
	cfg.Paths.ConfigFileUsed = l.v.ConfigFileUsed()
	cfg.Warnings = l.warnings

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *ConfigLoader) setupViper() {
	if l.configFile != "" {
		l.v.SetConfigFile(l.configFile)
	} else {
		l.v.SetConfigName("config")
		l.v.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			l.v.AddConfigPath(filepath.Join(home, ".config", AppSlug))
		}
		l.v.AddConfigPath(".")
	}

	l.v.SetEnvPrefix(strings.ToUpper(AppSlug))
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	l.v.AutomaticEnv()

	l.v.SetDefault("debug", false)
	l.v.SetDefault("log_format", "text")
	l.v.SetDefault("log_file", "")
	l.v.SetDefault("quiet", false)
	l.v.SetDefault("tasks", 1)
	l.v.SetDefault("base_config", "")
	l.v.SetDefault("dirty_file", "")
	l.v.SetDefault("metrics_textfile", "")
}

func (l *ConfigLoader) buildConfig(def Definition) (*Config, error) {
	cfg := &Config{
		Core: Core{
			Debug:     def.Debug,
			LogFormat: strings.ToLower(strings.TrimSpace(def.LogFormat)),
			Quiet:     def.Quiet,
			Tasks:     def.Tasks,
		},
	}

	paths := []struct {
		name  string
		value string
		dst   *string
	}{
		{"log file", def.LogFile, &cfg.Paths.LogFile},
		{"base config", def.BaseConfig, &cfg.Paths.BaseConfig},
		{"dirty file", def.DirtyFile, &cfg.Paths.DirtyFile},
		{"metrics textfile", def.MetricsTextfile, &cfg.Paths.MetricsTextfile},
	}
	for _, p := range paths {
		resolved, err := fileutil.ResolvePath(p.value)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s path: %w", p.name, err)
		}
		*p.dst = resolved
	}

	if cfg.Paths.BaseConfig != "" && !fileutil.FileExists(cfg.Paths.BaseConfig) {
		l.warnings = append(l.warnings, fmt.Sprintf("Base config %s does not exist, ignoring it", cfg.Paths.BaseConfig))
		cfg.Paths.BaseConfig = ""
	}
	return cfg, nil
}
