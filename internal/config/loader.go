package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "docpipe"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "DOCPIPE"
)

// Loader handles loading configuration from files, environment
// variables and defaults.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader. It uses the global
// viper instance so cobra flag bindings resolve against the same state.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// Load loads configuration from files, environment variables, and sets
// defaults. The result is validated.
func (l *Loader) Load() (*Config, error) {
	l.v.SetConfigName(ConfigFileName)
	l.v.SetConfigType("yaml")
	l.addConfigPaths()
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults and env vars apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

// LoadWithFile loads configuration from a specific file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}

	l.v.SetConfigFile(configFile)
	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
	}

	var config Config
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &config, nil
}

// Set sets a value in the configuration.
func (l *Loader) Set(key string, value interface{}) {
	l.v.Set(key, value)
}

// GetConfigFileUsed returns the path of the config file used.
func (l *Loader) GetConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// GetViper returns the underlying viper instance for advanced usage.
func (l *Loader) GetViper() *viper.Viper {
	return l.v
}

// addConfigPaths adds the standard configuration search paths.
func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")

	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(home)
	}

	l.v.AddConfigPath("/etc/docpipe")

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		l.v.AddConfigPath(filepath.Join(configDir, "docpipe"))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "docpipe"))
	}
}

// setupEnvironmentVariables configures environment variable handling.
func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
}

// setDefaults sets default values for all configuration options.
func (l *Loader) setDefaults() {
	defaults := DefaultConfig()

	l.v.SetDefault("log_level", defaults.LogLevel)
	l.v.SetDefault("verbose", defaults.Verbose)
	l.v.SetDefault("allowed_formats", defaults.AllowedFormats)

	l.v.SetDefault("convert.raise_on_error", defaults.Convert.RaiseOnError)
	l.v.SetDefault("convert.batch_size", defaults.Convert.BatchSize)
	l.v.SetDefault("convert.batch_concurrency", defaults.Convert.BatchConcurrency)
	l.v.SetDefault("convert.max_pages", defaults.Convert.MaxPages)
	l.v.SetDefault("convert.max_file_size_mb", defaults.Convert.MaxFileSizeMB)
	l.v.SetDefault("convert.page_start", defaults.Convert.PageStart)
	l.v.SetDefault("convert.page_end", defaults.Convert.PageEnd)

	l.v.SetDefault("pipeline.ocr.enabled", defaults.Pipeline.OCR.Enabled)
	l.v.SetDefault("pipeline.ocr.languages", defaults.Pipeline.OCR.Languages)
	l.v.SetDefault("pipeline.ocr.data_path", defaults.Pipeline.OCR.DataPath)
	l.v.SetDefault("pipeline.ocr.full_page", defaults.Pipeline.OCR.FullPage)
	l.v.SetDefault("pipeline.ocr.scale", defaults.Pipeline.OCR.Scale)
	l.v.SetDefault("pipeline.table_structure", defaults.Pipeline.TableStructure)
	l.v.SetDefault("pipeline.page_images", defaults.Pipeline.PageImages)
	l.v.SetDefault("pipeline.picture_images", defaults.Pipeline.PictureImages)
	l.v.SetDefault("pipeline.images_scale", defaults.Pipeline.ImagesScale)
	l.v.SetDefault("pipeline.enrich.code", defaults.Pipeline.Enrich.Code)
	l.v.SetDefault("pipeline.enrich.formula", defaults.Pipeline.Enrich.Formula)
	l.v.SetDefault("pipeline.enrich.picture_classification", defaults.Pipeline.Enrich.PictureClassification)
	l.v.SetDefault("pipeline.enrich.picture_description", defaults.Pipeline.Enrich.PictureDescription)

	l.v.SetDefault("output.format", defaults.Output.Format)
	l.v.SetDefault("output.file", defaults.Output.File)

	l.v.SetDefault("batch.output_dir", defaults.Batch.OutputDir)
	l.v.SetDefault("batch.recursive", defaults.Batch.Recursive)
	l.v.SetDefault("batch.pattern", defaults.Batch.Pattern)
	l.v.SetDefault("batch.continue_on_error", defaults.Batch.ContinueOnError)
}

// WriteConfigToFile writes the current configuration to a file.
func (l *Loader) WriteConfigToFile(filename string) error {
	return l.v.WriteConfigAs(filename)
}

// GenerateDefaultConfigFile writes the default configuration as YAML,
// marshaled from the typed config so keys and nesting match what Load
// reads back.
func GenerateDefaultConfigFile(filename string) error {
	if filename == "" {
		filename = "docpipe.yaml"
	}
	defaults := DefaultConfig()
	data, err := yaml.Marshal(&defaults)
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return fmt.Errorf("write config file %s: %w", filename, err)
	}
	return nil
}

// GetConfigSearchPaths returns the paths where configuration files are
// searched.
func GetConfigSearchPaths() []string {
	paths := []string{"."}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home)
		paths = append(paths, filepath.Join(home, ".config", "docpipe"))
	}
	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		paths = append(paths, filepath.Join(configDir, "docpipe"))
	}
	paths = append(paths, "/etc/docpipe")
	return paths
}
