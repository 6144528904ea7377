package config

import (
	"fmt"
	"strings"

	"github.com/MeKo-Tech/docpipe/internal/converter"
	"github.com/MeKo-Tech/docpipe/internal/document"
	"github.com/MeKo-Tech/docpipe/internal/format"
	"github.com/MeKo-Tech/docpipe/internal/ocr"
	"github.com/MeKo-Tech/docpipe/internal/pipeline"
)

// Config represents the complete configuration for the docpipe
// application. It covers all commands (convert, batch, formats) and
// supports loading from configuration files, environment variables, and
// command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Formats the converter accepts; empty means all known formats.
	AllowedFormats []string `mapstructure:"allowed_formats" yaml:"allowed_formats" json:"allowed_formats"`

	// Conversion engine settings
	Convert ConvertConfig `mapstructure:"convert" yaml:"convert" json:"convert"`

	// Pipeline configuration
	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`

	// Output configuration
	Output OutputConfig `mapstructure:"output" yaml:"output" json:"output"`

	// Batch processing configuration
	Batch BatchConfig `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// ConvertConfig contains conversion engine settings.
type ConvertConfig struct {
	RaiseOnError     bool  `mapstructure:"raise_on_error" yaml:"raise_on_error" json:"raise_on_error"`
	BatchSize        int   `mapstructure:"batch_size" yaml:"batch_size" json:"batch_size"`
	BatchConcurrency int   `mapstructure:"batch_concurrency" yaml:"batch_concurrency" json:"batch_concurrency"`
	MaxPages         int   `mapstructure:"max_pages" yaml:"max_pages" json:"max_pages"`
	MaxFileSizeMB    int64 `mapstructure:"max_file_size_mb" yaml:"max_file_size_mb" json:"max_file_size_mb"`
	PageStart        int   `mapstructure:"page_start" yaml:"page_start" json:"page_start"`
	PageEnd          int   `mapstructure:"page_end" yaml:"page_end" json:"page_end"`
}

// PipelineConfig contains the paginated pipeline settings.
type PipelineConfig struct {
	// OCR settings
	OCR OCRConfig `mapstructure:"ocr" yaml:"ocr" json:"ocr"`

	// Table structure recovery
	TableStructure bool `mapstructure:"table_structure" yaml:"table_structure" json:"table_structure"`

	// Image materialization
	PageImages    bool    `mapstructure:"page_images" yaml:"page_images" json:"page_images"`
	PictureImages bool    `mapstructure:"picture_images" yaml:"picture_images" json:"picture_images"`
	ImagesScale   float64 `mapstructure:"images_scale" yaml:"images_scale" json:"images_scale"`

	// Enrichment toggles
	Enrich EnrichConfig `mapstructure:"enrich" yaml:"enrich" json:"enrich"`
}

// OCRConfig contains OCR engine settings.
type OCRConfig struct {
	Enabled   bool     `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Languages []string `mapstructure:"languages" yaml:"languages" json:"languages"`
	DataPath  string   `mapstructure:"data_path" yaml:"data_path" json:"data_path"`
	FullPage  bool     `mapstructure:"full_page" yaml:"full_page" json:"full_page"`
	Scale     float64  `mapstructure:"scale" yaml:"scale" json:"scale"`
}

// EnrichConfig contains enrichment stage toggles.
type EnrichConfig struct {
	Code                  bool `mapstructure:"code" yaml:"code" json:"code"`
	Formula               bool `mapstructure:"formula" yaml:"formula" json:"formula"`
	PictureClassification bool `mapstructure:"picture_classification" yaml:"picture_classification" json:"picture_classification"`
	PictureDescription    bool `mapstructure:"picture_description" yaml:"picture_description" json:"picture_description"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}

// BatchConfig contains batch command settings.
type BatchConfig struct {
	OutputDir       string `mapstructure:"output_dir" yaml:"output_dir" json:"output_dir"`
	Recursive       bool   `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
	Pattern         string `mapstructure:"pattern" yaml:"pattern" json:"pattern"`
	ContinueOnError bool   `mapstructure:"continue_on_error" yaml:"continue_on_error" json:"continue_on_error"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	ocrDefaults := ocr.DefaultConfig()
	convertDefaults := converter.DefaultConvertOptions()
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Convert: ConvertConfig{
			RaiseOnError:     convertDefaults.RaiseOnError,
			BatchSize:        convertDefaults.BatchSize,
			BatchConcurrency: convertDefaults.BatchConcurrency,
		},
		Pipeline: PipelineConfig{
			OCR: OCRConfig{
				Enabled:   ocrDefaults.Enabled,
				Languages: ocrDefaults.Languages,
				FullPage:  ocrDefaults.FullPage,
				Scale:     ocrDefaults.Scale,
			},
			TableStructure: true,
			ImagesScale:    1.0,
		},
		Output: OutputConfig{
			Format: "markdown",
		},
		Batch: BatchConfig{
			Pattern:         "*",
			ContinueOnError: true,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)",
			c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	validFormats := []string{"text", "json", "markdown"}
	if c.Output.Format != "" && !contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)",
			c.Output.Format, strings.Join(validFormats, ", "))
	}

	for _, f := range c.AllowedFormats {
		if _, err := format.Parse(f); err != nil {
			return fmt.Errorf("invalid allowed format: %w", err)
		}
	}

	if c.Convert.BatchSize < 0 {
		return fmt.Errorf("invalid batch size: %d (must not be negative)", c.Convert.BatchSize)
	}
	if c.Convert.BatchConcurrency < 0 {
		return fmt.Errorf("invalid batch concurrency: %d (must not be negative)", c.Convert.BatchConcurrency)
	}
	if c.Convert.PageStart != 0 && c.Convert.PageEnd != 0 && c.Convert.PageStart > c.Convert.PageEnd {
		return fmt.Errorf("invalid page range: %d-%d", c.Convert.PageStart, c.Convert.PageEnd)
	}
	if c.Pipeline.OCR.Scale < 0 {
		return fmt.Errorf("invalid ocr scale: %f (must not be negative)", c.Pipeline.OCR.Scale)
	}
	if c.Pipeline.ImagesScale < 0 {
		return fmt.Errorf("invalid images scale: %f (must not be negative)", c.Pipeline.ImagesScale)
	}
	return nil
}

// ToConverterConfig converts to the converter configuration, wiring the
// configured pipeline options into every format route.
func (c *Config) ToConverterConfig() (converter.Config, error) {
	cfg := converter.Config{FormatOptions: make(map[format.Format]converter.FormatOption)}
	for _, name := range c.AllowedFormats {
		f, err := format.Parse(name)
		if err != nil {
			return converter.Config{}, err
		}
		cfg.AllowedFormats = append(cfg.AllowedFormats, f)
	}

	paginated := c.ToPaginatedOptions()
	simple := c.ToSimpleOptions()
	for _, f := range format.All() {
		opt := converter.FormatOption{Backend: converter.DefaultBackend(f)}
		if f.Paginated() {
			opt.PipelineName = "paginated"
			opt.New = pipeline.NewPaginated
			opt.Options = paginated
		} else {
			opt.PipelineName = "simple"
			opt.New = pipeline.NewSimple
			opt.Options = simple
		}
		cfg.FormatOptions[f] = opt
	}
	return cfg, nil
}

// ToPaginatedOptions converts to the paginated pipeline options.
func (c *Config) ToPaginatedOptions() pipeline.PaginatedOptions {
	opts := pipeline.DefaultPaginatedOptions()
	opts.OCR = ocr.Config{
		Enabled:   c.Pipeline.OCR.Enabled,
		Languages: c.Pipeline.OCR.Languages,
		DataPath:  c.Pipeline.OCR.DataPath,
		FullPage:  c.Pipeline.OCR.FullPage,
		Scale:     c.Pipeline.OCR.Scale,
	}
	opts.DoTableStructure = c.Pipeline.TableStructure
	opts.GeneratePageImages = c.Pipeline.PageImages
	opts.GeneratePictureImages = c.Pipeline.PictureImages
	opts.ImagesScale = c.Pipeline.ImagesScale
	opts.DoCodeEnrichment = c.Pipeline.Enrich.Code
	opts.DoFormulaEnrichment = c.Pipeline.Enrich.Formula
	opts.DoPictureClassification = c.Pipeline.Enrich.PictureClassification
	opts.DoPictureDescription = c.Pipeline.Enrich.PictureDescription
	return opts
}

// ToSimpleOptions converts to the declarative pipeline options.
func (c *Config) ToSimpleOptions() pipeline.SimpleOptions {
	return pipeline.SimpleOptions{
		DoCodeEnrichment:        c.Pipeline.Enrich.Code,
		DoFormulaEnrichment:     c.Pipeline.Enrich.Formula,
		DoPictureClassification: c.Pipeline.Enrich.PictureClassification,
		DoPictureDescription:    c.Pipeline.Enrich.PictureDescription,
	}
}

// ToConvertOptions converts to the per-call conversion options.
func (c *Config) ToConvertOptions() converter.ConvertOptions {
	opts := converter.DefaultConvertOptions()
	opts.RaiseOnError = c.Convert.RaiseOnError
	if c.Convert.BatchSize > 0 {
		opts.BatchSize = c.Convert.BatchSize
	}
	if c.Convert.BatchConcurrency > 0 {
		opts.BatchConcurrency = c.Convert.BatchConcurrency
	}
	limits := document.DefaultLimits()
	if c.Convert.MaxPages > 0 {
		limits.MaxPages = c.Convert.MaxPages
	}
	if c.Convert.MaxFileSizeMB > 0 {
		limits.MaxFileSize = c.Convert.MaxFileSizeMB * 1024 * 1024
	}
	if c.Convert.PageStart > 0 {
		limits.PageRange.Start = c.Convert.PageStart
	}
	if c.Convert.PageEnd > 0 {
		limits.PageRange.End = c.Convert.PageEnd
	}
	opts.Limits = limits
	return opts
}

// contains checks if a slice contains a string.
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
