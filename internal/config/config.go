// Package config defines the application configuration and its
// loading from files, environment variables and flags.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/polmat77/classreviewmaster/internal/batch"
	"github.com/polmat77/classreviewmaster/internal/layout"
	"github.com/polmat77/classreviewmaster/internal/pipeline"
)

// Config represents the complete configuration for the application.
// It covers all commands (analyze, batch, serve, template) and
// supports loading from configuration files, environment variables
// and command-line flags.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Extraction ExtractionConfig `mapstructure:"extraction" yaml:"extraction" json:"extraction"`
	Output     OutputConfig     `mapstructure:"output" yaml:"output" json:"output"`
	Server     ServerConfig     `mapstructure:"server" yaml:"server" json:"server"`
	Batch      BatchConfig      `mapstructure:"batch" yaml:"batch" json:"batch"`
}

// ExtractionConfig contains document analysis settings.
type ExtractionConfig struct {
	// ClusterTolerance is the vertical merge distance in points.
	ClusterTolerance float64 `mapstructure:"cluster_tolerance" yaml:"cluster_tolerance" json:"cluster_tolerance"`

	// Shape forces a structural interpretation: auto, tabular, prose.
	Shape string `mapstructure:"shape" yaml:"shape" json:"shape"`

	// TemplateFile is an optional mapping template applied instead of
	// heuristic detection.
	TemplateFile string `mapstructure:"template_file" yaml:"template_file" json:"template_file"`

	// TimeoutSec bounds per-document processing; zero disables.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`

	// SampleFallback substitutes a placeholder dataset on failure.
	SampleFallback bool `mapstructure:"sample_fallback" yaml:"sample_fallback" json:"sample_fallback"`
}

// OutputConfig contains output formatting settings.
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format" json:"format"`
	File   string `mapstructure:"file" yaml:"file" json:"file"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host            string `mapstructure:"host" yaml:"host" json:"host"`
	Port            int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec      int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// BatchConfig contains batch processing settings.
type BatchConfig struct {
	Workers         int      `mapstructure:"workers" yaml:"workers" json:"workers"`
	Recursive       bool     `mapstructure:"recursive" yaml:"recursive" json:"recursive"`
	Merge           bool     `mapstructure:"merge" yaml:"merge" json:"merge"`
	IncludePatterns []string `mapstructure:"include_patterns" yaml:"include_patterns" json:"include_patterns"`
	ExcludePatterns []string `mapstructure:"exclude_patterns" yaml:"exclude_patterns" json:"exclude_patterns"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Extraction: ExtractionConfig{
			ClusterTolerance: layout.DefaultTolerance,
			Shape:            "auto",
			TimeoutSec:       60,
			SampleFallback:   false,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8080,
			CORSOrigin:      "*",
			MaxUploadMB:     50,
			TimeoutSec:      30,
			ShutdownTimeout: 10,
		},
		Batch: BatchConfig{
			Workers: pipeline.DefaultParallelConfig().Workers,
			Merge:   true,
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

	validFormats := []string{"text", "json", "csv", "xlsx"}
	if c.Output.Format != "" && !contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output format: %s (must be one of: %s)",
			c.Output.Format, strings.Join(validFormats, ", "))
	}

	if _, err := pipeline.ParseShape(c.Extraction.Shape); err != nil {
		return err
	}
	if c.Extraction.ClusterTolerance <= 0 {
		return fmt.Errorf("invalid cluster tolerance: %v (must be positive)", c.Extraction.ClusterTolerance)
	}
	if c.Extraction.TimeoutSec < 0 {
		return fmt.Errorf("invalid extraction timeout: %d (must not be negative)", c.Extraction.TimeoutSec)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec <= 0 {
		return fmt.Errorf("invalid server timeout: %d (must be positive)", c.Server.TimeoutSec)
	}

	if c.Batch.Workers <= 0 {
		return fmt.Errorf("invalid batch workers: %d (must be positive)", c.Batch.Workers)
	}

	return nil
}

// ToPipelineBuilder translates the config into a pipeline builder.
func (c *Config) ToPipelineBuilder() *pipeline.Builder {
	shape, _ := pipeline.ParseShape(c.Extraction.Shape)
	return pipeline.NewBuilder().
		WithShape(shape).
		WithClusterTolerance(c.Extraction.ClusterTolerance).
		WithTimeout(time.Duration(c.Extraction.TimeoutSec) * time.Second).
		WithSampleFallback(c.Extraction.SampleFallback)
}

// ToBatchConfig translates the config into a batch config.
func (c *Config) ToBatchConfig() *batch.Config {
	cfg := batch.DefaultConfig()
	cfg.Shape = c.Extraction.Shape
	cfg.TemplateFile = c.Extraction.TemplateFile
	cfg.ClusterTolerance = c.Extraction.ClusterTolerance
	cfg.Timeout = time.Duration(c.Extraction.TimeoutSec) * time.Second
	cfg.SampleFallback = c.Extraction.SampleFallback
	cfg.Merge = c.Batch.Merge
	cfg.Workers = c.Batch.Workers
	cfg.Recursive = c.Batch.Recursive
	cfg.IncludePatterns = c.Batch.IncludePatterns
	cfg.ExcludePatterns = c.Batch.ExcludePatterns
	cfg.Format = c.Output.Format
	cfg.OutputFile = c.Output.File
	return cfg
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
