// Package config provides configuration loading with layered overrides.
// Load order: defaults -> YAML file -> environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	configloader "github.com/GabrielNunesIT/go-libs/config-loader"
	"github.com/adrg/xdg"
)

// AppName is used for the default config location and the env prefix.
const AppName = "access-log-analyzer"

// EnvPrefix is the prefix of environment variable overrides.
const EnvPrefix = "ACCESS_LOG_ANALYZER_"

// Config is the root configuration structure for the analyzer.
type Config struct {
	LogLevel    string            `koanf:"loglevel" yaml:"log_level" json:"log_level"`
	Input       string            `koanf:"input"`
	Pipeline    PipelineConfig    `koanf:"pipeline"`
	Report      ReportConfig      `koanf:"report"`
	Analyses    AnalysesConfig    `koanf:"analyses"`
	Emitters    EmitterConfig     `koanf:"emitters"`
	Diagnostics DiagnosticsConfig `koanf:"diagnostics"`
}

// PipelineConfig controls the pipeline behavior.
type PipelineConfig struct {
	Workers    int `koanf:"workers"`
	BufferSize int `koanf:"buffersize" yaml:"buffer_size" json:"buffer_size"`
}

// ReportConfig selects how reports are rendered.
type ReportConfig struct {
	Format string `koanf:"format"` // "text", "markdown" or "json"
}

// AnalysesConfig holds configuration for all analyses.
type AnalysesConfig struct {
	IPCounts   IPCountsConfig   `koanf:"ipcounts"`
	UniqueIPs  UniqueIPsConfig  `koanf:"uniqueips"`
	IPWindow   IPWindowConfig   `koanf:"ipwindow"`
	UserAgents UserAgentsConfig `koanf:"useragents"`
	Endpoints  EndpointsConfig  `koanf:"endpoints"`
}

// IPCountsConfig configures the per-IP occurrence count.
type IPCountsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// UniqueIPsConfig configures the unique IP listing.
type UniqueIPsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// IPWindowConfig configures the per-IP request window count.
type IPWindowConfig struct {
	Enabled bool          `koanf:"enabled"`
	Window  time.Duration `koanf:"window"`
}

// UserAgentsConfig configures the user-agent classification.
type UserAgentsConfig struct {
	Enabled  bool `koanf:"enabled"`
	Truncate int  `koanf:"truncate"` // max characters of an exact agent string in reports
}

// EndpointsConfig configures the endpoint access count.
type EndpointsConfig struct {
	Enabled bool     `koanf:"enabled"`
	Exclude []string `koanf:"exclude"` // glob patterns matched against normalized paths
}

// EmitterConfig holds configuration for all emitters.
type EmitterConfig struct {
	File          FileEmitterConfig          `koanf:"file"`
	Stdout        StdoutEmitterConfig        `koanf:"stdout"`
	Elasticsearch ElasticsearchEmitterConfig `koanf:"elasticsearch"`
	SQLite        SQLiteEmitterConfig        `koanf:"sqlite"`
}

// FileEmitterConfig configures the report file emitter.
type FileEmitterConfig struct {
	Enabled   bool   `koanf:"enabled"`
	OutputDir string `koanf:"outputdir" yaml:"output_dir" json:"output_dir"`
}

// StdoutEmitterConfig configures the stdout emitter.
type StdoutEmitterConfig struct {
	Enabled bool `koanf:"enabled"`
}

// ElasticsearchEmitterConfig configures the Elasticsearch emitter.
type ElasticsearchEmitterConfig struct {
	Enabled       bool          `koanf:"enabled"`
	Addresses     []string      `koanf:"addresses"`
	Index         string        `koanf:"index"`
	Username      string        `koanf:"username"`
	Password      string        `koanf:"password"`
	FlushInterval time.Duration `koanf:"flushinterval" yaml:"flush_interval" json:"flush_interval"`
}

// SQLiteEmitterConfig configures the SQLite report archive.
type SQLiteEmitterConfig struct {
	Enabled bool   `koanf:"enabled"`
	Path    string `koanf:"path"`
}

// DiagnosticsConfig configures the skipped-line diagnostics file.
type DiagnosticsConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"`
	MaxSizeMB  int    `koanf:"maxsizemb" yaml:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `koanf:"maxbackups" yaml:"max_backups" json:"max_backups"`
	MaxAgeDays int    `koanf:"maxagedays" yaml:"max_age_days" json:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}

// defaults returns the default configuration values.
func defaults() Config {
	return Config{
		LogLevel: "info",
		Pipeline: PipelineConfig{
			Workers:    1,
			BufferSize: 1000,
		},
		Report: ReportConfig{
			Format: "text",
		},
		Analyses: AnalysesConfig{
			IPCounts:  IPCountsConfig{Enabled: true},
			UniqueIPs: UniqueIPsConfig{Enabled: true},
			IPWindow: IPWindowConfig{
				Enabled: true,
				Window:  10 * time.Second,
			},
			UserAgents: UserAgentsConfig{
				Enabled:  true,
				Truncate: 100,
			},
			Endpoints: EndpointsConfig{Enabled: true},
		},
		Emitters: EmitterConfig{
			File: FileEmitterConfig{
				Enabled:   true,
				OutputDir: ".",
			},
			Elasticsearch: ElasticsearchEmitterConfig{
				Index:         "access-log-reports",
				FlushInterval: 5 * time.Second,
			},
			SQLite: SQLiteEmitterConfig{
				Path: "access-log-reports.db",
			},
		},
		Diagnostics: DiagnosticsConfig{
			Enabled:    false,
			Path:       "skipped_lines.log",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 0,
			Compress:   false,
		},
	}
}

// DefaultPaths returns the config files tried when no path is given.
func DefaultPaths() []string {
	return []string{
		"./config.yaml",
		filepath.Join(xdg.ConfigHome, AppName, "config.yaml"),
	}
}

// Load reads configuration from all sources with proper override order.
// Order: defaults -> config file -> environment variables.
func Load(configPath string) (*Config, error) {
	opts := []configloader.Option[Config]{
		configloader.WithDefaults[Config](defaults()),
	}

	if configPath != "" {
		opts = append(opts, configloader.WithFile[Config](configPath))
	} else {
		for _, path := range DefaultPaths() {
			if _, err := os.Stat(path); err == nil {
				opts = append(opts, configloader.WithFile[Config](path))
				break
			}
		}
	}

	opts = append(opts, configloader.WithEnv[Config](EnvPrefix))

	loader := configloader.NewConfigLoader[Config](opts...)
	cfg, err := loader.Load()
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error

	switch strings.ToLower(c.Report.Format) {
	case "text", "markdown", "md", "json":
	default:
		errs = append(errs, fmt.Errorf("report.format: unknown format %q", c.Report.Format))
	}

	if c.Pipeline.Workers < 1 {
		errs = append(errs, fmt.Errorf("pipeline.workers: must be at least 1, got %d", c.Pipeline.Workers))
	}
	if c.Pipeline.BufferSize < 0 {
		errs = append(errs, fmt.Errorf("pipeline.buffersize: must not be negative, got %d", c.Pipeline.BufferSize))
	}

	if c.Analyses.EnabledCount() == 0 {
		errs = append(errs, errors.New("analyses: no analysis enabled"))
	}
	if c.Analyses.IPWindow.Enabled && c.Analyses.IPWindow.Window < 0 {
		errs = append(errs, fmt.Errorf("analyses.ipwindow.window: must not be negative, got %v", c.Analyses.IPWindow.Window))
	}

	if c.Emitters.EnabledCount() == 0 {
		errs = append(errs, errors.New("emitters: no emitter enabled"))
	}
	if c.Emitters.Elasticsearch.Enabled && len(c.Emitters.Elasticsearch.Addresses) == 0 {
		errs = append(errs, errors.New("emitters.elasticsearch.addresses: required when enabled"))
	}
	if c.Emitters.SQLite.Enabled && c.Emitters.SQLite.Path == "" {
		errs = append(errs, errors.New("emitters.sqlite.path: required when enabled"))
	}
	if c.Diagnostics.Enabled && c.Diagnostics.Path == "" {
		errs = append(errs, errors.New("diagnostics.path: required when enabled"))
	}

	return errors.Join(errs...)
}

// EnabledCount returns the number of enabled analyses.
func (a AnalysesConfig) EnabledCount() int {
	n := 0
	for _, on := range []bool{a.IPCounts.Enabled, a.UniqueIPs.Enabled, a.IPWindow.Enabled, a.UserAgents.Enabled, a.Endpoints.Enabled} {
		if on {
			n++
		}
	}
	return n
}

// EnabledCount returns the number of enabled emitters.
func (e EmitterConfig) EnabledCount() int {
	n := 0
	for _, on := range []bool{e.File.Enabled, e.Stdout.Enabled, e.Elasticsearch.Enabled, e.SQLite.Enabled} {
		if on {
			n++
		}
	}
	return n
}
