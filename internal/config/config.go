// Package config provides configuration loading and structs for docintel.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Core   CoreConfig   `yaml:"core"`
	Corpus CorpusConfig `yaml:"corpus"`
	Sink   SinkConfig   `yaml:"sink"`
	Server ServerConfig `yaml:"server"`
	Watch  WatchConfig  `yaml:"watch"`
}

// CoreConfig sizes the pipeline's worker pools and queues and configures the
// canonicalization stage's ambiguous-input policies. Durations are stored as
// human-readable strings ("5s") and parsed on demand by PerDocTimeoutDuration
// and FetchTimeoutDuration, matching the teacher's convention of keeping YAML
// human-editable.
type CoreConfig struct {
	IOWorkers           int    `yaml:"io_workers"`
	CPUWorkers          int    `yaml:"cpu_workers"`
	QueueMaxSize        int    `yaml:"queue_max_size"`
	PerDocTimeout       string `yaml:"per_doc_timeout"`
	MaxBytes            int    `yaml:"max_bytes"`
	AmbiguousDatePolicy string `yaml:"ambiguous_date_policy"`
	FiscalYearAnchor    int    `yaml:"fiscal_year_anchor"`
	FetchTimeout        string `yaml:"fetch_timeout"`
}

// PerDocTimeoutDuration parses PerDocTimeout, defaulting to 5s on a blank or
// unparseable value.
func (c CoreConfig) PerDocTimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(c.PerDocTimeout); err == nil {
		return d
	}
	return 5 * time.Second
}

// FetchTimeoutDuration parses FetchTimeout, defaulting to 10s.
func (c CoreConfig) FetchTimeoutDuration() time.Duration {
	if d, err := time.ParseDuration(c.FetchTimeout); err == nil {
		return d
	}
	return 10 * time.Second
}

// CorpusConfig points at the manifest internal/corpus loads: the gazetteer,
// domain/doc-type keyword weights, and structured-regex seed data that
// internal/control builds into a Bundle.
type CorpusConfig struct {
	ManifestPath string `yaml:"manifest_path"`
}

// SinkConfig configures where S6 (Emit) persists and indexes DocumentRecords.
type SinkConfig struct {
	SQLitePath string `yaml:"sqlite_path"`
	BlevePath  string `yaml:"bleve_path"`
}

// ServerConfig holds the demo HTTP server's listen settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// WatchConfig holds directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true
// when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands paths, and applies
// defaults. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Corpus.ManifestPath = expandPath(cfg.Corpus.ManifestPath, configDir)
	cfg.Sink.SQLitePath = expandPath(cfg.Sink.SQLitePath, configDir)
	cfg.Sink.BlevePath = expandPath(cfg.Sink.BlevePath, configDir)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}

	return &cfg, nil
}

// Save writes the config to path. Used for persisting watch directory
// add/remove from the demo server's admin endpoints.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are
// relative to configDir; other relative paths are relative to the home
// directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
