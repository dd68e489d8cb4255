package config

// ApplyDefaults sets default values for any zero values in cfg, mirroring
// internal/pipeline.DefaultConfig, internal/ingest.DefaultOptions, and
// internal/normalize.DefaultOptions so a config file only needs to
// override what it wants to change.
func ApplyDefaults(cfg *Config) {
	if cfg.Core.IOWorkers == 0 {
		cfg.Core.IOWorkers = 1
	}
	if cfg.Core.CPUWorkers == 0 {
		cfg.Core.CPUWorkers = 4
	}
	if cfg.Core.QueueMaxSize == 0 {
		cfg.Core.QueueMaxSize = 100
	}
	if cfg.Core.PerDocTimeout == "" {
		cfg.Core.PerDocTimeout = "5s"
	}
	if cfg.Core.FetchTimeout == "" {
		cfg.Core.FetchTimeout = "10s"
	}
	if cfg.Core.MaxBytes == 0 {
		cfg.Core.MaxBytes = 50 * 1024 * 1024
	}
	if cfg.Core.AmbiguousDatePolicy == "" {
		cfg.Core.AmbiguousDatePolicy = "mdy"
	}
	if cfg.Core.FiscalYearAnchor == 0 {
		cfg.Core.FiscalYearAnchor = 1
	}
	if cfg.Corpus.ManifestPath == "" {
		cfg.Corpus.ManifestPath = "./corpus/manifest.yaml"
	}
	if cfg.Sink.SQLitePath == "" {
		cfg.Sink.SQLitePath = "/usr/local/var/docintel/data/db/documents.sqlite"
	}
	if cfg.Sink.BlevePath == "" {
		cfg.Sink.BlevePath = "/usr/local/var/docintel/data/indices/bleve"
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".txt", ".md", ".pdf", ".html", ".docx", ".odt", ".xlsx"}
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
