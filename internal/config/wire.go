package config

import (
	"time"

	"github.com/hyperjump/docintel/internal/ingest"
	"github.com/hyperjump/docintel/internal/normalize"
	"github.com/hyperjump/docintel/internal/pipeline"
)

// ToPipelineConfig builds a pipeline.Config from the loaded CoreConfig,
// populating NormalizeOpts with ingestTimestamp as the reference point S5
// canonicalization uses for each date's past/present/future
// relative_reference; the fiscal-year anchor comes from FiscalYearAnchor.
func (c CoreConfig) ToPipelineConfig(ingestTimestamp time.Time) pipeline.Config {
	return pipeline.Config{
		IOWorkers:     c.IOWorkers,
		CPUWorkers:    c.CPUWorkers,
		QueueMaxSize:  c.QueueMaxSize,
		PerDocTimeout: c.PerDocTimeoutDuration(),
		NormalizeOpts: c.ToNormalizeOptions(ingestTimestamp),
	}
}

// ToIngestOptions builds an ingest.Options from the loaded CoreConfig.
func (c CoreConfig) ToIngestOptions() ingest.Options {
	return ingest.Options{
		MaxBytes:      c.MaxBytes,
		FetchTimeout:  c.FetchTimeoutDuration(),
		QueueCapacity: c.QueueMaxSize,
	}
}

// ToNormalizeOptions builds a normalize.Options from the loaded CoreConfig.
func (c CoreConfig) ToNormalizeOptions(ingestTimestamp time.Time) normalize.Options {
	return normalize.Options{
		IngestTimestamp:       ingestTimestamp,
		AmbiguousDatePolicy:   c.AmbiguousDatePolicy,
		FiscalYearAnchorMonth: c.FiscalYearAnchor,
	}
}
