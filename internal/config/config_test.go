package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
sink:
  sqlite_path: "test.sqlite"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Sink.SQLitePath == "" {
		t.Error("sqlite_path should be set")
	}
}

func TestLoad_coreOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
core:
  io_workers: 2
  cpu_workers: 8
  per_doc_timeout: "10s"
  ambiguous_date_policy: "dmy"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Core.IOWorkers != 2 || cfg.Core.CPUWorkers != 8 {
		t.Errorf("unexpected core config: %+v", cfg.Core)
	}
	if cfg.Core.PerDocTimeoutDuration() != 10*time.Second {
		t.Errorf("per_doc_timeout: got %s", cfg.Core.PerDocTimeoutDuration())
	}
	if cfg.Core.AmbiguousDatePolicy != "dmy" {
		t.Errorf("ambiguous_date_policy: got %s", cfg.Core.AmbiguousDatePolicy)
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "localhost"
  port: 8080
sink:
  sqlite_path: "./data/db/documents.sqlite"
watch:
  directories: ["./dev/sample"]
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantDB := filepath.Join(dir, "data", "db", "documents.sqlite")
	if cfg.Sink.SQLitePath != wantDB {
		t.Errorf("sqlite_path = %s, want %s", cfg.Sink.SQLitePath, wantDB)
	}
	if len(cfg.Watch.Directories) != 1 {
		t.Fatalf("watch directories: got %d", len(cfg.Watch.Directories))
	}
	wantWatch := filepath.Join(dir, "dev", "sample")
	if cfg.Watch.Directories[0] != wantWatch {
		t.Errorf("watch directory = %s, want %s", cfg.Watch.Directories[0], wantWatch)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Core.IOWorkers != 1 {
		t.Errorf("default io_workers: got %d", cfg.Core.IOWorkers)
	}
	if cfg.Core.CPUWorkers != 4 {
		t.Errorf("default cpu_workers: got %d", cfg.Core.CPUWorkers)
	}
	if cfg.Core.PerDocTimeoutDuration() != 5*time.Second {
		t.Errorf("default per_doc_timeout: got %s", cfg.Core.PerDocTimeoutDuration())
	}
	if cfg.Core.MaxBytes != 50*1024*1024 {
		t.Errorf("default max_bytes: got %d", cfg.Core.MaxBytes)
	}
	if cfg.Core.AmbiguousDatePolicy != "mdy" {
		t.Errorf("default ambiguous_date_policy: got %s", cfg.Core.AmbiguousDatePolicy)
	}
	if cfg.Core.FiscalYearAnchor != 1 {
		t.Errorf("default fiscal_year_anchor: got %d", cfg.Core.FiscalYearAnchor)
	}
	if cfg.Watch.Extensions == nil {
		t.Error("watch extensions should be set by default")
	}
}

func TestApplyDefaults_WatchRecursiveWhenDirectoriesSet(t *testing.T) {
	cfg := &Config{Watch: WatchConfig{Directories: []string{"/tmp/docs"}}}
	ApplyDefaults(cfg)
	if cfg.Watch.Recursive == nil || !*cfg.Watch.Recursive {
		t.Error("recursive should default to true when directories are set")
	}
}

func TestWatchConfig_RecursiveOrDefault(t *testing.T) {
	t.Run("nil_returns_true", func(t *testing.T) {
		w := &WatchConfig{}
		if got := w.RecursiveOrDefault(); !got {
			t.Errorf("RecursiveOrDefault() = %v, want true", got)
		}
	})
	t.Run("true_returns_true", func(t *testing.T) {
		v := true
		w := &WatchConfig{Recursive: &v}
		if got := w.RecursiveOrDefault(); !got {
			t.Errorf("RecursiveOrDefault() = %v, want true", got)
		}
	})
	t.Run("false_returns_false", func(t *testing.T) {
		f := false
		w := &WatchConfig{Recursive: &f}
		if got := w.RecursiveOrDefault(); got {
			t.Errorf("RecursiveOrDefault() = %v, want false", got)
		}
	})
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{
		Server: ServerConfig{Host: "localhost", Port: 9090},
		Sink:   SinkConfig{SQLitePath: "/tmp/db"},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
}
