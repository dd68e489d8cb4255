// Package main is the docintel CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/docintel/internal/config"
	"github.com/hyperjump/docintel/internal/control"
	"github.com/hyperjump/docintel/internal/convert"
	"github.com/hyperjump/docintel/internal/fileid"
	"github.com/hyperjump/docintel/internal/ingest"
	"github.com/hyperjump/docintel/internal/models"
	"github.com/hyperjump/docintel/internal/pipeline"
	"github.com/hyperjump/docintel/internal/server"
	"github.com/hyperjump/docintel/internal/sink"
	"github.com/hyperjump/docintel/internal/watcher"
	"github.com/hyperjump/docintel/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/docintel/config.yaml"

// loadConfig loads config from path. If path is the default and the file does not exist,
// it tries config.yaml in the current directory (for development).
// Returns the config and the path that was actually loaded (for saving, etc.).
func loadConfig(path string) (*config.Config, string, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if path == defaultConfigPath {
			if unwrap := errors.Unwrap(err); unwrap != nil && os.IsNotExist(unwrap) {
				if cwd, cwdErr := os.Getwd(); cwdErr == nil {
					fallback := filepath.Join(cwd, "config.yaml")
					if _, statErr := os.Stat(fallback); statErr == nil {
						cfg, loadErr := config.Load(fallback)
						if loadErr != nil {
							return nil, "", loadErr
						}
						return cfg, fallback, nil
					}
				}
			}
		}
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "serve":
		runServe()
	case "ingest":
		runIngest()
	case "watch":
		runWatch()
	case "version", "--version", "-v":
		fmt.Printf("docintel version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// Components holds everything a long-running docintel process needs: a
// running pipeline plus the sink it was built over, so callers (serve,
// watch) can query stored records after processing completes.
type Components struct {
	Pipeline *pipeline.Pipeline
	SQLite   *sink.SQLiteSink
	Bleve    *sink.BleveSink
}

func (c *Components) Close() {
	if c.SQLite != nil {
		_ = c.SQLite.Close()
	}
	if c.Bleve != nil {
		_ = c.Bleve.Close()
	}
}

// initializeComponents builds the sink stack, the pipeline, and an Ingest
// wired to the pipeline's input channel, and starts the pipeline. Callers
// must call Stop on the returned pipeline (via Components.Pipeline) before
// Close to drain in-flight work.
func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	bundle, err := control.Init(cfg.Corpus.ManifestPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load corpus manifest: %w", err)
	}

	sqliteSink, err := sink.NewSQLiteSink(cfg.Sink.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sqlite sink: %w", err)
	}

	bleveSink, err := sink.NewBleveSink(cfg.Sink.BlevePath)
	if err != nil {
		_ = sqliteSink.Close()
		return nil, fmt.Errorf("failed to initialize bleve sink: %w", err)
	}

	multiSink := sink.NewMultiSink(sqliteSink, bleveSink)

	p := pipeline.New(cfg.Core.ToPipelineConfig(time.Now()), bundle, multiSink, logger)
	registry := convert.NewRegistry()
	g := ingest.New(registry, cfg.Core.ToIngestOptions(), logger, p.IngestOutput())
	p.SetIngest(g)
	p.Start(ctx)

	return &Components{Pipeline: p, SQLite: sqliteSink, Bleve: bleveSink}, nil
}

func runServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, _ := utils.NewProductionLogger()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	var watchSvc *watcher.Watcher
	if len(cfg.Watch.Directories) > 0 {
		watchSvc = watcher.NewPipelineSource(
			cfg.Watch.Directories,
			cfg.Watch.Extensions,
			cfg.Watch.RecursiveOrDefault(),
			components.Pipeline,
			components.SQLite,
			cfg.Core.FetchTimeoutDuration(),
			logger,
		)
		if err := watchSvc.Start(ctx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		watchSvc.SyncExistingFiles()
	}

	var watchDirSvc server.WatchDirectoryService
	if watchSvc != nil {
		watchDirSvc = watchSvc
	}

	srv := server.NewServer(
		components.Pipeline,
		components.SQLite,
		&cfg.Server,
		logger,
		watchDirSvc,
		resolvedConfigPath,
		cfg,
	)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if watchSvc != nil {
		watchSvc.Stop()
	}
	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	_ = srv.Stop(stopCtx)
	components.Pipeline.Stop()
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: docintel ingest [flags] <file-or-url>")
		os.Exit(1)
	}
	ref := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, _ := utils.NewProductionLogger()
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := initializeComponents(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}

	kind := models.SourceFile
	docID := ""
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		kind = models.SourceURL
		docID = uuid.NewString()
	} else {
		abs, absErr := filepath.Abs(ref)
		if absErr != nil {
			fmt.Printf("Invalid path: %v\n", absErr)
			os.Exit(1)
		}
		ref = abs
		docID = fileid.FileDocID(abs)
	}

	item := models.WorkItem{DocumentID: docID, SourceKind: kind, SourceRef: ref}
	if err := components.Pipeline.Submit(ctx, item); err != nil {
		fmt.Printf("Submit failed: %v\n", err)
		os.Exit(1)
	}

	components.Pipeline.Stop()
	components.Close()
	fmt.Printf("Document submitted and processed: %s\n", docID)
}

func runWatch() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: docintel watch <add|remove|list> [path]")
		fmt.Println("  docintel watch add <path>     Add directory to watch")
		fmt.Println("  docintel watch remove <path>  Remove directory from watch")
		fmt.Println("  docintel watch list           List watched directories")
		os.Exit(1)
	}
	sub := os.Args[2]
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[3:])
	switch sub {
	case "add":
		if fs.NArg() < 1 {
			fmt.Println("Usage: docintel watch add <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		body, _ := json.Marshal(map[string]interface{}{"path": path, "sync": true})
		resp, err := http.Post(*serverURL+"/api/v1/watch/directories", "application/json", bytes.NewReader(body))
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("Add failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Added: %s\n", path)
	case "remove":
		if fs.NArg() < 1 {
			fmt.Println("Usage: docintel watch remove <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		req, _ := http.NewRequest(http.MethodDelete, *serverURL+"/api/v1/watch/directories?path="+url.QueryEscape(path), nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("Remove failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Removed: %s\n", path)
	case "list":
		resp, err := http.Get(*serverURL + "/api/v1/watch/directories")
		if err != nil {
			fmt.Printf("Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Printf("List failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		var out struct {
			Directories []string `json:"directories"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			fmt.Printf("Parse failed: %v\n", err)
			os.Exit(1)
		}
		for _, d := range out.Directories {
			fmt.Println(d)
		}
	default:
		fmt.Printf("Unknown watch subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`docintel - document-intelligence ingest and normalization pipeline

Usage:
  docintel serve [flags]           Start the HTTP API and, if configured, directory watching
  docintel ingest [flags] <ref>    Submit one file or URL and wait for it to process
  docintel watch <add|remove|list> Manage watched directories via a running server
  docintel version                 Show version
  docintel help                    Show this help

Serve Flags:
  --config string    Config file path (default: /usr/local/etc/docintel/config.yaml)

Ingest Flags:
  --config string    Config file path

Watch Flags:
  --server string    Server URL (default: http://localhost:8080)

Examples:
  docintel serve
  docintel ingest ./invoices/acme-2024-q1.pdf
  docintel watch add /srv/docs/inbox
  docintel watch list`)
}
