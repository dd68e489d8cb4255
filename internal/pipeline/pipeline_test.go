package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/docintel/internal/control"
	"github.com/hyperjump/docintel/internal/convert"
	"github.com/hyperjump/docintel/internal/ingest"
	"github.com/hyperjump/docintel/internal/models"
)

func testBundle(t *testing.T) *control.Bundle {
	t.Helper()
	bundle, err := control.Init("../corpus/testdata/manifest.yaml", nil)
	if err != nil {
		t.Fatalf("control.Init: %v", err)
	}
	return bundle
}

type stubSink struct {
	records chan models.DocumentRecord
}

func newStubSink() *stubSink {
	return &stubSink{records: make(chan models.DocumentRecord, 8)}
}

func (s *stubSink) Accept(record models.DocumentRecord) (models.Result, error) {
	s.records <- record
	return models.Result{Accepted: true}, nil
}

func writeTempFile(t *testing.T, name string, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPipelineProcessesSubmittedDocumentEndToEnd(t *testing.T) {
	bundle := testBundle(t)
	sink := newStubSink()
	p := New(DefaultConfig(), bundle, sink, nil)

	g := ingest.New(convert.NewRegistry(), ingest.DefaultOptions(), nil, p.IngestOutput())
	p.SetIngest(g)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	path := writeTempFile(t, "doc.md", "OSHA inspected the site on January 5, 2024.")
	if err := p.Submit(ctx, models.WorkItem{DocumentID: "doc-1", SourceKind: models.SourceFile, SourceRef: path}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	var record models.DocumentRecord
	select {
	case record = <-sink.records:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the document to reach the sink")
	}

	p.Stop()

	if record.DocumentID != "doc-1" {
		t.Errorf("expected doc-1, got %q", record.DocumentID)
	}
	if record.Status != models.StatusOK {
		t.Errorf("expected status ok, got %v", record.Status)
	}
	if len(record.CanonicalEntities) == 0 {
		t.Error("expected at least one canonical entity from detect+normalize")
	}
	if p.Counters.DocumentsEmitted.Load() != 1 {
		t.Errorf("expected one document emitted, got %d", p.Counters.DocumentsEmitted.Load())
	}
}

func TestPipelineMarksPartialOnDetectNormalizeTimeout(t *testing.T) {
	bundle := testBundle(t)
	sink := newStubSink()
	cfg := DefaultConfig()
	cfg.PerDocTimeout = 0 // force the timeout branch deterministically
	p := New(cfg, bundle, sink, nil)

	g := ingest.New(convert.NewRegistry(), ingest.DefaultOptions(), nil, p.IngestOutput())
	p.SetIngest(g)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	path := writeTempFile(t, "doc.txt", "plain text")
	if err := p.Submit(ctx, models.WorkItem{SourceKind: models.SourceFile, SourceRef: path}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	var record models.DocumentRecord
	select {
	case record = <-sink.records:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the document to reach the sink")
	}
	p.Stop()

	if record.Status != models.StatusPartial {
		t.Errorf("expected status partial on timeout, got %v", record.Status)
	}
	if p.Counters.DocumentsPartial.Load() != 1 {
		t.Errorf("expected one partial document counted, got %d", p.Counters.DocumentsPartial.Load())
	}
}
