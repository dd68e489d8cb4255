package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/hyperjump/docintel/internal/fileid"
	"github.com/hyperjump/docintel/internal/models"
)

type recordingSubmitter struct {
	mu    sync.Mutex
	items []models.WorkItem
}

func (s *recordingSubmitter) Submit(ctx context.Context, item models.WorkItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, item)
	return nil
}

func (s *recordingSubmitter) snapshot() []models.WorkItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.WorkItem(nil), s.items...)
}

type recordingDeleter struct {
	mu  sync.Mutex
	ids []string
}

func (d *recordingDeleter) Delete(ctx context.Context, documentID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ids = append(d.ids, documentID)
	return nil
}

func (d *recordingDeleter) snapshot() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.ids...)
}

func TestNewPipelineSourceSubmitsNewFiles(t *testing.T) {
	dir := t.TempDir()
	submitter := &recordingSubmitter{}

	w := NewPipelineSource([]string{dir}, []string{".txt"}, true, submitter, nil, time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "doc.txt")
	if err := writeFile(path, "hello"); err != nil {
		t.Fatal(err)
	}
	time.Sleep(700 * time.Millisecond)

	items := submitter.snapshot()
	if len(items) != 1 {
		t.Fatalf("expected one submitted WorkItem, got %d", len(items))
	}
	if items[0].SourceRef != path {
		t.Errorf("expected SourceRef %q, got %q", path, items[0].SourceRef)
	}
	if items[0].SourceKind != models.SourceFile {
		t.Errorf("expected SourceFile, got %v", items[0].SourceKind)
	}
	if items[0].DocumentID != fileid.FileDocID(path) {
		t.Errorf("expected deterministic document ID, got %q", items[0].DocumentID)
	}
}

func TestNewPipelineSourceDeletesRemovedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := writeFile(path, "hello"); err != nil {
		t.Fatal(err)
	}

	submitter := &recordingSubmitter{}
	deleter := &recordingDeleter{}
	w := NewPipelineSource([]string{dir}, []string{".txt"}, true, submitter, deleter, time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	time.Sleep(700 * time.Millisecond)

	ids := deleter.snapshot()
	if len(ids) != 1 || ids[0] != fileid.FileDocID(path) {
		t.Errorf("expected one delete for %q, got %v", fileid.FileDocID(path), ids)
	}
}

func TestNewPipelineSourceSkipsDeleteWhenDeleterNil(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.txt")
	if err := writeFile(path, "hello"); err != nil {
		t.Fatal(err)
	}

	submitter := &recordingSubmitter{}
	w := NewPipelineSource([]string{dir}, []string{".txt"}, true, submitter, nil, time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	time.Sleep(700 * time.Millisecond)
	// No assertion beyond "did not panic" — a nil Deleter must be a safe no-op.
}
