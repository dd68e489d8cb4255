// Package ingest implements S1: it turns a WorkItem into a resident,
// UTF-8 Markdown Document and publishes it to the CPU stage. Conversion
// itself is delegated to internal/convert; Ingest owns the I/O worker,
// size enforcement, and UTF-8 repair around that call.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/docintel/internal/convert"
	"github.com/hyperjump/docintel/internal/models"
)

// InputTooLargeError is returned when a source exceeds MaxBytes.
type InputTooLargeError struct {
	SourceRef string
	SizeBytes int
	MaxBytes  int
}

func (e *InputTooLargeError) Error() string {
	return fmt.Sprintf("ingest: %s: %d bytes exceeds max_bytes %d", e.SourceRef, e.SizeBytes, e.MaxBytes)
}

// Options configures Ingest. Corresponds to internal/config's CoreConfig
// fields that govern S1.
type Options struct {
	MaxBytes      int           // reject sources larger than this; 0 means no limit
	FetchTimeout  time.Duration // timeout for source_kind=url fetches
	QueueCapacity int           // capacity of the outbound channel this Ingest feeds
}

// DefaultOptions mirrors the teacher's config defaults idiom: conservative
// caps that a real deployment is expected to override via internal/config.
func DefaultOptions() Options {
	return Options{
		MaxBytes:      50 * 1024 * 1024,
		FetchTimeout:  10 * time.Second,
		QueueCapacity: 100,
	}
}

// Ingest is the I/O-worker side of S1: it reads or fetches a WorkItem's
// bytes, converts them to Markdown, and emits a Document.
type Ingest struct {
	registry *convert.Registry
	opts     Options
	logger   *zap.Logger
	client   *http.Client
	out      chan<- *models.Document
}

// New builds an Ingest that publishes completed Documents to out. out is
// owned by the caller (the pipeline), which sizes it to opts.QueueCapacity.
func New(registry *convert.Registry, opts Options, logger *zap.Logger, out chan<- *models.Document) *Ingest {
	return &Ingest{
		registry: registry,
		opts:     opts,
		logger:   logger,
		client:   &http.Client{Timeout: opts.FetchTimeout},
		out:      out,
	}
}

// Run pulls WorkItems from in until it is closed or ctx is cancelled,
// converting and publishing a Document for each. A per-item conversion or
// size failure is logged and skipped; it does not stop the worker.
func (g *Ingest) Run(ctx context.Context, in <-chan models.WorkItem) {
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-in:
			if !ok {
				return
			}
			doc, err := g.Process(ctx, item)
			if err != nil {
				if g.logger != nil {
					g.logger.Warn("ingest failed",
						zap.String("document_id", item.DocumentID),
						zap.String("source_ref", item.SourceRef),
						zap.Error(err))
				}
				continue
			}
			select {
			case <-ctx.Done():
				return
			case g.out <- doc:
			}
		}
	}
}

// Process converts a single WorkItem into a Document without touching the
// outbound channel. Run calls it for every item; it is also usable on its
// own for synchronous ingestion.
func (g *Ingest) Process(ctx context.Context, item models.WorkItem) (*models.Document, error) {
	if item.DocumentID == "" {
		item.DocumentID = uuid.New().String()
	}

	raw, err := g.read(ctx, item)
	if err != nil {
		return nil, err
	}
	if g.opts.MaxBytes > 0 && len(raw) > g.opts.MaxBytes {
		return nil, &InputTooLargeError{SourceRef: item.SourceRef, SizeBytes: len(raw), MaxBytes: g.opts.MaxBytes}
	}

	result, err := g.registry.ConvertPath(convertPath(item), raw)
	if err != nil {
		return nil, fmt.Errorf("ingest %s: %w", item.SourceRef, err)
	}

	markdown, replaced := repairUTF8(result.Markdown)
	// PlainConverter substitutes U+FFFD itself, so a pass-through source
	// whose raw bytes were not valid UTF-8 has been repaired as well.
	if !replaced && result.MIMEDetected == "text/plain" && !utf8.Valid(raw) {
		replaced = true
	}

	doc := &models.Document{
		DocumentID:        item.DocumentID,
		SourceKind:        item.SourceKind,
		SourceRef:         item.SourceRef,
		Markdown:          markdown,
		SizeBytes:         len(markdown),
		PageCountEstimate: result.PageCountEstimate,
		IngestTimestamp:   ingestTimestamp(ctx),
		Status:            models.StatusOK,
	}
	if replaced {
		doc.Errors = append(doc.Errors, models.ErrorInfo{
			Stage:  "ingest",
			Kind:   "invalid_utf8_replaced",
			Detail: fmt.Sprintf("%s: non-UTF-8 bytes from conversion replaced with U+FFFD", item.SourceRef),
		})
	}
	return doc, nil
}

// convertPath picks the filename the Registry dispatches on: the source
// path itself for files, or a hint/extension fallback for URLs whose
// extension the converter needs to guess format from.
func convertPath(item models.WorkItem) string {
	if item.SourceKind == models.SourceFile {
		return item.SourceRef
	}
	if hint, ok := item.Hints["format"]; ok && hint != "" {
		return "hint." + strings.TrimPrefix(hint, ".")
	}
	return item.SourceRef
}

// read obtains raw source bytes: from disk for source_kind=file, over HTTP
// for source_kind=url. Network I/O lives here, not in a Converter — the
// Converter contract forbids it so conversion stays a pure function of
// bytes already in memory.
func (g *Ingest) read(ctx context.Context, item models.WorkItem) ([]byte, error) {
	switch item.SourceKind {
	case models.SourceFile:
		abs, err := filepath.Abs(item.SourceRef)
		if err != nil {
			return nil, fmt.Errorf("absolute path: %w", err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat file: %w", err)
		}
		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("not a regular file: %s", abs)
		}
		return os.ReadFile(abs)
	case models.SourceURL:
		return g.fetchURL(ctx, item.SourceRef)
	default:
		return nil, fmt.Errorf("unknown source_kind %q", item.SourceKind)
	}
}

func (g *Ingest) fetchURL(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}
	return body, nil
}

// repairUTF8 replaces invalid UTF-8 with U+FFFD, matching bytes.Runes
// decoding order so span coordinates computed against the returned buffer
// stay byte-accurate. Returns whether any replacement happened.
func repairUTF8(b []byte) ([]byte, bool) {
	if utf8.Valid(b) {
		return b, false
	}
	var out bytes.Buffer
	out.Grow(len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size <= 1 {
			out.WriteRune(utf8.RuneError)
			b = b[1:]
			continue
		}
		out.Write(b[:size])
		b = b[size:]
	}
	return out.Bytes(), true
}

// ingestTimestamp is a seam for tests; production callers get time.Now.
var ingestTimestamp = func(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ingestClockKey{}).(time.Time); ok {
		return t
	}
	return time.Now().UTC()
}

type ingestClockKey struct{}

// WithClock pins the ingest timestamp for deterministic tests.
func WithClock(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ingestClockKey{}, t)
}
