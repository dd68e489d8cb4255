// Package pipeline wires S1-S6 into the concurrent engine §5 describes: an
// I/O worker pool driving Ingest and Emit, a CPU worker pool driving
// Structure/Classify/Detect/Normalize, bounded channels between them, a
// cooperative shutdown signal, and atomic process-wide counters.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/docintel/internal/classify"
	"github.com/hyperjump/docintel/internal/control"
	"github.com/hyperjump/docintel/internal/detect"
	"github.com/hyperjump/docintel/internal/emit"
	"github.com/hyperjump/docintel/internal/ingest"
	"github.com/hyperjump/docintel/internal/models"
	"github.com/hyperjump/docintel/internal/normalize"
	"github.com/hyperjump/docintel/internal/structure"
)

// Config sizes the pipeline's worker pools, queues, and per-document
// timeout. Populated by internal/config's CoreConfig in production.
type Config struct {
	IOWorkers       int
	CPUWorkers      int
	QueueMaxSize    int
	PerDocTimeout   time.Duration
	NormalizeOpts   normalize.Options
}

// DefaultConfig mirrors spec.md §5's stated defaults.
func DefaultConfig() Config {
	return Config{
		IOWorkers:     1,
		CPUWorkers:    4,
		QueueMaxSize:  100,
		PerDocTimeout: 5 * time.Second,
		NormalizeOpts: normalize.DefaultOptions(),
	}
}

// Counters are the process-wide atomic counters §5 requires: updated
// without locking, read without synchronization beyond the atomics
// themselves.
type Counters struct {
	DocumentsIngested  atomic.Int64
	DocumentsProcessed atomic.Int64
	DocumentsPartial   atomic.Int64
	DocumentsFailed    atomic.Int64
	DocumentsEmitted   atomic.Int64
}

// Pipeline owns the channels and worker pools connecting Ingest, the CPU
// stages, and Emit.
type Pipeline struct {
	cfg     Config
	bundle  *control.Bundle
	ingestG *ingest.Ingest
	emitG   *emit.Emit
	logger  *zap.Logger

	in          chan models.WorkItem
	ingestToCPU chan *models.Document
	cpuToEmit   chan *models.Document

	Counters Counters

	ingestWG sync.WaitGroup
	cpuWG    sync.WaitGroup
	wg       sync.WaitGroup
}

// New builds a Pipeline. bundle is the one-time-constructed matcher/table
// bundle from internal/control; sink is where Emit publishes finished
// records.
func New(cfg Config, bundle *control.Bundle, sink emit.Sink, logger *zap.Logger) *Pipeline {
	in := make(chan models.WorkItem, cfg.QueueMaxSize)
	ingestToCPU := make(chan *models.Document, cfg.QueueMaxSize)
	cpuToEmit := make(chan *models.Document, cfg.QueueMaxSize)

	p := &Pipeline{
		cfg:         cfg,
		bundle:      bundle,
		logger:      logger,
		in:          in,
		ingestToCPU: ingestToCPU,
		cpuToEmit:   cpuToEmit,
		emitG:       emit.New(sink, logger),
	}
	return p
}

// SetIngest injects the Ingest worker. The caller must have built it with
// IngestOutput() as its publish channel (internal/pipeline must not import
// internal/convert just to construct a Registry itself).
func (p *Pipeline) SetIngest(g *ingest.Ingest) {
	p.ingestG = g
}

// IngestOutput is the channel an Ingest built for this Pipeline must
// publish Documents to.
func (p *Pipeline) IngestOutput() chan<- *models.Document {
	return p.ingestToCPU
}

// Start launches the I/O and CPU worker pools. It returns immediately;
// call Stop (or cancel ctx) to begin a cooperative shutdown.
func (p *Pipeline) Start(ctx context.Context) {
	for i := 0; i < p.cfg.IOWorkers; i++ {
		p.ingestWG.Add(1)
		go func() {
			defer p.ingestWG.Done()
			p.ingestG.Run(ctx, p.in)
		}()
	}
	go func() {
		p.ingestWG.Wait()
		close(p.ingestToCPU)
	}()

	for i := 0; i < p.cfg.CPUWorkers; i++ {
		p.cpuWG.Add(1)
		go func(workerID int) {
			defer p.cpuWG.Done()
			p.runCPUWorker(ctx, workerID)
		}(i)
	}
	go func() {
		p.cpuWG.Wait()
		close(p.cpuToEmit)
	}()

	for i := 0; i < p.cfg.IOWorkers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.runEmitWorker(ctx)
		}()
	}
}

// Submit hands a WorkItem to S1, blocking if the inbound queue is full —
// matching spec.md §5's "S1 blocks ... on a full ingest_to_cpu" model
// applied symmetrically at the producer boundary. Returns ctx.Err() if ctx
// is cancelled first.
func (p *Pipeline) Submit(ctx context.Context, item models.WorkItem) error {
	select {
	case p.in <- item:
		p.Counters.DocumentsIngested.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop signals shutdown: S1 stops accepting new items, in-flight documents
// drain through S6, and Stop blocks until every worker has observed the
// signal at its next channel boundary. Cancelling the ctx passed to Start
// instead makes workers return without draining.
func (p *Pipeline) Stop() {
	close(p.in)
	p.ingestWG.Wait()
	p.cpuWG.Wait()
	p.wg.Wait()
}

func (p *Pipeline) runCPUWorker(ctx context.Context, workerID int) {
	for {
		select {
		case <-ctx.Done():
			return
		case doc, ok := <-p.ingestToCPU:
			if !ok {
				return
			}
			p.processDocument(doc)
			select {
			case p.cpuToEmit <- doc:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (p *Pipeline) runEmitWorker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case doc, ok := <-p.cpuToEmit:
			if !ok {
				return
			}
			if _, err := p.emitG.Process(doc); err != nil && p.logger != nil {
				p.logger.Warn("pipeline: emit failed", zap.String("document_id", doc.DocumentID), zap.Error(err))
			}
			p.Counters.DocumentsEmitted.Add(1)
		}
	}
}

// processDocument runs S2-S5 on doc in order. S2 and S3 never block and
// have no timeout of their own; S4+S5 combined are bounded by
// cfg.PerDocTimeout per spec.md §5 — on expiry the document is marked
// partial with whatever canonicalization had completed so far.
func (p *Pipeline) processDocument(doc *models.Document) {
	start := time.Now()
	doc.Structure = structure.Derive(doc.Markdown)
	doc.StageTimings.StructureMs = msSince(start)

	start = time.Now()
	doc.Classification = classify.Classify(doc.Markdown, p.bundle)
	doc.StageTimings.ClassifyMs = msSince(start)

	p.runDetectAndNormalize(doc)

	switch {
	case doc.Status == models.StatusPartial:
		p.Counters.DocumentsPartial.Add(1)
	default:
		doc.Status = models.StatusOK
		p.Counters.DocumentsProcessed.Add(1)
	}
}

// runDetectAndNormalize runs S4+S5 on a background goroutine and races it
// against cfg.PerDocTimeout. Detect and Normalize are linear-time and
// allocate no unbounded state per spec.md §4.5/§4.6, so in practice the
// timeout is a safety net for pathological input rather than a routine
// occurrence; on expiry the goroutine is left to finish in the background
// (its result is discarded) since neither stage accepts a context to
// cancel mid-scan.
func (p *Pipeline) runDetectAndNormalize(doc *models.Document) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		start := time.Now()
		doc.RawEntities = detect.Scan(doc.Markdown, p.bundle)
		doc.StageTimings.DetectMs = msSince(start)

		start = time.Now()
		normalize.Normalize(doc, p.bundle, p.cfg.NormalizeOpts)
		doc.StageTimings.NormalizeMs = msSince(start)
	}()

	select {
	case <-done:
	case <-time.After(p.cfg.PerDocTimeout):
		doc.Status = models.StatusPartial
		doc.Errors = append(doc.Errors, models.ErrorInfo{
			Stage:  "detect_normalize",
			Kind:   "timeout",
			Detail: fmt.Sprintf("exceeded per-document timeout of %s", p.cfg.PerDocTimeout),
		})
	}
}

func msSince(start time.Time) float64 {
	return time.Since(start).Seconds() * 1000
}
