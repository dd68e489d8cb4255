// Package emit implements S6: it assembles the final DocumentRecord from a
// fully processed Document and hands it to a Sink, which the core treats
// as opaque.
package emit

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/docintel/internal/models"
)

// Sink is the one-method interface Emit hands a DocumentRecord to (§6.2).
// The core never inspects what a Sink does with it.
type Sink interface {
	Accept(record models.DocumentRecord) (models.Result, error)
}

// Emit assembles a DocumentRecord from a Document and publishes it.
type Emit struct {
	sink   Sink
	logger *zap.Logger
}

// New builds an Emit around the given Sink.
func New(sink Sink, logger *zap.Logger) *Emit {
	return &Emit{sink: sink, logger: logger}
}

// Process assembles the DocumentRecord for doc, records the emit stage's
// own timing, and calls the Sink. A Sink failure does not alter the
// Document's status — it is the last stage, and a rejected record is the
// caller's problem to retry, not the pipeline's to paper over.
func (e *Emit) Process(doc *models.Document) (models.Result, error) {
	start := time.Now()
	record := Assemble(doc)
	elapsed := time.Since(start)
	doc.StageTimings.EmitMs = elapsed.Seconds() * 1000
	record.StageTimings = doc.StageTimings

	result, err := e.sink.Accept(record)
	if err != nil {
		if e.logger != nil {
			e.logger.Error("emit: sink rejected document",
				zap.String("document_id", doc.DocumentID),
				zap.Error(err))
		}
		return result, fmt.Errorf("emit %s: %w", doc.DocumentID, err)
	}
	if e.logger != nil {
		e.logger.Debug("emit: document accepted",
			zap.String("document_id", doc.DocumentID),
			zap.String("status", string(doc.Status)))
	}
	return result, nil
}

// Assemble builds the DocumentRecord §6.2 defines from a processed
// Document, without touching a Sink. Exposed separately so callers (tests,
// the demo HTTP server) can inspect the record shape directly.
func Assemble(doc *models.Document) models.DocumentRecord {
	return models.DocumentRecord{
		DocumentID:            doc.DocumentID,
		SourceKind:            doc.SourceKind,
		SourceRef:             doc.SourceRef,
		IngestTimestamp:       doc.IngestTimestamp,
		MarkdownOriginal:      doc.Markdown,
		MarkdownCanonicalized: doc.MarkdownCanonicalized,
		StructureFlags:        doc.Structure,
		Classification:        doc.Classification,
		RawEntities:           doc.RawEntities,
		CanonicalEntities:     doc.CanonicalEntities,
		Status:                doc.Status,
		StageTimings:          doc.StageTimings,
		Errors:                doc.Errors,
	}
}
