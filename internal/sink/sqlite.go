// Package sink implements Sink (§4.7/§6.2): SQLiteSink for durable
// per-document storage, BleveSink for full-text search, and MultiSink to
// fan a single DocumentRecord out to both.
package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/docintel/internal/models"
)

// SQLiteSink persists DocumentRecords, adapted from the teacher's
// SQLiteStorage schema/WAL/transaction idiom but storing the richer
// classification/entity shape as JSON columns instead of document chunks.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens or creates a SQLite database at dbPath and
// initializes the schema. Parent directories are created if missing.
func NewSQLiteSink(dbPath string) (*SQLiteSink, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return &SQLiteSink{db: db}, nil
}

func initSchema(db *sql.DB) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS document_records (
		document_id             TEXT PRIMARY KEY,
		source_kind             TEXT NOT NULL,
		source_ref              TEXT NOT NULL,
		ingest_timestamp        TIMESTAMP NOT NULL,
		markdown_original       TEXT NOT NULL,
		markdown_canonicalized  TEXT NOT NULL,
		structure_flags         TEXT NOT NULL,
		classification          TEXT NOT NULL,
		raw_entities            TEXT NOT NULL,
		canonical_entities      TEXT NOT NULL,
		status                  TEXT NOT NULL,
		stage_timings           TEXT NOT NULL,
		errors                  TEXT NOT NULL,
		stored_at               TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_document_records_status ON document_records(status);
	CREATE INDEX IF NOT EXISTS idx_document_records_stored_at ON document_records(stored_at);
	`
	_, err := db.Exec(schema)
	return err
}

// Accept upserts the record by document_id, matching the pipeline's
// re-ingest-by-ID semantics (a reprocessed document replaces its row).
func (s *SQLiteSink) Accept(record models.DocumentRecord) (models.Result, error) {
	structureJSON, err := json.Marshal(record.StructureFlags)
	if err != nil {
		return models.Result{}, fmt.Errorf("marshal structure_flags: %w", err)
	}
	classificationJSON, err := json.Marshal(record.Classification)
	if err != nil {
		return models.Result{}, fmt.Errorf("marshal classification: %w", err)
	}
	rawEntitiesJSON, err := json.Marshal(record.RawEntities)
	if err != nil {
		return models.Result{}, fmt.Errorf("marshal raw_entities: %w", err)
	}
	canonicalEntitiesJSON, err := json.Marshal(record.CanonicalEntities)
	if err != nil {
		return models.Result{}, fmt.Errorf("marshal canonical_entities: %w", err)
	}
	stageTimingsJSON, err := json.Marshal(record.StageTimings)
	if err != nil {
		return models.Result{}, fmt.Errorf("marshal stage_timings: %w", err)
	}
	errorsJSON, err := json.Marshal(record.Errors)
	if err != nil {
		return models.Result{}, fmt.Errorf("marshal errors: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO document_records (
			document_id, source_kind, source_ref, ingest_timestamp,
			markdown_original, markdown_canonicalized, structure_flags,
			classification, raw_entities, canonical_entities, status,
			stage_timings, errors
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(document_id) DO UPDATE SET
			source_kind = excluded.source_kind,
			source_ref = excluded.source_ref,
			ingest_timestamp = excluded.ingest_timestamp,
			markdown_original = excluded.markdown_original,
			markdown_canonicalized = excluded.markdown_canonicalized,
			structure_flags = excluded.structure_flags,
			classification = excluded.classification,
			raw_entities = excluded.raw_entities,
			canonical_entities = excluded.canonical_entities,
			status = excluded.status,
			stage_timings = excluded.stage_timings,
			errors = excluded.errors`,
		record.DocumentID, string(record.SourceKind), record.SourceRef, record.IngestTimestamp,
		string(record.MarkdownOriginal), string(record.MarkdownCanonicalized), string(structureJSON),
		string(classificationJSON), string(rawEntitiesJSON), string(canonicalEntitiesJSON), string(record.Status),
		string(stageTimingsJSON), string(errorsJSON),
	)
	if err != nil {
		return models.Result{Accepted: false, Detail: err.Error()}, fmt.Errorf("insert document record: %w", err)
	}
	return models.Result{Accepted: true}, nil
}

// Get returns a previously stored DocumentRecord by ID, used by the demo
// HTTP server's fetch endpoint.
func (s *SQLiteSink) Get(ctx context.Context, documentID string) (models.DocumentRecord, error) {
	var record models.DocumentRecord
	var sourceKind string
	var structureJSON, classificationJSON, rawEntitiesJSON, canonicalEntitiesJSON, stageTimingsJSON, errorsJSON string

	err := s.db.QueryRowContext(ctx,
		`SELECT document_id, source_kind, source_ref, ingest_timestamp,
			markdown_original, markdown_canonicalized, structure_flags,
			classification, raw_entities, canonical_entities, status,
			stage_timings, errors
		 FROM document_records WHERE document_id = ?`, documentID,
	).Scan(
		&record.DocumentID, &sourceKind, &record.SourceRef, &record.IngestTimestamp,
		&record.MarkdownOriginal, &record.MarkdownCanonicalized, &structureJSON,
		&classificationJSON, &rawEntitiesJSON, &canonicalEntitiesJSON, &record.Status,
		&stageTimingsJSON, &errorsJSON,
	)
	if err == sql.ErrNoRows {
		return models.DocumentRecord{}, fmt.Errorf("document not found: %s", documentID)
	}
	if err != nil {
		return models.DocumentRecord{}, err
	}
	record.SourceKind = models.SourceKind(sourceKind)

	fields := []struct {
		raw string
		dst any
	}{
		{structureJSON, &record.StructureFlags},
		{classificationJSON, &record.Classification},
		{rawEntitiesJSON, &record.RawEntities},
		{canonicalEntitiesJSON, &record.CanonicalEntities},
		{stageTimingsJSON, &record.StageTimings},
		{errorsJSON, &record.Errors},
	}
	for _, f := range fields {
		if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
			return models.DocumentRecord{}, fmt.Errorf("unmarshal stored record: %w", err)
		}
	}
	return record, nil
}

// CountByStatus returns the number of stored records per status, used by
// the HTTP server's status endpoint (/api/v1/status).
func (s *SQLiteSink) CountByStatus(ctx context.Context) (map[models.Status]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM document_records GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.Status]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[models.Status(status)] = n
	}
	return counts, rows.Err()
}

// Delete removes a stored record by document ID, used when a watched file
// is removed from disk.
func (s *SQLiteSink) Delete(ctx context.Context, documentID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM document_records WHERE document_id = ?`, documentID)
	return err
}

// Close closes the database connection.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
