package models

import "time"

// SourceKind enumerates where a WorkItem's bytes originate.
type SourceKind string

const (
	SourceFile SourceKind = "file"
	SourceURL  SourceKind = "url"
)

// WorkItem is what a producer hands to Ingest (S1).
type WorkItem struct {
	DocumentID string
	SourceKind SourceKind
	SourceRef  string
	Hints      map[string]string
}

// Document is created at S1 and flows through S2-S5. Markdown is immutable once set.
type Document struct {
	DocumentID        string
	SourceKind        SourceKind
	SourceRef         string
	Markdown          []byte
	SizeBytes         int
	PageCountEstimate int
	IngestTimestamp   time.Time

	// Structure carries S2's output once computed.
	Structure StructureFlags

	// Classification carries S3's output once computed.
	Classification ClassificationVector

	// RawEntities carries S4's output once computed.
	RawEntities []RawEntity

	// CanonicalEntities and MarkdownCanonicalized carry S5's output once computed.
	CanonicalEntities      []CanonicalEntity
	MarkdownCanonicalized  []byte

	Status       Status
	Errors       []ErrorInfo
	StageTimings StageTimings
}

// Status is the document-level outcome recorded by the pipeline.
type Status string

const (
	StatusOK      Status = "ok"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// ErrorInfo records a non-fatal error encountered while processing a document.
type ErrorInfo struct {
	Stage  string
	Kind   string
	Detail string
}

// StageTimings records per-stage wall time in milliseconds.
type StageTimings struct {
	IngestMs    float64
	StructureMs float64
	ClassifyMs  float64
	DetectMs    float64
	NormalizeMs float64
	EmitMs      float64
}

// StructureFlags is S2's output: lightweight structural facts about the markdown.
type StructureFlags struct {
	HasHeaders     bool
	HasLists       bool
	HasTables      bool
	HasCodeFences  bool
	HasFrontMatter bool
	LanguageGuess  string
}

// DocumentRecord is S6's output: the final bundle handed to a Sink.
type DocumentRecord struct {
	DocumentID            string
	SourceKind            SourceKind
	SourceRef             string
	IngestTimestamp       time.Time
	MarkdownOriginal      []byte
	MarkdownCanonicalized []byte
	StructureFlags        StructureFlags
	Classification        ClassificationVector
	RawEntities           []RawEntity
	CanonicalEntities     []CanonicalEntity
	Status                Status
	StageTimings          StageTimings
	Errors                []ErrorInfo
}

// Result is what a Sink returns from Accept.
type Result struct {
	Accepted bool
	Detail   string
}
