package sink

import (
	"context"
	"fmt"
	"os"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/hyperjump/docintel/internal/models"
)

// bleveDoc is what actually gets indexed: the canonicalized markdown (so
// query terms match the normalized entity text, not just the raw surface
// form) plus the classification labels that matter for faceted search.
type bleveDoc struct {
	MarkdownCanonicalized string `json:"markdown_canonicalized"`
	PrimaryDomain         string `json:"primary_domain"`
	PrimaryDocType        string `json:"primary_doc_type"`
	Status                string `json:"status"`
}

// BleveSink indexes a DocumentRecord's canonicalized Markdown and
// classification labels for full-text document search, adapted from the
// teacher's BleveIndex (open-or-create idiom, standard analyzer so terms
// match exactly rather than stemmed).
type BleveSink struct {
	index bleve.Index
}

// NewBleveSink creates or opens a Bleve index at path.
func NewBleveSink(path string) (*BleveSink, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("markdown_canonicalized", textFieldMapping)

	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	docMapping.AddFieldMappingsAt("primary_domain", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("primary_doc_type", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("status", keywordFieldMapping)

	im.AddDocumentMapping("document_record", docMapping)
	im.DefaultType = "document_record"
	im.DefaultMapping = docMapping

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("open Bleve index: %w", openErr)
		}
		return &BleveSink{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("create Bleve index: %w", err)
	}
	return &BleveSink{index: index}, nil
}

// Accept indexes the record's canonicalized markdown and primary
// classification labels, keyed by document ID so re-ingestion replaces
// the previous entry.
func (b *BleveSink) Accept(record models.DocumentRecord) (models.Result, error) {
	doc := bleveDoc{
		MarkdownCanonicalized: string(record.MarkdownCanonicalized),
		PrimaryDomain:         record.Classification.PrimaryDomain,
		PrimaryDocType:        record.Classification.PrimaryDocType,
		Status:                string(record.Status),
	}
	if err := b.index.Index(record.DocumentID, doc); err != nil {
		return models.Result{Accepted: false, Detail: err.Error()}, fmt.Errorf("index document: %w", err)
	}
	return models.Result{Accepted: true}, nil
}

// Search runs a match query over the canonicalized markdown, returning up
// to limit document IDs ranked by score.
func (b *BleveSink) Search(query string, limit int) ([]string, error) {
	q := bleve.NewMatchQuery(query)
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	results, err := b.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("Bleve search: %w", err)
	}
	ids := make([]string, len(results.Hits))
	for i, hit := range results.Hits {
		ids[i] = hit.ID
	}
	return ids, nil
}

// Delete removes a document from the index by ID, used when a watched file
// is removed from disk. ctx is unused — bleve's Delete has no cancellation
// path — but kept for signature parity with SQLiteSink.Delete.
func (b *BleveSink) Delete(ctx context.Context, documentID string) error {
	return b.index.Delete(documentID)
}

// Close closes the Bleve index.
func (b *BleveSink) Close() error {
	return b.index.Close()
}
