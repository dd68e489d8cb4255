package sink

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/docintel/internal/models"
)

// sinkLike is the one-method contract every member of a MultiSink must
// satisfy; kept local so this package has no dependency on internal/emit.
type sinkLike interface {
	Accept(record models.DocumentRecord) (models.Result, error)
}

// remover is an optional capability: member sinks that can delete a
// previously accepted record (SQLiteSink, BleveSink) implement it. A
// sinkLike that doesn't is simply skipped by MultiSink.Delete.
type remover interface {
	Delete(ctx context.Context, documentID string) error
}

// MultiSink fans one DocumentRecord out to every member sink, grounded on
// the teacher's pattern of updating storage, the vector index, and the
// keyword index from a single IndexDocument call — here generalized to an
// arbitrary list rather than a fixed three.
type MultiSink struct {
	sinks []sinkLike
}

// NewMultiSink builds a MultiSink over the given sinks, in the order they
// should be called.
func NewMultiSink(sinks ...sinkLike) *MultiSink {
	return &MultiSink{sinks: sinks}
}

// Accept calls Accept on every member sink. It does not stop at the first
// failure — every sink gets a chance to persist the record — and returns a
// combined error reporting every sink that rejected it. Accepted is true
// only when every member accepted.
func (m *MultiSink) Accept(record models.DocumentRecord) (models.Result, error) {
	allAccepted := true
	var errs []error
	for i, s := range m.sinks {
		if _, err := s.Accept(record); err != nil {
			allAccepted = false
			errs = append(errs, fmt.Errorf("sink %d: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return models.Result{Accepted: allAccepted}, errors.Join(errs...)
	}
	return models.Result{Accepted: true}, nil
}

// Delete removes documentID from every member sink that supports deletion,
// mirroring the teacher's Indexer.DeleteDocument fan-out across storage and
// the keyword index.
func (m *MultiSink) Delete(ctx context.Context, documentID string) error {
	var errs []error
	for i, s := range m.sinks {
		r, ok := s.(remover)
		if !ok {
			continue
		}
		if err := r.Delete(ctx, documentID); err != nil {
			errs = append(errs, fmt.Errorf("sink %d: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
