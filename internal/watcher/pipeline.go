package watcher

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/docintel/internal/models"
)

// Submitter is the one method a watched directory needs from the pipeline:
// a way to hand a WorkItem to S1.
type Submitter interface {
	Submit(ctx context.Context, item models.WorkItem) error
}

// Deleter is satisfied by a Sink (internal/sink.SQLiteSink, BleveSink,
// MultiSink) that can remove a previously accepted record by document ID.
type Deleter interface {
	Delete(ctx context.Context, documentID string) error
}

// NewPipelineSource builds a Watcher whose FileEvents drive a pipeline
// instead of calling an indexer directly: a created or modified file becomes
// a WorkItem submitted to S1, keyed by the FileEvent's DocumentID; a removed
// file is deleted from the sink by that same ID. deleter may be nil, in
// which case file removal is observed but not acted on.
func NewPipelineSource(roots, extensions []string, recursive bool, submitter Submitter, deleter Deleter, submitTimeout time.Duration, logger *zap.Logger, opts ...WatcherOption) *Watcher {
	onIndex := func(ev FileEvent) {
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		item := models.WorkItem{
			DocumentID: ev.DocumentID,
			SourceKind: models.SourceFile,
			SourceRef:  ev.Path,
		}
		if err := submitter.Submit(ctx, item); err != nil && logger != nil {
			logger.Warn("watcher: submit failed", zap.String("path", ev.Path), zap.Error(err))
		}
	}
	onRemove := func(ev FileEvent) {
		if deleter == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
		defer cancel()
		if err := deleter.Delete(ctx, ev.DocumentID); err != nil && logger != nil {
			logger.Warn("watcher: delete failed", zap.String("path", ev.Path), zap.Error(err))
		}
	}
	opts = append(opts, WithLogger(logger))
	return NewWatcher(roots, extensions, recursive, onIndex, onRemove, opts...)
}
