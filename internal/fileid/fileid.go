// Package fileid derives a WorkItem's DocumentID from its source path for
// file-sourced documents. URL sources get a one-off uuid at submit time
// (cmd/docintel), but a watched file needs the same ID every time it's
// re-synced or re-submitted across restarts — otherwise a re-index of an
// unchanged file would emit a second DocumentRecord instead of
// overwriting the one already in the sink.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

const prefix = "file:"

// FileDocID returns a stable document ID for the given absolute path.
// Same path always yields the same ID, which is what lets Watcher's
// debounced re-index and the file-removal Delete agree on which
// DocumentRecord a later event refers to.
func FileDocID(absolutePath string) string {
	normalized := filepath.Clean(absolutePath)
	hash := sha256.Sum256([]byte(normalized))
	return prefix + hex.EncodeToString(hash[:])
}
