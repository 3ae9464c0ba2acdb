// Package tasks implements backlog reconciliation against a media server.
//
// The core abstraction is SyncEngine, which drives the matcher, the
// confirmation gate, and the playlist mutator over one playlist's backlog,
// classifying every request as already-present, matched, or unmatched.
// Operations emit progress updates via channels for non-blocking status
// reporting to the CLI layer.
package tasks
