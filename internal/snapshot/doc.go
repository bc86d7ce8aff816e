// Package snapshot persists a task's notice.Recorder so that recorders
// produced by separate processes can be joined later.
//
// Snapshots are msgpack-encoded Payloads carrying a schema version; a
// version mismatch is reported as ErrSchemaMismatch rather than decoded.
package snapshot
