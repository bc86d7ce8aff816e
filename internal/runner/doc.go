// Package runner is the join point between parallel validation tasks and the
// single recorder the exporter reads.
//
// Every task receives a fresh notice.Recorder it owns exclusively; no
// recorder is shared while tasks run, so recorders need no locking. After
// all tasks return, the recorders are merged sequentially in task order,
// which keeps the merged retained lists deterministic for a given task list.
package runner
