package runner

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"noticekit/internal/notice"
)

// TaskFunc is one validation task. It owns rec for the duration of the call.
type TaskFunc func(ctx context.Context, rec *notice.Recorder) error

// Task names a TaskFunc so failures can be attributed.
type Task struct {
	Name string
	Run  TaskFunc
}

// Options configures a Coordinator.
type Options struct {
	Limits notice.Limits
	// Jobs caps concurrently running tasks; 0 means GOMAXPROCS.
	Jobs   int
	Logger *zap.Logger
}

// Coordinator runs tasks in parallel, each with its own Recorder, and joins
// the recorders once every task has returned.
type Coordinator struct {
	limits notice.Limits
	jobs   int
	log    *zap.Logger
}

// New creates a Coordinator.
func New(opts Options) *Coordinator {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		limits: opts.Limits.WithDefaults(),
		jobs:   jobs,
		log:    log,
	}
}

// Run executes tasks and returns the merged recorder.
//
// A task that returns an error or panics does not abort the run; the failure
// is recorded in that task's recorder as a system error. When ctx is cancelled
// before every task has started, each skipped task is recorded as a
// thread_execution_error and Run returns the merged recorder together with an
// error wrapping ctx's error.
func (c *Coordinator) Run(ctx context.Context, tasks []Task) (*notice.Recorder, error) {
	if len(tasks) == 0 {
		return notice.NewRecorder(c.limits), nil
	}
	start := time.Now()

	// each slot is written by exactly one goroutine
	results := make([]*notice.Recorder, len(tasks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(c.jobs, len(tasks)))

	for i, task := range tasks {
		g.Go(func() error {
			rec := notice.NewRecorder(c.limits)
			select {
			case <-gctx.Done():
				err := gctx.Err()
				rec.AddSystemError(notice.NewSystemError(notice.CodeThreadExecution, failureContext(task.Name, err)))
				results[i] = rec
				return err
			default:
			}

			taskStart := time.Now()
			if err := runTask(gctx, task, rec); err != nil {
				c.log.Warn("task failed",
					zap.String("task", task.Name),
					zap.Error(err))
				rec.AddSystemError(notice.NewSystemError(notice.CodeRuntimeException, failureContext(task.Name, err)))
			}
			c.log.Debug("task done",
				zap.String("task", task.Name),
				zap.Int("retained", rec.Len()),
				zap.Int("systemErrors", len(rec.SystemErrors())),
				zap.Duration("elapsed", time.Since(taskStart)))
			results[i] = rec
			return nil
		})
	}
	waitErr := g.Wait()
	merged := Join(c.limits, results...)
	if waitErr != nil {
		c.log.Warn("validation run cancelled", zap.Error(waitErr))
		return merged, fmt.Errorf("run cancelled: %w", waitErr)
	}
	c.log.Info("validation tasks joined",
		zap.Int("tasks", len(tasks)),
		zap.Int("retained", merged.Len()),
		zap.Int("systemErrors", len(merged.SystemErrors())),
		zap.Bool("hasErrors", merged.HasValidationErrors()),
		zap.Duration("elapsed", time.Since(start)))
	return merged, nil
}

// Join folds recorders into a fresh recorder in argument order.
// It must only be called after every producer of recs has finished.
func Join(limits notice.Limits, recs ...*notice.Recorder) *notice.Recorder {
	merged := notice.NewRecorder(limits)
	for _, rec := range recs {
		merged.Merge(rec)
	}
	return merged
}

func runTask(ctx context.Context, task Task, rec *notice.Recorder) (err error) {
	if task.Run == nil {
		return fmt.Errorf("task %q has no body", task.Name)
	}
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Task: task.Name, Value: r}
		}
	}()
	return task.Run(ctx, rec)
}

func failureContext(task string, err error) notice.Context {
	return notice.Context{
		"validator": task,
		"exception": fmt.Sprintf("%T", err),
		"message":   err.Error(),
	}
}

// PanicError wraps a value recovered from a panicking task.
type PanicError struct {
	Task  string
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task %q panicked: %v", e.Task, e.Value)
}
