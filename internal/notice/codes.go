package notice

// Codes of notices raised by the aggregation layer itself rather than by rules.
const (
	// CodeRuntimeException is recorded when a validation task fails or panics.
	CodeRuntimeException = "runtime_exception_in_validator_error"
	// CodeThreadExecution is recorded for a task skipped because its run was cancelled.
	CodeThreadExecution = "thread_execution_error"
	// CodeIOError is recorded when a task input could not be read.
	CodeIOError = "i_o_error"
)
