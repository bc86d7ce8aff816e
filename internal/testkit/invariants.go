package testkit

import (
	"fmt"

	"noticekit/internal/notice"
)

// CheckRecorderInvariants runs the capacity invariants on a recorder:
// 1) retained notices per key never exceed the per-type cap
// 2) retained notices per key never exceed the true count for that key
// 3) the total of retained validation notices never exceeds the global cap
// 4) an error-severity notice among the retained ones implies the error flag
// 5) every system error is counted and has error severity
func CheckRecorderInvariants(r *notice.Recorder) error {
	if r == nil {
		return fmt.Errorf("nil recorder")
	}
	limits := r.Limits()

	retained := make(map[notice.MappingKey]int)
	sawError := false
	for i, n := range r.ValidationNotices() {
		if n.Kind != notice.KindValidation {
			return fmt.Errorf("validation notice %d has kind %s", i, n.Kind)
		}
		retained[n.MappingKey()]++
		if n.IsError() {
			sawError = true
		}
	}

	// 1) + 2)
	for key, got := range retained {
		if got > limits.MaxPerNoticeTypeAndSeverity {
			return fmt.Errorf("%s: %d retained > per-type cap %d", key, got, limits.MaxPerNoticeTypeAndSeverity)
		}
		if want := r.Retained(key); want != got {
			return fmt.Errorf("%s: retained index says %d, list holds %d", key, want, got)
		}
		if count := r.Count(notice.KindValidation, key); got > count {
			return fmt.Errorf("%s: %d retained > true count %d", key, got, count)
		}
	}

	// 3)
	if r.Len() > limits.MaxTotalValidationNotices {
		return fmt.Errorf("%d retained > global cap %d", r.Len(), limits.MaxTotalValidationNotices)
	}

	// 4)
	if sawError && !r.HasValidationErrors() {
		return fmt.Errorf("error notice retained but error flag is unset")
	}

	// 5)
	systemSeen := make(map[notice.MappingKey]int)
	for i, n := range r.SystemErrors() {
		if n.Kind != notice.KindSystemError || !n.IsError() {
			return fmt.Errorf("system error %d: kind=%s severity=%s", i, n.Kind, n.Severity)
		}
		systemSeen[n.MappingKey()]++
	}
	for key, got := range systemSeen {
		if count := r.Count(notice.KindSystemError, key); count < got {
			return fmt.Errorf("%s: %d system errors stored > count %d", key, got, count)
		}
	}
	return nil
}
