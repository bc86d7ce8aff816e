package notice

import (
	"slices"
)

// Recorder aggregates the notices produced by one validation task.
//
// A Recorder is not safe for concurrent use. Each task owns its own Recorder
// and the results are folded together with Merge once every task is done.
type Recorder struct {
	limits Limits

	validation []Notice
	system     []Notice

	// true occurrence counts; never capped once a notice passes the global cap
	validationCounts map[MappingKey]int
	systemCounts     map[MappingKey]int
	// retained instances per key, always <= validationCounts[key]
	retained map[MappingKey]int

	hasErrors bool
}

// NewRecorder creates an empty Recorder. Non-positive limits fall back to defaults.
func NewRecorder(limits Limits) *Recorder {
	return &Recorder{
		limits:           limits.WithDefaults(),
		validationCounts: make(map[MappingKey]int),
		systemCounts:     make(map[MappingKey]int),
		retained:         make(map[MappingKey]int),
	}
}

// NewDefaultRecorder creates an empty Recorder with DefaultLimits.
func NewDefaultRecorder() *Recorder {
	return NewRecorder(DefaultLimits())
}

func (r *Recorder) Limits() Limits {
	return r.limits
}

// Add dispatches n by its Kind. A zero Kind is treated as a validation notice.
func (r *Recorder) Add(n Notice) {
	if n.Kind == KindSystemError {
		r.AddSystemError(n)
		return
	}
	r.AddValidationNotice(n)
}

// AddValidationNotice records a validation notice if there is capacity.
//
// The error flag is set before any capacity check. Past the global cap the
// notice is dropped entirely. Past the per-type cap it is counted but not stored.
func (r *Recorder) AddValidationNotice(n Notice) {
	n.Kind = KindValidation
	if n.IsError() {
		r.hasErrors = true
	}
	if len(r.validation) >= r.limits.MaxTotalValidationNotices {
		return
	}
	key := n.MappingKey()
	r.validationCounts[key]++
	if r.validationCounts[key] <= r.limits.MaxPerNoticeTypeAndSeverity {
		r.validation = append(r.validation, n)
		r.retained[key]++
	}
}

// AddSystemError records a system error. System errors are never capped.
func (r *Recorder) AddSystemError(n Notice) {
	n.Kind = KindSystemError
	n.Severity = SevError
	r.systemCounts[n.MappingKey()]++
	r.system = append(r.system, n)
}

// Merge folds other into r.
//
// True counts are summed, so merged counts equal the sum of the per-task
// counts. Retained validation notices are appended in order while the
// per-type and global bounds of r allow it. System errors are appended
// unconditionally. other must not be used afterwards.
func (r *Recorder) Merge(other *Recorder) {
	if other == nil || other == r {
		return
	}
	for _, n := range other.validation {
		if len(r.validation) >= r.limits.MaxTotalValidationNotices {
			break
		}
		key := n.MappingKey()
		if r.retained[key] >= r.limits.MaxPerNoticeTypeAndSeverity {
			continue
		}
		r.validation = append(r.validation, n)
		r.retained[key]++
	}
	r.system = append(r.system, other.system...)
	for key, c := range other.validationCounts {
		r.validationCounts[key] += c
	}
	for key, c := range other.systemCounts {
		r.systemCounts[key] += c
	}
	r.hasErrors = r.hasErrors || other.hasErrors
}

// HasValidationErrors reports whether any error-severity validation notice
// was ever added, including notices dropped for capacity reasons.
func (r *Recorder) HasValidationErrors() bool {
	return r.hasErrors
}

// ValidationNotices returns the retained validation notices in insertion order.
// The returned slice aliases internal storage and must not be modified.
func (r *Recorder) ValidationNotices() []Notice {
	return r.validation[:len(r.validation):len(r.validation)]
}

// SystemErrors returns the system errors in insertion order.
// The returned slice aliases internal storage and must not be modified.
func (r *Recorder) SystemErrors() []Notice {
	return r.system[:len(r.system):len(r.system)]
}

// Notices returns the retained notices of the given kind.
func (r *Recorder) Notices(kind Kind) []Notice {
	if kind == KindSystemError {
		return r.SystemErrors()
	}
	return r.ValidationNotices()
}

// Count returns the true occurrence count for key among notices of kind.
func (r *Recorder) Count(kind Kind, key MappingKey) int {
	if kind == KindSystemError {
		return r.systemCounts[key]
	}
	return r.validationCounts[key]
}

// Counts returns a copy of the true occurrence counts for notices of kind.
func (r *Recorder) Counts(kind Kind) map[MappingKey]int {
	src := r.validationCounts
	if kind == KindSystemError {
		src = r.systemCounts
	}
	out := make(map[MappingKey]int, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Retained returns how many validation notices are stored for key.
func (r *Recorder) Retained(key MappingKey) int {
	return r.retained[key]
}

// Keys returns the mapping keys seen for kind in report order.
func (r *Recorder) Keys(kind Kind) []MappingKey {
	src := r.validationCounts
	if kind == KindSystemError {
		src = r.systemCounts
	}
	keys := make([]MappingKey, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeys)
	return keys
}

// Len returns the amount of retained validation notices.
func (r *Recorder) Len() int {
	return len(r.validation)
}

func compareKeys(a, b MappingKey) int {
	as, bs := a.String(), b.String()
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	}
	return 0
}

// SortKeys sorts keys in report order.
func SortKeys(keys []MappingKey) {
	slices.SortFunc(keys, compareKeys)
}
