package notice

// KeyCount is one entry of a true-count map in serialisable form.
type KeyCount struct {
	Code     string
	Severity Severity
	Count    int
}

// State is a detached copy of everything a Recorder holds.
type State struct {
	Limits           Limits
	Validation       []Notice
	System           []Notice
	ValidationCounts []KeyCount
	SystemCounts     []KeyCount
	HasErrors        bool
}

// State returns a copy of the recorder contents. Count entries are in report order.
func (r *Recorder) State() State {
	return State{
		Limits:           r.limits,
		Validation:       append([]Notice(nil), r.validation...),
		System:           append([]Notice(nil), r.system...),
		ValidationCounts: keyCounts(r.validationCounts),
		SystemCounts:     keyCounts(r.systemCounts),
		HasErrors:        r.hasErrors,
	}
}

// Restore rebuilds a Recorder from a State. Retained notices are taken as-is.
func Restore(s State) *Recorder {
	r := NewRecorder(s.Limits)
	r.validation = append(r.validation, s.Validation...)
	r.system = append(r.system, s.System...)
	for _, n := range r.validation {
		r.retained[n.MappingKey()]++
	}
	for _, kc := range s.ValidationCounts {
		r.validationCounts[MappingKey{Code: kc.Code, Severity: kc.Severity}] += kc.Count
	}
	for _, kc := range s.SystemCounts {
		r.systemCounts[MappingKey{Code: kc.Code, Severity: kc.Severity}] += kc.Count
	}
	r.hasErrors = s.HasErrors
	return r
}

func keyCounts(m map[MappingKey]int) []KeyCount {
	keys := make([]MappingKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	SortKeys(keys)
	out := make([]KeyCount, 0, len(keys))
	for _, k := range keys {
		out = append(out, KeyCount{Code: k.Code, Severity: k.Severity, Count: m[k]})
	}
	return out
}
