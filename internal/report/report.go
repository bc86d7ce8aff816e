package report

import "slices"

// ValidationReport is a parsed report. It is built once and never mutated.
type ValidationReport struct {
	notices    []NoticeSummary
	errorCodes []string
	errorSet   map[string]struct{}
}

// NewValidationReport builds a report from summaries and derives its error
// code set: the code of every error-level summary, first-seen order, no duplicates.
func NewValidationReport(summaries []NoticeSummary) *ValidationReport {
	r := &ValidationReport{
		notices:  slices.Clone(summaries),
		errorSet: make(map[string]struct{}),
	}
	for _, s := range r.notices {
		if !s.IsError() {
			continue
		}
		if _, seen := r.errorSet[s.Code]; seen {
			continue
		}
		r.errorSet[s.Code] = struct{}{}
		r.errorCodes = append(r.errorCodes, s.Code)
	}
	return r
}

// Notices returns the summaries in document order.
func (r *ValidationReport) Notices() []NoticeSummary {
	return slices.Clone(r.notices)
}

// ErrorCodes returns the error-level codes in first-seen order.
func (r *ValidationReport) ErrorCodes() []string {
	return slices.Clone(r.errorCodes)
}

func (r *ValidationReport) HasErrorCode(code string) bool {
	_, ok := r.errorSet[code]
	return ok
}

// HasErrors reports whether any summary is error-level.
func (r *ValidationReport) HasErrors() bool {
	return len(r.errorCodes) > 0
}

// TotalNotices sums the true counts of every summary with code, across severities.
func (r *ValidationReport) TotalNotices(code string) int {
	total := 0
	for _, s := range r.notices {
		if s.Code == code {
			total += s.TotalNotices
		}
	}
	return total
}

// ErrorNotices returns the true count of error-level notices with code.
func (r *ValidationReport) ErrorNotices(code string) int {
	total := 0
	for _, s := range r.notices {
		if s.Code == code && s.IsError() {
			total += s.TotalNotices
		}
	}
	return total
}

func (r *ValidationReport) Len() int {
	return len(r.notices)
}
