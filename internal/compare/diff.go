package compare

import (
	"slices"

	"noticekit/internal/report"
)

// Result is the difference between the error codes of two reports.
type Result struct {
	// NewErrors are error codes present in the candidate only.
	NewErrors []string `json:"newErrors"`
	// ResolvedErrors are error codes present in the baseline only.
	ResolvedErrors []string `json:"resolvedErrors"`
}

// HasRegression reports whether the candidate introduced any error code.
func (r Result) HasRegression() bool {
	return len(r.NewErrors) > 0
}

// Diff computes candidate.errorCodes - baseline.errorCodes and the reverse.
// Both lists are sorted ascending.
func Diff(baseline, candidate *report.ValidationReport) Result {
	return Result{
		NewErrors:      missingFrom(baseline, candidate.ErrorCodes()),
		ResolvedErrors: missingFrom(candidate, baseline.ErrorCodes()),
	}
}

// missingFrom returns the codes that r does not carry as error codes.
func missingFrom(r *report.ValidationReport, codes []string) []string {
	out := make([]string, 0)
	for _, code := range codes {
		if !r.HasErrorCode(code) {
			out = append(out, code)
		}
	}
	slices.Sort(out)
	return out
}
