package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"noticekit/internal/notice"
)

const noticesMemberName = "notices"

// Member names of one summary. Lookups are exact; encoding/json would
// otherwise match struct fields case-insensitively.
const (
	codeMemberName         = "code"
	severityMemberName     = "severity"
	totalNoticesMemberName = "totalNotices"
)

// Parse reads a whole report document from r.
func Parse(r io.Reader) (*ValidationReport, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	return ParseBytes(data)
}

// ParseFile reads and parses the report stored at path.
func ParseFile(path string) (*ValidationReport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	report, err := ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return report, nil
}

// ParseBytes parses a report document.
//
// It fails with a *MalformedReportError when the top-level notices member is
// absent or not an array, or when any element is not a valid summary. No
// partial report is ever returned.
func ParseBytes(data []byte) (*ValidationReport, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, malformed(-1, "", "document is not a JSON object", err)
	}
	raw, ok := root[noticesMemberName]
	if !ok {
		return nil, malformed(-1, noticesMemberName, "missing", nil)
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, malformed(-1, noticesMemberName, "not an array", nil)
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, malformed(-1, noticesMemberName, "not an array", err)
	}

	summaries := make([]NoticeSummary, 0, len(elems))
	for i, elem := range elems {
		s, err := decodeSummary(i, elem)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return NewValidationReport(summaries), nil
}

func decodeSummary(index int, elem json.RawMessage) (NoticeSummary, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(elem, &members); err != nil {
		return NoticeSummary{}, malformed(index, "", "summary is not a JSON object", err)
	}

	var code string
	if err := decodeMember(index, members, codeMemberName, &code); err != nil {
		return NoticeSummary{}, err
	}
	if code == "" {
		return NoticeSummary{}, malformed(index, codeMemberName, "empty", nil)
	}

	var sevName string
	if err := decodeMember(index, members, severityMemberName, &sevName); err != nil {
		return NoticeSummary{}, err
	}
	sev, err := notice.ParseSeverity(sevName)
	if err != nil {
		return NoticeSummary{}, malformed(index, severityMemberName, "unknown level", err)
	}

	var total int
	if err := decodeMember(index, members, totalNoticesMemberName, &total); err != nil {
		return NoticeSummary{}, err
	}
	if total < 0 {
		return NoticeSummary{}, malformed(index, totalNoticesMemberName, fmt.Sprintf("negative count %d", total), nil)
	}

	samples := []json.RawMessage{}
	if raw, ok := members[noticesMemberName]; ok {
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil {
			return NoticeSummary{}, malformed(index, noticesMemberName, "wrong value type", err)
		}
		if list != nil {
			samples = list
		}
	}
	return NoticeSummary{
		Code:         code,
		Severity:     sev,
		TotalNotices: total,
		Notices:      samples,
	}, nil
}

// decodeMember decodes the required member name of one summary into dst.
func decodeMember(index int, members map[string]json.RawMessage, name string, dst any) error {
	raw, ok := members[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return malformed(index, name, "missing", nil)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return malformed(index, name, "wrong value type", err)
	}
	return nil
}
