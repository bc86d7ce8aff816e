package report

import (
	"encoding/json"
	"fmt"
	"io"

	"noticekit/internal/notice"
)

// Document is the root of an exported report.
type Document struct {
	Notices []NoticeSummary `json:"notices"`
}

// NoticeSummary describes every notice sharing one mapping key.
// TotalNotices is the true count; Notices holds at most the export cap of
// sample contexts in insertion order.
type NoticeSummary struct {
	Code         string            `json:"code"`
	Severity     notice.Severity   `json:"severity"`
	TotalNotices int               `json:"totalNotices"`
	Notices      []json.RawMessage `json:"notices"`
}

// IsError reports whether the summary is error-level.
func (s NoticeSummary) IsError() bool {
	return s.Severity.IsError()
}

func (s NoticeSummary) MappingKey() notice.MappingKey {
	return notice.MappingKey{Code: s.Code, Severity: s.Severity}
}

var emptyContext = json.RawMessage("{}")

// ExportValidationNotices exports the retained validation notices of r using
// the recorder's own export cap.
func ExportValidationNotices(r *notice.Recorder) (Document, error) {
	return Export(r, notice.KindValidation, r.Limits().MaxExportPerNoticeType)
}

// ExportSystemErrors exports the system errors of r using the recorder's own export cap.
func ExportSystemErrors(r *notice.Recorder) (Document, error) {
	return Export(r, notice.KindSystemError, r.Limits().MaxExportPerNoticeType)
}

// Export groups the notices of kind held by r by mapping key, orders groups by
// ascending code+severity and keeps up to maxSamplesPerType contexts per group.
// A non-positive maxSamplesPerType means the default export cap.
//
// Groups come from the true-count map, so a key whose instances were all
// dropped while merging still appears, with its count and no samples.
func Export(r *notice.Recorder, kind notice.Kind, maxSamplesPerType int) (Document, error) {
	if maxSamplesPerType <= 0 {
		maxSamplesPerType = notice.DefaultMaxExportPerNoticeType
	}

	groups := make(map[notice.MappingKey][]notice.Notice)
	for _, n := range r.Notices(kind) {
		key := n.MappingKey()
		groups[key] = append(groups[key], n)
	}
	keys := r.Keys(kind)

	doc := Document{Notices: make([]NoticeSummary, 0, len(keys))}
	for _, key := range keys {
		group := groups[key]
		samples := make([]json.RawMessage, 0, min(len(group), maxSamplesPerType))
		for i, n := range group {
			if i >= maxSamplesPerType {
				break
			}
			raw, err := marshalContext(n.Context)
			if err != nil {
				return Document{}, fmt.Errorf("export %s sample %d: %w", key, i, err)
			}
			samples = append(samples, raw)
		}
		doc.Notices = append(doc.Notices, NoticeSummary{
			Code:         key.Code,
			Severity:     key.Severity,
			TotalNotices: r.Count(kind, key),
			Notices:      samples,
		})
	}
	return doc, nil
}

func marshalContext(ctx notice.Context) (json.RawMessage, error) {
	if ctx == nil {
		return emptyContext, nil
	}
	return json.Marshal(ctx)
}

// Write encodes doc as indented JSON.
func Write(w io.Writer, doc Document) error {
	// copy so the caller's summaries are left untouched
	doc.Notices = append([]NoticeSummary{}, doc.Notices...)
	for i := range doc.Notices {
		if doc.Notices[i].Notices == nil {
			doc.Notices[i].Notices = []json.RawMessage{}
		}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(doc)
}
