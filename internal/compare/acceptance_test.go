package compare

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"noticekit/internal/notice"
	"noticekit/internal/report"
)

func writeReport(t *testing.T, path string, summaries ...report.NoticeSummary) {
	t.Helper()
	require.NoError(t, report.WriteFile(path, report.Document{Notices: summaries}))
}

func errorSummary(code string, total int) report.NoticeSummary {
	return report.NoticeSummary{Code: code, Severity: notice.SevError, TotalNotices: total}
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
}

func TestAcceptance(t *testing.T) {
	root := t.TempDir()

	// clean: no change
	writeReport(t, filepath.Join(root, "clean", DefaultReferenceReportName), errorSummary("A", 1))
	writeReport(t, filepath.Join(root, "clean", DefaultLatestReportName), errorSummary("A", 3))
	// regressed: C is new
	writeReport(t, filepath.Join(root, "regressed", DefaultReferenceReportName), errorSummary("A", 1), errorSummary("B", 1))
	writeReport(t, filepath.Join(root, "regressed", DefaultLatestReportName), errorSummary("B", 2), errorSummary("C", 7))
	// broken: latest is malformed
	writeReport(t, filepath.Join(root, "broken", DefaultReferenceReportName))
	require.NoError(t, os.WriteFile(filepath.Join(root, "broken", DefaultLatestReportName), []byte(`{"oops": 1}`), 0o644))
	// stray file at the root is ignored
	require.NoError(t, os.WriteFile(filepath.Join(root, "README"), []byte("x"), 0o644))

	sink := &recordingSink{}
	opts := DefaultOptions()
	opts.ThresholdPercent = 10
	opts.Jobs = 2
	opts.Logger = zaptest.NewLogger(t)
	opts.Progress = sink

	s, err := Acceptance(context.Background(), root, opts)
	require.NoError(t, err)

	assert.Equal(t, 3, s.DatasetCount)
	assert.Equal(t, 1, s.CorruptedCount)
	assert.Equal(t, 1, s.NewErrorDatasetCount)
	assert.InDelta(t, 50.0, s.InvalidPercent, 1e-9)
	assert.False(t, s.Passed)

	require.Len(t, s.NewErrors, 1)
	assert.Equal(t, CodeImpact{
		Code:                  "C",
		AffectedDatasetsCount: 1,
		AffectedDatasets:      []DatasetImpact{{DatasetID: "regressed", NoticeCount: 7}},
	}, s.NewErrors[0])

	require.Len(t, s.Datasets, 3)
	assert.Equal(t, "broken", s.Datasets[0].DatasetID)
	assert.True(t, s.Datasets[0].Corrupted)
	assert.Contains(t, s.Datasets[0].Reason, "malformed report")
	assert.Equal(t, []string{}, s.Datasets[0].NewErrors)
	assert.Equal(t, []string{}, s.Datasets[0].ResolvedErrors)

	var buf bytes.Buffer
	require.NoError(t, s.Write(&buf))
	var decoded struct {
		Datasets []map[string]json.RawMessage `json:"datasets"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	for _, ds := range decoded.Datasets {
		assert.NotEqual(t, "null", string(ds["newErrors"]))
		assert.NotEqual(t, "null", string(ds["resolvedErrors"]))
	}
	assert.Equal(t, []string{"A"}, s.Datasets[2].ResolvedErrors)

	assert.Len(t, sink.events, 9)
}

func TestAcceptance_PassesUnderThreshold(t *testing.T) {
	root := t.TempDir()
	writeReport(t, filepath.Join(root, "d1", DefaultReferenceReportName), errorSummary("A", 1))
	writeReport(t, filepath.Join(root, "d1", DefaultLatestReportName))

	s, err := Acceptance(context.Background(), root, Options{})
	require.NoError(t, err)
	assert.True(t, s.Passed)
	assert.Zero(t, s.InvalidPercent)
	assert.Empty(t, s.NewErrors)
}

func TestAcceptance_ZeroThresholdToleratesNothing(t *testing.T) {
	root := t.TempDir()
	for i := range 200 {
		dir := filepath.Join(root, fmt.Sprintf("d%03d", i))
		writeReport(t, filepath.Join(dir, DefaultReferenceReportName))
		if i == 0 {
			writeReport(t, filepath.Join(dir, DefaultLatestReportName), errorSummary("X", 1))
		} else {
			writeReport(t, filepath.Join(dir, DefaultLatestReportName))
		}
	}

	s, err := Acceptance(context.Background(), root, Options{})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, s.InvalidPercent, 1e-9)
	assert.Zero(t, s.ThresholdPercent)
	assert.False(t, s.Passed)

	def, err := Acceptance(context.Background(), root, DefaultOptions())
	require.NoError(t, err)
	assert.True(t, def.Passed)
}

func TestAcceptance_EmptyRoot(t *testing.T) {
	s, err := Acceptance(context.Background(), t.TempDir(), DefaultOptions())
	require.NoError(t, err)
	assert.Zero(t, s.DatasetCount)
	assert.True(t, s.Passed)
}

func TestAcceptance_MissingRoot(t *testing.T) {
	_, err := Acceptance(context.Background(), filepath.Join(t.TempDir(), "nope"), DefaultOptions())
	assert.Error(t, err)
}

func TestAcceptance_NegativeThreshold(t *testing.T) {
	_, err := Acceptance(context.Background(), t.TempDir(), Options{ThresholdPercent: -1})
	assert.Error(t, err)
}

func TestSummary_Write(t *testing.T) {
	s := summarize([]DatasetResult{{DatasetID: "d", Result: Result{NewErrors: []string{"X"}}, newErrorCounts: map[string]int{"X": 2}}}, 0)

	var buf bytes.Buffer
	require.NoError(t, s.Write(&buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, false, decoded["passed"])
	assert.Equal(t, 100.0, decoded["invalidPercent"])
	datasets := decoded["datasets"].([]any)
	assert.Equal(t, []any{"X"}, datasets[0].(map[string]any)["newErrors"])
}
