package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noticekit/internal/compare"
	"noticekit/internal/notice"
	"noticekit/internal/report"
	"noticekit/internal/snapshot"
)

// execute runs the CLI in a scratch working directory and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	root, a := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--color", "off"}, args...))
	err := root.Execute()
	a.finish(&errOut)
	return out.String(), err
}

func writeSnapshot(t *testing.T, dir, name string, rec *notice.Recorder) string {
	t.Helper()
	p, err := snapshot.New(uuid.New(), name, rec)
	require.NoError(t, err)
	path := filepath.Join(dir, name+snapshot.Extension)
	require.NoError(t, snapshot.Write(path, p))
	return path
}

func writeJSON(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

const (
	cleanReport = `{"notices":[{"code":"unknown_column","severity":"WARNING","totalNotices":1,"notices":[{}]}]}`
	dupReport   = `{"notices":[{"code":"duplicate_key","severity":"ERROR","totalNotices":4,"notices":[{"row":1}]}]}`
)

func TestMerge_WritesBothReports(t *testing.T) {
	snaps := t.TempDir()
	a := notice.NewDefaultRecorder()
	a.AddValidationNotice(notice.NewValidation("duplicate_key", notice.SevError, notice.Context{"row": 1}))
	a.AddValidationNotice(notice.NewValidation("duplicate_key", notice.SevError, notice.Context{"row": 2}))
	b := notice.NewDefaultRecorder()
	b.AddValidationNotice(notice.NewValidation("unknown_column", notice.SevWarning, nil))
	b.AddSystemError(notice.NewSystemError(notice.CodeIOError, notice.Context{"path": "stops.txt"}))

	paths := []string{writeSnapshot(t, snaps, "a", a), writeSnapshot(t, snaps, "b", b)}
	outDir := filepath.Join(snaps, "out")

	stdout, err := execute(t, append([]string{"merge", "-o", outDir, "--max-export", "1"}, paths...)...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "merged 2 snapshot(s): 3 validation notice(s), 1 system error(s) [has errors]")

	rep, err := report.ParseFile(filepath.Join(outDir, report.DefaultValidationReportName))
	require.NoError(t, err)
	assert.Equal(t, []string{"duplicate_key"}, rep.ErrorCodes())
	assert.Equal(t, 2, rep.TotalNotices("duplicate_key"))
	for _, s := range rep.Notices() {
		assert.LessOrEqual(t, len(s.Notices), 1)
	}

	system, err := report.ParseFile(filepath.Join(outDir, report.DefaultSystemErrorsReportName))
	require.NoError(t, err)
	assert.Equal(t, []string{notice.CodeIOError}, system.ErrorCodes())
}

func TestMerge_MissingSnapshot(t *testing.T) {
	_, err := execute(t, "merge", filepath.Join(t.TempDir(), "missing.mp"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load snapshots")
}

func TestSummarize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	writeJSON(t, path, `{"notices":[
		{"code":"duplicate_key","severity":"ERROR","totalNotices":4,"notices":[{"row":1},{"row":2}]},
		{"code":"unknown_column","severity":"INFO","totalNotices":1}
	]}`)

	stdout, err := execute(t, "summarize", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "SEVERITY")
	assert.Regexp(t, `ERROR\s+duplicate_key\s+4\s+2`, stdout)
	assert.Regexp(t, `INFO\s+unknown_column\s+1\s+0`, stdout)
	assert.Contains(t, stdout, "2 type(s), 5 notice(s), 1 error code(s)")
}

func TestSummarize_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	writeJSON(t, path, `{"notices":[{"severity":"ERROR","totalNotices":1}]}`)

	_, err := execute(t, "summarize", path)
	require.ErrorIs(t, err, report.ErrMalformedReport)
}

func TestCompare(t *testing.T) {
	dir := t.TempDir()
	baseline := filepath.Join(dir, "baseline.json")
	candidate := filepath.Join(dir, "candidate.json")
	writeJSON(t, baseline, cleanReport)
	writeJSON(t, candidate, dupReport)

	t.Run("new errors fail", func(t *testing.T) {
		stdout, err := execute(t, "compare", baseline, candidate)
		require.ErrorIs(t, err, errNewErrors)
		assert.Contains(t, stdout, "+ duplicate_key (4 notices)")
	})

	t.Run("fail-on-new disabled", func(t *testing.T) {
		_, err := execute(t, "compare", "--fail-on-new=false", baseline, candidate)
		require.NoError(t, err)
	})

	t.Run("resolved only", func(t *testing.T) {
		stdout, err := execute(t, "compare", candidate, baseline)
		require.NoError(t, err)
		assert.Contains(t, stdout, "- duplicate_key")
	})

	t.Run("json", func(t *testing.T) {
		stdout, err := execute(t, "compare", "--format", "json", "--fail-on-new=false", baseline, candidate)
		require.NoError(t, err)
		var res compare.Result
		require.NoError(t, json.Unmarshal([]byte(stdout), &res))
		assert.Equal(t, []string{"duplicate_key"}, res.NewErrors)
		assert.Empty(t, res.ResolvedErrors)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := execute(t, "compare", "--format", "xml", baseline, candidate)
		require.Error(t, err)
	})
}

func TestAcceptance(t *testing.T) {
	root := t.TempDir()
	writeJSON(t, filepath.Join(root, "ds1", "reference.json"), cleanReport)
	writeJSON(t, filepath.Join(root, "ds1", "latest.json"), cleanReport)
	writeJSON(t, filepath.Join(root, "ds2", "reference.json"), cleanReport)
	writeJSON(t, filepath.Join(root, "ds2", "latest.json"), dupReport)
	writeJSON(t, filepath.Join(root, "ds3", "reference.json"), cleanReport)

	t.Run("fails over threshold", func(t *testing.T) {
		stdout, err := execute(t, "acceptance", "--ui", "off", root)
		require.ErrorIs(t, err, errAcceptanceFailed)
		assert.Contains(t, stdout, "FAILED")
		assert.Contains(t, stdout, "corrupted ds3")

		data, err := os.ReadFile(filepath.Join(root, AcceptanceReportName))
		require.NoError(t, err)
		var summary compare.Summary
		require.NoError(t, json.Unmarshal(data, &summary))
		assert.Equal(t, 3, summary.DatasetCount)
		assert.Equal(t, 1, summary.CorruptedCount)
		assert.InDelta(t, 50.0, summary.InvalidPercent, 1e-9)
		require.Len(t, summary.NewErrors, 1)
		assert.Equal(t, "duplicate_key", summary.NewErrors[0].Code)
	})

	t.Run("passes with raised threshold", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "summary.json")
		stdout, err := execute(t, "acceptance", "--ui", "off", "--threshold", "50", "-o", out, root)
		require.NoError(t, err)
		assert.Contains(t, stdout, "PASSED")
		assert.FileExists(t, out)
	})

	t.Run("bad ui mode", func(t *testing.T) {
		_, err := execute(t, "acceptance", "--ui", "sometimes", root)
		require.Error(t, err)
	})
}

func TestConfigFile(t *testing.T) {
	root := t.TempDir()
	writeJSON(t, filepath.Join(root, "ds", "base.json"), cleanReport)
	writeJSON(t, filepath.Join(root, "ds", "head.json"), cleanReport)
	cfgPath := filepath.Join(t.TempDir(), "noticekit.toml")
	writeJSON(t, cfgPath, "[compare]\nreference_report = \"base.json\"\nlatest_report = \"head.json\"\n")

	stdout, err := execute(t, "--config", cfgPath, "acceptance", "--ui", "off", root)
	require.NoError(t, err)
	assert.Contains(t, stdout, "datasets: 1, corrupted: 0")
}

func TestVersionJSON(t *testing.T) {
	stdout, err := execute(t, "version", "--format", "json", "--full")
	require.NoError(t, err)
	var payload versionPayload
	require.NoError(t, json.Unmarshal([]byte(stdout), &payload))
	assert.Equal(t, "noticekit", payload.Tool)
	assert.NotEmpty(t, payload.Version)
	assert.Equal(t, "unknown", payload.BuildDate)
}

func TestGlobalFlags(t *testing.T) {
	_, err := execute(t, "--color", "purple", "version")
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "report.json")
	writeJSON(t, path, cleanReport)
	_, err = execute(t, "--timings", "--verbose", "summarize", path)
	require.NoError(t, err)

	cpu := filepath.Join(t.TempDir(), "cpu.pprof")
	_, err = execute(t, "--cpu-profile", cpu, "summarize", path)
	require.NoError(t, err)
	assert.FileExists(t, cpu)
}

func TestReadTriState(t *testing.T) {
	cases := map[string]triState{"": triAuto, "AUTO": triAuto, " on ": triOn, "off": triOff}
	for in, want := range cases {
		got, err := readTriState("ui", in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := readTriState("ui", "yes")
	assert.EqualError(t, err, `invalid --ui value "yes" (expected auto|on|off)`)
	assert.True(t, triOn.enabled(nil))
	assert.False(t, triAuto.enabled(nil))
}
