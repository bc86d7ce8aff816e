package report

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noticekit/internal/notice"
)

func TestParse_Valid(t *testing.T) {
	doc := `{
  "notices": [
    {"code": "a", "severity": "ERROR", "totalNotices": 4, "notices": [{"row": 1}, {"row": 2}]},
    {"code": "b", "severity": "WARNING", "totalNotices": 1, "notices": []},
    {"code": "a", "severity": "WARNING", "totalNotices": 2},
    {"code": "c", "severity": "ERROR", "totalNotices": 7, "notices": [], "extra": true}
  ]
}`
	r, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, 4, r.Len())
	assert.Equal(t, []string{"a", "c"}, r.ErrorCodes())
	assert.True(t, r.HasErrorCode("a"))
	assert.False(t, r.HasErrorCode("b"))
	assert.True(t, r.HasErrors())
	assert.Equal(t, 6, r.TotalNotices("a"))
	assert.Equal(t, 4, r.ErrorNotices("a"))

	first := r.Notices()[0]
	assert.Equal(t, notice.SevError, first.Severity)
	require.Len(t, first.Notices, 2)
	assert.JSONEq(t, `{"row": 1}`, string(first.Notices[0]))
	assert.NotNil(t, r.Notices()[2].Notices)
}

func TestParse_ErrorCodesDeduplicated(t *testing.T) {
	r := NewValidationReport([]NoticeSummary{
		{Code: "z", Severity: notice.SevError, TotalNotices: 1},
		{Code: "y", Severity: notice.SevInfo, TotalNotices: 1},
		{Code: "z", Severity: notice.SevError, TotalNotices: 2},
		{Code: "x", Severity: notice.SevError, TotalNotices: 1},
	})
	assert.Equal(t, []string{"z", "x"}, r.ErrorCodes())
	assert.False(t, r.HasErrorCode("y"))
}

func TestParse_NoErrors(t *testing.T) {
	r, err := ParseBytes([]byte(`{"notices": [{"code": "w", "severity": "WARNING", "totalNotices": 1}]}`))
	require.NoError(t, err)
	assert.Empty(t, r.ErrorCodes())
	assert.False(t, r.HasErrors())
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		index int
		field string
	}{
		{"missing notices", `{"summary": {}}`, -1, "notices"},
		{"notices not array", `{"notices": {"code": "a"}}`, -1, "notices"},
		{"notices null", `{"notices": null}`, -1, "notices"},
		{"not an object", `[1, 2]`, -1, ""},
		{"not json", `{"notices": [`, -1, ""},
		{"element not object", `{"notices": [5]}`, 0, ""},
		{"element null", `{"notices": [null]}`, 0, "code"},
		{"missing code", `{"notices": [{"severity": "ERROR", "totalNotices": 1}]}`, 0, "code"},
		{"empty code", `{"notices": [{"code": "", "severity": "ERROR", "totalNotices": 1}]}`, 0, "code"},
		{"code wrong type", `{"notices": [{"code": 3, "severity": "ERROR", "totalNotices": 1}]}`, 0, "code"},
		{"missing severity", `{"notices": [{"code": "a", "totalNotices": 1}]}`, 0, "severity"},
		{"unknown severity", `{"notices": [{"code": "a", "severity": "FATAL", "totalNotices": 1}]}`, 0, "severity"},
		{"missing total", `{"notices": [{"code": "a", "severity": "ERROR"}]}`, 0, "totalNotices"},
		{"fractional total", `{"notices": [{"code": "a", "severity": "ERROR", "totalNotices": 1.5}]}`, 0, "totalNotices"},
		{"string total", `{"notices": [{"code": "a", "severity": "ERROR", "totalNotices": "1"}]}`, 0, "totalNotices"},
		{"negative total", `{"notices": [{"code": "a", "severity": "ERROR", "totalNotices": -1}]}`, 0, "totalNotices"},
		{"samples not array", `{"notices": [{"code": "a", "severity": "ERROR", "totalNotices": 1, "notices": {}}]}`, 0, "notices"},
		{"code in other case", `{"notices": [{"CODE": "a", "severity": "ERROR", "totalNotices": 1}]}`, 0, "code"},
		{"severity in other case", `{"notices": [{"code": "a", "Severity": "ERROR", "totalNotices": 1}]}`, 0, "severity"},
		{"total in other case", `{"notices": [{"code": "a", "severity": "ERROR", "TOTALNOTICES": 3}]}`, 0, "totalNotices"},
		{"null code", `{"notices": [{"code": null, "severity": "ERROR", "totalNotices": 1}]}`, 0, "code"},
		{"second element bad", `{"notices": [{"code": "a", "severity": "ERROR", "totalNotices": 1}, {"code": "b"}]}`, 1, "severity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := ParseBytes([]byte(tt.doc))
			require.Error(t, err)
			assert.Nil(t, r)
			assert.ErrorIs(t, err, ErrMalformedReport)

			var merr *MalformedReportError
			require.True(t, errors.As(err, &merr))
			assert.Equal(t, tt.index, merr.Index)
			if tt.field != "" {
				assert.Equal(t, tt.field, merr.Field)
			}
		})
	}
}

func TestParseFile_Missing(t *testing.T) {
	_, err := ParseFile("does/not/exist.json")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMalformedReport)
}

func TestMalformedReportError_Message(t *testing.T) {
	err := malformed(2, "severity", "missing", nil)
	assert.Equal(t, `malformed report: notices[2]: field "severity": missing`, err.Error())
}
