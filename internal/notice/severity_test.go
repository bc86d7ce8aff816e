package notice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"noticekit/internal/notice"
)

func TestSeverity_ParseRoundTrip(t *testing.T) {
	for _, sev := range []notice.Severity{notice.SevInfo, notice.SevWarning, notice.SevError} {
		got, err := notice.ParseSeverity(sev.String())
		require.NoError(t, err)
		assert.Equal(t, sev, got)
	}
}

func TestSeverity_ParseRejectsUnknown(t *testing.T) {
	for _, s := range []string{"", "error", "FATAL", "UNKNOWN"} {
		_, err := notice.ParseSeverity(s)
		assert.Error(t, err, s)
	}
}

func TestSeverity_Ordering(t *testing.T) {
	assert.Less(t, notice.SevInfo, notice.SevWarning)
	assert.Less(t, notice.SevWarning, notice.SevError)
	assert.True(t, notice.SevError.IsError())
	assert.False(t, notice.SevWarning.IsError())
}

func TestMappingKey_String(t *testing.T) {
	k := notice.MappingKey{Code: "missing_required_field", Severity: notice.SevError}
	assert.Equal(t, "missing_required_fieldERROR", k.String())
	assert.True(t, k.Less(notice.MappingKey{Code: "missing_required_field", Severity: notice.SevWarning}))
}

func TestSystemErrorAlwaysError(t *testing.T) {
	n := notice.NewSystemError("x", nil)
	assert.True(t, n.IsError())
	assert.True(t, n.IsSystemError())
	assert.Equal(t, notice.KindSystemError, n.Kind)
}
