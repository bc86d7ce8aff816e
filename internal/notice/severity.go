package notice

import "fmt"

// Severity defines the importance of a notice.
// Levels are ordered: SevInfo < SevWarning < SevError.
type Severity uint8

const (
	// SevInfo is for informational notices.
	SevInfo Severity = iota
	// SevWarning is for warning notices.
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}

// IsError reports whether s is the error level.
func (s Severity) IsError() bool {
	return s == SevError
}

// ParseSeverity converts the exported string form back to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "INFO":
		return SevInfo, nil
	case "WARNING":
		return SevWarning, nil
	case "ERROR":
		return SevError, nil
	default:
		return SevInfo, fmt.Errorf("invalid severity: %q (expected: INFO|WARNING|ERROR)", s)
	}
}

// MarshalText encodes the severity as its string form.
func (s Severity) MarshalText() ([]byte, error) {
	if s > SevError {
		return nil, fmt.Errorf("invalid severity: %d", uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes the string form produced by MarshalText.
func (s *Severity) UnmarshalText(text []byte) error {
	sev, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = sev
	return nil
}
