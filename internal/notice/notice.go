package notice

// Kind discriminates the two notice variants.
type Kind uint8

const (
	// KindValidation marks notices produced by rule checks.
	KindValidation Kind = iota + 1
	// KindSystemError marks notices produced by infrastructure failures.
	KindSystemError
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindSystemError:
		return "system_error"
	}
	return "unknown"
}

// Context is the structured payload describing one occurrence.
// Its shape belongs to the producing rule; it must be JSON-serialisable.
type Context map[string]any

// MappingKey is the (code, severity) pair notices are counted and grouped by.
type MappingKey struct {
	Code     string
	Severity Severity
}

// String returns code concatenated with severity, the report ordering key.
func (k MappingKey) String() string {
	return k.Code + k.Severity.String()
}

// Less orders keys by ascending lexical order of String.
func (k MappingKey) Less(other MappingKey) bool {
	return k.String() < other.String()
}

// Notice is a single immutable finding.
type Notice struct {
	Kind     Kind     `msgpack:"kind"`
	Code     string   `msgpack:"code"`
	Severity Severity `msgpack:"severity"`
	Context  Context  `msgpack:"context"`
}

// NewValidation builds a validation notice.
func NewValidation(code string, sev Severity, ctx Context) Notice {
	return Notice{
		Kind:     KindValidation,
		Code:     code,
		Severity: sev,
		Context:  ctx,
	}
}

// NewSystemError builds a system error; system errors are always SevError.
func NewSystemError(code string, ctx Context) Notice {
	return Notice{
		Kind:     KindSystemError,
		Code:     code,
		Severity: SevError,
		Context:  ctx,
	}
}

func (n Notice) MappingKey() MappingKey {
	return MappingKey{Code: n.Code, Severity: n.Severity}
}

// IsError reports whether the notice has error severity.
func (n Notice) IsError() bool {
	return n.Severity.IsError()
}

func (n Notice) IsSystemError() bool {
	return n.Kind == KindSystemError
}
