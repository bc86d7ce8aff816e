package notice

const (
	// DefaultMaxTotalValidationNotices bounds the total amount of retained
	// validation notices. It protects against inputs where every row of a
	// large table produces a notice. System errors are not limited.
	DefaultMaxTotalValidationNotices = 10_000_000
	// DefaultMaxPerNoticeTypeAndSeverity bounds retained notices per mapping key.
	DefaultMaxPerNoticeTypeAndSeverity = 100_000
	// DefaultMaxExportPerNoticeType bounds exported sample contexts per mapping key.
	DefaultMaxExportPerNoticeType = 1_000
)

// Limits configures the capacity bounds of a Recorder.
type Limits struct {
	MaxTotalValidationNotices   int `toml:"max_total_validation_notices" msgpack:"max_total"`
	MaxPerNoticeTypeAndSeverity int `toml:"max_per_notice_type_and_severity" msgpack:"max_per_type"`
	MaxExportPerNoticeType      int `toml:"max_export_per_notice_type" msgpack:"max_export"`
}

// DefaultLimits returns the limits used when nothing is configured.
func DefaultLimits() Limits {
	return Limits{
		MaxTotalValidationNotices:   DefaultMaxTotalValidationNotices,
		MaxPerNoticeTypeAndSeverity: DefaultMaxPerNoticeTypeAndSeverity,
		MaxExportPerNoticeType:      DefaultMaxExportPerNoticeType,
	}
}

// WithDefaults replaces non-positive fields with their defaults.
func (l Limits) WithDefaults() Limits {
	def := DefaultLimits()
	if l.MaxTotalValidationNotices <= 0 {
		l.MaxTotalValidationNotices = def.MaxTotalValidationNotices
	}
	if l.MaxPerNoticeTypeAndSeverity <= 0 {
		l.MaxPerNoticeTypeAndSeverity = def.MaxPerNoticeTypeAndSeverity
	}
	if l.MaxExportPerNoticeType <= 0 {
		l.MaxExportPerNoticeType = def.MaxExportPerNoticeType
	}
	return l
}

// EffectiveSamplesPerType is the most samples a report can carry per key.
func (l Limits) EffectiveSamplesPerType() int {
	return min(l.MaxPerNoticeTypeAndSeverity, l.MaxExportPerNoticeType)
}
