package notice

// Reporter is the minimal contract rule code uses to emit findings.
// Implementations: RecorderReporter (stores into a Recorder), NopReporter.
type Reporter interface {
	Report(code string, sev Severity, ctx Context)
	ReportSystemError(code string, ctx Context)
}

// RecorderReporter writes into a *Recorder.
type RecorderReporter struct{ Recorder *Recorder }

func (r RecorderReporter) Report(code string, sev Severity, ctx Context) {
	if r.Recorder == nil {
		return
	}
	r.Recorder.AddValidationNotice(NewValidation(code, sev, ctx))
}

func (r RecorderReporter) ReportSystemError(code string, ctx Context) {
	if r.Recorder == nil {
		return
	}
	r.Recorder.AddSystemError(NewSystemError(code, ctx))
}

// NopReporter discards everything.
type NopReporter struct{}

func (NopReporter) Report(string, Severity, Context) {}

func (NopReporter) ReportSystemError(string, Context) {}
