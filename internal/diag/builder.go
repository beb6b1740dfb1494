package diag

// New builds a diagnostic outside of a Sink, e.g. for front-end failures
// that happen before a checker exists.
func New(sev Severity, kind Kind, path string, line int, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Kind:     kind,
		Path:     path,
		Line:     line,
		Message:  msg,
	}
}

func NewError(kind Kind, path string, line int, msg string) Diagnostic {
	return New(SevError, kind, path, line, msg)
}
