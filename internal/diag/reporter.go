package diag

// Reporter - минимальный контракт получения диагностик от проверок.
// Severity не передаётся: её определяет реализация по таблице Levels.
type Reporter interface {
	Report(kind Kind, line int, msg string)
}

// Sink is the per-file Reporter. It looks the severity up in Levels and
// drops suppressed kinds without materializing them.
type Sink struct {
	path   string
	levels Levels
	bag    *Bag
}

// NewSink binds a sink to one file. A nil levels table uses DefaultLevels.
func NewSink(path string, levels Levels) *Sink {
	if levels == nil {
		levels = DefaultLevels()
	}
	return &Sink{path: path, levels: levels, bag: NewBag(0)}
}

// Report records a diagnostic. It panics when kind has no configured level.
func (s *Sink) Report(kind Kind, line int, msg string) {
	sev := s.levels.Lookup(kind)
	if sev == SevSuppress {
		return
	}
	s.bag.Add(Diagnostic{
		Severity: sev,
		Kind:     kind,
		Path:     s.path,
		Line:     line,
		Message:  msg,
	})
}

// Diagnostics returns everything reported so far, in emission order.
func (s *Sink) Diagnostics() []Diagnostic {
	return s.bag.Items()
}

// Path is the file the sink reports against.
func (s *Sink) Path() string { return s.path }
