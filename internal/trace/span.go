package trace

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

var (
	seqCounter  atomic.Uint64
	spanCounter atomic.Uint64
)

// NextSeq returns a monotonically increasing sequence number.
func NextSeq() uint64 { return seqCounter.Add(1) }

func nextSpanID() uint64 { return spanCounter.Add(1) }

// Span tracks one begin/end pair. A Span from a disabled tracer is inert.
type Span struct {
	tracer   Tracer
	id       uint64
	parentID uint64
	scope    Scope
	file     string
	name     string
	started  time.Time
	extra    map[string]string
}

// Begin starts a span and emits its begin event. parent is 0 for a root
// span, file is "" outside per-file work.
func Begin(t Tracer, scope Scope, name, file string, parent uint64) *Span {
	if t == nil || !t.Enabled() || !t.Level().ShouldEmit(scope) {
		return &Span{tracer: Nop}
	}

	s := &Span{
		tracer:   t,
		id:       nextSpanID(),
		parentID: parent,
		scope:    scope,
		file:     file,
		name:     name,
		started:  time.Now(),
	}
	if file != "" {
		inflight.add(s.id, file, s.started)
	}
	t.Emit(&Event{
		Time:     s.started,
		Kind:     KindSpanBegin,
		Scope:    scope,
		SpanID:   s.id,
		ParentID: parent,
		File:     file,
		Name:     name,
	})
	return s
}

// End emits the end event and returns the span duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.id == 0 {
		return 0
	}
	if s.file != "" {
		inflight.remove(s.id)
	}
	dur := time.Since(s.started)
	s.tracer.Emit(&Event{
		Time:     time.Now(),
		Kind:     KindSpanEnd,
		Scope:    s.scope,
		SpanID:   s.id,
		ParentID: s.parentID,
		File:     s.file,
		Name:     s.name,
		Detail:   detail,
		Extra:    s.extra,
	})
	return dur
}

// WithExtra adds a key-value pair to the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.id == 0 {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string)
	}
	s.extra[key] = value
	return s
}

// ID returns the span ID, 0 for an inert span.
func (s *Span) ID() uint64 {
	if s == nil {
		return 0
	}
	return s.id
}

// openFile is a file span that has begun and not yet ended.
type openFile struct {
	path    string
	started time.Time
}

// fileTracker records open file spans so the heartbeat can name the file
// a stuck run is working on.
type fileTracker struct {
	mu    sync.Mutex
	spans map[uint64]openFile
}

var inflight = &fileTracker{spans: make(map[uint64]openFile)}

func (ft *fileTracker) add(id uint64, path string, started time.Time) {
	ft.mu.Lock()
	ft.spans[id] = openFile{path: path, started: started}
	ft.mu.Unlock()
}

func (ft *fileTracker) remove(id uint64) {
	ft.mu.Lock()
	delete(ft.spans, id)
	ft.mu.Unlock()
}

// oldest returns the open file spans, longest running first.
func (ft *fileTracker) oldest() []openFile {
	ft.mu.Lock()
	list := make([]openFile, 0, len(ft.spans))
	for _, f := range ft.spans {
		list = append(list, f)
	}
	ft.mu.Unlock()
	sort.Slice(list, func(i, j int) bool {
		if !list[i].started.Equal(list[j].started) {
			return list[i].started.Before(list[j].started)
		}
		return list[i].path < list[j].path
	})
	return list
}
