package trace

import (
	"io"
	"sync"
)

// RingTracer keeps the last events of a run in memory. The lint command
// dumps it when files fail, so the tail leading up to a failure survives
// without streaming the whole trace.
type RingTracer struct {
	mu     sync.Mutex
	events []Event
	next   int // total events stored; next slot is next % len(events)
	level  Level
}

func NewRingTracer(capacity int, level Level) *RingTracer {
	if capacity <= 0 {
		capacity = defaultRingSize
	}
	return &RingTracer{events: make([]Event, capacity), level: level}
}

// Emit stores a copy of ev. At LevelError every scope is kept, since the
// ring is only read after a failure.
func (t *RingTracer) Emit(ev *Event) {
	if t.level != LevelError && ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	stored := *ev
	stored.Seq = NextSeq()

	t.mu.Lock()
	t.events[t.next%len(t.events)] = stored
	t.next++
	t.mu.Unlock()
}

// Snapshot returns the stored events, oldest first.
func (t *RingTracer) Snapshot() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	size := len(t.events)
	if t.next <= size {
		return append([]Event(nil), t.events[:t.next]...)
	}
	head := t.next % size
	out := make([]Event, 0, size)
	out = append(out, t.events[head:]...)
	return append(out, t.events[:head]...)
}

// Dump writes the stored events to w.
func (t *RingTracer) Dump(w io.Writer, format Format) error {
	for _, ev := range t.Snapshot() {
		if _, err := w.Write(FormatEvent(&ev, format)); err != nil {
			return err
		}
	}
	return nil
}

func (t *RingTracer) Flush() error { return nil }

func (t *RingTracer) Close() error { return nil }

func (t *RingTracer) Level() Level { return t.level }

func (t *RingTracer) Enabled() bool { return t.level > LevelOff }
