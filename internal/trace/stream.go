package trace

import (
	"bufio"
	"io"
	"os"
	"sync"
)

// StreamTracer writes events as they happen. Writes are buffered and
// flushed on Flush and Close.
type StreamTracer struct {
	mu     sync.Mutex
	out    io.Writer
	buf    *bufio.Writer
	level  Level
	format Format
}

func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	return &StreamTracer{out: w, buf: bufio.NewWriter(w), level: level, format: format}
}

// Emit writes ev. Write errors are dropped: a broken trace sink must not
// fail the lint run.
func (t *StreamTracer) Emit(ev *Event) {
	if ev.Kind != KindHeartbeat && !t.level.ShouldEmit(ev.Scope) {
		return
	}
	ev.Seq = NextSeq()
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	_, _ = t.buf.Write(data)
	// диагностика на stderr не должна задерживаться
	if t.out == os.Stderr {
		_ = t.buf.Flush()
	}
	t.mu.Unlock()
}

func (t *StreamTracer) Flush() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.Flush()
}

// Close flushes and closes the output unless it is stdout or stderr.
func (t *StreamTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}
	if t.out == os.Stderr || t.out == os.Stdout {
		return nil
	}
	if closer, ok := t.out.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (t *StreamTracer) Level() Level { return t.level }

func (t *StreamTracer) Enabled() bool { return t.level > LevelOff }
