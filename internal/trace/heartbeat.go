package trace

import (
	"fmt"
	"sync"
	"time"
)

// Heartbeat emits a periodic event naming the file spans still open, so a
// run stuck on one PHP file can be told from a slow one.
type Heartbeat struct {
	tracer   Tracer
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
	once     sync.Once
}

// StartHeartbeat starts the heartbeat goroutine. It returns nil for a
// disabled tracer or a non-positive interval; Stop accepts nil.
func StartHeartbeat(tracer Tracer, interval time.Duration) *Heartbeat {
	if tracer == nil || !tracer.Enabled() || interval <= 0 {
		return nil
	}
	h := &Heartbeat{
		tracer:   tracer,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Heartbeat) run() {
	defer close(h.done)
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for beat := 1; ; beat++ {
		select {
		case now := <-ticker.C:
			h.tracer.Emit(beatEvent(beat, now, inflight.oldest()))
		case <-h.stop:
			return
		}
	}
}

func beatEvent(beat int, now time.Time, open []openFile) *Event {
	ev := &Event{
		Time:   now,
		Kind:   KindHeartbeat,
		Scope:  ScopeDriver,
		Name:   "heartbeat",
		Detail: fmt.Sprintf("#%d", beat),
		Extra:  map[string]string{"open": fmt.Sprint(len(open))},
	}
	if len(open) > 0 {
		ev.File = open[0].path
		ev.Extra["oldest"] = now.Sub(open[0].started).Round(time.Millisecond).String()
	}
	return ev
}

// Stop ends the heartbeat and waits for the goroutine.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		close(h.stop)
		<-h.done
	})
}
