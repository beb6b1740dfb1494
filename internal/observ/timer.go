// Package observ measures how long each pass of a run takes and which
// files were the slowest to get through it.
package observ

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
)

// slowestKept is how many per-file samples a report lists.
const slowestKept = 5

// Phase is one pass of a run (collect, load, index, check, apply).
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
	Files int
}

// FileSample is the time one file spent inside one pass.
type FileSample struct {
	Phase string
	Path  string
	Dur   time.Duration
}

// Timer records passes and per-file samples. Safe for concurrent use: the
// driver reports files from every worker. A nil *Timer records nothing.
type Timer struct {
	mu      sync.Mutex
	phases  []Phase
	samples []FileSample
}

func NewTimer() *Timer { return &Timer{phases: make([]Phase, 0, 8)} }

// Begin starts a pass and returns its index.
func (t *Timer) Begin(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, Phase{Name: name, Start: time.Now()})
	return len(t.phases) - 1
}

// End finishes the pass at idx. Unknown indexes are ignored.
func (t *Timer) End(idx int, note string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = time.Since(p.Start)
	p.Note = note
}

// Track is Begin with the matching End returned.
func (t *Timer) Track(name string) func(note string) {
	if t == nil {
		return func(string) {}
	}
	idx := t.Begin(name)
	return func(note string) { t.End(idx, note) }
}

// File records that path took d inside phase and counts it for the pass
// with that name.
func (t *Timer) File(phase, path string, d time.Duration) {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples = append(t.samples, FileSample{Phase: phase, Path: path, Dur: d})
	for i := len(t.phases) - 1; i >= 0; i-- {
		if t.phases[i].Name == phase {
			t.phases[i].Files++
			break
		}
	}
}

// Summary returns a human-readable table of the report.
func (t *Timer) Summary() string {
	return t.Report().String()
}

// PhaseReport - сжатая информация о фазе для сериализации.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Files      int     `json:"files,omitempty"`
	Note       string  `json:"note,omitempty"`
}

// FileReport is one of the slowest per-file samples.
type FileReport struct {
	Phase      string  `json:"phase"`
	Path       string  `json:"path"`
	DurationMS float64 `json:"duration_ms"`
}

// Report - агрегированные данные таймера.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
	Slowest []FileReport  `json:"slowest,omitempty"`
}

// Report snapshots the passes, their total and the slowest file samples.
func (t *Timer) Report() Report {
	if t == nil {
		return Report{}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.phases) == 0 {
		return Report{}
	}

	report := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, phase := range t.phases {
		total += phase.Dur
		report.Phases[i] = PhaseReport{
			Name:       phase.Name,
			DurationMS: millis(phase.Dur),
			Files:      phase.Files,
			Note:       phase.Note,
		}
	}
	report.TotalMS = millis(total)

	samples := slices.Clone(t.samples)
	slices.SortStableFunc(samples, func(a, b FileSample) int {
		return cmp.Compare(b.Dur, a.Dur)
	})
	for _, s := range samples[:min(len(samples), slowestKept)] {
		report.Slowest = append(report.Slowest, FileReport{Phase: s.Phase, Path: s.Path, DurationMS: millis(s.Dur)})
	}
	return report
}

func (r Report) String() string {
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range r.Phases {
		fmt.Fprintf(&sb, "  %-10s %8.2f ms", p.Name, p.DurationMS)
		if p.Files > 0 {
			fmt.Fprintf(&sb, "  %d files", p.Files)
		}
		if p.Note != "" {
			sb.WriteString("  // " + p.Note)
		}
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "  %-10s %8.2f ms\n", "total", r.TotalMS)
	if len(r.Slowest) > 0 {
		sb.WriteString("slowest files:\n")
		for _, f := range r.Slowest {
			fmt.Fprintf(&sb, "  %8.2f ms  %-6s %s\n", f.DurationMS, f.Phase, f.Path)
		}
	}
	return sb.String()
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
