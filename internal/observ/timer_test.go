package observ

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	done := tm.Track("load")
	done("3 files")
	idx := tm.Begin("check")
	tm.File("check", "a.php", 2*time.Millisecond)
	tm.File("check", "b.php", 7*time.Millisecond)
	tm.End(idx, "")
	tm.End(42, "ignored")

	report := tm.Report()
	require.Len(t, report.Phases, 2)
	assert.Equal(t, "load", report.Phases[0].Name)
	assert.Equal(t, "3 files", report.Phases[0].Note)
	assert.Equal(t, 2, report.Phases[1].Files)
	assert.GreaterOrEqual(t, report.TotalMS, 0.0)

	require.Len(t, report.Slowest, 2)
	assert.Equal(t, "b.php", report.Slowest[0].Path)
	assert.InDelta(t, 7.0, report.Slowest[0].DurationMS, 0.001)

	summary := tm.Summary()
	assert.True(t, strings.HasPrefix(summary, "timings:\n"))
	assert.Contains(t, summary, "// 3 files")
	assert.Contains(t, summary, "2 files")
	assert.Contains(t, summary, "slowest files:")
	assert.Contains(t, summary, "total")
}

func TestSlowestIsCapped(t *testing.T) {
	tm := NewTimer()
	tm.Begin("index")
	for i := range 9 {
		tm.File("index", "f.php", time.Duration(i)*time.Millisecond)
	}
	report := tm.Report()
	assert.Len(t, report.Slowest, slowestKept)
	assert.InDelta(t, 8.0, report.Slowest[0].DurationMS, 0.001)
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.Track("x")("")
	tm.File("x", "a.php", time.Second)
	assert.Empty(t, tm.Report().Phases)
}
