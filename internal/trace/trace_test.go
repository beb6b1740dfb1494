package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelScopes(t *testing.T) {
	assert.True(t, LevelPhase.ShouldEmit(ScopePass))
	assert.False(t, LevelPhase.ShouldEmit(ScopeFile))
	assert.True(t, LevelDetail.ShouldEmit(ScopeFile))
	assert.False(t, LevelError.ShouldEmit(ScopeDriver))
	assert.False(t, LevelOff.ShouldEmit(ScopeDriver))

	lvl, err := ParseLevel("DETAIL")
	require.NoError(t, err)
	assert.Equal(t, LevelDetail, lvl)
	_, err = ParseLevel("loud")
	assert.Error(t, err)
	assert.Equal(t, "phase", LevelPhase.String())
}

func TestStreamTracerText(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)
	ctx := WithTracer(context.Background(), tr)

	ctx, pass := Start(ctx, ScopePass, "check")
	fctx, file := StartFile(ctx, "check", "src/a.php")
	Note(fctx, ScopeFile, "cache write failed", "disk full")
	file.WithExtra("diags", "2").End("")
	pass.End("1 file")
	require.NoError(t, tr.Flush())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "→ check")
	assert.Contains(t, lines[1], "  → check @src/a.php")
	assert.Contains(t, lines[2], "cache write failed @src/a.php (disk full)")
	assert.Contains(t, lines[3], "{diags=2}")
	assert.Contains(t, lines[4], "← check (1 file)")
}

func TestStreamTracerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	Begin(tr, ScopeFile, "check", "a.php", 0).End("")
	require.NoError(t, tr.Flush())
	assert.Empty(t, buf.String())
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeDriver, "config", "bugfree.toml")
	require.NoError(t, tr.Close())

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "point", got["kind"])
	assert.Equal(t, "driver", got["scope"])
	assert.Equal(t, "bugfree.toml", got["detail"])
	assert.NotContains(t, got, "file")
}

func TestRingTracerWraps(t *testing.T) {
	ring := NewRingTracer(3, LevelError)
	for _, name := range []string{"a", "b", "c", "d"} {
		Point(ring, ScopeFile, name, "")
	}
	events := ring.Snapshot()
	require.Len(t, events, 3)
	assert.Equal(t, "b", events[0].Name)
	assert.Equal(t, "d", events[2].Name)
	assert.Less(t, events[0].Seq, events[2].Seq)

	var buf bytes.Buffer
	require.NoError(t, ring.Dump(&buf, FormatText))
	assert.Equal(t, 3, strings.Count(buf.String(), "\n"))
}

func TestMultiTracerRing(t *testing.T) {
	var buf bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &buf})
	require.NoError(t, err)
	multi, ok := tr.(*MultiTracer)
	require.True(t, ok)
	require.NotNil(t, multi.Ring())

	Begin(tr, ScopeDriver, "lint", "", 0).End("")
	require.NoError(t, tr.Flush())
	assert.Len(t, multi.Ring().Snapshot(), 2)
	assert.NotEmpty(t, buf.String())

	single, err := New(Config{Level: LevelPhase, Mode: ModeRing})
	require.NoError(t, err)
	assert.IsType(t, &RingTracer{}, single)
}

func TestNopTracer(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	require.NoError(t, err)
	assert.False(t, tr.Enabled())
	span := Begin(tr, ScopeDriver, "lint", "", 0)
	assert.Zero(t, span.ID())
	assert.Zero(t, span.End(""))
	assert.Equal(t, Nop, FromContext(context.Background()))
	Note(context.Background(), ScopeDriver, "ignored", "")
}

func TestParseFormatAndMode(t *testing.T) {
	f, err := ParseFormat("", "trace.ndjson")
	require.NoError(t, err)
	assert.Equal(t, FormatNDJSON, f)
	f, err = ParseFormat("", "-")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)
	_, err = ParseFormat("chrome", "")
	assert.Error(t, err)

	m, err := ParseMode("Both")
	require.NoError(t, err)
	assert.Equal(t, ModeBoth, m)
	assert.Equal(t, "both", m.String())
	_, err = ParseMode("disk")
	assert.Error(t, err)
}

func TestHeartbeatNamesOpenFile(t *testing.T) {
	ring := NewRingTracer(64, LevelDetail)
	span := Begin(ring, ScopeFile, "check", "src/slow.php", 0)
	defer span.End("")

	hb := StartHeartbeat(ring, 5*time.Millisecond)
	require.NotNil(t, hb)
	require.Eventually(t, func() bool {
		for _, ev := range ring.Snapshot() {
			if ev.Kind == KindHeartbeat && ev.File == "src/slow.php" {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)
	hb.Stop()
	hb.Stop()

	assert.Nil(t, StartHeartbeat(Nop, time.Second))
}

func TestBeatEvent(t *testing.T) {
	now := time.Now()
	ev := beatEvent(3, now, []openFile{{path: "a.php", started: now.Add(-2 * time.Second)}})
	assert.Equal(t, "#3", ev.Detail)
	assert.Equal(t, "a.php", ev.File)
	assert.Equal(t, "1", ev.Extra["open"])
	assert.Equal(t, "2s", ev.Extra["oldest"])

	idle := beatEvent(1, now, nil)
	assert.Empty(t, idle.File)
	assert.Equal(t, "0", idle.Extra["open"])
}
