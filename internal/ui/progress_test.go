package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bugfree/internal/driver"
)

func feed(t *testing.T, m *progressModel, events ...driver.Event) {
	t.Helper()
	for _, ev := range events {
		_, cmd := m.Update(eventMsg(ev))
		require.NotNil(t, cmd)
	}
}

func TestProgressModelTracksFiles(t *testing.T) {
	m := NewProgressModel("checking", nil).(*progressModel)

	feed(t, m,
		driver.Event{File: "a.php", Stage: driver.StageLoad, Status: driver.StatusQueued},
		driver.Event{File: "b.php", Stage: driver.StageLoad, Status: driver.StatusQueued},
		driver.Event{File: "a.php", Stage: driver.StageCheck, Status: driver.StatusWorking},
	)
	require.Len(t, m.items, 2)
	assert.Equal(t, "checking", m.items[0].status)
	assert.Equal(t, "queued", m.items[1].status)

	view := m.View()
	assert.Contains(t, view, "a.php")
	assert.NotContains(t, view, "b.php", "queued files are folded")
	assert.Contains(t, view, "0/2 files")

	feed(t, m,
		driver.Event{File: "a.php", Status: driver.StatusDone},
		driver.Event{File: "b.php", Status: driver.StatusError, Err: errors.New("boom")},
	)
	assert.Equal(t, 2, m.finished())

	_, cmd := m.Update(doneMsg{})
	require.NotNil(t, cmd)
	assert.True(t, m.done)
	view = m.View()
	assert.True(t, strings.Contains(view, "done: checking"))
	assert.Contains(t, view, "b.php", "failed files stay listed")
	assert.NotContains(t, view, "a.php")
}

func TestStatusLabels(t *testing.T) {
	assert.Equal(t, "indexing", statusLabel(driver.StageIndex, driver.StatusWorking))
	assert.Equal(t, "fixing", statusLabel(driver.StageApply, driver.StatusWorking))
	assert.Equal(t, "error", statusLabel(driver.StageCheck, driver.StatusError))
	assert.Equal(t, "", statusLabel("", ""))
	assert.Equal(t, 0.7, progressFromStage(driver.StageCheck))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short.php", truncate("short.php", 20))
	assert.Equal(t, "abc", truncate("abcdef", 3))
	assert.LessOrEqual(t, len(truncate("src/very/long/path/File.php", 10)), 10)
}
