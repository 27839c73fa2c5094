package commitlog_test

import (
	"testing"

	"github.com/minisql/minisql/internal/commitlog"
	"gotest.tools/assert"
)

func newPopulatedLog(n int) *commitlog.Log {
	l := commitlog.New()
	for i := 0; i < n; i++ {
		l.Log(commitlog.NewEntry("default", "INSERT", map[string]any{"n": i}))
	}
	return l
}

func TestLogOrdering(t *testing.T) {
	l := newPopulatedLog(5)
	assert.Equal(t, l.Pending(), 5)

	snapshot := l.Snapshot()
	for i, entry := range snapshot {
		assert.Equal(t, entry.Payload["n"], i)
		assert.Assert(t, entry.Id.String() != "")
	}
}

func TestCommitDrains(t *testing.T) {
	l := newPopulatedLog(3)
	flushed := l.Commit()

	assert.Equal(t, len(flushed), 3)
	assert.Equal(t, l.Pending(), 0)
	assert.Equal(t, len(l.Snapshot()), 0)

	// order survives the flush
	for i, entry := range flushed {
		assert.Equal(t, entry.Payload["n"], i)
	}
}

func TestCommitEmptyLog(t *testing.T) {
	l := commitlog.New()
	assert.Equal(t, len(l.Commit()), 0)
	assert.Equal(t, l.Pending(), 0)
}

func TestCompactCapsHistory(t *testing.T) {
	l := newPopulatedLog(25)
	l.Compact()
	assert.Equal(t, l.Pending(), 10)

	// the most recent entries survive
	snapshot := l.Snapshot()
	assert.Equal(t, snapshot[0].Payload["n"], 15)
	assert.Equal(t, snapshot[9].Payload["n"], 24)
}

func TestSnapshotIsACopy(t *testing.T) {
	l := newPopulatedLog(2)
	snapshot := l.Snapshot()
	snapshot[0] = commitlog.NewEntry("other", "DELETE", nil)
	assert.Equal(t, l.Snapshot()[0].Database, "default")
	assert.Equal(t, snapshot[0].Database, "other")
}
