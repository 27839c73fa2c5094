package commitlog

import (
	"github.com/google/uuid"
)

// history_cap bounds the residue Compact leaves behind. Compact runs
// on the freshly drained buffer after a commit, so in practice it
// never trims anything; the cap is kept for parity with the observed
// behavior rather than as a correctness mechanism.
const history_cap = 10

// Entry is one staged mutation record. Payload is opaque to the log.
type Entry struct {
	Id       uuid.UUID      `json:"id"`
	Database string         `json:"db"`
	Command  string         `json:"command"`
	Payload  map[string]any `json:"payload,omitempty"`
}

func NewEntry(database, command string, payload map[string]any) Entry {
	return Entry{
		Id:       uuid.Must(uuid.NewV7()),
		Database: database,
		Command:  command,
		Payload:  payload,
	}
}

// Log is an ordered in-memory staging buffer of mutation records. It
// is not a durable write-ahead log: entries accumulate until COMMIT
// drains them.
type Log struct {
	entries []Entry
}

func New() *Log { return &Log{entries: []Entry{}} }

func (l *Log) Log(entry Entry) {
	l.entries = append(l.entries, entry)
}

func (l *Log) Pending() int { return len(l.entries) }

// Snapshot returns a copy of the pending entries in append order.
func (l *Log) Snapshot() []Entry {
	return append([]Entry{}, l.entries...)
}

// Commit atomically drains the buffer and returns the flushed entries
// in append order. The buffer is empty afterwards.
func (l *Log) Commit() []Entry {
	flushed := l.entries
	l.entries = []Entry{}
	l.Compact()
	return flushed
}

// Compact trims the buffer to its most recent entries.
func (l *Log) Compact() {
	if len(l.entries) > history_cap {
		l.entries = l.entries[len(l.entries)-history_cap:]
	}
}
