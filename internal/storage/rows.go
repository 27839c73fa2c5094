package storage

import (
	sorted "github.com/tobshub/go-sortedmap"

	"github.com/minisql/minisql/internal/types"
	"github.com/minisql/minisql/pkg"
)

// Row maps column name to value. Rows are open maps: the table's
// column order is the schema, a row only carries the keys it was
// given. A missing key reads as null.
type Row = pkg.Map[string, types.Value]

type rowEntry struct {
	Seq int
	Row Row
}

// RowSet keeps a table's rows in insertion order, keyed by a
// monotonically increasing sequence number. Row identity is
// positional; the sequence never leaves this package.
type RowSet struct {
	seq int
	m   *sorted.SortedMap[int, rowEntry]
}

func rowEntryLess(a, b rowEntry) bool { return a.Seq < b.Seq }

func NewRowSet() *RowSet {
	return &RowSet{m: sorted.New[int, rowEntry](0, rowEntryLess)}
}

func (r *RowSet) Len() int { return r.m.Len() }

func (r *RowSet) Append(row Row) {
	r.seq++
	r.m.Insert(r.seq, rowEntry{Seq: r.seq, Row: row})
}

// All returns the rows in insertion order. The returned slice is fresh
// but the rows themselves are the live maps.
func (r *RowSet) All() []Row {
	rows := make([]Row, 0, r.m.Len())
	for _, e := range r.entries() {
		rows = append(rows, e.Row)
	}
	return rows
}

// DeleteWhere removes every row the predicate matches and returns the
// removed count.
func (r *RowSet) DeleteWhere(match func(Row) bool) int {
	doomed := []int{}
	for _, e := range r.entries() {
		if match(e.Row) {
			doomed = append(doomed, e.Seq)
		}
	}
	for _, seq := range doomed {
		r.m.Delete(seq)
	}
	return len(doomed)
}

// Clear drops every row and returns how many were dropped.
func (r *RowSet) Clear() int {
	n := r.m.Len()
	r.m = sorted.New[int, rowEntry](0, rowEntryLess)
	return n
}

func (r *RowSet) entries() []rowEntry {
	entries := make([]rowEntry, 0, r.m.Len())
	iter, err := r.m.IterCh()
	if err != nil {
		// empty set
		return entries
	}
	for rec := range iter.Records() {
		entries = append(entries, rec.Val)
	}
	return entries
}
