package storage

import (
	"github.com/minisql/minisql/internal/types"
)

// Index is a derived mapping from a column's value to the rows
// currently holding it, in row order. It is always re-derivable from
// the table's rows; only the indexed column name is ever persisted.
type Index struct {
	Column  string
	buckets map[string][]Row
}

func NewIndex(column string) *Index {
	return &Index{Column: column, buckets: map[string][]Row{}}
}

// Add appends a row under its current value for the indexed column.
// A row without the column lands in the null bucket.
func (ix *Index) Add(row Row) {
	key := row.Get(ix.Column).Key()
	ix.buckets[key] = append(ix.buckets[key], row)
}

func (ix *Index) Lookup(value types.Value) []Row {
	return ix.buckets[value.Key()]
}

func (ix *Index) Rebuild(rows []Row) {
	ix.buckets = map[string][]Row{}
	for _, row := range rows {
		ix.Add(row)
	}
}
