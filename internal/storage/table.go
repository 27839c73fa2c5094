package storage

import (
	"github.com/minisql/minisql/internal/parser"
	"github.com/minisql/minisql/pkg"
)

type Table struct {
	Name    string
	Columns []string
	Rows    *RowSet
	Indexes pkg.Map[string, *Index]
}

func NewTable(name string, columns []string) *Table {
	return &Table{
		Name:    name,
		Columns: append([]string{}, columns...),
		Rows:    NewRowSet(),
		Indexes: pkg.Map[string, *Index]{},
	}
}

func (t *Table) HasColumn(name string) bool {
	for _, col := range t.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// rowsFor is the WHERE-aware iterator: an index on the predicate
// column answers the lookup directly, otherwise every row is scanned
// for equality. This is the engine's only query-acceleration path.
func (t *Table) rowsFor(where *parser.Condition) []Row {
	if where == nil {
		return t.Rows.All()
	}
	if ix, ok := t.Indexes[where.Column]; ok {
		return ix.Lookup(where.Value)
	}
	return pkg.Filter(t.Rows.All(), func(row Row) bool {
		return row.Get(where.Column).Equal(where.Value)
	})
}

func (t *Table) rebuildIndex(column string) {
	ix, ok := t.Indexes[column]
	if !ok {
		ix = NewIndex(column)
		t.Indexes.Set(column, ix)
	}
	ix.Rebuild(t.Rows.All())
}

func (t *Table) rebuildAllIndexes() {
	for column := range t.Indexes {
		t.rebuildIndex(column)
	}
}
