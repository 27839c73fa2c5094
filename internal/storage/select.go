package storage

import (
	"sort"
	"strings"

	"github.com/minisql/minisql/internal/parser"
	"github.com/minisql/minisql/internal/types"
)

// Result carries selected rows plus the header the wildcard expands
// to. For a plain select that is the table's column order; for a join
// it is the namespaced cross product of both tables' columns.
type Result struct {
	Columns []string
	Rows    []Row
}

func IsWildcard(columns []string) bool {
	return len(columns) == 1 && columns[0] == "*"
}

// SelectRows filters via the WHERE-aware iterator and projects the
// requested columns. Qualified names resolve by their unqualified
// suffix against the row; requested names with no matching column
// yield null under that exact key.
func (s *Store) SelectRows(table string, columns []string, where *parser.Condition, join *parser.Join) *Result {
	if join != nil {
		return s.joinRows(table, columns, where, join)
	}
	t := s.table(table)
	rows := t.rowsFor(where)

	if IsWildcard(columns) {
		copies := make([]Row, 0, len(rows))
		for _, row := range rows {
			copies = append(copies, copyRow(row))
		}
		return &Result{Columns: append([]string{}, t.Columns...), Rows: copies}
	}

	selected := make([]Row, 0, len(rows))
	for _, row := range rows {
		projected := Row{}
		for _, col := range columns {
			lookup := col
			if dot := strings.Index(col, "."); dot >= 0 {
				lookup = col[dot+1:]
			}
			projected.Set(col, row.Get(lookup))
		}
		selected = append(selected, projected)
	}
	return &Result{Columns: append([]string{}, columns...), Rows: selected}
}

// joinRows is the inner-join algorithm: the driving table's rows come
// through the WHERE-aware iterator, the joined table is probed through
// a hash index on its join column. The index is built on the fly if
// missing and stays on the table afterwards.
func (s *Store) joinRows(table string, columns []string, where *parser.Condition, join *parser.Join) *Result {
	left := s.table(table)
	right := s.table(join.Table)

	left_rows := left.rowsFor(where)
	index, ok := right.Indexes[join.RightColumn]
	if !ok {
		right.rebuildIndex(join.RightColumn)
		index = right.Indexes.Get(join.RightColumn)
	}

	header := joinHeader(columns, join, left, right)
	result := &Result{Columns: header, Rows: []Row{}}
	for _, left_row := range left_rows {
		key := left_row.Get(join.LeftColumn)
		for _, right_row := range index.Lookup(key) {
			result.Rows = append(result.Rows, combineRows(columns, join, left, right, left_row, right_row))
		}
	}
	return result
}

func combineRows(columns []string, join *parser.Join, left, right *Table, left_row, right_row Row) Row {
	combined := Row{}
	for _, col := range left.Columns {
		combined.Set(join.LeftTable+"."+col, left_row.Get(col))
	}
	for _, col := range right.Columns {
		combined.Set(join.RightTable+"."+col, right_row.Get(col))
	}
	if IsWildcard(columns) {
		return combined
	}

	projected := Row{}
	for _, col := range columns {
		switch {
		case strings.Contains(col, "."):
			projected.Set(col, combined.Get(col))
		case left.HasColumn(col):
			projected.Set(col, left_row.Get(col))
		case right.HasColumn(col):
			projected.Set(col, right_row.Get(col))
		default:
			projected.Set(col, types.Null())
		}
	}
	return projected
}

func joinHeader(columns []string, join *parser.Join, left, right *Table) []string {
	if !IsWildcard(columns) {
		return append([]string{}, columns...)
	}
	header := make([]string, 0, len(left.Columns)+len(right.Columns))
	for _, col := range left.Columns {
		header = append(header, join.LeftTable+"."+col)
	}
	for _, col := range right.Columns {
		header = append(header, join.RightTable+"."+col)
	}
	return header
}

func copyRow(row Row) Row {
	dup := Row{}
	for k, v := range row {
		dup.Set(k, v)
	}
	return dup
}

func sortedIndexColumns(t *Table) []string {
	columns := t.Indexes.Keys()
	sort.Strings(columns)
	return columns
}
