package storage

import (
	"encoding/json"

	"github.com/minisql/minisql/internal/paging"
	"github.com/minisql/minisql/internal/parser"
	"github.com/minisql/minisql/internal/types"
	"github.com/minisql/minisql/pkg"
)

// Store is one database's table manager. It trusts the executor's
// existence checks: being asked about a table that was validated to
// exist but is missing from the map is an invariant violation, not a
// recoverable error.
type Store struct {
	pager  *paging.Pager
	tables pkg.Map[string, *Table]
}

func NewStore(pager *paging.Pager) (*Store, error) {
	s := &Store{pager: pager, tables: pkg.Map[string, *Table]{}}
	if pager != nil {
		if err := s.load(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) TableExists(name string) bool { return s.tables.Has(name) }

func (s *Store) table(name string) *Table {
	t := s.tables.Get(name)
	if t == nil {
		pkg.FatalLog("table validated to exist but missing from storage:", name)
	}
	return t
}

// CreateTable replaces any prior definition with a fresh empty table.
func (s *Store) CreateTable(name string, columns []string) error {
	s.tables.Set(name, NewTable(name, columns))
	return s.persist()
}

func (s *Store) DropTable(name string) error {
	s.tables.Delete(name)
	return s.persist()
}

// AddColumn appends a column, back-fills every existing row with null
// and rebuilds every index on the table.
func (s *Store) AddColumn(name, column string) error {
	t := s.table(name)
	if t.HasColumn(column) {
		return nil
	}
	t.Columns = append(t.Columns, column)
	for _, row := range t.Rows.All() {
		row.Set(column, types.Null())
	}
	t.rebuildAllIndexes()
	return s.persist()
}

func (s *Store) CreateIndex(table, column string) error {
	t := s.table(table)
	if t.Indexes.Has(column) {
		return nil
	}
	t.rebuildIndex(column)
	return s.persist()
}

func (s *Store) DropIndex(table, column string) error {
	t := s.tables.Get(table)
	if t == nil {
		return nil
	}
	t.Indexes.Delete(column)
	return s.persist()
}

// InsertRow zips positional values against the column order: trailing
// columns beyond the value count get no entry, extra values are
// dropped. The constructed row is returned for commit logging.
func (s *Store) InsertRow(table string, values []types.Value) (Row, error) {
	t := s.table(table)
	row := Row{}
	for i, col := range t.Columns {
		if i >= len(values) {
			break
		}
		row.Set(col, values[i])
	}
	t.Rows.Append(row)
	for _, ix := range t.Indexes {
		ix.Add(row)
	}
	return row, s.persist()
}

// UpdateRows applies every assignment in place to each matched row,
// rebuilding only the indexes whose column was assigned. Persists only
// when at least one row matched.
func (s *Store) UpdateRows(table string, assignments []parser.Assignment, where *parser.Condition) (int, error) {
	t := s.table(table)
	rows := t.rowsFor(where)
	for _, row := range rows {
		for _, a := range assignments {
			row.Set(a.Column, a.Value)
		}
	}
	for _, a := range assignments {
		if t.Indexes.Has(a.Column) {
			t.rebuildIndex(a.Column)
		}
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return len(rows), s.persist()
}

// DeleteRows removes every matching row, or all rows without a WHERE.
// Every index on the table is rebuilt afterwards; simpler than
// tracking which buckets changed. Persists only when rows were
// removed.
func (s *Store) DeleteRows(table string, where *parser.Condition) (int, error) {
	t := s.table(table)
	var deleted int
	if where == nil {
		deleted = t.Rows.Clear()
	} else {
		deleted = t.Rows.DeleteWhere(func(row Row) bool {
			return row.Get(where.Column).Equal(where.Value)
		})
	}
	t.rebuildAllIndexes()
	if deleted == 0 {
		return 0, nil
	}
	return deleted, s.persist()
}

type TableInfo struct {
	Columns  []string `json:"columns"`
	RowCount int      `json:"row_count"`
	Indexes  []string `json:"indexes"`
}

// Describe returns a read-only snapshot: column order, row count and
// sorted index column names per table.
func (s *Store) Describe() map[string]TableInfo {
	summary := map[string]TableInfo{}
	for name, t := range s.tables {
		summary[name] = TableInfo{
			Columns:  append([]string{}, t.Columns...),
			RowCount: t.Rows.Len(),
			Indexes:  sortedIndexColumns(t),
		}
	}
	return summary
}

type tableState struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
	Indexes []string `json:"indexes"`
}

func (s *Store) load() error {
	blob := s.pager.ReadBlob()
	if len(blob) == 0 {
		return nil
	}
	data := map[string]tableState{}
	if err := json.Unmarshal(blob, &data); err != nil {
		return err
	}
	for name, state := range data {
		t := NewTable(name, state.Columns)
		for _, row := range state.Rows {
			t.Rows.Append(row)
		}
		s.tables.Set(name, t)
		// index contents are never serialized, only which columns
		// are indexed; rebuild from row data
		for _, column := range state.Indexes {
			t.rebuildIndex(column)
		}
	}
	return nil
}

// persist serializes the whole database state through the pager.
// There is no incremental persistence: every mutation rewrites
// everything.
func (s *Store) persist() error {
	if s.pager == nil {
		return nil
	}
	snapshot := map[string]tableState{}
	for name, t := range s.tables {
		snapshot[name] = tableState{
			Columns: append([]string{}, t.Columns...),
			Rows:    t.Rows.All(),
			Indexes: sortedIndexColumns(t),
		}
	}
	blob, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return s.pager.WriteBlob(blob)
}
