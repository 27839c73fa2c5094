package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/minisql/minisql/internal/commitlog"
	"github.com/minisql/minisql/internal/paging"
	"github.com/minisql/minisql/internal/parser"
	"github.com/minisql/minisql/internal/storage"
	"github.com/minisql/minisql/pkg"
)

// Executor interprets parsed commands against per-database storage.
// It owns the database set, the active-database pointer and the
// commit log.
type Executor struct {
	data_dir  string
	databases pkg.Map[string, *storage.Store]
	active    string
	log       *commitlog.Log
}

// NewExecutor loads every persisted database found under data_dir and
// creates a default one when none exist.
func NewExecutor(data_dir string) (*Executor, error) {
	if err := os.MkdirAll(data_dir, 0755); err != nil {
		return nil, err
	}
	e := &Executor{
		data_dir:  data_dir,
		databases: pkg.Map[string, *storage.Store]{},
		log:       commitlog.New(),
	}

	files, err := filepath.Glob(filepath.Join(data_dir, "*.dat"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	for _, file := range files {
		name := strings.ToLower(strings.TrimSuffix(filepath.Base(file), ".dat"))
		if err := e.openDatabase(name); err != nil {
			return nil, err
		}
		pkg.InfoLog("loaded database", name, "from", file)
	}

	if len(e.databases) == 0 {
		if err := e.openDatabase("default"); err != nil {
			return nil, err
		}
	}
	if e.databases.Has("default") {
		e.active = "default"
	} else {
		e.active = e.Databases()[0]
	}
	return e, nil
}

func (e *Executor) openDatabase(name string) error {
	if e.databases.Has(name) {
		return nil
	}
	pager, err := paging.NewPager(filepath.Join(e.data_dir, name+".dat"), paging.DefaultPageSize)
	if err != nil {
		return err
	}
	store, err := storage.NewStore(pager)
	if err != nil {
		return err
	}
	e.databases.Set(name, store)
	return nil
}

// ensureDatabase opens or creates the named database and makes it
// active. Open failures (an unreadable backing file) leave the active
// pointer alone and degrade to a result line.
func (e *Executor) ensureDatabase(name, ready string) []string {
	if err := e.openDatabase(name); err != nil {
		pkg.ErrorLog("opening database", name, err)
		return []string{fmt.Sprintf("Database '%s' could not be opened.", name)}
	}
	e.active = name
	return []string{fmt.Sprintf(ready, name)}
}

// Execute dispatches one parsed command and returns the lines a caller
// should see. Recognized-but-invalid input degrades to a descriptive
// line, never an error.
func (e *Executor) Execute(cmd parser.Command) []string {
	switch cmd := cmd.(type) {
	case parser.Empty:
		return []string{""}
	case parser.CreateDatabase:
		return e.ensureDatabase(cmd.Name, "Database '%s' ready.")
	case parser.AlterDatabase:
		return e.ensureDatabase(cmd.Name, "Using database '%s'.")
	case parser.UseDatabase:
		if !e.databases.Has(cmd.Name) {
			return []string{fmt.Sprintf("Database '%s' not found.", cmd.Name)}
		}
		e.active = cmd.Name
		return []string{fmt.Sprintf("Using database '%s'.", cmd.Name)}
	case parser.Commit:
		flushed := e.log.Commit()
		noun := "entries"
		if len(flushed) == 1 {
			noun = "entry"
		}
		return []string{fmt.Sprintf("Committed %d %s.", len(flushed), noun)}
	case parser.Unknown:
		return []string{fmt.Sprintf("Command '%s' not understood.", cmd.Raw)}
	}

	store := e.databases.Get(e.active)
	switch cmd := cmd.(type) {
	case parser.CreateTable:
		if store.TableExists(cmd.Table) {
			return []string{fmt.Sprintf("Table '%s' already exists.", cmd.Table)}
		}
		columns := make([]string, 0, len(cmd.Columns))
		for _, col := range cmd.Columns {
			columns = append(columns, col.Name)
		}
		e.check(store.CreateTable(cmd.Table, columns))
		return []string{fmt.Sprintf("Table '%s' created.", cmd.Table)}
	case parser.AddColumn:
		if !store.TableExists(cmd.Table) {
			return tableNotFound(cmd.Table)
		}
		e.check(store.AddColumn(cmd.Table, cmd.Column.Name))
		return []string{fmt.Sprintf("Column '%s' added to '%s'.", cmd.Column.Name, cmd.Table)}
	case parser.DropTable:
		if !store.TableExists(cmd.Table) {
			return tableNotFound(cmd.Table)
		}
		e.check(store.DropTable(cmd.Table))
		return []string{fmt.Sprintf("Table '%s' dropped.", cmd.Table)}
	case parser.CreateIndex:
		if !store.TableExists(cmd.Table) {
			return tableNotFound(cmd.Table)
		}
		e.check(store.CreateIndex(cmd.Table, cmd.Column))
		return []string{fmt.Sprintf("Index on %s.%s built.", cmd.Table, cmd.Column)}
	case parser.DropIndex:
		if !store.TableExists(cmd.Table) {
			return tableNotFound(cmd.Table)
		}
		e.check(store.DropIndex(cmd.Table, cmd.Column))
		return []string{fmt.Sprintf("Index on %s.%s removed.", cmd.Table, cmd.Column)}
	case parser.Insert:
		if !store.TableExists(cmd.Table) {
			return tableNotFound(cmd.Table)
		}
		row, err := store.InsertRow(cmd.Table, cmd.Values)
		e.check(err)
		e.log.Log(commitlog.NewEntry(e.active, "INSERT", map[string]any{"row": row}))
		return []string{"1 row inserted."}
	case parser.Update:
		if !store.TableExists(cmd.Table) {
			return tableNotFound(cmd.Table)
		}
		count, err := store.UpdateRows(cmd.Table, cmd.Assignments, cmd.Where)
		e.check(err)
		e.log.Log(commitlog.NewEntry(e.active, "UPDATE", map[string]any{"count": count}))
		return []string{fmt.Sprintf("%d row(s) updated.", count)}
	case parser.Delete:
		if !store.TableExists(cmd.Table) {
			return tableNotFound(cmd.Table)
		}
		count, err := store.DeleteRows(cmd.Table, cmd.Where)
		e.check(err)
		e.log.Log(commitlog.NewEntry(e.active, "DELETE", map[string]any{"count": count}))
		return []string{fmt.Sprintf("%d row(s) deleted.", count)}
	case parser.Select:
		if !store.TableExists(cmd.Table) {
			return tableNotFound(cmd.Table)
		}
		if cmd.Join != nil && !store.TableExists(cmd.Join.Table) {
			return tableNotFound(cmd.Join.Table)
		}
		return formatResult(store.SelectRows(cmd.Table, cmd.Columns, cmd.Where, cmd.Join), cmd.Columns)
	}
	// unreachable: the Command variant set is closed
	return []string{fmt.Sprintf("Command '%v' not understood.", cmd)}
}

// check reports persistence failures without failing the statement:
// the in-memory mutation already happened, only durability suffered.
func (e *Executor) check(err error) {
	if err != nil {
		pkg.ErrorLog("persisting database", e.active, err)
	}
}

func tableNotFound(table string) []string {
	return []string{fmt.Sprintf("Table '%s' not found.", table)}
}

// formatResult renders pipe-joined header and value lines. An empty
// result collapses to a single marker line, which takes precedence
// over wildcard expansion.
func formatResult(result *storage.Result, requested []string) []string {
	if len(result.Rows) == 0 {
		return []string{"(no rows)"}
	}
	headers := requested
	if storage.IsWildcard(requested) {
		headers = result.Columns
	}
	lines := []string{strings.Join(headers, " | ")}
	for _, row := range result.Rows {
		cells := make([]string, 0, len(headers))
		for _, col := range headers {
			if row.Has(col) {
				cells = append(cells, row.Get(col).String())
			} else {
				cells = append(cells, "")
			}
		}
		lines = append(lines, strings.Join(cells, " | "))
	}
	return lines
}

// Describe returns the full schema snapshot, database by database.
func (e *Executor) Describe() map[string]map[string]storage.TableInfo {
	snapshot := map[string]map[string]storage.TableInfo{}
	for name, store := range e.databases {
		snapshot[name] = store.Describe()
	}
	return snapshot
}

func (e *Executor) Databases() []string {
	names := e.databases.Keys()
	sort.Strings(names)
	return names
}

func (e *Executor) ActiveDatabase() string { return e.active }

func (e *Executor) PendingEntries() []commitlog.Entry { return e.log.Snapshot() }
