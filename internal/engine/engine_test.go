package engine_test

import (
	"path/filepath"
	"testing"

	"github.com/minisql/minisql/internal/engine"
	"github.com/minisql/minisql/internal/paging"
	"gotest.tools/assert"
)

func newTestEngine(t *testing.T) *engine.Engine {
	eng, err := engine.New(filepath.Join(t.TempDir(), "data"))
	assert.NilError(t, err)
	t.Cleanup(eng.Close)
	return eng
}

func run(t *testing.T, eng *engine.Engine, query string) []string {
	t.Helper()
	return eng.Execute(query)
}

func TestUsersScenario(t *testing.T) {
	eng := newTestEngine(t)

	assert.DeepEqual(t, run(t, eng, "CREATE TABLE users (id INT, name TEXT)"),
		[]string{"Table 'users' created."})
	assert.DeepEqual(t, run(t, eng, "INSERT INTO users VALUES (1, 'Ann')"),
		[]string{"1 row inserted."})
	assert.DeepEqual(t, run(t, eng, "SELECT * FROM users"),
		[]string{"id | name", "1 | Ann"})
	assert.DeepEqual(t, run(t, eng, "UPDATE users SET name='Bea' WHERE id=1"),
		[]string{"1 row(s) updated."})
	assert.DeepEqual(t, run(t, eng, "DELETE FROM users WHERE id=1"),
		[]string{"1 row(s) deleted."})
	assert.DeepEqual(t, run(t, eng, "SELECT * FROM users"),
		[]string{"(no rows)"})
}

func TestDatabaseSwitching(t *testing.T) {
	eng := newTestEngine(t)
	assert.Equal(t, eng.ActiveDatabase(), "default")

	t.Run("use of unknown database does not switch", func(t *testing.T) {
		assert.DeepEqual(t, run(t, eng, "USE reports"),
			[]string{"Database 'reports' not found."})
		assert.Equal(t, eng.ActiveDatabase(), "default")
	})

	t.Run("create switches the active pointer", func(t *testing.T) {
		assert.DeepEqual(t, run(t, eng, "CREATE DATABASE reports"),
			[]string{"Database 'reports' ready."})
		assert.Equal(t, eng.ActiveDatabase(), "reports")
		assert.DeepEqual(t, eng.Databases(), []string{"default", "reports"})
	})

	t.Run("use of a known database switches", func(t *testing.T) {
		assert.DeepEqual(t, run(t, eng, "USE default"),
			[]string{"Using database 'default'."})
		assert.Equal(t, eng.ActiveDatabase(), "default")
	})
}

func TestCreateDatabaseOverCorruptFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	eng, err := engine.New(dir)
	assert.NilError(t, err)
	t.Cleanup(eng.Close)

	// a garbage .dat appearing after startup must not take the engine down
	pager, err := paging.NewPager(filepath.Join(dir, "evil.dat"), 64)
	assert.NilError(t, err)
	assert.NilError(t, pager.WriteBlob([]byte("not json at all")))

	assert.DeepEqual(t, run(t, eng, "CREATE DATABASE evil"),
		[]string{"Database 'evil' could not be opened."})
	assert.Equal(t, eng.ActiveDatabase(), "default")

	// the active database still answers statements
	assert.DeepEqual(t, run(t, eng, "CREATE TABLE t (a INT)"),
		[]string{"Table 't' created."})
}

func TestCreateTableIdempotence(t *testing.T) {
	eng := newTestEngine(t)
	run(t, eng, "CREATE TABLE t (a INT)")
	run(t, eng, "INSERT INTO t VALUES (1)")

	assert.DeepEqual(t, run(t, eng, "CREATE TABLE t (a INT)"),
		[]string{"Table 't' already exists."})
	// the second create left the data alone
	assert.DeepEqual(t, run(t, eng, "SELECT * FROM t"), []string{"a", "1"})
}

func TestTableNotFound(t *testing.T) {
	eng := newTestEngine(t)
	for _, query := range []string{
		"INSERT INTO ghosts VALUES (1)",
		"SELECT * FROM ghosts",
		"DELETE FROM ghosts",
		"DROP TABLE ghosts",
		"ALTER TABLE ghosts ADD COLUMN x INT",
		"CREATE INDEX ghosts x",
	} {
		t.Run(query, func(t *testing.T) {
			assert.DeepEqual(t, run(t, eng, query), []string{"Table 'ghosts' not found."})
		})
	}

	t.Run("missing join target", func(t *testing.T) {
		run(t, eng, "CREATE TABLE a (k INT)")
		assert.DeepEqual(t, run(t, eng, "SELECT * FROM a INNER JOIN b ON a.k=b.k"),
			[]string{"Table 'b' not found."})
	})
}

func TestCommitDraining(t *testing.T) {
	eng := newTestEngine(t)
	run(t, eng, "CREATE TABLE t (a INT)")

	assert.DeepEqual(t, run(t, eng, "COMMIT"), []string{"Committed 0 entries."})

	run(t, eng, "INSERT INTO t VALUES (1)")
	assert.Equal(t, len(eng.PendingEntries()), 1)
	assert.DeepEqual(t, run(t, eng, "COMMIT"), []string{"Committed 1 entry."})
	assert.Equal(t, len(eng.PendingEntries()), 0)

	run(t, eng, "INSERT INTO t VALUES (2)")
	run(t, eng, "UPDATE t SET a=3 WHERE a=2")
	run(t, eng, "DELETE FROM t")
	assert.Equal(t, len(eng.PendingEntries()), 3)
	assert.DeepEqual(t, run(t, eng, "COMMIT;"), []string{"Committed 3 entries."})
	assert.Equal(t, len(eng.PendingEntries()), 0)
}

func TestUnknownAndEmptyInput(t *testing.T) {
	eng := newTestEngine(t)
	assert.DeepEqual(t, run(t, eng, "  "), []string{""})
	assert.DeepEqual(t, run(t, eng, "EXPLAIN t"),
		[]string{"Command 'EXPLAIN t' not understood."})
}

func TestColumnAndIndexStatements(t *testing.T) {
	eng := newTestEngine(t)
	run(t, eng, "CREATE TABLE t (a INT)")

	assert.DeepEqual(t, run(t, eng, "ALTER TABLE t ADD COLUMN b TEXT"),
		[]string{"Column 'b' added to 't'."})
	assert.DeepEqual(t, run(t, eng, "CREATE INDEX t a"),
		[]string{"Index on t.a built."})

	describe := eng.Describe()
	assert.DeepEqual(t, describe["default"]["t"].Columns, []string{"a", "b"})
	assert.DeepEqual(t, describe["default"]["t"].Indexes, []string{"a"})

	assert.DeepEqual(t, run(t, eng, "DROP INDEX t a"),
		[]string{"Index on t.a removed."})
	assert.DeepEqual(t, run(t, eng, "DROP TABLE t"),
		[]string{"Table 't' dropped."})
	assert.Equal(t, len(eng.Describe()["default"]), 0)
}

func TestStatePersistsAcrossEngines(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	eng, err := engine.New(dir)
	assert.NilError(t, err)
	run(t, eng, "CREATE DATABASE sales")
	run(t, eng, "CREATE TABLE orders (id INT, total FLOAT)")
	run(t, eng, "INSERT INTO orders VALUES (1, 9.5)")
	eng.Close()

	reloaded, err := engine.New(dir)
	assert.NilError(t, err)
	defer reloaded.Close()

	// only databases that persisted a mutation have a backing file
	assert.DeepEqual(t, reloaded.Databases(), []string{"sales"})
	assert.Equal(t, reloaded.ActiveDatabase(), "sales")
	assert.DeepEqual(t, reloaded.Execute("SELECT * FROM orders"),
		[]string{"id | total", "1 | 9.5"})
}
