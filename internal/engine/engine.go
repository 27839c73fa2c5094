package engine

import (
	"strings"
	"sync"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/minisql/minisql/internal/commitlog"
	"github.com/minisql/minisql/internal/parser"
	"github.com/minisql/minisql/internal/storage"
)

// Engine is the facade callers talk to: it wires the parser and the
// executor behind a single lock. Execution is fully synchronous; a
// statement is parsed, executed and persisted before Execute returns.
type Engine struct {
	mu    sync.Mutex
	exec  *Executor
	cache *ristretto.Cache[string, parser.Command]
}

// New builds an engine over the databases persisted under data_dir.
// Parsing is pure, so parsed commands are cached by statement text;
// front ends tend to re-submit the same statements.
func New(data_dir string) (*Engine, error) {
	exec, err := NewExecutor(data_dir)
	if err != nil {
		return nil, err
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, parser.Command]{
		NumCounters: 10_000,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Engine{exec: exec, cache: cache}, nil
}

// Execute runs one statement and returns the lines to show the caller.
// This is the entire observable behavior of the engine boundary.
func (e *Engine) Execute(query string) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exec.Execute(e.parse(query))
}

func (e *Engine) parse(query string) parser.Command {
	key := strings.TrimSpace(query)
	if cmd, ok := e.cache.Get(key); ok {
		return cmd
	}
	cmd := parser.Parse(query)
	e.cache.Set(key, cmd, int64(len(key))+1)
	return cmd
}

func (e *Engine) Describe() map[string]map[string]storage.TableInfo {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exec.Describe()
}

func (e *Engine) Databases() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exec.Databases()
}

func (e *Engine) ActiveDatabase() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exec.ActiveDatabase()
}

func (e *Engine) PendingEntries() []commitlog.Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exec.PendingEntries()
}

// Close releases the parse cache.
func (e *Engine) Close() {
	e.cache.Close()
}
