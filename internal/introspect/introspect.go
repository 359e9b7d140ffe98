// Package introspect resolves a source object's columns and a table's
// existing index names against a live connection, dialect by dialect.
package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"tablesync/internal/core"
)

// Introspecter discovers columns for a table or view, and existing index
// names for a table, on one dialect.
type Introspecter interface {
	// Columns returns the column set for objectName, which may be a base
	// table or a view. Resolution order: table, then view, then a
	// last-resort SELECT probe. Returns a *core.ConfigurationError if none
	// of the three resolve.
	Columns(ctx context.Context, db *sql.DB, objectName string) (*core.ColumnSet, error)

	// IndexNames returns the set of index names that already exist on
	// tableName.
	IndexNames(ctx context.Context, db *sql.DB, tableName string) (map[string]bool, error)
}

var (
	mu       sync.RWMutex
	registry = make(map[core.Dialect]func() Introspecter)
)

// Register associates a dialect with an Introspecter constructor.
func Register(dialect core.Dialect, fn func() Introspecter) {
	mu.Lock()
	defer mu.Unlock()
	registry[dialect] = fn
}

// Get resolves the registered Introspecter for dialect.
func Get(dialect core.Dialect) (Introspecter, error) {
	mu.RLock()
	fn, ok := registry[dialect]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported dialect %v", dialect)
	}
	return fn(), nil
}
