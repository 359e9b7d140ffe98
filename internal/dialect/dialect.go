// Package dialect provides the registry of SQL-dialect-specific statement
// builders the Schema Manager, Index Manager, and Differ render their DDL
// and DML through.
package dialect

import (
	"fmt"
	"sync"

	"tablesync/internal/core"
)

// Generator renders the DDL this engine ever issues: CREATE TABLE, CREATE
// INDEX, and DROP TABLE. It never renders ALTER TABLE — the engine
// does not migrate an existing live table's shape, only validates it.
type Generator interface {
	QuoteIdentifier(name string) string
	QuoteString(value string) string

	CreateTableSQL(table string, columns []*core.Column, primaryKey []string) string
	CreateIndexSQL(name, table string, columns []string, unique bool) string
	DropTableSQL(table string) string
	DropTableIfExistsSQL(table string) string

	DefaultIndexName(prefix, table string, columns []string) string
}

// Dialect bundles a Generator with the dialect's identity.
type Dialect interface {
	Name() core.Dialect
	Generator() Generator
}

var (
	mu       sync.RWMutex
	registry = make(map[core.Dialect]func() Dialect)
)

// Register associates a dialect identity with a constructor. Called from
// each dialect implementation's init().
func Register(name core.Dialect, fn func() Dialect) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = fn
}

// Get resolves a registered Dialect by name.
func Get(name core.Dialect) (Dialect, error) {
	mu.RLock()
	fn, ok := registry[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported dialect %v", name)
	}
	return fn(), nil
}
