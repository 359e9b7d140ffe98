// Package mysql introspects MySQL, MariaDB, and TiDB sources: all three
// expose the same information_schema surface this engine reads from.
package mysql

import (
	"context"
	"database/sql"

	"tablesync/internal/core"
	"tablesync/internal/introspect"
)

func init() {
	introspect.Register(core.DialectMySQL, New)
	introspect.Register(core.DialectMariaDB, New)
	introspect.Register(core.DialectTiDB, New)
}

type introspecter struct{}

// New returns a MySQL-family Introspecter.
func New() introspect.Introspecter {
	return &introspecter{}
}

// Columns resolves objectName as a table, then a view, then falls back to a
// last-resort SELECT probe, per the spec's resolution order.
func (i *introspecter) Columns(ctx context.Context, db *sql.DB, objectName string) (*core.ColumnSet, error) {
	isTable, isView, err := objectKind(ctx, db, objectName)
	if err != nil {
		return nil, err
	}
	if isTable || isView {
		return introspectColumns(ctx, db, objectName)
	}

	cols, probeErr := probeColumns(ctx, db, objectName)
	if probeErr != nil {
		return nil, &core.ConfigurationError{
			Field:   "sourceObjectName",
			Message: "object " + objectName + " is not a table, a view, or queryable: " + probeErr.Error(),
		}
	}
	return cols, nil
}

// IndexNames returns the set of index names already present on tableName.
func (i *introspecter) IndexNames(ctx context.Context, db *sql.DB, tableName string) (map[string]bool, error) {
	return indexNames(ctx, db, tableName)
}
