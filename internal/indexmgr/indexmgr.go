// Package indexmgr implements the Index Manager: idempotent index creation
// on the temp table (after load) and the live table.
package indexmgr

import (
	"context"

	"tablesync/internal/core"
	"tablesync/internal/dialect"
)

// Manager is stateless; index existence is always checked fresh via
// introspection, so there is nothing to cache or scope per invocation.
type Manager struct{}

// NewManager returns an Index Manager.
func NewManager() *Manager {
	return &Manager{}
}

// AddIndicesToTempTableAfterLoad adds a unique index on the business PK and
// a non-unique index on content_hash to the temp table.
func (m *Manager) AddIndicesToTempTableAfterLoad(ctx context.Context, cfg *core.Config) error {
	if err := m.AddIndexIfNotExists(ctx, cfg.TargetConnection, cfg.TargetTempTableName, pkTargets(cfg), true, ""); err != nil {
		return err
	}
	return m.AddIndexIfNotExists(ctx, cfg.TargetConnection, cfg.TargetTempTableName, []string{cfg.MetadataColumns.ContentHash}, false, "")
}

// AddIndicesToLiveTable adds a non-unique index on content_hash and a
// unique index on the business PK to the live table.
func (m *Manager) AddIndicesToLiveTable(ctx context.Context, cfg *core.Config) error {
	if err := m.AddIndexIfNotExists(ctx, cfg.TargetConnection, cfg.TargetLiveTableName, []string{cfg.MetadataColumns.ContentHash}, false, ""); err != nil {
		return err
	}
	return m.AddIndexIfNotExists(ctx, cfg.TargetConnection, cfg.TargetLiveTableName, pkTargets(cfg), true, "")
}

// AddIndexIfNotExists creates an index on table over columns unless one of
// the same name already exists. A default name is derived when name is
// empty.
func (m *Manager) AddIndexIfNotExists(ctx context.Context, conn core.Connection, table string, columns []string, unique bool, name string) error {
	d, err := dialect.Get(conn.Dialect())
	if err != nil {
		return core.NewSyncError("addIndexIfNotExists", table, err)
	}
	gen := d.Generator()

	if name == "" {
		prefix := "idx_"
		if unique {
			prefix = "uniq_"
		}
		name = gen.DefaultIndexName(prefix, table, columns)
	}

	existing, err := conn.IntrospectIndexNames(ctx, table)
	if err != nil {
		return core.NewSyncError("addIndexIfNotExists", table, err)
	}
	if existing[name] {
		return nil
	}

	if _, err := conn.ExecContext(ctx, gen.CreateIndexSQL(name, table, columns, unique)); err != nil {
		return core.NewSyncError("addIndexIfNotExists", table, err)
	}
	return nil
}

func pkTargets(cfg *core.Config) []string {
	names := make([]string, len(cfg.PrimaryKeyColumnMap))
	for i, pk := range cfg.PrimaryKeyColumnMap {
		names[i] = pk.Target
	}
	return names
}
