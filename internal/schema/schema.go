// Package schema implements the Schema Manager: live table creation and
// compatibility verification, temp table lifecycle, and a per-instance
// cache of source column types.
package schema

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"tablesync/internal/core"
	"tablesync/internal/dialect"
	"tablesync/internal/sqlident"
)

// Manager owns the source-column-type cache. It must not be shared across
// concurrent invocations against different source names — construct one
// Manager per invocation, or one per distinct source name.
type Manager struct {
	mu    sync.Mutex
	cache map[string]*core.ColumnSet
}

// NewManager returns an empty Schema Manager.
func NewManager() *Manager {
	return &Manager{cache: make(map[string]*core.ColumnSet)}
}

// GetSourceColumnTypes returns the source object's columns, cached per
// (connection, sourceObjectName). The cache is keyed by source object name
// only since one Manager is scoped to one source connection by convention.
func (m *Manager) GetSourceColumnTypes(ctx context.Context, cfg *core.Config) (*core.ColumnSet, error) {
	m.mu.Lock()
	if cached, ok := m.cache[cfg.SourceObjectName]; ok {
		m.mu.Unlock()
		return cached, nil
	}
	m.mu.Unlock()

	cols, err := cfg.SourceConnection.IntrospectColumns(ctx, cfg.SourceObjectName)
	if err != nil {
		var cfgErr *core.ConfigurationError
		if errors.As(err, &cfgErr) {
			return nil, err
		}
		return nil, core.NewSyncError("getSourceColumnTypes", cfg.SourceObjectName, err)
	}

	m.mu.Lock()
	m.cache[cfg.SourceObjectName] = cols
	m.mu.Unlock()
	return cols, nil
}

// EnsureLiveTable creates the live table if it does not exist, or verifies
// an existing one has every expected column with a compatible type family.
func (m *Manager) EnsureLiveTable(ctx context.Context, cfg *core.Config) error {
	if err := sqlident.ValidateAll(cfg.TargetLiveTableName); err != nil {
		return &core.ConfigurationError{Field: "targetLiveTableName", Message: err.Error()}
	}
	if err := sqlident.ValidateAll(targetColumnNames(cfg)...); err != nil {
		return &core.ConfigurationError{Field: "dataColumnMapping", Message: err.Error()}
	}

	sourceCols, err := m.GetSourceColumnTypes(ctx, cfg)
	if err != nil {
		return err
	}

	existing, err := cfg.TargetConnection.IntrospectColumns(ctx, cfg.TargetLiveTableName)
	var cfgErr *core.ConfigurationError
	switch {
	case err == nil:
		return verifyLiveTableColumns(cfg, sourceCols, existing)
	case errors.As(err, &cfgErr):
		return m.createLiveTable(ctx, cfg, sourceCols)
	default:
		return core.NewSyncError("ensureLiveTable", cfg.TargetLiveTableName, err)
	}
}

func (m *Manager) createLiveTable(ctx context.Context, cfg *core.Config, sourceCols *core.ColumnSet) error {
	columns, err := liveTableColumns(cfg, sourceCols)
	if err != nil {
		return err
	}

	gen, err := generatorFor(cfg.TargetConnection)
	if err != nil {
		return core.NewSyncError("ensureLiveTable", cfg.TargetLiveTableName, err)
	}

	sql := gen.CreateTableSQL(cfg.TargetLiveTableName, columns, []string{cfg.MetadataColumns.ID})
	if _, err := cfg.TargetConnection.ExecContext(ctx, sql); err != nil {
		return core.NewSyncError("ensureLiveTable", cfg.TargetLiveTableName, err)
	}
	return nil
}

// liveTableColumns renders the live table's column list: business PK
// columns first in declared order, then the remaining data columns, then
// the five metadata columns.
func liveTableColumns(cfg *core.Config, sourceCols *core.ColumnSet) ([]*core.Column, error) {
	var columns []*core.Column

	for _, pk := range cfg.PrimaryKeyColumnMap {
		col, err := mappedColumn(sourceCols, pk.Source, pk.Target)
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}
	for _, pair := range cfg.NonPrimaryKeyDataColumns() {
		col, err := mappedColumn(sourceCols, pair.Source, pair.Target)
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}

	placeholder := cfg.PlaceholderDatetime
	columns = append(columns,
		&core.Column{Name: cfg.MetadataColumns.ID, Type: cfg.TargetIDColumnType, Nullable: false, AutoIncrement: true},
		&core.Column{Name: cfg.MetadataColumns.ContentHash, Type: cfg.TargetHashColumnType, Length: cfg.TargetHashColumnLength, Nullable: false, Fixed: true},
		&core.Column{Name: cfg.MetadataColumns.CreatedAt, Type: core.TypeDatetime, Nullable: false, Default: &placeholder},
		&core.Column{Name: cfg.MetadataColumns.UpdatedAt, Type: core.TypeDatetime, Nullable: false, Default: &placeholder},
		&core.Column{Name: cfg.MetadataColumns.BatchRevision, Type: core.TypeBigInt, Nullable: true},
	)
	return columns, nil
}

// targetColumnNames collects every target identifier a sync will interpolate
// into generated DDL: the mapped data columns and the five metadata columns.
func targetColumnNames(cfg *core.Config) []string {
	names := make([]string, 0, len(cfg.DataColumnMapping)+5)
	for _, pair := range cfg.DataColumnMapping {
		names = append(names, pair.Target)
	}
	names = append(names,
		cfg.MetadataColumns.ID,
		cfg.MetadataColumns.ContentHash,
		cfg.MetadataColumns.CreatedAt,
		cfg.MetadataColumns.UpdatedAt,
		cfg.MetadataColumns.BatchRevision,
	)
	return names
}

func mappedColumn(sourceCols *core.ColumnSet, source, target string) (*core.Column, error) {
	src, ok := sourceCols.Get(source)
	if !ok {
		return nil, core.NewConfigurationError("dataColumnMapping", "source column "+source+" was not found by introspection")
	}
	mapped := *src
	mapped.Name = target
	return &mapped, nil
}

// verifyLiveTableColumns checks that every expected data and metadata
// column is present on the existing live table with a compatible type
// family, in declared order (data columns, then metadata), reporting the
// first one that fails. Surplus columns on the live table are tolerated.
func verifyLiveTableColumns(cfg *core.Config, sourceCols, existing *core.ColumnSet) error {
	type expectedColumn struct {
		name string
		typ  core.SemanticType
	}
	var expected []expectedColumn
	for _, pair := range cfg.DataColumnMapping {
		src, ok := sourceCols.Get(pair.Source)
		if !ok {
			return core.NewConfigurationError("dataColumnMapping", "source column "+pair.Source+" was not found by introspection")
		}
		expected = append(expected, expectedColumn{pair.Target, src.Type})
	}
	expected = append(expected,
		expectedColumn{cfg.MetadataColumns.ID, cfg.TargetIDColumnType},
		expectedColumn{cfg.MetadataColumns.ContentHash, cfg.TargetHashColumnType},
		expectedColumn{cfg.MetadataColumns.CreatedAt, core.TypeDatetime},
		expectedColumn{cfg.MetadataColumns.UpdatedAt, core.TypeDatetime},
		expectedColumn{cfg.MetadataColumns.BatchRevision, core.TypeBigInt},
	)

	for _, want := range expected {
		name, wantType := want.name, want.typ
		got, ok := existing.Get(name)
		if !ok {
			return core.NewConfigurationError("targetLiveTableName", "live table is missing expected column "+name)
		}
		if !sameTypeFamily(wantType, got.Type) {
			return core.NewConfigurationError("targetLiveTableName",
				fmt.Sprintf("column %s has incompatible type: expected %s-family, got %s", name, wantType, got.Type))
		}
	}
	return nil
}

var typeFamilies = map[core.SemanticType]int{
	core.TypeInteger: 1, core.TypeBigInt: 1, core.TypeSmallInt: 1,
	core.TypeDecimal: 2, core.TypeFloat: 2,
	core.TypeString: 3, core.TypeText: 3,
	core.TypeDatetime: 4, core.TypeDate: 4, core.TypeTime: 4,
	core.TypeBlob: 5, core.TypeBinary: 5,
	core.TypeBoolean: 6,
	core.TypeJSON:    7,
	core.TypeGUID:    3,
}

func sameTypeFamily(a, b core.SemanticType) bool {
	if a == b {
		return true
	}
	fa, oka := typeFamilies[a]
	fb, okb := typeFamilies[b]
	return oka && okb && fa == fb
}

// PrepareTempTable drops any existing temp table and creates a fresh one:
// business PK columns (forming the table's primary key), the remaining data
// columns, a nullable content_hash, and a non-null created_at defaulting to
// the placeholder datetime.
func (m *Manager) PrepareTempTable(ctx context.Context, cfg *core.Config) error {
	if err := sqlident.ValidateAll(cfg.TargetTempTableName); err != nil {
		return &core.ConfigurationError{Field: "targetTempTableName", Message: err.Error()}
	}
	if err := sqlident.ValidateAll(targetColumnNames(cfg)...); err != nil {
		return &core.ConfigurationError{Field: "dataColumnMapping", Message: err.Error()}
	}

	if err := m.DropTempTable(ctx, cfg); err != nil {
		return err
	}

	sourceCols, err := m.GetSourceColumnTypes(ctx, cfg)
	if err != nil {
		return err
	}

	var columns []*core.Column
	var pkNames []string
	for _, pk := range cfg.PrimaryKeyColumnMap {
		col, err := mappedColumn(sourceCols, pk.Source, pk.Target)
		if err != nil {
			return err
		}
		columns = append(columns, col)
		pkNames = append(pkNames, pk.Target)
	}
	for _, pair := range cfg.NonPrimaryKeyDataColumns() {
		col, err := mappedColumn(sourceCols, pair.Source, pair.Target)
		if err != nil {
			return err
		}
		columns = append(columns, col)
	}

	placeholder := cfg.PlaceholderDatetime
	columns = append(columns,
		&core.Column{Name: cfg.MetadataColumns.ContentHash, Type: cfg.TargetHashColumnType, Length: cfg.TargetHashColumnLength, Nullable: true, Fixed: true},
		&core.Column{Name: cfg.MetadataColumns.CreatedAt, Type: core.TypeDatetime, Nullable: false, Default: &placeholder},
	)

	gen, err := generatorFor(cfg.TargetConnection)
	if err != nil {
		return core.NewSyncError("prepareTempTable", cfg.TargetTempTableName, err)
	}

	sql := gen.CreateTableSQL(cfg.TargetTempTableName, columns, pkNames)
	if _, err := cfg.TargetConnection.ExecContext(ctx, sql); err != nil {
		return core.NewSyncError("prepareTempTable", cfg.TargetTempTableName, err)
	}
	return nil
}

// DropTempTable idempotently drops the temp table.
func (m *Manager) DropTempTable(ctx context.Context, cfg *core.Config) error {
	gen, err := generatorFor(cfg.TargetConnection)
	if err != nil {
		return core.NewSyncError("dropTempTable", cfg.TargetTempTableName, err)
	}
	if _, err := cfg.TargetConnection.ExecContext(ctx, gen.DropTableIfExistsSQL(cfg.TargetTempTableName)); err != nil {
		return core.NewSyncError("dropTempTable", cfg.TargetTempTableName, err)
	}
	return nil
}

func generatorFor(conn core.Connection) (dialect.Generator, error) {
	d, err := dialect.Get(conn.Dialect())
	if err != nil {
		return nil, err
	}
	return d.Generator(), nil
}
