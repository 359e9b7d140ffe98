package schema_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablesync/internal/core"
	_ "tablesync/internal/dialect/mysql"
	"tablesync/internal/schema"
)

type fakeConnection struct {
	dialect       core.Dialect
	columns       map[string]*core.ColumnSet
	introspectErr map[string]error
	execed        []string
}

func newFakeConnection() *fakeConnection {
	return &fakeConnection{
		dialect:       core.DialectMySQL,
		columns:       make(map[string]*core.ColumnSet),
		introspectErr: make(map[string]error),
	}
}

func (f *fakeConnection) ExecContext(_ context.Context, query string, _ ...any) (int64, error) {
	f.execed = append(f.execed, query)
	return 0, nil
}
func (f *fakeConnection) QueryContext(context.Context, string, ...any) (core.Rows, error) {
	return nil, nil
}
func (f *fakeConnection) Begin(context.Context) error { return nil }
func (f *fakeConnection) Commit() error                { return nil }
func (f *fakeConnection) Rollback() error              { return nil }
func (f *fakeConnection) InTransaction() bool          { return false }
func (f *fakeConnection) QuoteIdentifier(name string) string { return "`" + name + "`" }
func (f *fakeConnection) QuoteString(v string) string        { return "'" + v + "'" }
func (f *fakeConnection) Dialect() core.Dialect              { return f.dialect }
func (f *fakeConnection) IntrospectColumns(_ context.Context, name string) (*core.ColumnSet, error) {
	if err, ok := f.introspectErr[name]; ok {
		return nil, err
	}
	if cs, ok := f.columns[name]; ok {
		return cs, nil
	}
	return nil, core.NewConfigurationError("sourceObjectName", "object not found")
}
func (f *fakeConnection) IntrospectIndexNames(context.Context, string) (map[string]bool, error) {
	return map[string]bool{}, nil
}

func sourceColumns() *core.ColumnSet {
	return core.NewColumnSet(
		&core.Column{Name: "id", Type: core.TypeBigInt, Nullable: false},
		&core.Column{Name: "name", Type: core.TypeString, Length: 100, Nullable: false},
		&core.Column{Name: "updated_ts", Type: core.TypeDatetime, Nullable: true},
	)
}

func testConfig(t *testing.T, source, target *fakeConnection) *core.Config {
	t.Helper()
	cfg, err := core.NewConfig(core.ConfigParams{
		SourceConnection:    source,
		TargetConnection:    target,
		SourceObjectName:    "customers",
		TargetLiveTableName: "customers_live",
		TargetTempTableName: "customers_temp",
		PrimaryKeyColumnMap: []core.Pair{{Source: "id", Target: "pk"}},
		DataColumnMapping: []core.Pair{
			{Source: "id", Target: "pk"},
			{Source: "name", Target: "name"},
			{Source: "updated_ts", Target: "updated_ts"},
		},
		ColumnsForContentHash:            []string{"name", "updated_ts"},
		NonNullableDatetimeSourceColumns: []string{"updated_ts"},
	})
	require.NoError(t, err)
	return cfg
}

func TestEnsureLiveTableCreatesWhenMissing(t *testing.T) {
	source := newFakeConnection()
	source.columns["customers"] = sourceColumns()
	target := newFakeConnection()

	cfg := testConfig(t, source, target)
	mgr := schema.NewManager()

	require.NoError(t, mgr.EnsureLiveTable(context.Background(), cfg))
	require.Len(t, target.execed, 1)
	assert.Contains(t, target.execed[0], "CREATE TABLE `customers_live`")
	assert.Contains(t, target.execed[0], "`pk`")
	assert.Contains(t, target.execed[0], "`content_hash`")
}

func TestEnsureLiveTableVerifiesExisting(t *testing.T) {
	source := newFakeConnection()
	source.columns["customers"] = sourceColumns()
	target := newFakeConnection()
	target.columns["customers_live"] = core.NewColumnSet(
		&core.Column{Name: "pk", Type: core.TypeBigInt},
		&core.Column{Name: "name", Type: core.TypeString},
		&core.Column{Name: "updated_ts", Type: core.TypeDatetime},
		&core.Column{Name: "id", Type: core.TypeBigInt},
		&core.Column{Name: "content_hash", Type: core.TypeString},
		&core.Column{Name: "created_at", Type: core.TypeDatetime},
		&core.Column{Name: "updated_at", Type: core.TypeDatetime},
		&core.Column{Name: "batch_revision", Type: core.TypeBigInt},
	)

	cfg := testConfig(t, source, target)
	mgr := schema.NewManager()

	require.NoError(t, mgr.EnsureLiveTable(context.Background(), cfg))
	assert.Empty(t, target.execed)
}

func TestEnsureLiveTableFailsOnMissingColumn(t *testing.T) {
	source := newFakeConnection()
	source.columns["customers"] = sourceColumns()
	target := newFakeConnection()
	target.columns["customers_live"] = core.NewColumnSet(
		&core.Column{Name: "pk", Type: core.TypeBigInt},
		&core.Column{Name: "id", Type: core.TypeBigInt},
		&core.Column{Name: "content_hash", Type: core.TypeString},
		&core.Column{Name: "created_at", Type: core.TypeDatetime},
		&core.Column{Name: "updated_at", Type: core.TypeDatetime},
		&core.Column{Name: "batch_revision", Type: core.TypeBigInt},
	)

	cfg := testConfig(t, source, target)
	mgr := schema.NewManager()

	err := mgr.EnsureLiveTable(context.Background(), cfg)
	require.Error(t, err)
	var cfgErr *core.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, "name")
}

func TestEnsureLiveTableRejectsUnsafeTargetColumnName(t *testing.T) {
	source := newFakeConnection()
	source.columns["customers"] = sourceColumns()
	target := newFakeConnection()

	cfg := testConfig(t, source, target)
	cfg.DataColumnMapping[1].Target = "name`; DROP TABLE customers_live; --"
	mgr := schema.NewManager()

	err := mgr.EnsureLiveTable(context.Background(), cfg)
	require.Error(t, err)
	var cfgErr *core.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Empty(t, target.execed)
}

func TestPrepareTempTableRejectsUnsafeTargetColumnName(t *testing.T) {
	source := newFakeConnection()
	source.columns["customers"] = sourceColumns()
	target := newFakeConnection()

	cfg := testConfig(t, source, target)
	cfg.DataColumnMapping[1].Target = "name`; DROP TABLE customers_temp; --"
	mgr := schema.NewManager()

	err := mgr.PrepareTempTable(context.Background(), cfg)
	require.Error(t, err)
	var cfgErr *core.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Empty(t, target.execed)
}

func TestPrepareTempTableDropsThenCreates(t *testing.T) {
	source := newFakeConnection()
	source.columns["customers"] = sourceColumns()
	target := newFakeConnection()

	cfg := testConfig(t, source, target)
	mgr := schema.NewManager()

	require.NoError(t, mgr.PrepareTempTable(context.Background(), cfg))
	require.Len(t, target.execed, 2)
	assert.Contains(t, target.execed[0], "DROP TABLE IF EXISTS `customers_temp`")
	assert.Contains(t, target.execed[1], "CREATE TABLE `customers_temp`")
	assert.Contains(t, target.execed[1], "PRIMARY KEY (`pk`)")
}

func TestGetSourceColumnTypesCaches(t *testing.T) {
	source := newFakeConnection()
	source.columns["customers"] = sourceColumns()
	target := newFakeConnection()
	cfg := testConfig(t, source, target)
	mgr := schema.NewManager()

	cs1, err := mgr.GetSourceColumnTypes(context.Background(), cfg)
	require.NoError(t, err)
	delete(source.columns, "customers")
	cs2, err := mgr.GetSourceColumnTypes(context.Background(), cfg)
	require.NoError(t, err)
	assert.Same(t, cs1, cs2)
}
