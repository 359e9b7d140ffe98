package loader_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablesync/internal/core"
	"tablesync/internal/loader"
	"tablesync/internal/schema"
)

type fakeRows struct {
	data [][]any
	idx  int
}

func (r *fakeRows) Next() bool {
	if r.idx >= len(r.data) {
		return false
	}
	r.idx++
	return true
}
func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.idx-1]
	for i, v := range row {
		ptr := dest[i].(*any)
		*ptr = v
	}
	return nil
}
func (r *fakeRows) Columns() ([]string, error) { return nil, nil }
func (r *fakeRows) Err() error                 { return nil }
func (r *fakeRows) Close() error               { return nil }

type fakeConnection struct {
	rows    *fakeRows
	execed  []string
	args    [][]any
	columns *core.ColumnSet
}

func (f *fakeConnection) ExecContext(_ context.Context, query string, args ...any) (int64, error) {
	f.execed = append(f.execed, query)
	f.args = append(f.args, args)
	return int64(len(args)), nil
}
func (f *fakeConnection) QueryContext(context.Context, string, ...any) (core.Rows, error) {
	return f.rows, nil
}
func (f *fakeConnection) Begin(context.Context) error         { return nil }
func (f *fakeConnection) Commit() error                       { return nil }
func (f *fakeConnection) Rollback() error                     { return nil }
func (f *fakeConnection) InTransaction() bool                 { return false }
func (f *fakeConnection) QuoteIdentifier(name string) string { return "`" + name + "`" }
func (f *fakeConnection) QuoteString(v string) string         { return "'" + v + "'" }
func (f *fakeConnection) Dialect() core.Dialect               { return core.DialectMySQL }
func (f *fakeConnection) IntrospectColumns(context.Context, string) (*core.ColumnSet, error) {
	if f.columns != nil {
		return f.columns, nil
	}
	return core.NewColumnSet(
		&core.Column{Name: "id", Type: core.TypeInteger},
		&core.Column{Name: "name", Type: core.TypeString},
		&core.Column{Name: "updated_ts", Type: core.TypeDatetime},
	), nil
}
func (f *fakeConnection) IntrospectIndexNames(context.Context, string) (map[string]bool, error) {
	return nil, nil
}

func TestLoadStreamsAndSubstitutesDatetime(t *testing.T) {
	source := &fakeConnection{rows: &fakeRows{data: [][]any{
		{int64(1), "a", nil},
		{int64(2), "b", "2024-01-02 03:04:05"},
	}}}
	target := &fakeConnection{}

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

	ld := loader.NewLoader()
	n, err := ld.Load(context.Background(), cfg, schema.NewManager())
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.Len(t, target.execed, 1)
	assert.Contains(t, target.execed[0], "INSERT INTO `customers_temp`")
	require.Len(t, target.args, 1)
	assert.Equal(t, core.DefaultPlaceholderDatetime, target.args[0][2])
	assert.Equal(t, "2024-01-02 03:04:05", target.args[0][5])
}

func TestLoadFallsBackToRuntimeInferenceForUnclassifiedColumns(t *testing.T) {
	source := &fakeConnection{
		rows: &fakeRows{data: [][]any{
			{int64(1), "active", true},
		}},
		columns: core.NewColumnSet(
			&core.Column{Name: "id", Type: core.TypeInteger},
		),
	}
	target := &fakeConnection{}

	cfg, err := core.NewConfig(core.ConfigParams{
		SourceConnection:    source,
		TargetConnection:    target,
		SourceObjectName:    "flags",
		TargetLiveTableName: "flags_live",
		TargetTempTableName: "flags_temp",
		PrimaryKeyColumnMap: []core.Pair{{Source: "id", Target: "id"}},
		DataColumnMapping: []core.Pair{
			{Source: "id", Target: "id"},
			{Source: "status", Target: "status"},
			{Source: "enabled", Target: "enabled"},
		},
		ColumnsForContentHash: []string{"status", "enabled"},
	})
	require.NoError(t, err)

	ld := loader.NewLoader()
	n, err := ld.Load(context.Background(), cfg, schema.NewManager())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.Len(t, target.args, 1)
	assert.Equal(t, int64(1), target.args[0][0])
	assert.Equal(t, "active", target.args[0][1])
	assert.Equal(t, true, target.args[0][2])
}
