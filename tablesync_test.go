package tablesync_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablesync"
	"tablesync/internal/core"
	_ "tablesync/internal/dialect/mysql"
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
		switch p := dest[i].(type) {
		case *any:
			*p = v
		case *int64:
			*p = v.(int64)
		}
	}
	return nil
}
func (r *fakeRows) Columns() ([]string, error) { return nil, nil }
func (r *fakeRows) Err() error                 { return nil }
func (r *fakeRows) Close() error               { return nil }

type fakeConnection struct {
	liveCount int64
}

func (f *fakeConnection) ExecContext(context.Context, string, ...any) (int64, error) { return 1, nil }
func (f *fakeConnection) QueryContext(_ context.Context, query string, _ ...any) (core.Rows, error) {
	return &fakeRows{data: [][]any{{f.liveCount}}}, nil
}
func (f *fakeConnection) Begin(context.Context) error         { return nil }
func (f *fakeConnection) Commit() error                       { return nil }
func (f *fakeConnection) Rollback() error                     { return nil }
func (f *fakeConnection) InTransaction() bool                 { return false }
func (f *fakeConnection) QuoteIdentifier(name string) string { return "`" + name + "`" }
func (f *fakeConnection) QuoteString(v string) string         { return "'" + v + "'" }
func (f *fakeConnection) Dialect() core.Dialect               { return core.DialectMySQL }
func (f *fakeConnection) IntrospectColumns(context.Context, string) (*core.ColumnSet, error) {
	return core.NewColumnSet(
		&core.Column{Name: "id", Type: core.TypeBigInt},
		&core.Column{Name: "pk", Type: core.TypeBigInt},
		&core.Column{Name: "name", Type: core.TypeString, Length: 255},
		&core.Column{Name: "content_hash", Type: core.TypeString, Length: 64},
		&core.Column{Name: "created_at", Type: core.TypeDatetime},
		&core.Column{Name: "updated_at", Type: core.TypeDatetime},
		&core.Column{Name: "batch_revision", Type: core.TypeBigInt},
	), nil
}
func (f *fakeConnection) IntrospectIndexNames(context.Context, string) (map[string]bool, error) {
	return map[string]bool{}, nil
}

func TestSyncEndToEndWithFakeConnections(t *testing.T) {
	source := &fakeConnection{}
	target := &fakeConnection{liveCount: 0}

	cfg, err := tablesync.NewConfig(tablesync.ConfigParams{
		SourceConnection:    source,
		TargetConnection:    target,
		SourceObjectName:    "customers",
		TargetLiveTableName: "customers_live",
		TargetTempTableName: "customers_temp",
		PrimaryKeyColumnMap: []tablesync.Pair{{Source: "id", Target: "pk"}},
		DataColumnMapping: []tablesync.Pair{
			{Source: "id", Target: "pk"},
			{Source: "name", Target: "name"},
		},
		ColumnsForContentHash: []string{"name"},
	})
	require.NoError(t, err)

	report, err := tablesync.Sync(context.Background(), cfg, 42)
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.GreaterOrEqual(t, report.InitialInsertCount, int64(0))
}

func TestNewConfigRejectsInvalidParams(t *testing.T) {
	_, err := tablesync.NewConfig(tablesync.ConfigParams{})
	require.Error(t, err)
	var cfgErr *tablesync.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}
