package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJob = `
batch_revision = 7

[source]
dsn = "user:pass@tcp(127.0.0.1:3306)/src"
object = "customers"

[target]
dsn = "user:pass@tcp(127.0.0.1:3306)/dst"
live_table = "customers_live"
temp_table = "customers_temp"

[[columns]]
source = "id"
target = "id"
primary_key = true

[[columns]]
source = "name"
target = "name"
content_hash = true

[[columns]]
source = "updated_ts"
target = "updated_ts"
content_hash = true
non_nullable_datetime = true
`

func writeSampleJob(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "job.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleJob), 0o600))
	return path
}

func TestLoadJobDecodesColumnsAndTarget(t *testing.T) {
	job, err := loadJob(writeSampleJob(t))
	require.NoError(t, err)

	assert.Equal(t, "customers", job.Source.Object)
	assert.Equal(t, "customers_live", job.Target.LiveTable)
	assert.Equal(t, "customers_temp", job.Target.TempTable)
	assert.Equal(t, int64(7), job.BatchRevision)
	require.Len(t, job.Columns, 3)
}

func TestBuildConfigParamsDerivesMappings(t *testing.T) {
	job, err := loadJob(writeSampleJob(t))
	require.NoError(t, err)

	params := job.buildConfigParams(nil, nil, nil)

	require.Len(t, params.PrimaryKeyColumnMap, 1)
	assert.Equal(t, "id", params.PrimaryKeyColumnMap[0].Source)

	require.Len(t, params.DataColumnMapping, 3)
	assert.ElementsMatch(t, []string{"name", "updated_ts"}, params.ColumnsForContentHash)
	assert.Equal(t, []string{"updated_ts"}, params.NonNullableDatetimeSourceColumns)
}
