// Package loader implements the Loader: it streams rows from the source
// connection, resolves each column's bound parameter type from the cached
// source schema, applies datetime placeholder substitution, and bulk-inserts
// the result into the temp table.
package loader

import (
	"context"
	"fmt"
	"strings"

	"tablesync/internal/core"
	"tablesync/internal/schema"
)

// batchSize is the number of rows accumulated per multi-row INSERT.
const batchSize = 500

// progressInterval is how often a debug progress log line is emitted.
const progressInterval = 1000

// Loader is stateless.
type Loader struct{}

// NewLoader returns a Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load streams every row of cfg.SourceObjectName, binds each column's
// parameter to the Go type its cached source semantic type calls for
// (falling back to runtime inference for columns the schema manager's
// introspection could not classify), substitutes non-nullable datetime
// placeholders, and inserts the result into the temp table. Returns the
// number of rows loaded.
func (l *Loader) Load(ctx context.Context, cfg *core.Config, schemaMgr *schema.Manager) (int64, error) {
	source := cfg.SourceConnection
	target := cfg.TargetConnection

	sourceNames := make([]string, len(cfg.DataColumnMapping))
	targetNames := make([]string, len(cfg.DataColumnMapping))
	for i, pair := range cfg.DataColumnMapping {
		sourceNames[i] = pair.Source
		targetNames[i] = pair.Target
	}

	sourceCols, err := schemaMgr.GetSourceColumnTypes(ctx, cfg)
	if err != nil {
		return 0, err
	}
	sourceColType := make([]*core.Column, len(sourceNames))
	sourceColKnown := make([]bool, len(sourceNames))
	for i, name := range sourceNames {
		col, ok := sourceCols.Get(name)
		sourceColType[i] = col
		sourceColKnown[i] = ok
	}

	selectSQL := buildSelectSQL(source, cfg.SourceObjectName, sourceNames)
	rows, err := source.QueryContext(ctx, selectSQL)
	if err != nil {
		return 0, core.NewSyncError("load", cfg.SourceObjectName, err)
	}
	defer rows.Close()

	insertSQL := buildInsertSQLTemplate(target, cfg.TargetTempTableName, targetNames)

	var total int64
	batch := make([][]any, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		sql, args := renderBatch(insertSQL, targetNames, batch)
		if _, err := target.ExecContext(ctx, sql, args...); err != nil {
			return core.NewSyncError("load", cfg.TargetTempTableName, err)
		}
		batch = batch[:0]
		return nil
	}

	dest := make([]any, len(sourceNames))
	scanDest := make([]any, len(sourceNames))
	for i := range dest {
		scanDest[i] = &dest[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanDest...); err != nil {
			return 0, core.NewSyncError("load", cfg.SourceObjectName, err)
		}

		values := make([]any, len(sourceNames))
		for i, name := range sourceNames {
			bound := bindParam(sourceColType[i], sourceColKnown[i], dest[i])
			if cfg.NonNullableDatetimeSourceColumns[name] {
				bound = substituteDatetime(cfg, bound)
			}
			values[i] = bound
		}
		batch = append(batch, values)
		total++

		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return 0, err
			}
		}
		if total%progressInterval == 0 {
			cfg.Log(core.LogDebug, "load progress", map[string]any{"rows": total})
		}
	}
	if err := rows.Err(); err != nil {
		return 0, core.NewSyncError("load", cfg.SourceObjectName, err)
	}
	if err := flush(); err != nil {
		return 0, err
	}

	return total, nil
}

func buildSelectSQL(conn core.Connection, object string, sourceCols []string) string {
	quoted := make([]string, len(sourceCols))
	for i, c := range sourceCols {
		quoted[i] = conn.QuoteIdentifier(c)
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), conn.QuoteIdentifier(object))
}

func buildInsertSQLTemplate(conn core.Connection, table string, targetCols []string) string {
	quoted := make([]string, len(targetCols))
	for i, c := range targetCols {
		quoted[i] = conn.QuoteIdentifier(c)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES ", conn.QuoteIdentifier(table), strings.Join(quoted, ", "))
}

func renderBatch(insertPrefix string, targetCols []string, batch [][]any) (string, []any) {
	var b strings.Builder
	b.WriteString(insertPrefix)

	args := make([]any, 0, len(batch)*len(targetCols))
	for i, row := range batch {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteByte('?')
		}
		b.WriteByte(')')
		args = append(args, row...)
	}
	return b.String(), args
}
