// Package hasher implements the Data Hasher: a single set-based UPDATE that
// populates the temp table's content_hash column.
package hasher

import (
	"context"
	"fmt"
	"strings"

	"tablesync/internal/core"
)

// Hasher is stateless.
type Hasher struct{}

// NewHasher returns a Data Hasher.
func NewHasher() *Hasher {
	return &Hasher{}
}

// HashTempTable issues the UPDATE that populates content_hash on every row
// of the temp table with the lowercase hex SHA-256 of the hash-source
// columns, cast to text, coalesced to empty string on null, and joined
// with '-'. Returns the number of rows updated. If ColumnsForContentHash is
// empty, this is a no-op that logs a warning and returns 0, per spec.
func (h *Hasher) HashTempTable(ctx context.Context, cfg *core.Config) (int64, error) {
	if len(cfg.ColumnsForContentHash) == 0 {
		cfg.Log(core.LogWarn, "no columns configured for content hash; skipping hash step", map[string]any{
			"table": cfg.TargetTempTableName,
		})
		return 0, nil
	}

	conn := cfg.TargetConnection
	sep := conn.QuoteString("-")

	parts := make([]string, 0, len(cfg.ColumnsForContentHash))
	for _, source := range cfg.ColumnsForContentHash {
		target, ok := cfg.TargetNameForSource(source)
		if !ok {
			return 0, core.NewConfigurationError("columnsForContentHash", "source column "+source+" is not present in dataColumnMapping")
		}
		quoted := conn.QuoteIdentifier(target)
		parts = append(parts, fmt.Sprintf("COALESCE(CAST(%s AS CHAR), '')", quoted))
	}

	concatArgs := strings.Join(parts, ", "+sep+", ")
	table := conn.QuoteIdentifier(cfg.TargetTempTableName)
	hashCol := conn.QuoteIdentifier(cfg.MetadataColumns.ContentHash)

	sql := fmt.Sprintf("UPDATE %s SET %s = SHA2(CONCAT(%s), 256)", table, hashCol, concatArgs)

	n, err := conn.ExecContext(ctx, sql)
	if err != nil {
		return 0, core.NewSyncError("hashTempTable", cfg.TargetTempTableName, err)
	}
	return n, nil
}
