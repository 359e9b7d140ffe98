// Package differ implements the Differ/Applier: the set-based
// reconciliation of the temp table against the live table, run inside a
// single transaction on the target connection.
package differ

import (
	"context"
	"fmt"
	"strings"

	"tablesync/internal/core"
)

// Differ is stateless.
type Differ struct{}

// NewDiffer returns a Differ.
func NewDiffer() *Differ {
	return &Differ{}
}

// Apply runs phases A-D against cfg.TargetConnection and records counters
// on report. If the connection already has an open transaction, Apply
// participates in it without beginning or committing one of its own, and
// does not roll back on error — the outer owner is responsible. Otherwise
// it owns the full begin/commit/rollback lifecycle.
func (d *Differ) Apply(ctx context.Context, cfg *core.Config, batchRevisionID int64, report *core.Report) error {
	conn := cfg.TargetConnection
	ownsTx := !conn.InTransaction()

	if ownsTx {
		if err := conn.Begin(ctx); err != nil {
			return core.NewSyncError("differ", cfg.TargetLiveTableName, err)
		}
	}

	if err := d.applyPhases(ctx, cfg, batchRevisionID, report); err != nil {
		if ownsTx {
			if rbErr := conn.Rollback(); rbErr != nil {
				cfg.Log(core.LogError, "rollback failed after apply error", map[string]any{"error": rbErr.Error()})
			}
		}
		return err
	}

	if ownsTx {
		if err := conn.Commit(); err != nil {
			return core.NewSyncError("differ", cfg.TargetLiveTableName, err)
		}
	}
	return nil
}

func (d *Differ) applyPhases(ctx context.Context, cfg *core.Config, batchRevisionID int64, report *core.Report) error {
	conn := cfg.TargetConnection

	liveCount, err := d.countLive(ctx, cfg)
	if err != nil {
		return err
	}

	if liveCount == 0 {
		n, err := conn.ExecContext(ctx, d.initialInsertSQL(cfg), batchRevisionID)
		if err != nil {
			return core.NewSyncError("differ:initialInsert", cfg.TargetLiveTableName, err)
		}
		report.InitialInsertCount = n
		return nil
	}

	updated, err := conn.ExecContext(ctx, d.updateChangedSQL(cfg), batchRevisionID)
	if err != nil {
		return core.NewSyncError("differ:updateChanged", cfg.TargetLiveTableName, err)
	}
	report.UpdatedCount = updated

	deleted, err := conn.ExecContext(ctx, d.deleteOrphanedSQL(cfg))
	if err != nil {
		return core.NewSyncError("differ:deleteOrphaned", cfg.TargetLiveTableName, err)
	}
	report.DeletedCount = deleted

	inserted, err := conn.ExecContext(ctx, d.insertNewSQL(cfg), batchRevisionID)
	if err != nil {
		return core.NewSyncError("differ:insertNew", cfg.TargetLiveTableName, err)
	}
	report.InsertedCount = inserted

	return nil
}

func (d *Differ) countLive(ctx context.Context, cfg *core.Config) (int64, error) {
	conn := cfg.TargetConnection
	rows, err := conn.QueryContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", conn.QuoteIdentifier(cfg.TargetLiveTableName)))
	if err != nil {
		return 0, core.NewSyncError("differ:countLive", cfg.TargetLiveTableName, err)
	}
	defer rows.Close()

	var count int64
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, core.NewSyncError("differ:countLive", cfg.TargetLiveTableName, err)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, core.NewSyncError("differ:countLive", cfg.TargetLiveTableName, err)
	}
	return count, nil
}

// insertColumns returns the quoted target column list shared by the insert
// statements: business PK columns, remaining data columns, content_hash,
// created_at, batch_revision.
func insertColumns(cfg *core.Config, conn core.Connection) []string {
	var cols []string
	for _, pk := range cfg.PrimaryKeyColumnMap {
		cols = append(cols, conn.QuoteIdentifier(pk.Target))
	}
	for _, pair := range cfg.NonPrimaryKeyDataColumns() {
		cols = append(cols, conn.QuoteIdentifier(pair.Target))
	}
	cols = append(cols, conn.QuoteIdentifier(cfg.MetadataColumns.ContentHash))
	cols = append(cols, conn.QuoteIdentifier(cfg.MetadataColumns.CreatedAt))
	cols = append(cols, conn.QuoteIdentifier(cfg.MetadataColumns.BatchRevision))
	return cols
}

func qualified(conn core.Connection, table, column string) string {
	return conn.QuoteIdentifier(table) + "." + conn.QuoteIdentifier(column)
}

func joinCondition(cfg *core.Config, conn core.Connection) string {
	var parts []string
	for _, pk := range cfg.PrimaryKeyColumnMap {
		parts = append(parts, fmt.Sprintf("%s = %s",
			qualified(conn, cfg.TargetLiveTableName, pk.Target),
			qualified(conn, cfg.TargetTempTableName, pk.Target)))
	}
	return strings.Join(parts, " AND ")
}

// initialInsertSQL renders Phase A: the empty-live fast path.
func (d *Differ) initialInsertSQL(cfg *core.Config) string {
	conn := cfg.TargetConnection
	cols := insertColumns(cfg, conn)

	var selectCols []string
	for _, pk := range cfg.PrimaryKeyColumnMap {
		selectCols = append(selectCols, conn.QuoteIdentifier(pk.Target))
	}
	for _, pair := range cfg.NonPrimaryKeyDataColumns() {
		selectCols = append(selectCols, conn.QuoteIdentifier(pair.Target))
	}
	selectCols = append(selectCols, conn.QuoteIdentifier(cfg.MetadataColumns.ContentHash))
	selectCols = append(selectCols, conn.QuoteIdentifier(cfg.MetadataColumns.CreatedAt))
	selectCols = append(selectCols, "?")

	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s",
		conn.QuoteIdentifier(cfg.TargetLiveTableName), strings.Join(cols, ", "),
		strings.Join(selectCols, ", "), conn.QuoteIdentifier(cfg.TargetTempTableName))
}

// updateChangedSQL renders Phase B: UPDATE live JOIN temp on hash mismatch.
func (d *Differ) updateChangedSQL(cfg *core.Config) string {
	conn := cfg.TargetConnection
	live := cfg.TargetLiveTableName
	temp := cfg.TargetTempTableName

	var sets []string
	for _, pair := range cfg.NonPrimaryKeyDataColumns() {
		sets = append(sets, fmt.Sprintf("%s = %s", qualified(conn, live, pair.Target), qualified(conn, temp, pair.Target)))
	}
	sets = append(sets,
		fmt.Sprintf("%s = %s", qualified(conn, live, cfg.MetadataColumns.ContentHash), qualified(conn, temp, cfg.MetadataColumns.ContentHash)),
		fmt.Sprintf("%s = CURRENT_TIMESTAMP", qualified(conn, live, cfg.MetadataColumns.UpdatedAt)),
		fmt.Sprintf("%s = ?", qualified(conn, live, cfg.MetadataColumns.BatchRevision)),
	)

	return fmt.Sprintf("UPDATE %s JOIN %s ON %s SET %s WHERE %s <> %s",
		conn.QuoteIdentifier(live), conn.QuoteIdentifier(temp), joinCondition(cfg, conn),
		strings.Join(sets, ", "),
		qualified(conn, live, cfg.MetadataColumns.ContentHash), qualified(conn, temp, cfg.MetadataColumns.ContentHash))
}

// deleteOrphanedSQL renders Phase C: DELETE live rows absent from temp.
func (d *Differ) deleteOrphanedSQL(cfg *core.Config) string {
	conn := cfg.TargetConnection
	live := cfg.TargetLiveTableName
	temp := cfg.TargetTempTableName

	return fmt.Sprintf("DELETE %s FROM %s LEFT JOIN %s ON %s WHERE %s IS NULL",
		conn.QuoteIdentifier(live), conn.QuoteIdentifier(live), conn.QuoteIdentifier(temp),
		joinCondition(cfg, conn), qualified(conn, temp, cfg.FirstPrimaryKeyTarget()))
}

// insertNewSQL renders Phase D: INSERT temp rows absent from live.
func (d *Differ) insertNewSQL(cfg *core.Config) string {
	conn := cfg.TargetConnection
	live := cfg.TargetLiveTableName
	temp := cfg.TargetTempTableName
	cols := insertColumns(cfg, conn)

	var selectCols []string
	for _, pk := range cfg.PrimaryKeyColumnMap {
		selectCols = append(selectCols, qualified(conn, temp, pk.Target))
	}
	for _, pair := range cfg.NonPrimaryKeyDataColumns() {
		selectCols = append(selectCols, qualified(conn, temp, pair.Target))
	}
	selectCols = append(selectCols, qualified(conn, temp, cfg.MetadataColumns.ContentHash))
	selectCols = append(selectCols, qualified(conn, temp, cfg.MetadataColumns.CreatedAt))
	selectCols = append(selectCols, "?")

	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s LEFT JOIN %s ON %s WHERE %s IS NULL",
		conn.QuoteIdentifier(live), strings.Join(cols, ", "),
		strings.Join(selectCols, ", "), conn.QuoteIdentifier(temp), conn.QuoteIdentifier(live),
		joinCondition(cfg, conn), qualified(conn, live, cfg.FirstPrimaryKeyTarget()))
}
