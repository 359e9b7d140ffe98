// Package orchestrator sequences one sync invocation end to end: schema
// preparation, load, hash, index, diff/apply, and temp-table teardown.
package orchestrator

import (
	"context"

	"tablesync/internal/core"
	"tablesync/internal/differ"
	"tablesync/internal/hasher"
	"tablesync/internal/indexmgr"
	"tablesync/internal/loader"
	"tablesync/internal/schema"
)

// Orchestrator owns one Schema Manager (and its column-type cache) for the
// lifetime of a single Sync call.
type Orchestrator struct {
	schema  *schema.Manager
	index   *indexmgr.Manager
	hash    *hasher.Hasher
	load    *loader.Loader
	differ  *differ.Differ
}

// New returns an Orchestrator scoped to one Sync invocation.
func New() *Orchestrator {
	return &Orchestrator{
		schema: schema.NewManager(),
		index:  indexmgr.NewManager(),
		hash:   hasher.NewHasher(),
		load:   loader.NewLoader(),
		differ: differ.NewDiffer(),
	}
}

// Sync runs the full pipeline described in the control flow of the spec:
// ensure the live table exists, rebuild the temp table, load the source
// into it, hash it, index both tables, reconcile live against temp, and
// drop the temp table. On any phase failure the temp table is dropped on
// a best-effort basis before the original error is returned.
func (o *Orchestrator) Sync(ctx context.Context, cfg *core.Config, batchRevisionID int64) (*core.Report, error) {
	report := core.NewReport()

	if err := o.schema.EnsureLiveTable(ctx, cfg); err != nil {
		o.cleanupAfterFailure(ctx, cfg)
		return nil, err
	}
	if err := o.schema.PrepareTempTable(ctx, cfg); err != nil {
		o.cleanupAfterFailure(ctx, cfg)
		return nil, err
	}

	loaded, err := o.load.Load(ctx, cfg, o.schema)
	if err != nil {
		o.cleanupAfterFailure(ctx, cfg)
		return nil, err
	}
	report.Record(cfg.Logger, core.LogInfo, "loaded source rows into temp table", map[string]any{"rows": loaded})

	if _, err := o.hash.HashTempTable(ctx, cfg); err != nil {
		o.cleanupAfterFailure(ctx, cfg)
		return nil, err
	}

	if err := o.index.AddIndicesToTempTableAfterLoad(ctx, cfg); err != nil {
		o.cleanupAfterFailure(ctx, cfg)
		return nil, err
	}
	if err := o.index.AddIndicesToLiveTable(ctx, cfg); err != nil {
		o.cleanupAfterFailure(ctx, cfg)
		return nil, err
	}

	if err := o.differ.Apply(ctx, cfg, batchRevisionID, report); err != nil {
		o.cleanupAfterFailure(ctx, cfg)
		return nil, err
	}

	if err := o.schema.DropTempTable(ctx, cfg); err != nil {
		return nil, err
	}

	report.Record(cfg.Logger, core.LogInfo, "sync complete", map[string]any{
		"initialInsert": report.InitialInsertCount,
		"inserted":      report.InsertedCount,
		"updated":       report.UpdatedCount,
		"deleted":       report.DeletedCount,
	})
	return report, nil
}

// cleanupAfterFailure drops the temp table on a best-effort basis when an
// earlier phase has already failed. A cleanup failure is logged, never
// raised, so the caller sees the original error.
func (o *Orchestrator) cleanupAfterFailure(ctx context.Context, cfg *core.Config) {
	if dropErr := o.schema.DropTempTable(ctx, cfg); dropErr != nil {
		cfg.Log(core.LogError, "failed to drop temp table after sync failure", map[string]any{"error": dropErr.Error()})
	}
}
