// Package tablesync synchronizes a destination table to match the current
// content of a source table or view: the Live Table is created on first
// run, kept column-compatible thereafter, and reconciled against a
// one-shot Temp Table on every invocation using content-hash change
// detection and set-based SQL.
//
// Callers build a Config with NewConfig and pass it to Sync. Everything
// below this package's surface lives under internal/ and is not part of
// the public API.
package tablesync

import (
	"context"

	"tablesync/internal/core"
	"tablesync/internal/orchestrator"
)

// Connection is the collaborator Sync needs on both the source and target
// side: parameterized exec/query, transaction control, identifier/string
// quoting, dialect reporting, and column/index introspection. See
// internal/mysqlconn for the MySQL implementation.
type Connection = core.Connection

// Logger accepts structured log records emitted during a Sync call. The
// zero value (nil) is valid and discards every record.
type Logger = core.Logger

// LogLevel is the severity of a log record or Report entry.
type LogLevel = core.LogLevel

// Log severities.
const (
	LogDebug = core.LogDebug
	LogInfo  = core.LogInfo
	LogWarn  = core.LogWarn
	LogError = core.LogError
)

// SemanticType is the closed set of column kinds the engine reasons about.
type SemanticType = core.SemanticType

// Semantic types.
const (
	TypeInteger  = core.TypeInteger
	TypeBigInt   = core.TypeBigInt
	TypeSmallInt = core.TypeSmallInt
	TypeBoolean  = core.TypeBoolean
	TypeString   = core.TypeString
	TypeText     = core.TypeText
	TypeDecimal  = core.TypeDecimal
	TypeFloat    = core.TypeFloat
	TypeDatetime = core.TypeDatetime
	TypeDate     = core.TypeDate
	TypeTime     = core.TypeTime
	TypeBlob     = core.TypeBlob
	TypeBinary   = core.TypeBinary
	TypeJSON     = core.TypeJSON
	TypeGUID     = core.TypeGUID
)

// Pair is one entry of an ordered source-column to target-column mapping.
type Pair = core.Pair

// MetadataColumns names the engine-owned columns on the live and temp
// tables.
type MetadataColumns = core.MetadataColumns

// DefaultMetadataColumns returns the spec-mandated default metadata column
// names: id, content_hash, created_at, updated_at, batch_revision.
func DefaultMetadataColumns() MetadataColumns {
	return core.DefaultMetadataColumns()
}

// DefaultPlaceholderDatetime is substituted whenever a non-nullable
// datetime source column is empty or unparseable.
const DefaultPlaceholderDatetime = core.DefaultPlaceholderDatetime

// ConfigParams is the set of fields a caller supplies to build a Config.
type ConfigParams = core.ConfigParams

// Config is the immutable description of one sync invocation.
type Config = core.Config

// NewConfig validates params and returns an immutable Config, or the first
// *ConfigurationError encountered.
func NewConfig(p ConfigParams) (*Config, error) {
	return core.NewConfig(p)
}

// Report accumulates the outcome of one sync invocation.
type Report = core.Report

// LogEntry is one record in a Report's log trail.
type LogEntry = core.LogEntry

// ConfigurationError reports an invalid Config, a missing source object, or
// an incompatible existing live table, detected before any DML is issued.
type ConfigurationError = core.ConfigurationError

// SyncError reports a failure during a running sync, with the phase and
// table in which it occurred.
type SyncError = core.SyncError

// Sync runs one full synchronization: it ensures the live table exists and
// is column-compatible, rebuilds the temp table from the source, hashes
// and indexes it, reconciles the live table against it in a single
// transaction, and drops the temp table. batchRevisionID is stamped onto
// every row touched this run and is the caller's choice of identifier for
// the invocation (a monotonic counter, a timestamp, a job run ID).
//
// On success, Sync returns a populated Report. On failure, it returns a
// *ConfigurationError (caught before any DML is issued) or a *SyncError
// (the phase and table in which the failure occurred), after making a
// best-effort attempt to drop the temp table.
func Sync(ctx context.Context, cfg *Config, batchRevisionID int64) (*Report, error) {
	return orchestrator.New().Sync(ctx, cfg, batchRevisionID)
}
