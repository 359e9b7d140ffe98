package core

import "fmt"

// ConfigurationError reports a pre-flight failure: an invalid Config, a
// missing source object, or a live table that is missing an expected column
// or has an incompatible column type. Raised before any DML is issued.
type ConfigurationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError builds a ConfigurationError naming the offending
// field.
func NewConfigurationError(field, message string) *ConfigurationError {
	return &ConfigurationError{Field: field, Message: message}
}

// SyncError reports a runtime failure during DDL, load, hash, index, or
// apply phases. It wraps the underlying cause and names the phase and table
// involved, so callers can log or alert on the failing stage directly.
type SyncError struct {
	Phase string
	Table string
	Cause error
}

func (e *SyncError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("sync error in phase %s (table %s): %v", e.Phase, e.Table, e.Cause)
	}
	return fmt.Sprintf("sync error in phase %s: %v", e.Phase, e.Cause)
}

func (e *SyncError) Unwrap() error {
	return e.Cause
}

// NewSyncError wraps cause with phase/table context.
func NewSyncError(phase, table string, cause error) *SyncError {
	return &SyncError{Phase: phase, Table: table, Cause: cause}
}
