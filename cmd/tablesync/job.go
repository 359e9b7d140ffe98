package main

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"tablesync"
)

// jobColumn is one entry of a job file's [[columns]] array.
type jobColumn struct {
	Source              string `toml:"source"`
	Target              string `toml:"target"`
	PrimaryKey          bool   `toml:"primary_key"`
	ContentHash         bool   `toml:"content_hash"`
	NonNullableDatetime bool   `toml:"non_nullable_datetime"`
}

type jobFile struct {
	Source struct {
		DSN    string `toml:"dsn"`
		Object string `toml:"object"`
	} `toml:"source"`

	Target struct {
		DSN       string `toml:"dsn"`
		LiveTable string `toml:"live_table"`
		TempTable string `toml:"temp_table"`
	} `toml:"target"`

	Columns []jobColumn `toml:"columns"`

	BatchRevision       int64  `toml:"batch_revision"`
	PlaceholderDatetime string `toml:"placeholder_datetime"`
}

// loadJob decodes a sync job description from a TOML file.
func loadJob(path string) (*jobFile, error) {
	var job jobFile
	if _, err := toml.DecodeFile(path, &job); err != nil {
		return nil, fmt.Errorf("reading job file %s: %w", path, err)
	}
	return &job, nil
}

// buildConfigParams translates the job file's column list into the
// PrimaryKeyColumnMap / DataColumnMapping / ColumnsForContentHash /
// NonNullableDatetimeSourceColumns shape tablesync.NewConfig expects.
func (j *jobFile) buildConfigParams(source, target tablesync.Connection, logger tablesync.Logger) tablesync.ConfigParams {
	var pk []tablesync.Pair
	var data []tablesync.Pair
	var hashCols []string
	var datetimeCols []string

	for _, col := range j.Columns {
		pair := tablesync.Pair{Source: col.Source, Target: col.Target}
		data = append(data, pair)
		if col.PrimaryKey {
			pk = append(pk, pair)
		}
		if col.ContentHash {
			hashCols = append(hashCols, col.Source)
		}
		if col.NonNullableDatetime {
			datetimeCols = append(datetimeCols, col.Source)
		}
	}

	return tablesync.ConfigParams{
		SourceConnection:                 source,
		TargetConnection:                 target,
		SourceObjectName:                 j.Source.Object,
		TargetLiveTableName:              j.Target.LiveTable,
		TargetTempTableName:              j.Target.TempTable,
		PrimaryKeyColumnMap:              pk,
		DataColumnMapping:                data,
		ColumnsForContentHash:            hashCols,
		NonNullableDatetimeSourceColumns: datetimeCols,
		PlaceholderDatetime:              j.PlaceholderDatetime,
		Logger:                           logger,
	}
}
