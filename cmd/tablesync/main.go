// Package main contains the cli implementation of the tool. It uses cobra
// package for cli tool implementation.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tablesync"
	"tablesync/internal/mysqlconn"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tablesync",
		Short: "Synchronize a destination table against a source table or view",
	}
	root.AddCommand(syncCmd())
	return root
}

func syncCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one sync job described by a TOML job file",
		Long: `Reads a job file describing a source object, a target live/temp table
pair, and a column mapping, then runs one full synchronization: the live
table is created on first run (or verified compatible thereafter), the
source is loaded into a fresh temp table, content hashes are computed, and
the live table is reconciled against the temp table with set-based SQL.

Example:
  tablesync sync --config job.toml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to the sync job TOML file (required)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func runSync(ctx context.Context, configPath string) error {
	job, err := loadJob(configPath)
	if err != nil {
		return err
	}

	logger := stderrLogger{}

	source, err := mysqlconn.Open(ctx, job.Source.DSN)
	if err != nil {
		return fmt.Errorf("opening source connection: %w", err)
	}
	defer func() { _ = source.Close() }()

	target, err := mysqlconn.Open(ctx, job.Target.DSN)
	if err != nil {
		return fmt.Errorf("opening target connection: %w", err)
	}
	defer func() { _ = target.Close() }()

	cfg, err := tablesync.NewConfig(job.buildConfigParams(source, target, logger))
	if err != nil {
		return reportFailure(err)
	}

	report, err := tablesync.Sync(ctx, cfg, job.BatchRevision)
	if err != nil {
		return reportFailure(err)
	}

	printReport(report)
	return nil
}

func reportFailure(err error) error {
	var cfgErr *tablesync.ConfigurationError
	var syncErr *tablesync.SyncError
	switch {
	case errors.As(err, &cfgErr):
		fmt.Fprintf(os.Stderr, "configuration error: %s\n", cfgErr.Error())
	case errors.As(err, &syncErr):
		fmt.Fprintf(os.Stderr, "sync error: %s\n", syncErr.Error())
	default:
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
	}
	return err
}

func printReport(r *tablesync.Report) {
	fmt.Printf("initial insert: %d\n", r.InitialInsertCount)
	fmt.Printf("inserted:       %d\n", r.InsertedCount)
	fmt.Printf("updated:        %d\n", r.UpdatedCount)
	fmt.Printf("deleted:        %d\n", r.DeletedCount)
}
