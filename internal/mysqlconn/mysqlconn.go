// Package mysqlconn implements core.Connection over database/sql with the
// go-sql-driver/mysql driver, for MySQL, MariaDB, and TiDB targets alike.
package mysqlconn

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"

	"tablesync/internal/core"
	"tablesync/internal/dialect"
	_ "tablesync/internal/dialect/mysql"
	"tablesync/internal/introspect"
	_ "tablesync/internal/introspect/mysql"
)

// Connection is a core.Connection backed by a single *sql.DB and, once
// Begin is called, an in-flight *sql.Tx.
type Connection struct {
	db      *sql.DB
	tx      *sql.Tx
	dialect core.Dialect
	gen     dialect.Generator
}

// Open connects to dsn, pings it, and detects the dialect family.
func Open(ctx context.Context, dsn string) (*Connection, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if pingErr := db.PingContext(ctx); pingErr != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %w; additionally failed to close connection: %w", pingErr, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}

	dialectName, err := detectDialect(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to detect dialect: %w", err)
	}

	d, err := dialect.Get(dialectName)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Connection{db: db, dialect: dialectName, gen: d.Generator()}, nil
}

// Close closes the underlying *sql.DB. A Connection with an open
// transaction must be committed or rolled back first.
func (c *Connection) Close() error {
	return c.db.Close()
}

// execer is whichever of *sql.DB or *sql.Tx is currently active.
func (c *Connection) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
} {
	if c.tx != nil {
		return c.tx
	}
	return c.db
}

// ExecContext runs query against the active transaction, or the pool if no
// transaction is open, and returns the number of affected rows.
func (c *Connection) ExecContext(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := c.execer().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// QueryContext runs query and returns a cursor over the result set.
func (c *Connection) QueryContext(ctx context.Context, query string, args ...any) (core.Rows, error) {
	rows, err := c.execer().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &rowsAdapter{rows: rows}, nil
}

// Begin starts a transaction. It is a no-op error if one is already open.
func (c *Connection) Begin(ctx context.Context) error {
	if c.tx != nil {
		return fmt.Errorf("transaction already open")
	}
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	c.tx = tx
	return nil
}

// Commit commits the open transaction.
func (c *Connection) Commit() error {
	if c.tx == nil {
		return fmt.Errorf("no transaction open")
	}
	err := c.tx.Commit()
	c.tx = nil
	return err
}

// Rollback rolls back the open transaction. Safe to call when none is open.
func (c *Connection) Rollback() error {
	if c.tx == nil {
		return nil
	}
	err := c.tx.Rollback()
	c.tx = nil
	return err
}

// InTransaction reports whether a transaction is currently open.
func (c *Connection) InTransaction() bool {
	return c.tx != nil
}

// QuoteIdentifier delegates to the resolved dialect's quoting rules.
func (c *Connection) QuoteIdentifier(name string) string {
	return c.gen.QuoteIdentifier(name)
}

// QuoteString delegates to the resolved dialect's quoting rules.
func (c *Connection) QuoteString(value string) string {
	return c.gen.QuoteString(value)
}

// Dialect reports the detected dialect family.
func (c *Connection) Dialect() core.Dialect {
	return c.dialect
}

// IntrospectColumns resolves objectName's columns via the dialect-specific
// Introspecter.
func (c *Connection) IntrospectColumns(ctx context.Context, objectName string) (*core.ColumnSet, error) {
	ic, err := introspect.Get(c.dialect)
	if err != nil {
		return nil, err
	}
	return ic.Columns(ctx, c.db, objectName)
}

// IntrospectIndexNames returns the set of index names already present on
// tableName.
func (c *Connection) IntrospectIndexNames(ctx context.Context, tableName string) (map[string]bool, error) {
	ic, err := introspect.Get(c.dialect)
	if err != nil {
		return nil, err
	}
	return ic.IndexNames(ctx, c.db, tableName)
}

func detectDialect(ctx context.Context, db *sql.DB) (core.Dialect, error) {
	var varName, comment string
	err := db.QueryRowContext(ctx, "SHOW VARIABLES LIKE 'version_comment'").Scan(&varName, &comment)
	if err != nil {
		return "", err
	}

	comment = strings.ToLower(comment)
	switch {
	case strings.Contains(comment, "mariadb"):
		return core.DialectMariaDB, nil
	case strings.Contains(comment, "tidb"):
		return core.DialectTiDB, nil
	default:
		return core.DialectMySQL, nil
	}
}

type rowsAdapter struct {
	rows *sql.Rows
}

func (r *rowsAdapter) Next() bool                { return r.rows.Next() }
func (r *rowsAdapter) Scan(dest ...any) error     { return r.rows.Scan(dest...) }
func (r *rowsAdapter) Columns() ([]string, error) { return r.rows.Columns() }
func (r *rowsAdapter) Err() error                 { return r.rows.Err() }
func (r *rowsAdapter) Close() error               { return r.rows.Close() }

var _ core.Connection = (*Connection)(nil)
