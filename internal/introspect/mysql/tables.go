package mysql

import (
	"context"
	"database/sql"

	"tablesync/internal/core"
)

// objectKind reports whether objectName is a base table, a view, or
// neither, via information_schema.tables.table_type.
func objectKind(ctx context.Context, db *sql.DB, objectName string) (isTable, isView bool, err error) {
	var tableType string
	row := db.QueryRowContext(ctx, `
		SELECT table_type FROM information_schema.tables
		WHERE table_schema = DATABASE() AND table_name = ?
	`, objectName)

	if scanErr := row.Scan(&tableType); scanErr != nil {
		if scanErr == sql.ErrNoRows {
			return false, false, nil
		}
		return false, false, scanErr
	}

	switch tableType {
	case "BASE TABLE":
		return true, false, nil
	case "VIEW", "SYSTEM VIEW":
		return false, true, nil
	default:
		return false, false, nil
	}
}

// probeColumns is the last-resort resolution step: it asks the server
// directly about objectName's column shape via a zero-row SELECT, for
// objects information_schema.tables does not list (e.g. some engines'
// materialized or derived objects accessible only via SELECT).
func probeColumns(ctx context.Context, db *sql.DB, objectName string) (*core.ColumnSet, error) {
	rows, err := db.QueryContext(ctx, "SELECT * FROM `"+escapeBacktick(objectName)+"` LIMIT 0")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	cs := core.NewColumnSet()
	for _, ct := range colTypes {
		nullable, _ := ct.Nullable()
		cs.Add(&core.Column{
			Name:     ct.Name(),
			RawType:  ct.DatabaseTypeName(),
			Type:     normalizeSemanticType(ct.DatabaseTypeName()),
			Nullable: nullable,
		})
	}
	return cs, rows.Err()
}

func escapeBacktick(name string) string {
	out := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		if name[i] == '`' {
			out = append(out, '`', '`')
			continue
		}
		out = append(out, name[i])
	}
	return string(out)
}
