package mysql

import (
	"context"
	"database/sql"
)

// indexNames returns the distinct set of index names already defined on
// tableName, discovered via SHOW INDEX FROM, so the Index Manager can skip
// creating one that already exists.
func indexNames(ctx context.Context, db *sql.DB, tableName string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SHOW INDEX FROM `"+escapeBacktick(tableName)+"`")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	keyNameIdx := -1
	for i, c := range cols {
		if c == "Key_name" {
			keyNameIdx = i
			break
		}
	}
	if keyNameIdx < 0 {
		return map[string]bool{}, nil
	}

	names := make(map[string]bool)
	for rows.Next() {
		scanDest := make([]any, len(cols))
		raw := make([]sql.RawBytes, len(cols))
		for i := range raw {
			scanDest[i] = &raw[i]
		}
		if err := rows.Scan(scanDest...); err != nil {
			return nil, err
		}
		names[string(raw[keyNameIdx])] = true
	}
	return names, rows.Err()
}
