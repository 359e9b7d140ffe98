package mysql

import (
	"context"
	"database/sql"
	"strings"

	"tablesync/internal/core"
)

func introspectColumns(ctx context.Context, db *sql.DB, tableName string) (*core.ColumnSet, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT
			c.column_name,
			c.column_type,
			c.data_type,
			c.is_nullable,
			c.column_default,
			c.extra,
			c.column_comment,
			c.character_maximum_length,
			c.numeric_precision,
			c.numeric_scale
		FROM information_schema.columns c
		WHERE c.table_schema = DATABASE() AND c.table_name = ?
		ORDER BY c.ordinal_position
	`, tableName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cs := core.NewColumnSet()
	for rows.Next() {
		var name, columnType, dataType, nullable, extra, comment string
		var defaultVal sql.NullString
		var charLen, numPrecision, numScale sql.NullInt64

		if err := rows.Scan(&name, &columnType, &dataType, &nullable, &defaultVal, &extra, &comment, &charLen, &numPrecision, &numScale); err != nil {
			return nil, err
		}

		col := &core.Column{
			Name:          name,
			RawType:       columnType,
			Type:          normalizeSemanticType(columnType),
			Nullable:      nullable == "YES",
			AutoIncrement: strings.Contains(extra, "auto_increment"),
			Comment:       comment,
			Unsigned:      strings.Contains(columnType, "unsigned"),
			Fixed:         strings.HasPrefix(dataType, "char") || dataType == "binary",
		}
		if charLen.Valid {
			col.Length = int(charLen.Int64)
		}
		if numPrecision.Valid {
			col.Precision = int(numPrecision.Int64)
		}
		if numScale.Valid {
			col.Scale = int(numScale.Int64)
		}
		if defaultVal.Valid {
			v := defaultVal.String
			col.Default = &v
		}

		cs.Add(col)
	}
	return cs, rows.Err()
}

// normalizeSemanticTypeRule maps a substring found in a raw MySQL
// column_type to the engine's closed semantic-type set. Rules are checked
// in order; the first match wins, so more specific substrings (e.g.
// "tinyint(1)") must precede more general ones (e.g. "int").
type normalizeSemanticTypeRule struct {
	substring string
	semantic  core.SemanticType
}

var normalizeSemanticTypeRules = []normalizeSemanticTypeRule{
	{"tinyint(1)", core.TypeBoolean},
	{"bool", core.TypeBoolean},
	{"bigint", core.TypeBigInt},
	{"smallint", core.TypeSmallInt},
	{"mediumint", core.TypeInteger},
	{"tinyint", core.TypeSmallInt},
	{"int", core.TypeInteger},
	{"decimal", core.TypeDecimal},
	{"numeric", core.TypeDecimal},
	{"double", core.TypeFloat},
	{"float", core.TypeFloat},
	{"datetime", core.TypeDatetime},
	{"timestamp", core.TypeDatetime},
	{"date", core.TypeDate},
	{"time", core.TypeTime},
	{"json", core.TypeJSON},
	{"longtext", core.TypeText},
	{"mediumtext", core.TypeText},
	{"text", core.TypeText},
	{"blob", core.TypeBlob},
	{"binary", core.TypeBinary},
	{"varbinary", core.TypeBinary},
	{"char", core.TypeString},
	{"varchar", core.TypeString},
	{"enum", core.TypeString},
	{"set", core.TypeString},
}

// normalizeSemanticType maps a raw information_schema column_type string
// (e.g. "varchar(255)", "decimal(10,2) unsigned") to the closed semantic
// type set.
func normalizeSemanticType(columnType string) core.SemanticType {
	lower := strings.ToLower(columnType)
	for _, rule := range normalizeSemanticTypeRules {
		if strings.Contains(lower, rule.substring) {
			return rule.semantic
		}
	}
	return core.TypeString
}
