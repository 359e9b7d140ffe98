// Package mysql implements the MySQL-family dialect.Generator: identifier
// and string quoting, and CREATE TABLE / CREATE INDEX / DROP TABLE
// statement text. It serves MySQL, MariaDB, and TiDB alike since all three
// accept the same DDL/DML surface this engine needs.
package mysql

import (
	"fmt"
	"strings"

	"tablesync/internal/core"
	"tablesync/internal/dialect"
)

const maxIdentifierLength = 64

func init() {
	dialect.Register(core.DialectMySQL, func() dialect.Dialect { return NewDialect() })
	dialect.Register(core.DialectMariaDB, func() dialect.Dialect { return NewDialect() })
	dialect.Register(core.DialectTiDB, func() dialect.Dialect { return NewDialect() })
}

// Dialect is the MySQL-family dialect.Dialect implementation.
type Dialect struct {
	generator *Generator
}

// NewDialect builds a MySQL dialect with its Generator.
func NewDialect() *Dialect {
	return &Dialect{generator: &Generator{}}
}

// Name returns the MySQL dialect identity.
func (d *Dialect) Name() core.Dialect { return core.DialectMySQL }

// Generator returns the statement builder.
func (d *Dialect) Generator() dialect.Generator { return d.generator }

// Generator is a stateless MySQL-family DDL/identifier builder.
type Generator struct{}

// QuoteIdentifier backtick-quotes an identifier, doubling embedded backticks.
func (g *Generator) QuoteIdentifier(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "`", "``")
	return "`" + name + "`"
}

// QuoteString single-quotes a string literal, escaping the characters MySQL
// treats specially in the default (non-NO_BACKSLASH_ESCAPES) SQL mode.
func (g *Generator) QuoteString(value string) string {
	var b strings.Builder
	b.Grow(len(value) + len(value)/10 + 2)

	b.WriteByte('\'')
	for _, char := range value {
		switch char {
		case '\'':
			b.WriteString("''")
		case '\\':
			b.WriteString(`\\`)
		case '\x00':
			b.WriteString(`\0`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\x1A':
			b.WriteString(`\Z`)
		default:
			b.WriteRune(char)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// CreateTableSQL renders a CREATE TABLE statement for columns, in the given
// order, with primaryKey (target column names) as the PK clause.
func (g *Generator) CreateTableSQL(table string, columns []*core.Column, primaryKey []string) string {
	var lines []string
	for _, c := range columns {
		lines = append(lines, "  "+g.columnDefinition(c))
	}
	if len(primaryKey) > 0 {
		quoted := make([]string, len(primaryKey))
		for i, name := range primaryKey {
			quoted[i] = g.QuoteIdentifier(name)
		}
		lines = append(lines, fmt.Sprintf("  PRIMARY KEY (%s)", strings.Join(quoted, ", ")))
	}
	return fmt.Sprintf("CREATE TABLE %s (\n%s\n) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;",
		g.QuoteIdentifier(table), strings.Join(lines, ",\n"))
}

// CreateIndexSQL renders a CREATE [UNIQUE] INDEX statement.
func (g *Generator) CreateIndexSQL(name, table string, columns []string, unique bool) string {
	quotedCols := make([]string, len(columns))
	for i, c := range columns {
		quotedCols[i] = g.QuoteIdentifier(c)
	}
	kw := "INDEX"
	if unique {
		kw = "UNIQUE INDEX"
	}
	return fmt.Sprintf("CREATE %s %s ON %s (%s);", kw, g.QuoteIdentifier(name), g.QuoteIdentifier(table), strings.Join(quotedCols, ", "))
}

// DropTableSQL renders an unconditional DROP TABLE.
func (g *Generator) DropTableSQL(table string) string {
	return fmt.Sprintf("DROP TABLE %s;", g.QuoteIdentifier(table))
}

// DropTableIfExistsSQL renders an idempotent DROP TABLE.
func (g *Generator) DropTableIfExistsSQL(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", g.QuoteIdentifier(table))
}

// DefaultIndexName derives a stable index name from prefix, table, and
// columns, truncated to fit MySQL's identifier length limit.
func (g *Generator) DefaultIndexName(prefix, table string, columns []string) string {
	name := prefix + table + "_" + strings.Join(columns, "_")
	if len(name) > maxIdentifierLength {
		name = name[:maxIdentifierLength]
	}
	return name
}

func (g *Generator) columnDefinition(c *core.Column) string {
	var b strings.Builder
	b.WriteString(g.QuoteIdentifier(c.Name))
	b.WriteByte(' ')
	b.WriteString(g.nativeType(c))

	if c.Nullable {
		b.WriteString(" NULL")
	} else {
		b.WriteString(" NOT NULL")
	}

	if c.AutoIncrement {
		b.WriteString(" AUTO_INCREMENT")
	} else if c.Default != nil {
		fmt.Fprintf(&b, " DEFAULT %s", g.defaultLiteral(c))
	}

	if c.Comment != "" {
		fmt.Fprintf(&b, " COMMENT %s", g.QuoteString(c.Comment))
	}

	return b.String()
}

func (g *Generator) defaultLiteral(c *core.Column) string {
	raw := *c.Default
	switch c.Type {
	case core.TypeInteger, core.TypeBigInt, core.TypeSmallInt, core.TypeBoolean, core.TypeDecimal, core.TypeFloat:
		return raw
	default:
		return g.QuoteString(raw)
	}
}

func (g *Generator) nativeType(c *core.Column) string {
	unsigned := ""
	if c.Unsigned {
		unsigned = " UNSIGNED"
	}

	switch c.Type {
	case core.TypeInteger:
		return "INT" + unsigned
	case core.TypeBigInt:
		return "BIGINT" + unsigned
	case core.TypeSmallInt:
		return "SMALLINT" + unsigned
	case core.TypeBoolean:
		return "TINYINT(1)"
	case core.TypeString:
		length := c.Length
		if length <= 0 {
			length = 255
		}
		if c.Fixed {
			return fmt.Sprintf("CHAR(%d)", length)
		}
		return fmt.Sprintf("VARCHAR(%d)", length)
	case core.TypeText:
		return "TEXT"
	case core.TypeDecimal:
		precision, scale := c.Precision, c.Scale
		if precision <= 0 {
			precision = 18
		}
		return fmt.Sprintf("DECIMAL(%d,%d)%s", precision, scale, unsigned)
	case core.TypeFloat:
		return "DOUBLE" + unsigned
	case core.TypeDatetime:
		return "DATETIME"
	case core.TypeDate:
		return "DATE"
	case core.TypeTime:
		return "TIME"
	case core.TypeBlob:
		return "BLOB"
	case core.TypeBinary:
		length := c.Length
		if length <= 0 {
			length = 255
		}
		if c.Fixed {
			return fmt.Sprintf("BINARY(%d)", length)
		}
		return fmt.Sprintf("VARBINARY(%d)", length)
	case core.TypeJSON:
		return "JSON"
	case core.TypeGUID:
		return "CHAR(36)"
	default:
		return "VARCHAR(255)"
	}
}
