// Package sqlident defends against identifier injection: before any
// configured table or column name is interpolated into generated DDL/DML
// text, it is parsed as a SQL name via the TiDB AST parser and checked that
// it round-trips to exactly the same, unqualified name.
package sqlident

import (
	"fmt"
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"
)

// Validate checks that name parses as a single, unqualified SQL table
// name. It rejects empty names, schema-qualified names, and anything that
// would let extra SQL ride along with the identifier (e.g.
// "x; DROP TABLE y").
func Validate(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("identifier must not be empty")
	}

	p := parser.New()
	nodes, _, err := p.Parse("SELECT 1 FROM "+trimmed, "", "")
	if err != nil || len(nodes) != 1 {
		return fmt.Errorf("identifier %q is not a valid SQL name", name)
	}

	sel, ok := nodes[0].(*ast.SelectStmt)
	if !ok || sel.From == nil || sel.From.TableRefs == nil {
		return fmt.Errorf("identifier %q is not a valid SQL name", name)
	}

	src, ok := sel.From.TableRefs.Left.(*ast.TableSource)
	if !ok {
		return fmt.Errorf("identifier %q is not a valid SQL name", name)
	}

	tableName, ok := src.Source.(*ast.TableName)
	if !ok {
		return fmt.Errorf("identifier %q is not a valid SQL name", name)
	}

	if tableName.Schema.O != "" {
		return fmt.Errorf("identifier %q must not be schema-qualified", name)
	}
	if tableName.Name.O != trimmed {
		return fmt.Errorf("identifier %q does not round-trip to itself", name)
	}
	return nil
}

// ValidateAll validates every name, returning the first error encountered.
func ValidateAll(names ...string) error {
	for _, n := range names {
		if err := Validate(n); err != nil {
			return err
		}
	}
	return nil
}
