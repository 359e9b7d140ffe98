package loader

import (
	"fmt"
	"strconv"
	"time"

	"tablesync/internal/core"
)

// bindParam resolves the bound parameter value for one source column.
// Known columns (found in the cached source ColumnSet) are coerced per
// their classified semantic type. Columns introspection could not classify
// fall back to runtime inference of the scanned value's Go type.
func bindParam(col *core.Column, known bool, value any) any {
	if !known {
		return inferParam(value)
	}
	if value == nil {
		return nil
	}
	switch col.Type {
	case core.TypeInteger, core.TypeBigInt, core.TypeSmallInt:
		return asInt64(value)
	case core.TypeBoolean:
		return asBool(value)
	case core.TypeBlob, core.TypeBinary:
		return asBytes(value)
	default:
		return asString(value)
	}
}

// inferParam is the runtime-inference fallback for columns the introspector
// could not classify: null stays null, integer-kinded values bind as
// integers, bool stays bool, []byte stays binary, everything else binds as
// a string.
func inferParam(value any) any {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case bool:
		return v
	case []byte:
		return v
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return asInt64(value)
	default:
		_ = v
		return asString(value)
	}
}

func asInt64(value any) any {
	switch v := value.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case uint64:
		return int64(v)
	case float64:
		return int64(v)
	case []byte:
		if n, err := strconv.ParseInt(string(v), 10, 64); err == nil {
			return n
		}
		return v
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
		return v
	default:
		return value
	}
}

func asBool(value any) any {
	switch v := value.(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case []byte:
		return string(v) == "1"
	case string:
		return v == "1"
	default:
		return value
	}
}

func asBytes(value any) any {
	switch v := value.(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	default:
		return value
	}
}

func asString(value any) any {
	switch v := value.(type) {
	case []byte:
		return string(v)
	case string:
		return v
	case time.Time:
		return v.Format("2006-01-02 15:04:05")
	default:
		return fmt.Sprintf("%v", v)
	}
}
