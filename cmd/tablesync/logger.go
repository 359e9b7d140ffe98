package main

import (
	"fmt"
	"os"
	"sort"

	"tablesync"
)

// stderrLogger mirrors every record to stderr as a single line: level,
// message, then sorted key=value fields.
type stderrLogger struct{}

func (stderrLogger) Log(level tablesync.LogLevel, msg string, fields map[string]any) {
	line := fmt.Sprintf("%s: %s", level, msg)
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		line += fmt.Sprintf(" %s=%v", k, fields[k])
	}
	fmt.Fprintln(os.Stderr, line)
}
