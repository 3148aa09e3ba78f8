package google

import (
	"fmt"
	"strings"
)

// columnValues returns the first cell of each row, trimmed and deduplicated
// in order. Blank cells, comments ("#...") and the "ID" header are dropped.
func columnValues(values [][]interface{}) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, row := range values {
		if len(row) == 0 {
			continue
		}
		v := strings.TrimSpace(fmt.Sprint(row[0]))
		if v == "" || strings.HasPrefix(v, "#") || strings.EqualFold(v, "id") {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// a1 builds an A1 range, quoting sheet names that contain anything other
// than letters, digits and underscores.
func a1(sheet, cells string) string {
	plain := true
	for _, r := range sheet {
		if !(r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			plain = false
			break
		}
	}
	if plain {
		return sheet + "!" + cells
	}
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!" + cells
}
