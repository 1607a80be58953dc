package errkit

import (
	"fmt"
	"sort"
	"strings"
)

func mapToString(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	strs := make([]string, 0, len(keys))
	for _, k := range keys {
		strs = append(strs, fmt.Sprintf("%s=%v", k, m[k]))
	}

	return strings.Join(strs, ", ")
}
