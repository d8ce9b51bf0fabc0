package fallback

import (
	"fmt"
	"hash/fnv"
	"io"
	"sort"
)

// CacheKey derives a deterministic key for an input map. Field order never
// affects the key: maps are rendered with sorted keys (recursively) before
// hashing with FNV-1a. The key format is internal and carries no
// compatibility guarantee.
func CacheKey(input map[string]any) string {
	h := fnv.New64a()
	writeCanonical(h, input)
	return fmt.Sprintf("%016x", h.Sum64())
}

func writeCanonical(w io.Writer, v any) {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		io.WriteString(w, "{")
		for _, k := range keys {
			io.WriteString(w, k)
			io.WriteString(w, "=")
			writeCanonical(w, val[k])
			io.WriteString(w, ";")
		}
		io.WriteString(w, "}")
	case []any:
		io.WriteString(w, "[")
		for _, item := range val {
			writeCanonical(w, item)
			io.WriteString(w, ",")
		}
		io.WriteString(w, "]")
	default:
		// Scalars carry an explicit type tag so that e.g. int(1) and "1"
		// hash differently.
		fmt.Fprintf(w, "%T:%v", v, v)
	}
}
