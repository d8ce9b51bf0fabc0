package domain

import "time"

// Stage markers used in ExecutionResult.Stage alongside real stage names.
const (
	StageCache = "cache"
	StageNone  = "none"
)

// ExecutionResult is the terminal outcome of one cascade run. Execute always
// returns one of these; it never propagates an error to the caller.
type ExecutionResult struct {
	Success  bool           `json:"success"`
	Data     any            `json:"data,omitempty"`
	Error    string         `json:"error,omitempty"`
	Stage    string         `json:"stage"`
	Duration time.Duration  `json:"duration"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// MergeMetadata shallow-merges src maps left to right, last writer wins per
// key. A fresh map is always returned; inputs are never mutated.
func MergeMetadata(srcs ...map[string]any) map[string]any {
	merged := make(map[string]any)
	for _, src := range srcs {
		for k, v := range src {
			merged[k] = v
		}
	}
	return merged
}
