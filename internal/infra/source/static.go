package source

import (
	"context"

	"github.com/vietddude/cascade/internal/core/domain"
)

// StaticSource always returns a fixed payload. It is the terminal safety
// net of a cascade: a last-resort stage that cannot fail.
type StaticSource struct {
	payload any
}

// NewStaticSource creates a source returning payload on every call.
func NewStaticSource(payload any) *StaticSource {
	return &StaticSource{payload: payload}
}

// Fetch returns the configured payload. It satisfies domain.StageFunc.
func (s *StaticSource) Fetch(ctx context.Context, input map[string]any) (*domain.StageResult, error) {
	return &domain.StageResult{
		Success: true,
		Data:    s.payload,
		Metadata: map[string]any{
			"static": true,
		},
	}, nil
}
