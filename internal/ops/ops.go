// Package ops holds the surface-neutral operations shared by the CLI, the
// MCP server and the web dashboard.
package ops

import (
	"context"

	"github.com/hpungsan/jetstorage/internal/capture"
	"github.com/hpungsan/jetstorage/internal/config"
)

// Pagination limits
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Pagination contains pagination metadata for list operations.
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
	Total   int  `json:"total"`
}

// Store is the value store as seen by operations. *store.ValueStore
// implements it.
type Store interface {
	Load(ctx context.Context) []capture.CapturedValue
	Save(ctx context.Context, text, sourceURL string) (bool, error)
	Remove(ctx context.Context, id string) error
	Clear(ctx context.Context) (int, error)
	Settings(ctx context.Context) config.Storage
	UpdateSettings(ctx context.Context, settings config.Storage) error
}

// paginate clamps limit and offset and returns the requested window.
func paginate[T any](items []T, limit, offset int) ([]T, Pagination) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	offset = max(offset, 0)

	total := len(items)
	start := min(offset, total)
	end := min(start+limit, total)
	page := append([]T{}, items[start:end]...)

	return page, Pagination{
		Limit:   limit,
		Offset:  offset,
		HasMore: end < total,
		Total:   total,
	}
}
