// Package suggest ranks previously captured values against typed text.
package suggest

import (
	"strings"

	"github.com/samber/lo"

	"github.com/hpungsan/jetstorage/internal/capture"
)

// DefaultLimit is the number of suggestions shown in the dropdown.
const DefaultLimit = 5

// Suggest returns up to limit stored values containing filter, case-insensitively.
// Matches keep the store's newest-first order. An empty filter matches
// everything. A non-positive limit uses DefaultLimit.
func Suggest(values []capture.CapturedValue, filter string, limit int) []string {
	if limit <= 0 {
		limit = DefaultLimit
	}
	needle := strings.ToLower(filter)

	matches := make([]string, 0, min(limit, len(values)))
	for _, v := range values {
		if len(matches) == limit {
			break
		}
		if strings.Contains(strings.ToLower(v.Value), needle) {
			matches = append(matches, v.Value)
		}
	}
	return matches
}

// Values returns the full records behind Suggest, for surfaces that show ids.
func Values(values []capture.CapturedValue, filter string) []capture.CapturedValue {
	needle := strings.ToLower(filter)
	return lo.Filter(values, func(v capture.CapturedValue, _ int) bool {
		return strings.Contains(strings.ToLower(v.Value), needle)
	})
}
