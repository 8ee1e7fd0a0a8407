package browser

import (
	"encoding/json"
	"fmt"
)

// structured decodes a stored JSON document into the plain maps, slices and
// scalars js.ValueOf accepts, so chrome.storage keeps arrays and objects
// rather than their string encoding.
func structured(value []byte) (any, error) {
	var v any
	if err := json.Unmarshal(value, &v); err != nil {
		return nil, fmt.Errorf("decode stored value: %w", err)
	}
	return v, nil
}
