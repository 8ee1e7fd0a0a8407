package capture

// CapturedValue is a single remembered text value.
// Values are never mutated after creation.
type CapturedValue struct {
	// ID is a ULID assigned at creation
	ID string `json:"id"`

	// Value is the trimmed text content (at least MinValueChars runes)
	Value string `json:"value"`

	// Timestamp is the creation time in Unix milliseconds
	Timestamp int64 `json:"timestamp"`

	// SourceURL is the page the value was captured on. Informational only.
	SourceURL string `json:"sourceUrl"`
}

// Key returns the case-insensitive identity of the value.
func (v CapturedValue) Key() string {
	return Normalize(v.Value)
}
