package config

// Storage holds the process-wide toggles persisted alongside captured values.
// Changes take effect on the next field focus, never on an already-active field.
type Storage struct {
	// ExcludeSecrets enables the keyword heuristic that skips sensitive-looking fields.
	// Password inputs are excluded regardless.
	ExcludeSecrets bool `json:"excludeSecrets"`

	// AutoAutocomplete opens the suggestion dropdown on focus, before any typing.
	AutoAutocomplete bool `json:"autoAutocomplete"`
}

// DefaultStorage returns the toggles used when none have been persisted.
func DefaultStorage() Storage {
	return Storage{
		ExcludeSecrets:   true,
		AutoAutocomplete: true,
	}
}
