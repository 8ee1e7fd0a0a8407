package ops

import (
	"context"

	"github.com/hpungsan/jetstorage/internal/classifier"
	"github.com/hpungsan/jetstorage/internal/config"
	"github.com/hpungsan/jetstorage/internal/errors"
)

// GetSettings returns the persisted toggles.
func GetSettings(ctx context.Context, st Store) (*config.Storage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := st.Settings(ctx)
	return &s, nil
}

// UpdateSettingsInput contains parameters for the UpdateSettings operation.
// Nil fields keep their stored value.
type UpdateSettingsInput struct {
	ExcludeSecrets   *bool
	AutoAutocomplete *bool
}

// UpdateSettings changes some toggles and returns the full result. Fields
// already focused keep the snapshot taken at their focus.
func UpdateSettings(ctx context.Context, st Store, input UpdateSettingsInput) (*config.Storage, error) {
	if input.ExcludeSecrets == nil && input.AutoAutocomplete == nil {
		return nil, errors.NewInvalidRequest("at least one setting is required")
	}
	s := st.Settings(ctx)
	if input.ExcludeSecrets != nil {
		s.ExcludeSecrets = *input.ExcludeSecrets
	}
	if input.AutoAutocomplete != nil {
		s.AutoAutocomplete = *input.AutoAutocomplete
	}
	if err := st.UpdateSettings(ctx, s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ClassifyInput contains parameters for the Classify operation.
type ClassifyInput struct {
	Field classifier.Field
	// ExcludeSecrets overrides the stored toggle when set.
	ExcludeSecrets *bool
}

// ClassifyOutput contains the result of the Classify operation.
type ClassifyOutput struct {
	classifier.Verdict
	ExcludeSecrets bool `json:"exclude_secrets"`
}

// Classify reports whether a field with the given attributes would be
// captured.
func Classify(ctx context.Context, st Store, input ClassifyInput) (*ClassifyOutput, error) {
	if input.Field.Tag == "" {
		return nil, errors.NewInvalidRequest("tag is required")
	}
	s := st.Settings(ctx)
	if input.ExcludeSecrets != nil {
		s.ExcludeSecrets = *input.ExcludeSecrets
	}
	return &ClassifyOutput{
		Verdict:        classifier.Classify(input.Field, s),
		ExcludeSecrets: s.ExcludeSecrets,
	}, nil
}
