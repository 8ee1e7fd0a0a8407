package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/hpungsan/jetstorage/internal/capture"
	"github.com/hpungsan/jetstorage/internal/config"
	"github.com/hpungsan/jetstorage/internal/errors"
	"github.com/hpungsan/jetstorage/internal/suggest"
)

// ListValuesInput contains parameters for the ListValues operation.
type ListValuesInput struct {
	Query  string // case-insensitive substring; empty lists everything
	Limit  int    // default: 20, max: 100
	Offset int    // default: 0
}

// ListValuesOutput contains the result of the ListValues operation.
type ListValuesOutput struct {
	Items      []capture.CapturedValue `json:"items"`
	Pagination Pagination              `json:"pagination"`
	Sort       string                  `json:"sort"`
}

// ListValues returns stored values, newest first, optionally filtered.
func ListValues(ctx context.Context, st Store, input ListValuesInput) (*ListValuesOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	matches := suggest.Values(st.Load(ctx), input.Query)
	items, page := paginate(matches, input.Limit, input.Offset)
	return &ListValuesOutput{
		Items:      items,
		Pagination: page,
		Sort:       "timestamp_desc",
	}, nil
}

// SuggestInput contains parameters for the Suggest operation.
type SuggestInput struct {
	Filter string
	Limit  int // default: config suggestion_limit
}

// SuggestOutput contains the result of the Suggest operation.
type SuggestOutput struct {
	Suggestions []string `json:"suggestions"`
}

// Suggest returns the strings the in-page dropdown would show for filter.
func Suggest(ctx context.Context, st Store, cfg *config.Config, input SuggestInput) (*SuggestOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	limit := input.Limit
	if limit <= 0 && cfg != nil {
		limit = cfg.SuggestionLimit
	}
	if limit < 0 {
		return nil, errors.NewInvalidRequest("limit must not be negative")
	}
	return &SuggestOutput{
		Suggestions: suggest.Suggest(st.Load(ctx), input.Filter, limit),
	}, nil
}

// SaveValueInput contains parameters for the SaveValue operation.
type SaveValueInput struct {
	Value     string // required, at least capture.MinValueChars after trimming
	SourceURL string
}

// SaveValueOutput contains the result of the SaveValue operation.
type SaveValueOutput struct {
	Saved bool   `json:"saved"`
	Value string `json:"value"`
	// Reason is set when nothing was written.
	Reason string `json:"reason,omitempty"`
}

// SaveValue stores a value the way a settled field capture does.
func SaveValue(ctx context.Context, st Store, input SaveValueInput) (*SaveValueOutput, error) {
	if strings.TrimSpace(input.Value) == "" {
		return nil, errors.NewInvalidRequest("value is required")
	}
	if !capture.Capturable(input.Value) {
		return nil, errors.NewInvalidRequest(
			fmt.Sprintf("value must be at least %d characters", capture.MinValueChars))
	}

	saved, err := st.Save(ctx, input.Value, strings.TrimSpace(input.SourceURL))
	if err != nil {
		return nil, err
	}
	out := &SaveValueOutput{Saved: saved, Value: capture.Clean(input.Value)}
	if !saved {
		out.Reason = "duplicate"
	}
	return out, nil
}

// RemoveValueOutput contains the result of the RemoveValue operation.
type RemoveValueOutput struct {
	Removed bool   `json:"removed"`
	ID      string `json:"id"`
}

// RemoveValue deletes one stored value by id.
func RemoveValue(ctx context.Context, st Store, id string) (*RemoveValueOutput, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if err := st.Remove(ctx, id); err != nil {
		return nil, err
	}
	return &RemoveValueOutput{Removed: true, ID: id}, nil
}

// ClearValuesOutput contains the result of the ClearValues operation.
type ClearValuesOutput struct {
	Cleared int `json:"cleared"`
}

// ClearValues deletes every stored value.
func ClearValues(ctx context.Context, st Store) (*ClearValuesOutput, error) {
	n, err := st.Clear(ctx)
	if err != nil {
		return nil, err
	}
	return &ClearValuesOutput{Cleared: n}, nil
}
