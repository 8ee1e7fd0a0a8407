package mcp

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/jetstorage/internal/classifier"
	"github.com/hpungsan/jetstorage/internal/config"
	"github.com/hpungsan/jetstorage/internal/errors"
	"github.com/hpungsan/jetstorage/internal/ops"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	store ops.Store
	cfg   *config.Config
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(st ops.Store, cfg *config.Config) *Handlers {
	return &Handlers{store: st, cfg: cfg}
}

// Request types for each tool

// ListRequest represents the arguments for values_list.
type ListRequest struct {
	Query  string `json:"query,omitempty"`
	Limit  int    `json:"limit,omitempty"`
	Offset int    `json:"offset,omitempty"`
}

// SuggestRequest represents the arguments for values_suggest.
type SuggestRequest struct {
	Filter string `json:"filter,omitempty"`
	Limit  int    `json:"limit,omitempty"`
}

// SaveRequest represents the arguments for values_save.
type SaveRequest struct {
	Value     string `json:"value"`
	SourceURL string `json:"source_url,omitempty"`
}

// RemoveRequest represents the arguments for values_remove.
type RemoveRequest struct {
	ID string `json:"id"`
}

// ClassifyRequest represents the arguments for field_classify.
type ClassifyRequest struct {
	Tag            string `json:"tag"`
	Type           string `json:"type,omitempty"`
	Name           string `json:"name,omitempty"`
	ID             string `json:"id,omitempty"`
	Placeholder    string `json:"placeholder,omitempty"`
	Class          string `json:"class,omitempty"`
	ExcludeSecrets *bool  `json:"exclude_secrets,omitempty"`
}

// SettingsUpdateRequest represents the arguments for settings_update.
type SettingsUpdateRequest struct {
	ExcludeSecrets   *bool `json:"exclude_secrets,omitempty"`
	AutoAutocomplete *bool `json:"auto_autocomplete,omitempty"`
}

// BookmarksSearchRequest represents the arguments for bookmarks_search.
type BookmarksSearchRequest struct {
	Query string `json:"query,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// Handler implementations

// HandleList handles the values_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ListRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.ListValues(ctx, h.store, ops.ListValuesInput{
		Query:  input.Query,
		Limit:  input.Limit,
		Offset: input.Offset,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSuggest handles the values_suggest tool call.
func (h *Handlers) HandleSuggest(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SuggestRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Suggest(ctx, h.store, h.cfg, ops.SuggestInput{
		Filter: input.Filter,
		Limit:  input.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSave handles the values_save tool call.
func (h *Handlers) HandleSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SaveValue(ctx, h.store, ops.SaveValueInput{
		Value:     input.Value,
		SourceURL: input.SourceURL,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleRemove handles the values_remove tool call.
func (h *Handlers) HandleRemove(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RemoveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.RemoveValue(ctx, h.store, input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleClear handles the values_clear tool call.
func (h *Handlers) HandleClear(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.ClearValues(ctx, h.store)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleClassify handles the field_classify tool call.
func (h *Handlers) HandleClassify(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ClassifyRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.Classify(ctx, h.store, ops.ClassifyInput{
		Field: classifier.Field{
			Tag:         input.Tag,
			Type:        input.Type,
			Name:        input.Name,
			ID:          input.ID,
			Placeholder: input.Placeholder,
			Class:       input.Class,
		},
		ExcludeSecrets: input.ExcludeSecrets,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSettingsGet handles the settings_get tool call.
func (h *Handlers) HandleSettingsGet(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := ops.GetSettings(ctx, h.store)
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleSettingsUpdate handles the settings_update tool call.
func (h *Handlers) HandleSettingsUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SettingsUpdateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.UpdateSettings(ctx, h.store, ops.UpdateSettingsInput{
		ExcludeSecrets:   input.ExcludeSecrets,
		AutoAutocomplete: input.AutoAutocomplete,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// HandleBookmarksSearch handles the bookmarks_search tool call.
func (h *Handlers) HandleBookmarksSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[BookmarksSearchRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result, err := ops.SearchBookmarks(ctx, h.cfg, ops.SearchBookmarksInput{
		Query: input.Query,
		Limit: input.Limit,
	})
	if err != nil {
		return errorResult(err), nil
	}

	return successResult(result)
}

// decode unmarshals MCP request arguments into a typed struct.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	b, err := json.Marshal(req.GetArguments())
	if err != nil {
		return result, fmt.Errorf("marshal args: %w", err)
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, fmt.Errorf("unmarshal args: %w", err)
	}
	return result, nil
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Internal error details are never exposed.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	var jErr *errors.JetError
	if stderrors.As(err, &jErr) {
		msg := jErr.Message
		// Keep context added by wrappers, e.g. "values[2]: ".
		if prefix := strings.TrimSuffix(err.Error(), jErr.Error()); prefix != err.Error() {
			msg = prefix + msg
		}
		if jErr.Code == errors.ErrInternal {
			msg = "an internal error occurred"
		}
		errorObj := map[string]any{
			"code":    jErr.Code,
			"message": msg,
			"status":  jErr.Status,
		}
		if jErr.Code != errors.ErrInternal && jErr.Details != nil {
			errorObj["details"] = jErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    errors.ErrInternal,
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
