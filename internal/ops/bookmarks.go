package ops

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hpungsan/jetstorage/internal/bookmarks"
	"github.com/hpungsan/jetstorage/internal/config"
	jeterrors "github.com/hpungsan/jetstorage/internal/errors"
)

// SearchBookmarksInput contains parameters for the SearchBookmarks operation.
type SearchBookmarksInput struct {
	Query string
	Limit int // default: config bookmark_limit
}

// SearchBookmarksOutput contains the result of the SearchBookmarks operation.
type SearchBookmarksOutput struct {
	Items  []bookmarks.Bookmark `json:"items"`
	Source string               `json:"source"`
}

// SearchBookmarks filters the configured Chrome Bookmarks file. The file
// path comes from configuration only, never from the caller.
func SearchBookmarks(ctx context.Context, cfg *config.Config, input SearchBookmarksInput) (*SearchBookmarksOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := BookmarksFile(cfg)
	if err != nil {
		return nil, err
	}
	roots, err := bookmarks.ReadChromeFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, jeterrors.NewInvalidRequest(fmt.Sprintf("bookmarks file not found: %s", path))
		}
		return nil, jeterrors.NewInternal(err)
	}

	limit := input.Limit
	if limit <= 0 && cfg != nil {
		limit = cfg.BookmarkLimit
	}
	return &SearchBookmarksOutput{
		Items:  bookmarks.Filter(bookmarks.Flatten(roots), input.Query, limit),
		Source: path,
	}, nil
}

// BookmarksFile resolves the Bookmarks file path from cfg, falling back to
// the platform's default Chrome profile.
func BookmarksFile(cfg *config.Config) (string, error) {
	if cfg != nil && cfg.BookmarksFile != "" {
		return cfg.BookmarksFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", jeterrors.NewInternal(fmt.Errorf("failed to get home directory: %w", err))
	}
	return config.DefaultBookmarksFile(home), nil
}
