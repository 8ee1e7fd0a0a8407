// Package bookmarks reads the browser's bookmark tree and searches it.
package bookmarks

import (
	"strings"

	"github.com/samber/lo"
)

// DefaultLimit caps search results when no limit is given.
const DefaultLimit = 50

// Node is one entry of a bookmark tree. Folders have Children and no URL.
type Node struct {
	ID        string
	Title     string
	URL       string
	DateAdded int64 // ms since epoch, 0 if unknown
	Children  []Node
}

// Bookmark is a flattened leaf with the folders above it.
type Bookmark struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	ParentID   string   `json:"parentId,omitempty"`
	DateAdded  int64    `json:"dateAdded,omitempty"`
	FolderPath []string `json:"folderPath"`
}

// Flatten walks the tree depth-first and returns every node with a URL.
// A bookmark without a title is titled by its URL.
func Flatten(nodes []Node) []Bookmark {
	out := []Bookmark{}
	flatten(nodes, "", nil, &out)
	return out
}

func flatten(nodes []Node, parentID string, path []string, out *[]Bookmark) {
	for _, n := range nodes {
		if n.URL != "" {
			*out = append(*out, Bookmark{
				ID:         n.ID,
				Title:      lo.CoalesceOrEmpty(n.Title, n.URL),
				URL:        n.URL,
				ParentID:   parentID,
				DateAdded:  n.DateAdded,
				FolderPath: folderPath(path),
			})
		}
		if len(n.Children) > 0 {
			next := path
			if n.Title != "" {
				next = append(append([]string{}, path...), n.Title)
			}
			flatten(n.Children, n.ID, next, out)
		}
	}
}

// folderPath drops the synthetic root names some exports carry.
func folderPath(path []string) []string {
	return lo.Filter(path, func(p string, _ int) bool {
		return p != "" && p != "root" && p != "Roots"
	})
}

// Filter returns up to limit bookmarks whose title or URL contains term,
// case-insensitively. An empty term matches everything.
func Filter(list []Bookmark, term string, limit int) []Bookmark {
	if limit <= 0 {
		limit = DefaultLimit
	}
	term = strings.ToLower(term)
	matches := list
	if term != "" {
		matches = lo.Filter(list, func(b Bookmark, _ int) bool {
			return strings.Contains(strings.ToLower(b.Title), term) ||
				strings.Contains(strings.ToLower(b.URL), term)
		})
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return append([]Bookmark{}, matches...)
}
