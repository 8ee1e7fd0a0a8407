package bookmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
)

// chromeEpochOffset is the number of microseconds between 1601-01-01 and
// the Unix epoch. Chrome stores timestamps relative to the former.
const chromeEpochOffset = 11644473600000000

type chromeFile struct {
	Roots struct {
		BookmarkBar *chromeNode `json:"bookmark_bar"`
		Other       *chromeNode `json:"other"`
		Synced      *chromeNode `json:"synced"`
	} `json:"roots"`
}

type chromeNode struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Type      string       `json:"type"`
	URL       string       `json:"url"`
	DateAdded string       `json:"date_added"`
	Children  []chromeNode `json:"children"`
}

// ReadChromeFile loads the bookmark roots from a Chrome profile's
// Bookmarks file.
func ReadChromeFile(path string) ([]Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bookmarks: %w", err)
	}
	defer f.Close()
	return ParseChrome(f)
}

// ParseChrome decodes Chrome's Bookmarks JSON. Roots come back in the order
// the browser shows them: bar, other, synced.
func ParseChrome(r io.Reader) ([]Node, error) {
	var file chromeFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("parse bookmarks: %w", err)
	}
	var roots []Node
	for _, n := range []*chromeNode{file.Roots.BookmarkBar, file.Roots.Other, file.Roots.Synced} {
		if n != nil {
			roots = append(roots, n.node())
		}
	}
	return roots, nil
}

func (c chromeNode) node() Node {
	n := Node{
		ID:        c.ID,
		Title:     c.Name,
		DateAdded: chromeTime(c.DateAdded),
	}
	if c.Type == "url" {
		n.URL = c.URL
	}
	for _, child := range c.Children {
		n.Children = append(n.Children, child.node())
	}
	return n
}

// chromeTime converts a Chrome microsecond timestamp to Unix milliseconds.
func chromeTime(s string) int64 {
	us, err := strconv.ParseInt(s, 10, 64)
	if err != nil || us <= chromeEpochOffset {
		return 0
	}
	return (us - chromeEpochOffset) / 1000
}
