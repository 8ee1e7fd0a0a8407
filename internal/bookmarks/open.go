package bookmarks

import (
	"fmt"
	"net/url"

	"github.com/pkg/browser"
)

// openURL is replaced in tests.
var openURL = browser.OpenURL

// Open opens a bookmark in the system browser. Only web URLs are accepted.
func Open(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open %q: scheme must be http or https", raw)
	}
	return openURL(u.String())
}
