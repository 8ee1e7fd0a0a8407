package web

import (
	"context"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hpungsan/jetstorage/internal/config"
	"github.com/hpungsan/jetstorage/internal/db"
	"github.com/hpungsan/jetstorage/internal/store"
)

func setupTest(t *testing.T) (*Handlers, *store.ValueStore) {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		t.Fatalf("template sub-FS: %v", err)
	}

	st := store.New(db.NewKV(database))
	return &Handlers{
		store:    st,
		cfg:      config.DefaultConfig(),
		renderer: NewRenderer(templateSub, "test", nil),
	}, st
}

// serve routes req through the full mux so path values are populated.
func serve(t *testing.T, h *Handlers, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		t.Fatalf("static sub-FS: %v", err)
	}
	rec := httptest.NewRecorder()
	securityHeaders(h.routes(staticSub)).ServeHTTP(rec, req)
	return rec
}

func seedValue(t *testing.T, st *store.ValueStore, value string) string {
	t.Helper()
	ctx := context.Background()
	if _, err := st.Save(ctx, value, "https://shop.example.com/checkout"); err != nil {
		t.Fatalf("seed value %q: %v", value, err)
	}
	return st.Load(ctx)[0].ID
}

// --- HandleValues ---

func TestHandleValues_Default(t *testing.T) {
	h, st := setupTest(t)
	seedValue(t, st, "alice@example.com")

	rec := serve(t, h, httptest.NewRequest("GET", "/values", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "alice@example.com") {
		t.Error("expected captured value in response")
	}
	if !strings.Contains(body, "shop.example.com") {
		t.Error("expected source host in response")
	}
	if !strings.Contains(body, "<!DOCTYPE html>") {
		t.Error("expected full layout")
	}
}

func TestHandleValues_Empty(t *testing.T) {
	h, _ := setupTest(t)

	rec := serve(t, h, httptest.NewRequest("GET", "/values", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Nothing captured yet") {
		t.Error("expected empty state message")
	}
}

func TestHandleValues_EscapesValues(t *testing.T) {
	h, st := setupTest(t)
	seedValue(t, st, "<script>alert(1)</script>")

	rec := serve(t, h, httptest.NewRequest("GET", "/values", nil))

	if strings.Contains(rec.Body.String(), "<script>alert(1)</script>") {
		t.Error("captured value must be HTML-escaped")
	}
}

func TestHandleValues_Query(t *testing.T) {
	h, st := setupTest(t)
	seedValue(t, st, "alice@example.com")
	seedValue(t, st, "bob builder")

	rec := serve(t, h, httptest.NewRequest("GET", "/values?q=BOB", nil))

	body := rec.Body.String()
	if !strings.Contains(body, "bob builder") {
		t.Error("expected matching value")
	}
	if strings.Contains(body, "alice@example.com") {
		t.Error("did not expect non-matching value")
	}
}

func TestHandleValues_HtmxResultsFragment(t *testing.T) {
	h, st := setupTest(t)
	seedValue(t, st, "fragment-value")

	req := httptest.NewRequest("GET", "/values", nil)
	req.Header.Set("HX-Request", "true")
	req.Header.Set("HX-Target", "results")
	rec := serve(t, h, req)

	body := rec.Body.String()
	if strings.Contains(body, "<!DOCTYPE html>") || strings.Contains(body, "<table") {
		t.Error("results fragment should contain rows only")
	}
	if !strings.Contains(body, "fragment-value") {
		t.Error("results fragment should contain the value")
	}
}

func TestHandleValues_JSON(t *testing.T) {
	h, st := setupTest(t)
	seedValue(t, st, "json-value")

	req := httptest.NewRequest("GET", "/values?limit=notanumber", nil)
	req.Header.Set("Accept", "application/json")
	rec := serve(t, h, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var out struct {
		Items []struct {
			Value     string `json:"value"`
			SourceURL string `json:"sourceUrl"`
		} `json:"items"`
		Pagination struct {
			Limit int `json:"limit"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Items) != 1 || out.Items[0].Value != "json-value" {
		t.Errorf("items = %+v", out.Items)
	}
	if out.Pagination.Limit != 20 {
		t.Errorf("limit = %d, want default 20", out.Pagination.Limit)
	}
}

// --- HandleRemove ---

func TestHandleRemove(t *testing.T) {
	h, st := setupTest(t)
	id := seedValue(t, st, "to-remove")

	rec := serve(t, h, httptest.NewRequest("DELETE", "/values/"+id, nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if n := len(st.Load(context.Background())); n != 0 {
		t.Errorf("values left = %d, want 0", n)
	}
}

func TestHandleRemove_Htmx(t *testing.T) {
	h, st := setupTest(t)
	id := seedValue(t, st, "to-remove")

	req := httptest.NewRequest("DELETE", "/values/"+id, nil)
	req.Header.Set("HX-Request", "true")
	rec := serve(t, h, req)

	if rec.Header().Get("HX-Redirect") != "/values" {
		t.Errorf("HX-Redirect = %q, want /values", rec.Header().Get("HX-Redirect"))
	}
}

func TestHandleRemove_NotFound_JSON(t *testing.T) {
	h, _ := setupTest(t)

	req := httptest.NewRequest("DELETE", "/values/01HXNOTREAL", nil)
	req.Header.Set("Accept", "application/json")
	rec := serve(t, h, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var payload map[string]map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["error"]["code"] != "NOT_FOUND" {
		t.Errorf("code = %v, want NOT_FOUND", payload["error"]["code"])
	}
}

// --- HandleClear ---

func TestHandleClear_MissingConfirm(t *testing.T) {
	h, st := setupTest(t)
	seedValue(t, st, "keep-me")

	req := httptest.NewRequest("POST", "/values/clear", nil)
	rec := serve(t, h, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if n := len(st.Load(context.Background())); n != 1 {
		t.Errorf("values left = %d, want 1", n)
	}
}

func TestHandleClear_Redirect(t *testing.T) {
	h, st := setupTest(t)
	seedValue(t, st, "one-value")
	seedValue(t, st, "two-value")

	form := url.Values{"confirm": {"true"}}
	req := httptest.NewRequest("POST", "/values/clear", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := serve(t, h, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if n := len(st.Load(context.Background())); n != 0 {
		t.Errorf("values left = %d, want 0", n)
	}
}

// --- Settings ---

func TestHandleSettings_ShowsDefaults(t *testing.T) {
	h, _ := setupTest(t)

	rec := serve(t, h, httptest.NewRequest("GET", "/settings", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := strings.Count(rec.Body.String(), " checked"); got != 2 {
		t.Errorf("checked boxes = %d, want 2", got)
	}
}

func TestHandleSettingsUpdate(t *testing.T) {
	h, st := setupTest(t)

	// Only exclude_secrets is checked.
	form := url.Values{"exclude_secrets": {"true"}}
	req := httptest.NewRequest("POST", "/settings", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := serve(t, h, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	s := st.Settings(context.Background())
	if !s.ExcludeSecrets || s.AutoAutocomplete {
		t.Errorf("settings = %+v, want exclude on, autocomplete off", s)
	}

	rec = serve(t, h, httptest.NewRequest("GET", "/settings?saved=true", nil))
	if !strings.Contains(rec.Body.String(), "Settings saved") {
		t.Error("expected saved notice")
	}
}

// --- Bookmarks ---

func TestHandleBookmarks(t *testing.T) {
	h, _ := setupTest(t)
	path := filepath.Join(t.TempDir(), "Bookmarks")
	body := `{"roots": {"bookmark_bar": {"id": "1", "name": "Bar", "type": "folder", "children": [
		{"id": "2", "name": "GitHub", "type": "url", "url": "https://github.com"},
		{"id": "3", "name": "Tailwind CSS", "type": "url", "url": "https://tailwindcss.com"}
	]}}}`
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	h.cfg.BookmarksFile = path

	rec := serve(t, h, httptest.NewRequest("GET", "/bookmarks?q=tailwind", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	out := rec.Body.String()
	if !strings.Contains(out, "Tailwind CSS") {
		t.Error("expected matching bookmark")
	}
	if strings.Contains(out, "GitHub") {
		t.Error("did not expect non-matching bookmark")
	}
}

func TestHandleBookmarks_MissingFile(t *testing.T) {
	h, _ := setupTest(t)
	h.cfg.BookmarksFile = filepath.Join(t.TempDir(), "missing")

	rec := serve(t, h, httptest.NewRequest("GET", "/bookmarks", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "bookmarks file not found") {
		t.Error("expected error page message")
	}
}

// --- Help, routing, headers ---

func TestHandleHelp_RendersMarkdown(t *testing.T) {
	h, _ := setupTest(t)

	rec := serve(t, h, httptest.NewRequest("GET", "/help", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<h2>Suggestions</h2>") {
		t.Error("expected rendered markdown heading")
	}
}

func TestRootRedirects(t *testing.T) {
	h, _ := setupTest(t)

	rec := serve(t, h, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/values" {
		t.Errorf("got %d -> %q, want 302 -> /values", rec.Code, rec.Header().Get("Location"))
	}
}

func TestSecurityHeaders(t *testing.T) {
	h, _ := setupTest(t)

	rec := serve(t, h, httptest.NewRequest("GET", "/static/style.css", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	for _, header := range []string{"Content-Security-Policy", "X-Content-Type-Options", "X-Frame-Options"} {
		if rec.Header().Get(header) == "" {
			t.Errorf("missing %s header", header)
		}
	}
}

func TestErrorRendering_HtmxFragment(t *testing.T) {
	h, _ := setupTest(t)

	req := httptest.NewRequest("DELETE", "/values/nope", nil)
	req.Header.Set("HX-Request", "true")
	rec := serve(t, h, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `class="error-message"`) {
		t.Error("expected error fragment")
	}
}

// --- helpers ---

func TestParseIntParam(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"", 7},
		{"n=3", 3},
		{"n=abc", 7},
		{"n=-2", -2},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/?"+tt.query, nil)
		if got := parseIntParam(req, "n", 7); got != tt.want {
			t.Errorf("parseIntParam(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestFormBool(t *testing.T) {
	for value, want := range map[string]bool{"on": true, "true": true, "1": true, "": false, "no": false} {
		req := httptest.NewRequest("POST", "/", strings.NewReader(url.Values{"b": {value}}.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if got := formBool(req, "b"); got != want {
			t.Errorf("formBool(%q) = %v, want %v", value, got, want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	if got := formatTime(1700000000000); got != "2023-11-14 22:13" {
		t.Errorf("formatTime() = %q", got)
	}
}

func TestHost(t *testing.T) {
	if got := host("https://shop.example.com/checkout?x=1"); got != "shop.example.com" {
		t.Errorf("host() = %q", got)
	}
	if got := host("not a url"); got != "not a url" {
		t.Errorf("host() = %q, want input back", got)
	}
}
