package web

import (
	"net/http"
	"strconv"

	"github.com/hpungsan/jetstorage/internal/config"
	"github.com/hpungsan/jetstorage/internal/errors"
	"github.com/hpungsan/jetstorage/internal/ops"
)

// Handlers contains HTTP route handlers for the dashboard.
type Handlers struct {
	store    ops.Store
	cfg      *config.Config
	renderer *Renderer
}

// HandleValues handles GET /values: list captured values.
func (h *Handlers) HandleValues(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	result, err := ops.ListValues(r.Context(), h.store, ops.ListValuesInput{
		Query:  query,
		Limit:  parseIntParam(r, "limit", ops.DefaultListLimit),
		Offset: parseIntParam(r, "offset", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	data := ValuesPageData{
		PageData:   h.renderer.page("Captured values", "values"),
		Query:      query,
		Items:      result.Items,
		Pagination: result.Pagination,
	}

	// If htmx targets #results, render only the rows
	if r.Header.Get("HX-Target") == "results" {
		h.renderer.renderBlock(w, http.StatusOK, "values", "value-rows", data)
		return
	}

	h.renderer.renderPage(w, r, "values", data)
}

// HandleRemove handles DELETE /values/{id}: forget one value.
func (h *Handlers) HandleRemove(w http.ResponseWriter, r *http.Request) {
	result, err := ops.RemoveValue(r.Context(), h.store, r.PathValue("id"))
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/values")
		w.WriteHeader(http.StatusOK)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleClear handles POST /values/clear: forget every value.
func (h *Handlers) HandleClear(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}
	if r.FormValue("confirm") != "true" {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("confirm parameter must be \"true\""))
		return
	}

	result, err := ops.ClearValues(r.Context(), h.store)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	http.Redirect(w, r, "/values", http.StatusSeeOther)
}

// HandleSettings handles GET /settings.
func (h *Handlers) HandleSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := ops.GetSettings(r.Context(), h.store)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, settings)
		return
	}

	h.renderer.renderPage(w, r, "settings", SettingsPageData{
		PageData: h.renderer.page("Settings", "settings"),
		Settings: *settings,
		Saved:    parseBoolParam(r, "saved"),
	})
}

// HandleSettingsUpdate handles POST /settings. A checkbox form posts only
// checked boxes, so both toggles are always written from the form.
func (h *Handlers) HandleSettingsUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderer.renderError(w, r, errors.NewInvalidRequest("invalid form data"))
		return
	}

	exclude := formBool(r, "exclude_secrets")
	auto := formBool(r, "auto_autocomplete")
	settings, err := ops.UpdateSettings(r.Context(), h.store, ops.UpdateSettingsInput{
		ExcludeSecrets:   &exclude,
		AutoAutocomplete: &auto,
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, settings)
		return
	}

	http.Redirect(w, r, "/settings?saved=true", http.StatusSeeOther)
}

// HandleBookmarks handles GET /bookmarks: search the configured bookmarks.
func (h *Handlers) HandleBookmarks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	result, err := ops.SearchBookmarks(r.Context(), h.cfg, ops.SearchBookmarksInput{
		Query: query,
		Limit: parseIntParam(r, "limit", 0),
	})
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	if wantsJSON(r) {
		renderJSON(w, http.StatusOK, result)
		return
	}

	h.renderer.renderPage(w, r, "bookmarks", BookmarksPageData{
		PageData: h.renderer.page("Bookmarks", "bookmarks"),
		Query:    query,
		Items:    result.Items,
		Source:   result.Source,
	})
}

// HandleHelp handles GET /help.
func (h *Handlers) HandleHelp(w http.ResponseWriter, r *http.Request) {
	h.renderer.renderPage(w, r, "help", HelpPageData{
		PageData: h.renderer.page("Help", "help"),
		Body:     renderMarkdown(helpMarkdown),
	})
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	s := r.URL.Query().Get(name)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// parseBoolParam parses a boolean query parameter.
func parseBoolParam(r *http.Request, name string) bool {
	s := r.URL.Query().Get(name)
	return s == "true" || s == "1"
}

// formBool reads a checkbox or boolean form field.
func formBool(r *http.Request, name string) bool {
	s := r.FormValue(name)
	return s == "true" || s == "1" || s == "on"
}
