package mcp

import "github.com/mark3labs/mcp-go/mcp"

var listToolDef = mcp.NewTool("values_list",
	mcp.WithDescription("List captured form values, newest first. Optionally filter by a case-insensitive substring."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("query", mcp.Description("Substring to match against stored values")),
	mcp.WithNumber("limit", mcp.Description("Max items to return (default 20, max 100)")),
	mcp.WithNumber("offset", mcp.Description("Items to skip (default 0)")),
)

var suggestToolDef = mcp.NewTool("values_suggest",
	mcp.WithDescription("Return the suggestions the in-page dropdown would show for the given typed text."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("filter", mcp.Description("Text typed into the field; empty matches every value")),
	mcp.WithNumber("limit", mcp.Description("Max suggestions (default from config, normally 5)")),
)

var saveToolDef = mcp.NewTool("values_save",
	mcp.WithDescription("Remember a value as if it had been typed into a form field. Duplicates (case-insensitive) are not stored twice."),
	mcp.WithString("value", mcp.Required(), mcp.Description("Value to store; at least 2 characters after trimming")),
	mcp.WithString("source_url", mcp.Description("Page the value came from")),
)

var removeToolDef = mcp.NewTool("values_remove",
	mcp.WithDescription("Delete one captured value by id."),
	mcp.WithDestructiveHintAnnotation(true),
	mcp.WithString("id", mcp.Required(), mcp.Description("Value id from values_list")),
)

var clearToolDef = mcp.NewTool("values_clear",
	mcp.WithDescription("Delete every captured value. Settings are kept."),
	mcp.WithDestructiveHintAnnotation(true),
)

var classifyToolDef = mcp.NewTool("field_classify",
	mcp.WithDescription("Report whether a form field with these attributes would be captured, and why not if it would be skipped."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("tag", mcp.Required(), mcp.Description("Element tag name, e.g. INPUT or TEXTAREA")),
	mcp.WithString("type", mcp.Description("Input type attribute")),
	mcp.WithString("name", mcp.Description("name attribute")),
	mcp.WithString("id", mcp.Description("id attribute")),
	mcp.WithString("placeholder", mcp.Description("placeholder attribute")),
	mcp.WithString("class", mcp.Description("class attribute")),
	mcp.WithBoolean("exclude_secrets", mcp.Description("Override the stored exclude-secrets toggle")),
)

var settingsGetToolDef = mcp.NewTool("settings_get",
	mcp.WithDescription("Show the stored toggles: excludeSecrets and autoAutocomplete."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var settingsUpdateToolDef = mcp.NewTool("settings_update",
	mcp.WithDescription("Change stored toggles. Omitted toggles keep their value. Takes effect on the next field focus."),
	mcp.WithBoolean("exclude_secrets", mcp.Description("Skip fields whose attributes look sensitive")),
	mcp.WithBoolean("auto_autocomplete", mcp.Description("Open suggestions on focus, before typing")),
)

var bookmarksSearchToolDef = mcp.NewTool("bookmarks_search",
	mcp.WithDescription("Search the configured Chrome bookmarks by title or URL."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithString("query", mcp.Description("Case-insensitive term; empty returns the first bookmarks")),
	mcp.WithNumber("limit", mcp.Description("Max results (default from config, normally 50)")),
)
