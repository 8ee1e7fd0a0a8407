package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pkg/browser"
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/jetstorage/internal/bookmarks"
	"github.com/hpungsan/jetstorage/internal/classifier"
	"github.com/hpungsan/jetstorage/internal/config"
	"github.com/hpungsan/jetstorage/internal/errors"
	"github.com/hpungsan/jetstorage/internal/ops"
	"github.com/hpungsan/jetstorage/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(st ops.Store, cfg *config.Config, log *slog.Logger) *cli.App {
	app := &cli.App{
		Name:    "jetstorage",
		Usage:   "Remembered form values and bookmark search",
		Version: Version,
		Commands: []*cli.Command{
			listCmd(st),
			suggestCmd(st, cfg),
			saveCmd(st),
			removeCmd(st),
			clearCmd(st),
			classifyCmd(st),
			settingsCmd(st),
			bookmarksCmd(cfg),
			uiCmd(st, cfg, log),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// listCmd creates the list command.
func listCmd(st ops.Store) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List captured values, newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Case-insensitive substring filter"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: ops.DefaultListLimit, Usage: "Maximum items to return"},
			&cli.IntFlag{Name: "offset", Aliases: []string{"o"}, Value: 0, Usage: "Items to skip"},
			&cli.BoolFlag{Name: "table", Usage: "Print a table instead of JSON"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.ListValues(c.Context, st, ops.ListValuesInput{
				Query:  c.String("query"),
				Limit:  c.Int("limit"),
				Offset: c.Int("offset"),
			})
			if err != nil {
				return outputError(err)
			}

			if c.Bool("table") {
				rows := pterm.TableData{{"ID", "Value", "Source", "Captured"}}
				for _, v := range output.Items {
					rows = append(rows, []string{v.ID, v.Value, v.SourceURL, formatMillis(v.Timestamp)})
				}
				return outputTable(c.App.Writer, rows, "No values captured")
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// suggestCmd creates the suggest command.
func suggestCmd(st ops.Store, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:      "suggest",
		Usage:     "Show the suggestions a field would offer for typed text",
		ArgsUsage: "[text]",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum suggestions (default from config)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Suggest(c.Context, st, cfg, ops.SuggestInput{
				Filter: c.Args().First(),
				Limit:  c.Int("limit"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// saveCmd creates the save command.
func saveCmd(st ops.Store) *cli.Command {
	return &cli.Command{
		Name:      "save",
		Usage:     "Remember a value (argument, or piped via stdin)",
		ArgsUsage: "[value]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Aliases: []string{"u"}, Usage: "Source page URL"},
		},
		Action: func(c *cli.Context) error {
			value := c.Args().First()
			if value == "" && stdinHasData() {
				text, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				value = text
			}

			output, err := ops.SaveValue(c.Context, st, ops.SaveValueInput{
				Value:     value,
				SourceURL: c.String("url"),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// removeCmd creates the remove command.
func removeCmd(st ops.Store) *cli.Command {
	return &cli.Command{
		Name:      "remove",
		Usage:     "Forget one value by id",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.RemoveValue(c.Context, st, c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// clearCmd creates the clear command.
func clearCmd(st ops.Store) *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Forget every captured value",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm deleting every value"},
		},
		Action: func(c *cli.Context) error {
			if !c.Bool("yes") {
				return outputError(errors.NewInvalidRequest("refusing to clear without --yes"))
			}
			output, err := ops.ClearValues(c.Context, st)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// classifyCmd creates the classify command.
func classifyCmd(st ops.Store) *cli.Command {
	return &cli.Command{
		Name:  "classify",
		Usage: "Check whether a field with these attributes would be captured",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tag", Value: "INPUT", Usage: "Element tag name"},
			&cli.StringFlag{Name: "type", Usage: "Input type attribute"},
			&cli.StringFlag{Name: "name", Usage: "name attribute"},
			&cli.StringFlag{Name: "id", Usage: "id attribute"},
			&cli.StringFlag{Name: "placeholder", Usage: "placeholder attribute"},
			&cli.StringFlag{Name: "class", Usage: "class attribute"},
			&cli.BoolFlag{Name: "exclude-secrets", Usage: "Override the stored exclude-secrets toggle"},
		},
		Action: func(c *cli.Context) error {
			input := ops.ClassifyInput{
				Field: classifier.Field{
					Tag:         c.String("tag"),
					Type:        c.String("type"),
					Name:        c.String("name"),
					ID:          c.String("id"),
					Placeholder: c.String("placeholder"),
					Class:       c.String("class"),
				},
			}
			if c.IsSet("exclude-secrets") {
				v := c.Bool("exclude-secrets")
				input.ExcludeSecrets = &v
			}

			output, err := ops.Classify(c.Context, st, input)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// settingsCmd creates the settings command. Without flags it prints the
// stored toggles.
func settingsCmd(st ops.Store) *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or change the stored toggles",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "exclude-secrets", Usage: "Skip sensitive-looking fields (--exclude-secrets=false to allow)"},
			&cli.BoolFlag{Name: "auto-autocomplete", Usage: "Open suggestions on focus (--auto-autocomplete=false to disable)"},
		},
		Action: func(c *cli.Context) error {
			var input ops.UpdateSettingsInput
			if c.IsSet("exclude-secrets") {
				v := c.Bool("exclude-secrets")
				input.ExcludeSecrets = &v
			}
			if c.IsSet("auto-autocomplete") {
				v := c.Bool("auto-autocomplete")
				input.AutoAutocomplete = &v
			}

			var (
				output *config.Storage
				err    error
			)
			if input.ExcludeSecrets == nil && input.AutoAutocomplete == nil {
				output, err = ops.GetSettings(c.Context, st)
			} else {
				output, err = ops.UpdateSettings(c.Context, st, input)
			}
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c.App.Writer, output)
		},
	}
}

// bookmarksCmd creates the bookmarks command group.
func bookmarksCmd(cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "bookmarks",
		Usage: "Search and open Chrome bookmarks",
		Subcommands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search bookmarks by title or URL",
				ArgsUsage: "[query]",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Usage: "Maximum results (default from config)"},
					&cli.BoolFlag{Name: "table", Usage: "Print a table instead of JSON"},
				},
				Action: func(c *cli.Context) error {
					output, err := ops.SearchBookmarks(c.Context, cfg, ops.SearchBookmarksInput{
						Query: strings.Join(c.Args().Slice(), " "),
						Limit: c.Int("limit"),
					})
					if err != nil {
						return outputError(err)
					}

					if c.Bool("table") {
						rows := pterm.TableData{{"Title", "URL", "Folder"}}
						for _, b := range output.Items {
							rows = append(rows, []string{b.Title, b.URL, strings.Join(b.FolderPath, " / ")})
						}
						return outputTable(c.App.Writer, rows, "No bookmarks found")
					}
					return outputJSON(c.App.Writer, output)
				},
			},
			{
				Name:      "open",
				Usage:     "Open a URL in the default browser",
				ArgsUsage: "<url>",
				Action: func(c *cli.Context) error {
					if c.NArg() == 0 {
						return outputError(errors.NewInvalidRequest("url is required"))
					}
					if err := bookmarks.Open(c.Args().First()); err != nil {
						return outputError(errors.NewInvalidRequest(err.Error()))
					}
					return nil
				},
			},
		},
	}
}

// uiCmd creates the ui command.
func uiCmd(st ops.Store, cfg *config.Config, log *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "ui",
		Usage: "Serve the dashboard on localhost",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Value: 8714, Usage: "Port to listen on"},
			&cli.BoolFlag{Name: "open", Usage: "Open the dashboard in the default browser"},
		},
		Action: func(c *cli.Context) error {
			srv, err := web.NewServer(st, cfg, Version, c.String("bind"), c.Int("port"), log)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if c.Bool("open") {
				if err := browser.OpenURL("http://" + srv.Addr); err != nil {
					log.Warn("could not open browser", "error", err)
				}
			}
			ctx := c.Context
			if ctx == nil {
				ctx = context.Background()
			}
			return web.Run(ctx, srv, log)
		},
	}
}

// Helper functions

// outputJSON marshals result to w as indented JSON.
func outputJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// formatMillis formats a Unix millisecond timestamp in local time.
func formatMillis(ms int64) string {
	return time.UnixMilli(ms).Local().Format("2006-01-02 15:04")
}

// outputTable renders rows with pterm, or empty when only the header is present.
func outputTable(w io.Writer, rows pterm.TableData, empty string) error {
	if len(rows) <= 1 {
		_, err := fmt.Fprintln(w, empty)
		return err
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithData(rows).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, out)
	return err
}

// outputError formats error for CLI.
func outputError(err error) error {
	var jErr *errors.JetError
	if stderrors.As(err, &jErr) {
		return cli.Exit(fmt.Sprintf("[%s] %s", jErr.Code, jErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
