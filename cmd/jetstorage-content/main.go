//go:build js && wasm

// Command jetstorage-content is the content script compiled to WebAssembly.
// The extension loads it into every page with wasm_exec.js.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/hpungsan/jetstorage/internal/browser"
)

func main() {
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	if err := browser.Run(context.Background(), browser.Options{Logger: log}); err != nil {
		log.Error("content script stopped", "error", err)
	}
}
