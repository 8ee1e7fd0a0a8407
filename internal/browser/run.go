//go:build js && wasm

package browser

import (
	"context"
	"log/slog"
	"sync"
	"syscall/js"

	"github.com/hpungsan/jetstorage/internal/content"
	"github.com/hpungsan/jetstorage/internal/overlay"
	"github.com/hpungsan/jetstorage/internal/store"
)

// Options configures Run.
type Options struct {
	Logger  *slog.Logger
	Session content.Options
}

// page is the live document as a content.Page.
type page struct {
	*renderer
	window js.Value
	doc    js.Value
}

func (p *page) Scroll() overlay.Point {
	root := p.doc.Get("documentElement")
	x := p.window.Get("pageXOffset").Float()
	if x == 0 {
		x = root.Get("scrollLeft").Float()
	}
	y := p.window.Get("pageYOffset").Float()
	if y == 0 {
		y = root.Get("scrollTop").Float()
	}
	return overlay.Point{X: x, Y: y}
}

func (p *page) URL() string {
	return p.window.Get("location").Get("href").String()
}

// queue runs page events one at a time, in arrival order, on a goroutine of
// its own. JS callbacks must not block, so push never does.
type queue struct {
	mu    sync.Mutex
	tasks []func()
	wake  chan struct{}
}

func newQueue() *queue {
	return &queue{wake: make(chan struct{}, 1)}
}

func (q *queue) push(task func()) {
	q.mu.Lock()
	q.tasks = append(q.tasks, task)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *queue) run(ctx context.Context) {
	for {
		q.mu.Lock()
		tasks := q.tasks
		q.tasks = nil
		q.mu.Unlock()
		for _, task := range tasks {
			task()
		}
		select {
		case <-q.wake:
		case <-ctx.Done():
			return
		}
	}
}

// Run attaches a session to the current page and blocks until the page is
// hidden for good or ctx is done.
func Run(ctx context.Context, opts Options) error {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	window := js.Global()
	doc := window.Get("document")
	reg := newRegistry()
	q := newQueue()

	var session *content.Session
	r := newRenderer(doc,
		func(i int) { q.push(func() { session.PressSuggestion(i) }) },
		func() { openDashboard(log) },
	)
	p := &page{renderer: r, window: window, doc: doc}

	sessOpts := opts.Session
	if sessOpts.Logger == nil {
		sessOpts.Logger = log
	}
	values := store.New(newStorage(), store.WithLogger(log))
	session = content.New(ctx, values, p, sessOpts)

	var funcs []js.Func
	listen := func(target js.Value, event string, capture bool, fn func(js.Value)) {
		f := js.FuncOf(func(_ js.Value, args []js.Value) any {
			if len(args) > 0 {
				fn(args[0])
			}
			return nil
		})
		funcs = append(funcs, f)
		target.Call("addEventListener", event, f, map[string]any{"capture": capture})
	}
	defer func() {
		for _, f := range funcs {
			f.Release()
		}
	}()

	listen(doc, "focusin", false, func(ev js.Value) {
		target := ev.Get("target")
		q.push(func() {
			if f := reg.lookup(target); f != nil {
				session.FocusIn(f)
			}
		})
	})
	listen(doc, "focusout", false, func(ev js.Value) {
		target := ev.Get("target")
		q.push(func() {
			if f := reg.lookup(target); f != nil {
				session.FocusOut(f)
			}
		})
	})
	listen(doc, "input", false, func(ev js.Value) {
		target := ev.Get("target")
		// Our own synthetic event arrives on the goroutine that dispatched
		// it; queueing it would reorder it after the dropdown closes.
		if d := reg.dispatching; d != nil && d.el.Equal(target) {
			session.Input(d)
			return
		}
		q.push(func() {
			if f := reg.lookup(target); f != nil {
				session.Input(f)
			}
		})
	})
	listen(window, "scroll", true, func(js.Value) {
		q.push(session.Scroll)
	})

	done := make(chan struct{})
	listen(window, "pagehide", false, func(ev js.Value) {
		if ev.Get("persisted").Truthy() {
			// Kept in the back/forward cache; the page may come back.
			return
		}
		q.push(func() {
			session.Close()
			close(done)
		})
	})

	observer := observeRemovals(doc, func() {
		q.push(func() {
			tracked, _ := session.Tracked().(*field)
			if tracked != nil && !tracked.el.Get("isConnected").Truthy() {
				session.Removed(tracked)
			}
			reg.forget(func(f *field) bool { return f == tracked })
		})
	})
	defer observer.release()

	log.Debug("content session attached", "url", p.URL())

	go q.run(ctx)
	select {
	case <-done:
	case <-ctx.Done():
		session.Close()
	}
	return nil
}

type mutationObserver struct {
	obs js.Value
	fn  js.Func
}

func (m *mutationObserver) release() {
	m.obs.Call("disconnect")
	m.fn.Release()
}

// observeRemovals calls onRemove after any batch of mutations that took
// nodes out of the document.
func observeRemovals(doc js.Value, onRemove func()) *mutationObserver {
	fn := js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) == 0 {
			return nil
		}
		records := args[0]
		for i := 0; i < records.Length(); i++ {
			if records.Index(i).Get("removedNodes").Length() > 0 {
				onRemove()
				break
			}
		}
		return nil
	})
	obs := js.Global().Get("MutationObserver").New(fn)
	obs.Call("observe", doc.Get("documentElement"), map[string]any{
		"childList": true,
		"subtree":   true,
	})
	return &mutationObserver{obs: obs, fn: fn}
}

// openDashboard asks the extension's background worker to show the dashboard.
func openDashboard(log *slog.Logger) {
	runtime := js.Global().Get("chrome")
	if !runtime.Truthy() || !runtime.Get("runtime").Truthy() {
		log.Debug("extension runtime unavailable; dashboard not opened")
		return
	}
	runtime.Get("runtime").Call("sendMessage", map[string]any{"action": "open_dashboard"})
}
