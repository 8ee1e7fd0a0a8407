// Package content is the page-side runtime: it turns host page events into
// classifier checks, overlay transitions and debounced captures.
package content

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/hpungsan/jetstorage/internal/capture"
	"github.com/hpungsan/jetstorage/internal/classifier"
	"github.com/hpungsan/jetstorage/internal/clock"
	"github.com/hpungsan/jetstorage/internal/config"
	"github.com/hpungsan/jetstorage/internal/overlay"
	"github.com/hpungsan/jetstorage/internal/scheduler"
	"github.com/hpungsan/jetstorage/internal/suggest"
)

// Field is a page element the session can observe.
type Field interface {
	overlay.Element
	// Attributes returns a fresh attribute snapshot for classification.
	Attributes() classifier.Field
}

// Store is the subset of the value store the session needs.
type Store interface {
	Load(ctx context.Context) []capture.CapturedValue
	Save(ctx context.Context, text, sourceURL string) (bool, error)
	Settings(ctx context.Context) config.Storage
}

// Page is the host page: its overlay surface, scroll state and address.
type Page interface {
	overlay.Viewport
	overlay.Renderer
	URL() string
}

// Options configures a Session. Zero values use the defaults.
type Options struct {
	Clock           clock.Clock
	Debounce        time.Duration
	Grace           time.Duration
	Flash           time.Duration
	SuggestionLimit int
	Logger          *slog.Logger
}

// Session holds the page-wide state: the tracked field, the settings
// snapshot taken at focus, the cached values and pending captures.
//
// Event methods may be called from any goroutine; they are serialized with
// each other and with timer callbacks.
type Session struct {
	mu    sync.Mutex
	ctx   context.Context
	store Store
	page  Page
	log   *slog.Logger
	limit int

	overlay  *overlay.Controller
	captures *scheduler.Scheduler[Field]

	settings config.Storage
	values   []capture.CapturedValue
	closed   bool
}

// New creates a Session for one page.
func New(ctx context.Context, store Store, page Page, opts Options) *Session {
	s := &Session{
		ctx:   ctx,
		store: store,
		page:  page,
		log:   opts.Logger,
		limit: opts.SuggestionLimit,
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.limit <= 0 {
		s.limit = suggest.DefaultLimit
	}
	base := opts.Clock
	if base == nil {
		base = clock.Real()
	}
	loop := clock.Serialized(base, &s.mu)

	s.overlay = overlay.New(page, page, s.suggest, overlay.Options{
		Clock:  loop,
		Grace:  opts.Grace,
		Flash:  opts.Flash,
		Logger: s.log,
	})
	s.captures = scheduler.New(store, scheduler.Options[Field]{
		Clock:   loop,
		Delay:   opts.Debounce,
		Logger:  s.log,
		OnSaved: s.onSaved,
	})
	s.settings = config.DefaultStorage()
	return s
}

// FocusIn handles a focus-in anywhere on the page.
func (s *Session) FocusIn(f Field) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	settings := s.store.Settings(s.ctx)
	if !classifier.IsEligible(f.Attributes(), settings) {
		return
	}
	s.settings = settings
	s.values = s.store.Load(s.ctx)
	s.overlay.FocusIn(f, settings.AutoAutocomplete)
}

// FocusOut handles a focus-out anywhere on the page.
func (s *Session) FocusOut(Field) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.overlay.FocusOut()
}

// Input handles an input event. Events from fields other than the tracked
// one are ignored.
func (s *Session) Input(f Field) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || !s.isTracked(f) {
		return
	}

	s.overlay.Input()

	// Attributes may have changed since focus; never capture a field that
	// has since become sensitive.
	if !classifier.IsEligible(f.Attributes(), s.settings) {
		s.captures.Cancel(f)
		return
	}
	s.captures.Schedule(f, f.Value(), s.page.URL())
}

// Scroll handles a capture-phase scroll of the document or any ancestor.
func (s *Session) Scroll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.overlay.Scroll()
}

// Removed handles a field leaving the page.
func (s *Session) Removed(f Field) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.overlay.Detach(f)
}

// PressSuggestion handles a press-down on dropdown row i. It fills the
// tracked field, notifies page listeners, then closes the dropdown.
func (s *Session) PressSuggestion(i int) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	el, ok := s.overlay.Select(i)
	s.mu.Unlock()
	if !ok {
		return
	}

	// Page listeners, including our own input handler, may run
	// synchronously inside the dispatch.
	el.DispatchInput()

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.overlay.HideDropdown()
	}
}

// Tracked returns the tracked field, or nil.
func (s *Session) Tracked() Field {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, _ := s.overlay.Tracked().(Field)
	return f
}

// State returns the overlay state.
func (s *Session) State() overlay.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlay.State()
}

// Close tears the session down with the page: pending captures and overlay
// timers are cancelled.
func (s *Session) Close() {
	s.captures.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.overlay.Close()
}

// suggest runs under mu (called from the overlay).
func (s *Session) suggest(filter string) []string {
	return suggest.Suggest(s.values, filter, s.limit)
}

// onSaved runs under mu (timer callback through the serialized clock).
func (s *Session) onSaved(_ Field, _ string) {
	if s.closed {
		return
	}
	s.values = s.store.Load(s.ctx)
	s.overlay.FlashSaved()
}

// isTracked must be called with mu held.
func (s *Session) isTracked(f Field) bool {
	t := s.overlay.Tracked()
	return t != nil && t == overlay.Element(f)
}
