// Package overlay keeps the status indicator and suggestion dropdown aligned
// with the tracked field and decides when they are visible.
package overlay

import (
	"log/slog"
	"time"

	"github.com/hpungsan/jetstorage/internal/clock"
)

// Default timings.
const (
	DefaultGrace = 200 * time.Millisecond
	DefaultFlash = 1500 * time.Millisecond
)

// State is the controller's lifecycle state.
type State int

const (
	Idle State = iota
	Tracking
)

func (s State) String() string {
	if s == Tracking {
		return "tracking"
	}
	return "idle"
}

// Element is a page field the overlay can track.
type Element interface {
	// Bounds returns the viewport-relative bounding box.
	// ok is false once the element has left the page.
	Bounds() (r Rect, ok bool)
	Value() string
	SetValue(v string)
	// DispatchInput notifies page listeners as if the user had typed.
	DispatchInput()
}

// Viewport reports the page scroll offset.
type Viewport interface {
	Scroll() Point
}

// Renderer applies a View to the page.
type Renderer interface {
	Render(v View)
}

// SuggestFunc returns suggestions for the field's current text.
type SuggestFunc func(filter string) []string

// Options configures a Controller.
type Options struct {
	Clock  clock.Clock
	Grace  time.Duration
	Flash  time.Duration
	Logger *slog.Logger
}

// Controller is the overlay state machine. It is not safe for concurrent
// use; callers serialize events and timer callbacks (see clock.Serialized).
type Controller struct {
	renderer Renderer
	viewport Viewport
	suggest  SuggestFunc
	clock    clock.Clock
	grace    time.Duration
	flash    time.Duration
	log      *slog.Logger

	state    State
	field    Element
	view     View
	rendered View
	drawn    bool

	// A timer that already fired may still be waiting on the caller's
	// lock when it is replaced; callbacks run only if their generation is
	// still current.
	hideTimer  clock.Timer
	hideGen    uint64
	flashTimer clock.Timer
	flashGen   uint64
}

// New creates an idle Controller.
func New(renderer Renderer, viewport Viewport, suggest SuggestFunc, opts Options) *Controller {
	c := &Controller{
		renderer: renderer,
		viewport: viewport,
		suggest:  suggest,
		clock:    opts.Clock,
		grace:    opts.Grace,
		flash:    opts.Flash,
		log:      opts.Logger,
	}
	if c.clock == nil {
		c.clock = clock.Real()
	}
	if c.grace <= 0 {
		c.grace = DefaultGrace
	}
	if c.flash <= 0 {
		c.flash = DefaultFlash
	}
	if c.log == nil {
		c.log = slog.Default()
	}
	return c
}

// State returns the current state.
func (c *Controller) State() State { return c.state }

// Tracked returns the tracked field, or nil when idle.
func (c *Controller) Tracked() Element { return c.field }

// View returns the current desired view.
func (c *Controller) View() View { return c.view }

// FocusIn starts tracking el. With openDropdown false the dropdown stays
// closed until the first input.
func (c *Controller) FocusIn(el Element, openDropdown bool) {
	c.stopHide()
	c.state = Tracking
	c.field = el
	c.view.Indicator.Visible = true
	c.view.Dropdown = DropdownView{}

	if !c.relayout() {
		return
	}
	if openDropdown {
		c.fill(el.Value())
	}
	c.render()
}

// FocusOut hides the overlay after the grace delay, leaving time for a
// press on a suggestion row to land first.
func (c *Controller) FocusOut() {
	if c.state != Tracking {
		return
	}
	c.stopHide()
	gen := c.hideGen
	c.hideTimer = c.clock.AfterFunc(c.grace, func() {
		if gen != c.hideGen {
			return
		}
		c.hideTimer = nil
		c.toIdle()
	})
}

// Input re-anchors the overlay and refreshes suggestions for the new text.
func (c *Controller) Input() {
	if c.state != Tracking {
		return
	}
	if !c.relayout() {
		return
	}
	c.fill(c.field.Value())
	c.render()
}

// Scroll re-anchors the overlay without querying suggestions.
func (c *Controller) Scroll() {
	if c.state != Tracking {
		return
	}
	if !c.relayout() {
		return
	}
	c.render()
}

// Detach drops tracking if el is the tracked field.
func (c *Controller) Detach(el Element) {
	if c.state == Tracking && c.field == el {
		c.toIdle()
	}
}

// Select writes suggestion i into the tracked field and returns the field so
// the caller can dispatch the synthetic input. It reports false when no such
// suggestion is showing.
func (c *Controller) Select(i int) (Element, bool) {
	if c.state != Tracking || !c.view.Dropdown.Visible {
		return nil, false
	}
	items := c.view.Dropdown.Items
	if i < 0 || i >= len(items) {
		return nil, false
	}
	c.field.SetValue(items[i])
	return c.field, true
}

// HideDropdown closes the dropdown, keeping the indicator.
func (c *Controller) HideDropdown() {
	c.view.Dropdown.Visible = false
	c.view.Dropdown.Items = nil
	c.render()
}

// FlashSaved shows the indicator's saved state for the flash duration.
func (c *Controller) FlashSaved() {
	c.stopFlash()
	c.view.Indicator.Saved = true
	c.render()
	gen := c.flashGen
	c.flashTimer = c.clock.AfterFunc(c.flash, func() {
		if gen != c.flashGen {
			return
		}
		c.flashTimer = nil
		c.view.Indicator.Saved = false
		c.render()
	})
}

// Close cancels pending timers and hides everything.
func (c *Controller) Close() {
	c.stopHide()
	c.stopFlash()
	c.view.Indicator.Saved = false
	c.toIdle()
}

// relayout anchors the view to the tracked field. It returns false and
// goes idle when the field is gone.
func (c *Controller) relayout() bool {
	r, ok := c.field.Bounds()
	if !ok {
		c.log.Debug("tracked field detached")
		c.toIdle()
		return false
	}
	c.view = place(c.view, r, c.viewport.Scroll())
	return true
}

// fill sets the dropdown items, hiding it when nothing matches.
func (c *Controller) fill(filter string) {
	items := c.suggest(filter)
	c.view.Dropdown.Items = items
	c.view.Dropdown.Visible = len(items) > 0
}

func (c *Controller) toIdle() {
	c.state = Idle
	c.field = nil
	saved := c.view.Indicator.Saved
	c.view = View{}
	c.view.Indicator.Saved = saved
	c.render()
}

func (c *Controller) stopHide() {
	c.hideGen++
	if c.hideTimer != nil {
		c.hideTimer.Stop()
		c.hideTimer = nil
	}
}

func (c *Controller) stopFlash() {
	c.flashGen++
	if c.flashTimer != nil {
		c.flashTimer.Stop()
		c.flashTimer = nil
	}
}

func (c *Controller) render() {
	if c.drawn && c.view.Equal(c.rendered) {
		return
	}
	c.rendered = c.view
	c.drawn = true
	c.renderer.Render(c.view)
}
