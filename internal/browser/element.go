//go:build js && wasm

package browser

import (
	"syscall/js"

	"github.com/hpungsan/jetstorage/internal/classifier"
	"github.com/hpungsan/jetstorage/internal/overlay"
)

// field wraps a page INPUT or TEXTAREA.
type field struct {
	el  js.Value
	reg *registry
}

func (f *field) Bounds() (overlay.Rect, bool) {
	if !f.el.Get("isConnected").Truthy() {
		return overlay.Rect{}, false
	}
	r := f.el.Call("getBoundingClientRect")
	return overlay.Rect{
		Top:    r.Get("top").Float(),
		Left:   r.Get("left").Float(),
		Bottom: r.Get("bottom").Float(),
		Right:  r.Get("right").Float(),
		Width:  r.Get("width").Float(),
		Height: r.Get("height").Float(),
	}, true
}

func (f *field) Value() string {
	return stringProp(f.el, "value")
}

func (f *field) SetValue(v string) {
	f.el.Set("value", v)
}

// DispatchInput fires a bubbling input event. Page listeners run
// synchronously on the calling goroutine, ours included.
func (f *field) DispatchInput() {
	f.reg.dispatching = f
	defer func() { f.reg.dispatching = nil }()
	ev := js.Global().Get("Event").New("input", map[string]any{"bubbles": true})
	f.el.Call("dispatchEvent", ev)
}

func (f *field) Attributes() classifier.Field {
	return classifier.Field{
		Tag:         stringProp(f.el, "tagName"),
		Type:        stringProp(f.el, "type"),
		Name:        stringProp(f.el, "name"),
		ID:          stringProp(f.el, "id"),
		Placeholder: stringProp(f.el, "placeholder"),
		Class:       attr(f.el, "class"),
	}
}

// registry gives each DOM element one stable *field without writing
// properties onto page-owned nodes. js.Value is not comparable, so
// identity lives in a WeakMap from element to a numeric handle.
type registry struct {
	handles js.Value
	fields  map[int]*field
	next    int

	// dispatching is the field whose synthetic input event is in flight.
	dispatching *field
}

func newRegistry() *registry {
	return &registry{
		handles: js.Global().Get("WeakMap").New(),
		fields:  make(map[int]*field),
	}
}

// lookup returns the field for el, creating it on first sight.
// It returns nil for anything that is not an element.
func (r *registry) lookup(el js.Value) *field {
	if el.Type() != js.TypeObject || el.Get("nodeType").Int() != 1 {
		return nil
	}
	if h := r.handles.Call("get", el); h.Type() == js.TypeNumber {
		if f, ok := r.fields[h.Int()]; ok {
			return f
		}
	}
	r.next++
	f := &field{el: el, reg: r}
	r.fields[r.next] = f
	r.handles.Call("set", el, r.next)
	return f
}

// forget drops fields whose elements left the page.
func (r *registry) forget(keep func(*field) bool) {
	for id, f := range r.fields {
		if !f.el.Get("isConnected").Truthy() && !keep(f) {
			delete(r.fields, id)
		}
	}
}

func stringProp(v js.Value, name string) string {
	p := v.Get(name)
	if p.Type() != js.TypeString {
		return ""
	}
	return p.String()
}

func attr(v js.Value, name string) string {
	a := v.Call("getAttribute", name)
	if a.Type() != js.TypeString {
		return ""
	}
	return a.String()
}
