//go:build js && wasm

package browser

import (
	"fmt"
	"slices"
	"syscall/js"

	"github.com/hpungsan/jetstorage/internal/overlay"
)

const (
	indicatorID = "jetstorage-indicator"
	dropdownID  = "jetstorage-dropdown"
	savedClass  = "js-saved"
	brandLabel  = "JetStorage"
)

// renderer applies overlay views to two lazily created body children.
type renderer struct {
	doc       js.Value
	indicator js.Value
	dropdown  js.Value
	items     []string
	rowFuncs  []js.Func
	clickFunc js.Func

	onPress     func(i int)
	onIndicator func()
}

func newRenderer(doc js.Value, onPress func(int), onIndicator func()) *renderer {
	return &renderer{doc: doc, onPress: onPress, onIndicator: onIndicator}
}

func (r *renderer) Render(v overlay.View) {
	r.ensure()

	ind := r.indicator.Get("style")
	if v.Indicator.Visible {
		ind.Set("display", "flex")
		ind.Set("top", px(v.Indicator.Top))
		ind.Set("left", px(v.Indicator.Left))
	} else {
		ind.Set("display", "none")
	}
	r.indicator.Get("classList").Call("toggle", savedClass, v.Indicator.Saved)

	dd := r.dropdown.Get("style")
	if !v.Dropdown.Visible {
		dd.Set("display", "none")
		return
	}
	dd.Set("top", px(v.Dropdown.Top))
	dd.Set("left", px(v.Dropdown.Left))
	dd.Set("width", px(v.Dropdown.Width))
	if !slices.Equal(r.items, v.Dropdown.Items) {
		r.rows(v.Dropdown.Items)
	}
	dd.Set("display", "block")
}

// rows rebuilds the dropdown rows. Values are set as text, never markup.
func (r *renderer) rows(items []string) {
	for _, fn := range r.rowFuncs {
		fn.Release()
	}
	r.rowFuncs = r.rowFuncs[:0]
	r.dropdown.Set("textContent", "")

	for i, item := range items {
		row := r.doc.Call("createElement", "div")
		row.Set("className", "js-item")

		val := r.doc.Call("createElement", "span")
		val.Set("className", "js-val")
		val.Set("textContent", item)
		hint := r.doc.Call("createElement", "span")
		hint.Set("className", "js-hint")
		hint.Set("textContent", brandLabel)
		row.Call("appendChild", val)
		row.Call("appendChild", hint)

		// mousedown fires before the field's blur; preventDefault keeps focus.
		fn := js.FuncOf(func(this js.Value, args []js.Value) any {
			if len(args) > 0 {
				args[0].Call("preventDefault")
			}
			r.onPress(i)
			return nil
		})
		r.rowFuncs = append(r.rowFuncs, fn)
		row.Call("addEventListener", "mousedown", fn)
		r.dropdown.Call("appendChild", row)
	}
	r.items = slices.Clone(items)
}

func (r *renderer) ensure() {
	if !r.indicator.IsUndefined() && r.indicator.Get("isConnected").Truthy() {
		return
	}
	body := r.doc.Get("body")

	r.indicator = r.doc.Call("createElement", "div")
	r.indicator.Set("id", indicatorID)
	dot := r.doc.Call("createElement", "div")
	dot.Set("className", "js-dot")
	label := r.doc.Call("createElement", "div")
	label.Set("className", "js-label")
	label.Set("textContent", brandLabel)
	r.indicator.Call("appendChild", dot)
	r.indicator.Call("appendChild", label)
	if !r.clickFunc.IsUndefined() {
		r.clickFunc.Release()
	}
	r.clickFunc = js.FuncOf(func(js.Value, []js.Value) any {
		r.onIndicator()
		return nil
	})
	r.indicator.Call("addEventListener", "click", r.clickFunc)
	body.Call("appendChild", r.indicator)

	r.dropdown = r.doc.Call("createElement", "div")
	r.dropdown.Set("id", dropdownID)
	r.dropdown.Get("style").Set("display", "none")
	body.Call("appendChild", r.dropdown)
	r.items = nil
}

func px(f float64) string {
	return fmt.Sprintf("%gpx", f)
}
