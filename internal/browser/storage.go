//go:build js && wasm

package browser

import (
	"context"
	"fmt"
	"syscall/js"

	"github.com/hpungsan/jetstorage/internal/kv"
)

// versionSuffix names the sibling key holding a key's version stamp.
const versionSuffix = "@version"

// chromeStorage is a kv.Store over chrome.storage.local.
//
// chrome.storage has no conditional write. CompareAndSwap re-reads the
// version stamp right before writing, which narrows the window between two
// tabs but cannot close it: across tabs the last writer wins.
type chromeStorage struct {
	area js.Value
}

var _ kv.Store = (*chromeStorage)(nil)

// newStorage returns chrome.storage.local, or an in-memory store when the
// extension API is not present (a plain page during development).
func newStorage() kv.Store {
	chrome := js.Global().Get("chrome")
	if chrome.Truthy() && chrome.Get("storage").Truthy() && chrome.Get("storage").Get("local").Truthy() {
		return &chromeStorage{area: chrome.Get("storage").Get("local")}
	}
	return kv.NewMemory()
}

func (s *chromeStorage) Get(ctx context.Context, key string) ([]byte, int64, error) {
	res, err := await(ctx, s.area.Call("get", []any{key, key + versionSuffix}))
	if err != nil {
		return nil, 0, err
	}
	raw := res.Get(key)
	switch {
	case raw.Type() == js.TypeString:
		// Early builds stored the JSON text itself.
	case raw.Truthy():
		raw = js.Global().Get("JSON").Call("stringify", raw)
	default:
		return nil, 0, nil
	}
	var version int64
	if v := res.Get(key + versionSuffix); v.Type() == js.TypeNumber {
		version = int64(v.Int())
	} else {
		version = 1
	}
	return []byte(raw.String()), version, nil
}

func (s *chromeStorage) Set(ctx context.Context, key string, value []byte) error {
	_, version, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	return s.write(ctx, key, value, version+1)
}

func (s *chromeStorage) CompareAndSwap(ctx context.Context, key string, version int64, value []byte) (bool, error) {
	_, current, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if current != version {
		return false, nil
	}
	return true, s.write(ctx, key, value, version+1)
}

func (s *chromeStorage) Delete(ctx context.Context, key string) error {
	_, err := await(ctx, s.area.Call("remove", []any{key, key + versionSuffix}))
	return err
}

func (s *chromeStorage) write(ctx context.Context, key string, value []byte, version int64) error {
	doc, err := structured(value)
	if err != nil {
		return err
	}
	items := map[string]any{
		key:                 doc,
		key + versionSuffix: version,
	}
	_, err = await(ctx, s.area.Call("set", items))
	return err
}

// await blocks until promise settles. It must not be called from a js.FuncOf
// callback goroutine; the event queue runs handlers on its own goroutine.
func await(ctx context.Context, promise js.Value) (js.Value, error) {
	type result struct {
		v   js.Value
		err error
	}
	ch := make(chan result, 1)

	var then, catch js.Func
	then = js.FuncOf(func(_ js.Value, args []js.Value) any {
		v := js.Undefined()
		if len(args) > 0 {
			v = args[0]
		}
		ch <- result{v: v}
		return nil
	})
	catch = js.FuncOf(func(_ js.Value, args []js.Value) any {
		msg := "promise rejected"
		if len(args) > 0 {
			msg = js.Global().Get("String").Invoke(args[0]).String()
		}
		ch <- result{err: fmt.Errorf("chrome.storage: %s", msg)}
		return nil
	})
	defer then.Release()
	defer catch.Release()

	promise.Call("then", then).Call("catch", catch)

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		return js.Undefined(), ctx.Err()
	}
}
