// Package browser binds the content session to a live page through
// syscall/js. Only the host-neutral helpers build outside js/wasm.
package browser
