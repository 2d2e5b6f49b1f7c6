// Package goid reports the id of the calling goroutine.
//
// The runtime does not expose goroutine identity. Schedulers need it in a few
// places only: keeping one trampoline queue per goroutine, noticing that a
// worker is shutting itself down, and looping recurring work that a
// synchronous scheduler ran inline.
package goid

import (
	"bytes"
	"runtime"
	"strconv"
)

var prefix = []byte("goroutine ")

// Get returns the current goroutine id, or 0 if it cannot be determined.
func Get() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := bytes.TrimPrefix(buf[:n], prefix)
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	id, err := strconv.ParseUint(string(b), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
