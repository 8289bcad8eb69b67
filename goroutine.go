package flowdi

import (
	"bytes"
	"runtime"
	"strconv"
)

var goroutinePrefix = []byte("goroutine ")

// goroutineID returns the id of the calling goroutine, read from the header
// of its stack trace ("goroutine 42 [running]:"). It is only consulted when a
// singleton is built or found under construction.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	field := bytes.TrimPrefix(buf[:n], goroutinePrefix)
	if i := bytes.IndexByte(field, ' '); i >= 0 {
		field = field[:i]
	}

	id, _ := strconv.ParseUint(string(field), 10, 64)
	return id
}
