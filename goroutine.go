package snippet

import (
	"runtime"
	"strconv"
)

var goroutinePrefix = []byte("goroutine ")

// goroutineID returns the id of the calling goroutine.
// The runtime does not export it, so it is read from the header of the
// goroutine's own stack trace: "goroutine 18 [running]:".
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	if len(b) < len(goroutinePrefix) {
		return -1
	}
	b = b[len(goroutinePrefix):]
	end := 0
	for end < len(b) && b[end] >= '0' && b[end] <= '9' {
		end++
	}
	id, err := strconv.ParseInt(string(b[:end]), 10, 64)
	if err != nil {
		return -1
	}
	return id
}

// goroutineName renders an id the way records and log lines show it.
func goroutineName(id int64) string {
	return "goroutine " + strconv.FormatInt(id, 10)
}
