package container

import (
	"runtime"
	"strconv"
	"strings"
)

// goid returns the current goroutine ID.
// Container.Resolve uses it to join the resolution already running on the
// calling goroutine, so factories that capture the container stay under the
// cycle guard.
func goid() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	idField := strings.Fields(strings.TrimPrefix(string(buf[:n]), "goroutine "))[0]
	id, _ := strconv.ParseInt(idField, 10, 64)
	return id
}
