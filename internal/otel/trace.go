package otel

import (
	"os"
	"strconv"
	"sync/atomic"
)

var traceEnabled atomic.Bool

func init() {
	traceEnabled.Store(traceSetting(os.Getenv("MEETAPP_TRACE")))
}

// traceSetting reads MEETAPP_TRACE. Any non-empty value turns tracing on
// except one that parses as a false boolean.
func traceSetting(v string) bool {
	if v == "" {
		return false
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return true
}

// TraceEnabled reports whether per-message trace events are emitted.
func TraceEnabled() bool {
	return traceEnabled.Load()
}

func setTraceEnabled(v bool) {
	traceEnabled.Store(v)
}
