// Package otel records what the list screen does as JSONL events.
//
// Events go to an append-only file through a background writer and, when a
// RingBuffer is attached, into memory for the debug overlay.
package otel

import (
	"encoding/json"
	"time"
)

// Level is an event severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind names an event as "<subsystem>.<action>".
type EventKind string

const (
	KindFetchStart    EventKind = "fetch.start"
	KindFetchComplete EventKind = "fetch.complete"
	KindFetchError    EventKind = "fetch.error"
	KindFetchStale    EventKind = "fetch.stale"

	KindSubscribeOK    EventKind = "subscribe.ok"
	KindSubscribeError EventKind = "subscribe.error"

	KindSyncReset  EventKind = "sync.reset"
	KindCacheMiss  EventKind = "cache.miss"
	KindCacheError EventKind = "cache.error"

	KindKeyPress EventKind = "ui.key"

	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"

	// Only emitted when MEETAPP_TRACE is set.
	KindMsgReceived EventKind = "trace.msg_received"
)

// Event is one JSONL line. Kind and Time are always set; the rest is
// whatever applies to the kind.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`
	SessionID string         `json:"session_id,omitempty"`
	Seq       uint64         `json:"seq,omitempty"`
	Trigger   string         `json:"trigger,omitempty"`
	Page      int            `json:"page,omitempty"`
	Date      string         `json:"date,omitempty"`
	MeetupID  int            `json:"meetup_id,omitempty"`
	Count     int            `json:"count,omitempty"`
	Dur       time.Duration  `json:"-"`
	DurMs     float64        `json:"dur_ms,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON writes Dur as dur_ms.
func (e Event) MarshalJSON() ([]byte, error) {
	type alias Event
	a := alias(e)
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
