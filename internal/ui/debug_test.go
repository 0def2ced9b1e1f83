package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/meetapp/internal/listsync"
	"github.com/abelbrown/meetapp/internal/otel"
)

func TestDebugOverlayNilRing(t *testing.T) {
	if got := debugOverlay(nil, listsync.Snapshot{}, 80, 24); got != "" {
		t.Errorf("debugOverlay(nil) should return empty string, got %q", got)
	}
}

func TestDebugOverlayRendersStats(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	now := time.Now()
	ring.Push(otel.Event{Kind: otel.KindFetchStart, Time: now})
	ring.Push(otel.Event{Kind: otel.KindFetchStart, Time: now})
	ring.Push(otel.Event{Kind: otel.KindFetchComplete, Time: now})
	ring.Push(otel.Event{Kind: otel.KindFetchStale, Time: now})
	ring.Push(otel.Event{Kind: otel.KindSubscribeOK, Time: now})

	snap := listsync.Snapshot{
		Phase:    listsync.LoadingMore,
		Date:     time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
		Page:     3,
		Sentinel: 3,
		Count:    20,
		InFlight: 7,
	}
	result := debugOverlay(ring, snap, 80, 40)

	for _, want := range []string{
		"loading-more",
		"2026-10-16",
		"3 (sentinel 3)",
		"20, in flight seq 7",
		"2 started, 1 complete, 0 errors, 1 stale",
		"1 ok, 0 errors",
		"5 / 64 events",
	} {
		if !strings.Contains(result, want) {
			t.Errorf("overlay missing %q:\n%s", want, result)
		}
	}
}

func TestDebugOverlayRecentEvents(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	ring.Push(otel.Event{Kind: otel.KindFetchStart, Time: time.Now(), Seq: 4, Page: 2})
	ring.Push(otel.Event{Kind: otel.KindFetchError, Time: time.Now(), Err: "timeout"})
	ring.Push(otel.Event{Kind: otel.KindStartup, Time: time.Now(), Msg: "hello"})

	result := debugOverlay(ring, listsync.Snapshot{}, 80, 40)
	for _, want := range []string{"Recent Events", "seq:4", "p2", "ERR:timeout", "hello"} {
		if !strings.Contains(result, want) {
			t.Errorf("overlay missing %q:\n%s", want, result)
		}
	}
}

func TestDebugOverlayTruncation(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	for i := 0; i < 30; i++ {
		ring.Push(otel.Event{Kind: otel.KindFetchStart, Time: time.Now()})
	}
	result := debugOverlay(ring, listsync.Snapshot{}, 80, 10)
	if result == "" {
		t.Fatal("overlay should still render with small height")
	}
	// 6 content lines plus border and padding.
	if lines := strings.Count(result, "\n") + 1; lines > 10 {
		t.Errorf("overlay has %d lines, want at most 10", lines)
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{-time.Second, "0ms"},
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{3 * time.Minute, "3m"},
	}
	for _, tt := range tests {
		if got := formatAge(tt.d); got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
