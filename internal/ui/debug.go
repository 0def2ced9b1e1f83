package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/meetapp/internal/listsync"
	"github.com/abelbrown/meetapp/internal/otel"
)

// debugPanelChrome is the border plus vertical padding of DebugPanel.
const debugPanelChrome = 4

// debugOverlay renders sync state and the most recent events. It returns ""
// without a ring buffer.
func debugOverlay(ring *otel.RingBuffer, snap listsync.Snapshot, width, height int) string {
	if ring == nil {
		return ""
	}
	stats := ring.Stats()

	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Sync"))
	lines = append(lines, fmt.Sprintf("  Phase:      %s", snap.Phase))
	lines = append(lines, fmt.Sprintf("  Date:       %s", snap.Date.Format("2006-01-02")))
	lines = append(lines, fmt.Sprintf("  Page:       %d (sentinel %d)", snap.Page, snap.Sentinel))
	lines = append(lines, fmt.Sprintf("  Records:    %d, in flight seq %d", snap.Count, snap.InFlight))
	lines = append(lines, fmt.Sprintf("  Fetches:    %d started, %d complete, %d errors, %d stale",
		stats[otel.KindFetchStart], stats[otel.KindFetchComplete], stats[otel.KindFetchError], stats[otel.KindFetchStale]))
	lines = append(lines, fmt.Sprintf("  Subscribes: %d ok, %d errors",
		stats[otel.KindSubscribeOK], stats[otel.KindSubscribeError]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for _, e := range ring.Last(20) {
		line := fmt.Sprintf("  %6s  %-18s", formatAge(time.Since(e.Time)), string(e.Kind))
		if e.Seq != 0 {
			line += fmt.Sprintf("  seq:%d", e.Seq)
		}
		if e.Page != 0 {
			line += fmt.Sprintf("  p%d", e.Page)
		}
		if e.Msg != "" {
			line += "  " + truncate(e.Msg, 40)
		}
		if e.Err != "" {
			line += "  ERR:" + truncate(e.Err, 30)
		}
		lines = append(lines, line)
	}

	maxHeight := height - debugPanelChrome
	if maxHeight < 1 {
		maxHeight = 1
	}
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := 76
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}
	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge is a compact age; negative durations clamp to 0ms.
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}
