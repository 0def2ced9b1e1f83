package ui

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/meetapp/internal/meetup"
)

// rowHeight is the number of terminal lines one meetup takes.
const rowHeight = 3

// visibleRows is how many meetups fit in listHeight lines, at least one.
func visibleRows(listHeight int) int {
	if n := listHeight / rowHeight; n > 0 {
		return n
	}
	return 1
}

// scrollOffset keeps cursor inside a window of visible rows.
func scrollOffset(cursor, visible, total int) int {
	if total <= visible || cursor < visible {
		return 0
	}
	off := cursor - visible + 1
	if off > total-visible {
		off = total - visible
	}
	return off
}

// nearEnd reports whether cursor is within half a screen of the last row.
func nearEnd(cursor, total, visible int) bool {
	if total == 0 {
		return true
	}
	threshold := visible / 2
	if threshold < 1 {
		threshold = 1
	}
	return total-1-cursor < threshold
}

// RenderList renders records[offset:] until visible rows are drawn.
func RenderList(records []meetup.Meetup, cursor, visible, width int, pending map[meetup.ID]bool) string {
	off := scrollOffset(cursor, visible, len(records))
	var b strings.Builder
	for i := off; i < len(records) && i < off+visible; i++ {
		b.WriteString(renderRow(records[i], i == cursor, pending[records[i].ID], width))
		b.WriteString("\n")
	}
	return b.String()
}

func renderRow(m meetup.Meetup, selected, pending bool, width int) string {
	button := actionButton(m, pending)
	titleWidth := width - lipgloss.Width(button) - 4
	if titleWidth < 10 {
		titleWidth = 10
	}

	style := NormalTitle
	if selected {
		style = SelectedTitle
	}
	title := style.Render(truncate(m.Title, titleWidth))
	gap := width - lipgloss.Width(title) - lipgloss.Width(button)
	if gap < 1 {
		gap = 1
	}

	when := m.FormattedDate
	if m.Location != "" {
		when += " · " + m.Location
	}
	organizer := "Organizer: " + m.Organizer.Name

	return title + strings.Repeat(" ", gap) + button + "\n" +
		MetaLine.Render(truncate(when, width-4)) + "\n" +
		MetaLine.Render(truncate(organizer, width-4))
}

func actionButton(m meetup.Meetup, pending bool) string {
	if pending {
		return ActionSubscribe.Faint(true).Render("Subscribing…")
	}
	label := m.Action().String()
	switch m.Action() {
	case meetup.ActionSubscribed:
		return ActionSubscribed.Render(label)
	case meetup.ActionUnavailable:
		return ActionUnavailable.Render(label)
	default:
		return ActionSubscribe.Render(label)
	}
}

// truncate cuts s to max runes, ending in an ellipsis when cut.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}
