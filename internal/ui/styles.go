package ui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary   = lipgloss.Color("62")  // purple
	colorSecondary = lipgloss.Color("241") // gray
	colorMuted     = lipgloss.Color("240")
	colorHighlight = lipgloss.Color("212") // pink
	colorSuccess   = lipgloss.Color("78")
	colorDanger    = lipgloss.Color("196")
)

// HeaderStyle is the date line at the top of the screen.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

var HeaderArrow = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// SelectedTitle and NormalTitle style the first line of a row.
var SelectedTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

var NormalTitle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Padding(0, 1)

// MetaLine styles the date, location and organizer lines.
var MetaLine = lipgloss.NewStyle().
	Foreground(colorSecondary).
	PaddingLeft(3)

// ActionSubscribe, ActionSubscribed and ActionUnavailable style the
// subscribe button per state.
var ActionSubscribe = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(colorHighlight).
	Padding(0, 1)

var ActionSubscribed = lipgloss.NewStyle().
	Foreground(colorSuccess).
	Bold(true).
	Padding(0, 1)

var ActionUnavailable = lipgloss.NewStyle().
	Foreground(colorMuted).
	Strikethrough(true).
	Padding(0, 1)

// FlashSuccess and FlashDanger render notices.
var FlashSuccess = lipgloss.NewStyle().
	Foreground(lipgloss.Color("0")).
	Background(colorSuccess).
	Bold(true).
	Padding(0, 1)

var FlashDanger = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(colorDanger).
	Bold(true).
	Padding(0, 1)

// Placeholder is the empty-list and end-of-list text.
var Placeholder = lipgloss.NewStyle().
	Foreground(colorMuted).
	Italic(true).
	Padding(1, 2)

var SpinnerStyle = lipgloss.NewStyle().
	Foreground(colorHighlight)

// StatusBar is the bottom line.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// DateBar is the typed date entry line.
var DateBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(colorMuted).
	Padding(0, 1)

// DebugPanel is the bordered overlay toggled with D.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorPrimary).
	Padding(1, 2)

var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)
