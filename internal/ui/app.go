package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/meetapp/internal/dateformat"
	"github.com/abelbrown/meetapp/internal/listsync"
	"github.com/abelbrown/meetapp/internal/meetup"
	"github.com/abelbrown/meetapp/internal/otel"
)

const (
	defaultFlashTTL = 3 * time.Second
	dateLayout      = "2006-01-02"
	headerPattern   = "EEEE, dd MMMM yyyy"
)

// Config wires an App. LoadPage and Subscribe return commands that report
// back with PageLoaded and SubscribeDone.
type Config struct {
	LoadPage  func(ctx context.Context, req listsync.Request) tea.Cmd
	Subscribe func(ctx context.Context, id meetup.ID, user meetup.UserID) tea.Cmd
	// Applied is told about every page result and whether it was merged.
	Applied  func(res listsync.Result, accepted bool)
	Events   *otel.Logger
	Ring     *otel.RingBuffer
	Now      func() time.Time
	FlashTTL time.Duration
}

// fetchSlot holds the cancel func of the newest page request. It is shared
// by every copy of App.
type fetchSlot struct {
	cancel context.CancelFunc
}

func (s *fetchSlot) stop() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// App is the root Bubble Tea model. It owns no network code: every fetch
// goes out through Config and comes back as a message.
type App struct {
	cfg  Config
	ctrl *listsync.Controller
	slot *fetchSlot

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	dateIn  textinput.Model

	cursor      int
	width       int
	height      int
	ready       bool
	pickingDate bool
	showDebug   bool
	pending     map[meetup.ID]bool
	flash       *listsync.Notice
	flashSeq    int
}

// NewApp creates the list screen around ctrl. Nothing is fetched until Init.
func NewApp(ctrl *listsync.Controller, cfg Config) App {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.FlashTTL <= 0 {
		cfg.FlashTTL = defaultFlashTTL
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = len(dateLayout)

	return App{
		cfg:     cfg,
		ctrl:    ctrl,
		slot:    &fetchSlot{},
		keys:    defaultKeys(),
		help:    help.New(),
		spinner: sp,
		dateIn:  in,
		pending: make(map[meetup.ID]bool),
	}
}

// Init mounts the list and issues the first page request.
func (a App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.issue(a.ctrl.Start()))
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if otel.TraceEnabled() && a.cfg.Events != nil {
		a.cfg.Events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindMsgReceived, Comp: "ui", Msg: fmt.Sprintf("%T", msg)})
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		a.ready = true
		return a, a.maybeLoadMore()

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case PageLoaded:
		accepted := a.ctrl.Complete(msg.Result)
		if a.cfg.Applied != nil {
			a.cfg.Applied(msg.Result, accepted)
		}
		if !accepted {
			return a, nil
		}
		a.slot.stop()
		a.clampCursor()
		if msg.Result.Err != nil {
			// The next page waits for a key press.
			return a, nil
		}
		return a, a.maybeLoadMore()

	case SubscribeDone:
		delete(a.pending, msg.ID)
		return a, a.showFlash(a.ctrl.ApplySubscribe(msg.ID, msg.Err))

	case flashExpired:
		if msg.seq == a.flashSeq {
			a.flash = nil
		}
		return a, nil

	case tea.KeyMsg:
		if a.pickingDate {
			return a.handleDateKey(msg)
		}
		return a.handleKey(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.cfg.Events != nil {
		a.cfg.Events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindKeyPress, Comp: "ui", Msg: msg.String()})
	}
	n := len(a.ctrl.Records())

	switch {
	case key.Matches(msg, a.keys.Quit):
		a.slot.stop()
		return a, tea.Quit

	case key.Matches(msg, a.keys.Debug):
		a.showDebug = !a.showDebug

	case key.Matches(msg, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll

	case key.Matches(msg, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}

	case key.Matches(msg, a.keys.Down):
		if a.cursor < n-1 {
			a.cursor++
		}
		return a, a.maybeLoadMore()

	case key.Matches(msg, a.keys.Top):
		a.cursor = 0

	case key.Matches(msg, a.keys.Bottom):
		a.cursor = max(n-1, 0)
		return a, a.maybeLoadMore()

	case key.Matches(msg, a.keys.Refresh):
		a.cursor = 0
		a.emitReset(listsync.TriggerRefresh)
		return a, a.issue(a.ctrl.Refresh())

	case key.Matches(msg, a.keys.PrevDay):
		return a, a.changeDate(a.ctrl.Date().AddDate(0, 0, -1))

	case key.Matches(msg, a.keys.NextDay):
		return a, a.changeDate(a.ctrl.Date().AddDate(0, 0, 1))

	case key.Matches(msg, a.keys.Today):
		return a, a.changeDate(a.cfg.Now())

	case key.Matches(msg, a.keys.PickDate):
		a.pickingDate = true
		a.dateIn.SetValue("")
		a.dateIn.Placeholder = a.ctrl.Date().Format(dateLayout)
		return a, a.dateIn.Focus()

	case key.Matches(msg, a.keys.Subscribe):
		return a, a.subscribe()
	}
	return a, nil
}

// handleDateKey edits the typed date. Enter applies it, Esc leaves the date
// unchanged.
func (a App) handleDateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		a.slot.stop()
		return a, tea.Quit

	case tea.KeyEsc:
		a.pickingDate = false
		a.dateIn.Blur()
		return a, nil

	case tea.KeyEnter:
		d, err := time.ParseInLocation(dateLayout, strings.TrimSpace(a.dateIn.Value()), time.Local)
		if err != nil {
			return a, a.showFlash(listsync.Notice{Kind: listsync.NoticeDanger, Message: "Dates look like 2026-10-16."})
		}
		a.pickingDate = false
		a.dateIn.Blur()
		return a, a.changeDate(d)
	}

	var cmd tea.Cmd
	a.dateIn, cmd = a.dateIn.Update(msg)
	return a, cmd
}

// issue sends req if ok, cancelling the request it supersedes.
func (a *App) issue(req listsync.Request, ok bool) tea.Cmd {
	if !ok || a.cfg.LoadPage == nil {
		return nil
	}
	a.slot.stop()
	ctx, cancel := context.WithCancel(context.Background())
	a.slot.cancel = cancel
	return a.cfg.LoadPage(ctx, req)
}

func (a *App) changeDate(d time.Time) tea.Cmd {
	a.cursor = 0
	req, ok := a.ctrl.ChangeFilter(d)
	a.emitReset(listsync.TriggerFilter)
	return a.issue(req, ok)
}

func (a *App) emitReset(trigger listsync.Trigger) {
	if a.cfg.Events == nil {
		return
	}
	a.cfg.Events.Emit(otel.Event{
		Level:   otel.LevelInfo,
		Kind:    otel.KindSyncReset,
		Comp:    "ui",
		Trigger: trigger.String(),
		Date:    a.ctrl.Date().Format(dateLayout),
	})
}

// maybeLoadMore asks for the next page once the cursor is within half a
// screen of the end. The controller decides whether that is allowed.
func (a *App) maybeLoadMore() tea.Cmd {
	if !a.ready {
		return nil
	}
	if !nearEnd(a.cursor, len(a.ctrl.Records()), visibleRows(a.listHeight())) {
		return nil
	}
	return a.issue(a.ctrl.LoadMore())
}

func (a *App) subscribe() tea.Cmd {
	records := a.ctrl.Records()
	if a.cfg.Subscribe == nil || a.cursor >= len(records) {
		return nil
	}
	m := records[a.cursor]
	if !m.CanSubscribe() || a.pending[m.ID] {
		return nil
	}
	a.pending[m.ID] = true
	return a.cfg.Subscribe(context.Background(), m.ID, a.ctrl.User())
}

func (a *App) showFlash(n listsync.Notice) tea.Cmd {
	a.flashSeq++
	a.flash = &n
	seq := a.flashSeq
	return tea.Tick(a.cfg.FlashTTL, func(time.Time) tea.Msg {
		return flashExpired{seq: seq}
	})
}

func (a *App) clampCursor() {
	n := len(a.ctrl.Records())
	if a.cursor >= n {
		a.cursor = max(n-1, 0)
	}
}

// listHeight is the number of lines left for rows after the header, the
// optional date and flash bars, the footer, status and help lines.
func (a App) listHeight() int {
	h := a.height - 4
	if a.pickingDate {
		h--
	}
	if a.flash != nil {
		h--
	}
	return h
}

func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}
	if a.showDebug {
		return debugOverlay(a.cfg.Ring, a.ctrl.Snapshot(), a.width, a.height-2) + "\n" + a.statusBar()
	}

	var b strings.Builder
	b.WriteString(a.header())
	b.WriteString("\n")
	if a.pickingDate {
		b.WriteString(DateBar.Width(a.width).Render("Go to date: " + a.dateIn.View()))
		b.WriteString("\n")
	}
	b.WriteString(a.body())
	if a.flash != nil {
		style := FlashSuccess
		if a.flash.Kind == listsync.NoticeDanger {
			style = FlashDanger
		}
		b.WriteString(style.Width(a.width).Render(a.flash.Message))
		b.WriteString("\n")
	}
	b.WriteString(a.statusBar())
	return b.String()
}

func (a App) header() string {
	day := dateformat.Format(a.ctrl.Date(), headerPattern, a.ctrl.Options().Display.Locale)
	return HeaderArrow.Render("‹ ") + HeaderStyle.Render(day) + HeaderArrow.Render(" ›")
}

func (a App) body() string {
	records := a.ctrl.Records()
	switch {
	case a.ctrl.Loading():
		return Placeholder.Render(a.spinner.View()+" Loading meetups...") + "\n"
	case a.ctrl.Refreshing() && len(records) == 0:
		return Placeholder.Render(a.spinner.View()+" Refreshing...") + "\n"
	case len(records) == 0:
		return Placeholder.Render("No meetups on this day.") + "\n"
	}

	out := RenderList(records, a.cursor, visibleRows(a.listHeight()), a.width, a.pending)
	switch a.ctrl.Phase() {
	case listsync.LoadingMore:
		out += "  " + a.spinner.View() + " Loading more...\n"
	case listsync.Exhausted:
		out += StatusBarText.Render("  No more meetups.") + "\n"
	}
	return out
}

func (a App) statusBar() string {
	snap := a.ctrl.Snapshot()
	left := StatusBarKey.Render(fmt.Sprintf("%d", snap.Count)) + StatusBarText.Render(" meetups") +
		StatusBarText.Render(fmt.Sprintf("  page %d  %s", snap.Page, snap.Phase))
	if a.showDebug {
		left += "  [DEBUG] " + StatusBarKey.Render("D") + StatusBarText.Render(":close")
	}
	return StatusBar.Width(a.width).Render(left) + "\n" + a.help.View(a.keys)
}

// Cursor returns the selected row (for testing).
func (a App) Cursor() int { return a.cursor }

// Controller returns the sync controller (for testing).
func (a App) Controller() *listsync.Controller { return a.ctrl }

// Flash returns the visible notice, if any.
func (a App) Flash() (listsync.Notice, bool) {
	if a.flash == nil {
		return listsync.Notice{}, false
	}
	return *a.flash, true
}

func (a App) Pending(id meetup.ID) bool { return a.pending[id] }
func (a App) PickingDate() bool { return a.pickingDate }
func (a App) DebugVisible() bool { return a.showDebug }
