package listsync

import (
	"errors"
	"time"

	"github.com/abelbrown/meetapp/internal/dateformat"
	"github.com/abelbrown/meetapp/internal/meetup"
)

const (
	// DefaultPageSize is the number of meetups requested per page.
	DefaultPageSize = 10
	// DefaultMinRecords is how many records must be shown before LoadMore
	// paginates, so that an end-reached event on a short first render does
	// not skip ahead.
	DefaultMinRecords = 5
)

// Options configures a Controller.
type Options struct {
	PageSize   int
	MinRecords int
	Display    meetup.DisplayOptions
}

// DefaultOptions returns the stock page size, threshold and date display.
func DefaultOptions() Options {
	return Options{
		PageSize:   DefaultPageSize,
		MinRecords: DefaultMinRecords,
		Display: meetup.DisplayOptions{
			Pattern: dateformat.DefaultPattern,
			Locale:  dateformat.DefaultLocale,
			Format:  dateformat.Local,
		},
	}
}

// deps is the group of values a fetch depends on. A fetch is issued when the
// group changes, once per entry point call.
type deps struct {
	page      int
	alternate bool
	resets    uint64
	date      time.Time
	user      meetup.UserID
}

func (d deps) equal(o deps) bool {
	return d.page == o.page &&
		d.alternate == o.alternate &&
		d.resets == o.resets &&
		d.date.Equal(o.date) &&
		d.user == o.user
}

// Controller owns the sync state of one list screen.
type Controller struct {
	opts Options

	date    time.Time
	user    meetup.UserID
	cursor  Cursor
	records []meetup.Meetup
	phase   Phase

	// resets is bumped by every refresh, filter or user change so that each
	// of them re-triggers a fetch even when page, date and user look the same.
	resets uint64

	issued   *deps
	seq      uint64
	inflight uint64
	lastErr  error
}

// New creates a controller for date and user. Nothing is fetched until Start.
func New(opts Options, date time.Time, user meetup.UserID) *Controller {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.MinRecords < 0 {
		opts.MinRecords = 0
	}
	return &Controller{
		opts:   opts,
		date:   date,
		user:   user,
		cursor: FirstPage(),
		phase:  LoadingFirstPage,
	}
}

// Start evaluates the dependencies for the first time (mount).
func (c *Controller) Start() (Request, bool) {
	return c.sync(TriggerMount)
}

// Refresh reloads the list from the first page.
func (c *Controller) Refresh() (Request, bool) {
	c.phase = Refreshing
	c.records = nil
	c.cursor = c.cursor.Toggle()
	c.resets++
	return c.sync(TriggerRefresh)
}

// LoadMore requests the next page. It is a no-op while any fetch is in flight,
// once the list is exhausted, and until MinRecords records are shown.
func (c *Controller) LoadMore() (Request, bool) {
	if c.phase != Idle || len(c.records) < c.opts.MinRecords {
		return Request{}, false
	}
	c.phase = LoadingMore
	c.cursor = c.cursor.Next()
	return c.sync(TriggerMore)
}

// ChangeFilter replaces the date filter and restarts from the first page.
func (c *Controller) ChangeFilter(date time.Time) (Request, bool) {
	c.date = date
	c.reset()
	return c.sync(TriggerFilter)
}

// SetUser switches the current user. Derived subscribed flags depend on the
// user, so a different user restarts the list like a filter change.
func (c *Controller) SetUser(user meetup.UserID) (Request, bool) {
	if user == c.user {
		return Request{}, false
	}
	c.user = user
	c.reset()
	return c.sync(TriggerUser)
}

func (c *Controller) reset() {
	c.phase = LoadingFirstPage
	c.records = nil
	c.cursor = FirstPage()
	c.resets++
}

// sync issues a request when the dependency group changed since the last one.
func (c *Controller) sync(trigger Trigger) (Request, bool) {
	d := deps{
		page:      c.cursor.Page(),
		alternate: c.cursor.alternate,
		resets:    c.resets,
		date:      c.date,
		user:      c.user,
	}
	if c.issued != nil && c.issued.equal(d) {
		if c.inflight == 0 && c.phase.InFlight() {
			c.phase = Idle
		}
		return Request{}, false
	}
	c.issued = &d

	// An exhausted list only fetches again through a refresh. Reaching
	// here still leaves no spinner behind.
	if c.phase == Exhausted {
		c.inflight = 0
		return Request{}, false
	}

	c.seq++
	c.inflight = c.seq
	return Request{
		Seq: c.seq,
		Query: Query{
			Date:     c.date,
			Page:     c.cursor.Page(),
			PageSize: c.opts.PageSize,
		},
		User:    c.user,
		Trigger: trigger,
	}, true
}

// Complete merges the result of the in-flight request. Results of superseded
// requests are dropped and Complete returns false.
//
// A failed fetch adds nothing and shows nothing; the error is kept for
// LastErr. Either way the phase leaves its in-flight state.
func (c *Controller) Complete(res Result) bool {
	if res.Seq == 0 || res.Seq != c.inflight {
		return false
	}
	c.inflight = 0

	if res.Err != nil {
		c.lastErr = res.Err
		c.phase = Idle
		return true
	}
	c.lastErr = nil

	page := meetup.DeriveAll(res.Records, c.user, c.opts.Display)
	merged := make([]meetup.Meetup, 0, len(c.records)+len(page))
	merged = append(merged, c.records...)
	c.records = append(merged, page...)
	c.phase = settle(len(res.Records) == 0)
	return true
}

// ApplySubscribe reconciles the outcome of a subscribe call for id and
// returns the notice to show. Only success changes state: the matching
// record is replaced by a copy with Subscribed set.
func (c *Controller) ApplySubscribe(id meetup.ID, err error) Notice {
	if err != nil {
		var se ServerError
		if errors.As(err, &se) && se.ServerMessage() != "" {
			return Notice{Kind: NoticeDanger, Message: se.ServerMessage()}
		}
		return Notice{Kind: NoticeDanger, Message: msgConnectionError}
	}

	for i := range c.records {
		if c.records[i].ID != id {
			continue
		}
		out := make([]meetup.Meetup, len(c.records))
		copy(out, c.records)
		out[i].Subscribed = true
		c.records = out
		break
	}
	return Notice{Kind: NoticeSuccess, Message: msgSubscribed}
}

// Record looks up a shown record by id.
func (c *Controller) Record(id meetup.ID) (meetup.Meetup, bool) {
	for _, m := range c.records {
		if m.ID == id {
			return m, true
		}
	}
	return meetup.Meetup{}, false
}

// Records returns the shown records. Callers must not modify the slice.
func (c *Controller) Records() []meetup.Meetup { return c.records }

func (c *Controller) Phase() Phase { return c.phase }
func (c *Controller) Cursor() Cursor { return c.cursor }
func (c *Controller) Date() time.Time { return c.date }
func (c *Controller) User() meetup.UserID { return c.user }
func (c *Controller) Options() Options { return c.opts }
func (c *Controller) InFlight() uint64 { return c.inflight }
func (c *Controller) LastErr() error { return c.lastErr }
func (c *Controller) Loading() bool { return c.phase == LoadingFirstPage }
func (c *Controller) Refreshing() bool { return c.phase == Refreshing }
func (c *Controller) EndOfList() bool { return c.phase == Exhausted }

// Fetching reports a non-refresh page fetch in flight. It doubles as the
// LoadMore re-entrancy guard.
func (c *Controller) Fetching() bool {
	return c.phase == LoadingFirstPage || c.phase == LoadingMore
}

// Snapshot is a read-only view of the controller for rendering and logs.
type Snapshot struct {
	Phase    Phase
	Date     time.Time
	User     meetup.UserID
	Page     int
	Sentinel int
	Count    int
	InFlight uint64
}

// Snapshot returns the current view.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Phase:    c.phase,
		Date:     c.date,
		User:     c.user,
		Page:     c.cursor.Page(),
		Sentinel: c.cursor.Sentinel(),
		Count:    len(c.records),
		InFlight: c.inflight,
	}
}
