// Package coord runs the network side of the list screen: page fetches and
// subscribe calls, with the page cache, event log and metrics around them.
package coord

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/meetapp/internal/listsync"
	"github.com/abelbrown/meetapp/internal/logging"
	"github.com/abelbrown/meetapp/internal/meetup"
	"github.com/abelbrown/meetapp/internal/metrics"
	"github.com/abelbrown/meetapp/internal/otel"
	"github.com/abelbrown/meetapp/internal/store"
	"github.com/abelbrown/meetapp/internal/ui"
)

// defaultTimeout bounds one page or subscribe call.
const defaultTimeout = 30 * time.Second

// Config wires a Coordinator. Only Transport is required.
type Config struct {
	Transport listsync.Transport
	// Cache receives every successfully fetched page. Leave nil when the
	// transport already is the cache.
	Cache   *store.Store
	Events  *otel.Logger
	Metrics metrics.Recorder
	Timeout time.Duration
}

// Coordinator is safe for concurrent use; it holds no list state.
type Coordinator struct {
	transport listsync.Transport
	cache     *store.Store
	events    *otel.Logger
	metrics   metrics.Recorder
	timeout   time.Duration
}

func New(cfg Config) *Coordinator {
	c := &Coordinator{
		transport: cfg.Transport,
		cache:     cfg.Cache,
		events:    cfg.Events,
		metrics:   cfg.Metrics,
		timeout:   cfg.Timeout,
	}
	if c.events == nil {
		c.events = otel.NewNullLogger()
	}
	if c.metrics == nil {
		c.metrics = metrics.Nop{}
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	return c
}

// Fetch runs req against the transport and returns the result to feed into
// Controller.Complete.
func (c *Coordinator) Fetch(ctx context.Context, req listsync.Request) listsync.Result {
	trigger := req.Trigger.String()
	day := req.Query.Date.Format("2006-01-02")
	c.metrics.FetchIssued(trigger)
	c.events.Emit(otel.Event{
		Level:   otel.LevelInfo,
		Kind:    otel.KindFetchStart,
		Comp:    "coord",
		Seq:     req.Seq,
		Trigger: trigger,
		Page:    req.Query.Page,
		Date:    day,
	})

	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	records, err := c.transport.ListMeetups(fetchCtx, req.Query)
	dur := time.Since(start)
	c.metrics.FetchLatency(dur)

	if err != nil {
		c.metrics.FetchFailed(trigger)
		c.events.Emit(otel.Event{
			Level:   otel.LevelError,
			Kind:    otel.KindFetchError,
			Comp:    "coord",
			Seq:     req.Seq,
			Trigger: trigger,
			Page:    req.Query.Page,
			Date:    day,
			Dur:     dur,
			Err:     err.Error(),
		})
		logging.Warn("page fetch failed", "seq", req.Seq, "page", req.Query.Page, "trigger", trigger, "err", err)
		return listsync.Result{Seq: req.Seq, Err: err}
	}

	c.events.Emit(otel.Event{
		Level:   otel.LevelInfo,
		Kind:    otel.KindFetchComplete,
		Comp:    "coord",
		Seq:     req.Seq,
		Trigger: trigger,
		Page:    req.Query.Page,
		Date:    day,
		Count:   len(records),
		Dur:     dur,
	})
	c.writeThrough(req.Query, records)
	return listsync.Result{Seq: req.Seq, Records: records}
}

func (c *Coordinator) writeThrough(q listsync.Query, records []meetup.Meetup) {
	if c.cache == nil {
		return
	}
	err := c.cache.SavePage(q.Date, q.Page, records)
	c.metrics.CacheWrite(err)
	if err != nil {
		c.events.Error(otel.KindCacheError, "coord", err)
		logging.Warn("cache write failed", "page", q.Page, "err", err)
	}
}

// Applied records what the controller did with a result. accepted is the
// return value of Controller.Complete.
func (c *Coordinator) Applied(res listsync.Result, accepted bool) {
	if !accepted {
		c.metrics.FetchStale()
		c.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindFetchStale, Comp: "coord", Seq: res.Seq})
		return
	}
	if res.Err == nil {
		c.metrics.RecordsAppended(len(res.Records))
	}
}

// Subscribe registers user for meetup id. A success is mirrored into the
// cache so offline browsing shows it.
func (c *Coordinator) Subscribe(ctx context.Context, id meetup.ID, user meetup.UserID) error {
	subCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.transport.Subscribe(subCtx, id)
	c.metrics.SubscribeResult(err == nil)
	if err != nil {
		c.events.Emit(otel.Event{Level: otel.LevelWarn, Kind: otel.KindSubscribeError, Comp: "coord", MeetupID: int(id), Err: err.Error()})
		logging.Info("subscribe failed", "meetup", id, "err", err)
		return err
	}

	c.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSubscribeOK, Comp: "coord", MeetupID: int(id)})
	if c.cache != nil {
		if err := c.cache.MarkSubscribed(id, user); err != nil {
			c.events.Error(otel.KindCacheError, "coord", err)
		}
	}
	return nil
}

// LoadPageCmd wraps Fetch for the TUI.
func (c *Coordinator) LoadPageCmd(ctx context.Context, req listsync.Request) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		res := c.Fetch(ctx, req)
		return ui.PageLoaded{Result: res, Dur: time.Since(start)}
	}
}

// SubscribeCmd wraps Subscribe for the TUI.
func (c *Coordinator) SubscribeCmd(ctx context.Context, id meetup.ID, user meetup.UserID) tea.Cmd {
	return func() tea.Msg {
		return ui.SubscribeDone{ID: id, Err: c.Subscribe(ctx, id, user)}
	}
}
