package commands

import (
	"fmt"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/abelbrown/meetapp/internal/config"
	"github.com/abelbrown/meetapp/internal/coord"
	"github.com/abelbrown/meetapp/internal/dateformat"
	"github.com/abelbrown/meetapp/internal/fetch"
	"github.com/abelbrown/meetapp/internal/listsync"
	"github.com/abelbrown/meetapp/internal/logging"
	"github.com/abelbrown/meetapp/internal/meetup"
	"github.com/abelbrown/meetapp/internal/metrics"
	"github.com/abelbrown/meetapp/internal/otel"
	"github.com/abelbrown/meetapp/internal/store"
)

// session is everything a command needs to talk to the API: the transport,
// the page cache, the event log and metrics, wired through a Coordinator.
type session struct {
	cfg      *config.Config
	cache    *store.Store
	events   *otel.Logger
	ring     *otel.RingBuffer
	registry *prometheus.Registry
	coord    *coord.Coordinator
}

func openSession(cfg *config.Config) (*session, error) {
	if err := logging.Init(cfg.DataDir, cfg.Debug); err != nil {
		return nil, err
	}

	events, err := otel.OpenFile(cfg.DataDir)
	if err != nil {
		logging.Close()
		return nil, err
	}
	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	events.SetRingBuffer(ring)

	cache, err := store.Open(filepath.Join(cfg.DataDir, "cache.db"))
	if err != nil {
		events.Close()
		logging.Close()
		return nil, fmt.Errorf("open cache: %w", err)
	}

	rt := &session{
		cfg:      cfg,
		cache:    cache,
		events:   events,
		ring:     ring,
		registry: prometheus.NewRegistry(),
	}

	cc := coord.Config{
		Events:  events,
		Metrics: metrics.NewCollector(rt.registry),
		Timeout: cfg.Timeout,
	}
	if cfg.Offline {
		cc.Transport = store.NewOffline(cache)
	} else {
		client, err := fetch.NewClient(fetch.Options{
			BaseURL:   cfg.APIURL,
			Token:     cfg.Token,
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
		})
		if err != nil {
			rt.Close()
			return nil, err
		}
		cc.Transport = client
		cc.Cache = cache
	}
	rt.coord = coord.New(cc)

	events.Info(otel.KindStartup, "main", fmt.Sprintf("api=%s offline=%v user=%d", cfg.APIURL, cfg.Offline, cfg.UserID))
	logging.Info("meetapp starting", "api", cfg.APIURL, "offline", cfg.Offline, "session", events.SessionID())
	return rt, nil
}

func (rt *session) user() meetup.UserID {
	return meetup.UserID(rt.cfg.UserID)
}

// listOptions builds controller options from the config.
func (rt *session) listOptions() listsync.Options {
	return listsync.Options{
		PageSize:   rt.cfg.PageSize,
		MinRecords: rt.cfg.MinRecords,
		Display: meetup.DisplayOptions{
			Pattern: rt.cfg.DatePattern,
			Locale:  rt.cfg.Locale,
			Format:  dateformat.Local,
		},
	}
}

func (rt *session) Close() {
	rt.events.Info(otel.KindShutdown, "main", "")
	if err := rt.events.Close(); err != nil {
		logging.Warn("close event log", "err", err)
	}
	if err := rt.cache.Close(); err != nil {
		logging.Warn("close cache", "err", err)
	}
	logging.Close()
}
