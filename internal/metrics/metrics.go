// Package metrics counts what the list synchronizer does and exposes the
// counters for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the coordinator reports into.
type Recorder interface {
	FetchIssued(trigger string)
	FetchFailed(trigger string)
	FetchStale()
	FetchLatency(d time.Duration)
	RecordsAppended(n int)
	SubscribeResult(ok bool)
	CacheWrite(err error)
}

// Nop discards everything.
type Nop struct{}

func (Nop) FetchIssued(string) {}
func (Nop) FetchFailed(string) {}
func (Nop) FetchStale() {}
func (Nop) FetchLatency(time.Duration) {}
func (Nop) RecordsAppended(int) {}
func (Nop) SubscribeResult(bool) {}
func (Nop) CacheWrite(error) {}

// Collector is the Prometheus Recorder.
type Collector struct {
	fetches     *prometheus.CounterVec
	failures    *prometheus.CounterVec
	stale       prometheus.Counter
	latency     prometheus.Histogram
	appended    prometheus.Counter
	subscribes  *prometheus.CounterVec
	cacheWrites *prometheus.CounterVec
}

// NewCollector registers the meetapp metrics on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meetapp_page_fetches_total",
			Help: "Page fetches issued, by trigger.",
		}, []string{"trigger"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meetapp_page_fetch_failures_total",
			Help: "Page fetches that failed, by trigger.",
		}, []string{"trigger"}),
		stale: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meetapp_page_fetch_stale_total",
			Help: "Page results dropped because a newer request superseded them.",
		}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "meetapp_page_fetch_latency_seconds",
			Help:    "Page fetch latency.",
			Buckets: prometheus.DefBuckets,
		}),
		appended: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "meetapp_records_appended_total",
			Help: "Meetups appended to the list.",
		}),
		subscribes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meetapp_subscribes_total",
			Help: "Subscribe attempts, by outcome.",
		}, []string{"outcome"}),
		cacheWrites: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "meetapp_cache_writes_total",
			Help: "Page cache writes, by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		c.fetches,
		c.failures,
		c.stale,
		c.latency,
		c.appended,
		c.subscribes,
		c.cacheWrites,
	)
	return c
}

var _ Recorder = (*Collector)(nil)

func (c *Collector) FetchIssued(trigger string) {
	c.fetches.WithLabelValues(trigger).Inc()
}

func (c *Collector) FetchFailed(trigger string) {
	c.failures.WithLabelValues(trigger).Inc()
}

func (c *Collector) FetchStale() {
	c.stale.Inc()
}

func (c *Collector) FetchLatency(d time.Duration) {
	c.latency.Observe(d.Seconds())
}

func (c *Collector) RecordsAppended(n int) {
	c.appended.Add(float64(n))
}

func (c *Collector) SubscribeResult(ok bool) {
	c.subscribes.WithLabelValues(outcome(ok)).Inc()
}

func (c *Collector) CacheWrite(err error) {
	c.cacheWrites.WithLabelValues(outcome(err == nil)).Inc()
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

// Handler serves /metrics for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return mux
}
