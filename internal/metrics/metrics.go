// Package metrics holds Prometheus instruments that are used across the
// backend.  All collectors are registered with the global registry, so
// importing this package in main.go is enough to expose them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_cache_hits_total",
			Help: "Listing cache hits by tier (memory or remote).",
		}, []string{"tier"})

	CacheMissesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "listing_cache_misses_total",
			Help: "Listing cache misses across both tiers.",
		})

	CacheEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "listing_cache_entries",
			Help: "Entries currently held in the in-process cache tier.",
		})

	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "contact_rate_limited_total",
			Help: "Contact requests denied by the fixed-window rate limiter.",
		})

	RateLimitClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limit_clients",
			Help: "Distinct client identifiers tracked by the rate limiter.",
		})

	MailSentTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mail_sent_total",
			Help: "Outbound mails accepted by the provider, by kind.",
		}, []string{"kind"})

	MailErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mail_errors_total",
			Help: "Outbound mail failures, by kind.",
		}, []string{"kind"})

	BroadcastBatchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "broadcast_batches_total",
			Help: "Subscriber broadcast batches dispatched on program creation.",
		})
)

func init() {
	prometheus.MustRegister(
		CacheHitsTotal,
		CacheMissesTotal,
		CacheEntries,
		RateLimitedTotal,
		RateLimitClients,
		MailSentTotal,
		MailErrorsTotal,
		BroadcastBatchesTotal,
	)
}
