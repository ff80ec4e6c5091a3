// Package metrics defines the Prometheus instrumentation exposed on the
// web server's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal counts completed pipeline runs by outcome.
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "godigest_runs_total",
		Help: "Completed pipeline runs by outcome.",
	}, []string{"outcome"})

	// ArticlesFetched counts articles that survived the watermark filter.
	ArticlesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "godigest_articles_fetched_total",
		Help: "Articles fetched and kept across all runs.",
	})

	// FetchFailures counts per-source fetch failures.
	FetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "godigest_fetch_failures_total",
		Help: "Feed fetch failures by source.",
	}, []string{"source"})

	// EmailsSent counts recipients reached by delivered digests.
	EmailsSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "godigest_emails_sent_total",
		Help: "Digest recipients reached.",
	})

	// DigestsServed counts archive page views by status.
	DigestsServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "godigest_digests_served_total",
		Help: "Digest archive requests by status.",
	}, []string{"status"})
)
