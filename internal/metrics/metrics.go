// Package metrics provides Prometheus instrumentation for the moderation
// engine. It exposes counters for message throughput and verdicts,
// histograms for evaluation latency, and gauges for the dispatch queue and
// spam tracker state.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// MessagesTotal counts evaluated messages, labeled by outcome:
	// "matched", "clean", or "unconfigured".
	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "warden_messages_total",
		Help: "Total number of messages evaluated",
	}, []string{"outcome"})

	// VerdictsTotal counts filter matches by guild, filter name, and rule kind.
	VerdictsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "warden_verdicts_total",
		Help: "Total number of filter matches",
	}, []string{"guild", "filter", "rule"})

	// EvalLatency records per-message evaluation latency in seconds.
	EvalLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "warden_eval_latency_seconds",
		Help:    "Message evaluation latency in seconds",
		Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
	})

	// ActionsTotal counts dispatched actions, labeled by kind and result
	// ("ok" or "error").
	ActionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "warden_actions_total",
		Help: "Total number of dispatched moderation actions",
	}, []string{"kind", "result"})

	// DispatchQueueSize tracks the current number of action requests waiting
	// to be dispatched.
	DispatchQueueSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "warden_dispatch_queue_size",
		Help: "Current number of queued action requests",
	})

	// SpamKeysActive tracks the number of live (guild, user, kind) windows in
	// the spam tracker.
	SpamKeysActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "warden_spam_keys_active",
		Help: "Current number of tracked spam windows",
	})

	// ConfigReloadsTotal counts configuration reload attempts, labeled by
	// result ("ok" or "error").
	ConfigReloadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "warden_config_reloads_total",
		Help: "Total number of configuration reload attempts",
	}, []string{"result"})

	// QuarantinesTotal counts quarantine escalations by tier.
	QuarantinesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "warden_quarantines_total",
		Help: "Total number of user quarantines applied",
	}, []string{"tier"})
)

func init() {
	prometheus.MustRegister(
		MessagesTotal,
		VerdictsTotal,
		EvalLatency,
		ActionsTotal,
		DispatchQueueSize,
		SpamKeysActive,
		ConfigReloadsTotal,
		QuarantinesTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
