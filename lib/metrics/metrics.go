package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "streamwatch"

type Metrics struct {
	Registry *prometheus.Registry

	TrackedStreamers prometheus.Gauge
	Subscriptions    prometheus.Gauge
	ListenerToggles  *prometheus.CounterVec

	EventsReceived *prometheus.CounterVec
	Matches        *prometheus.CounterVec

	Polls      *prometheus.CounterVec
	PollErrors prometheus.Counter

	Sends *prometheus.CounterVec
}

// NewMetrics builds a private registry so tests can construct as many as they
// like without colliding on the default one.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,
		TrackedStreamers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_streamers",
			Help:      "Number of streamers with at least one subscription.",
		}),
		Subscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "subscriptions",
			Help:      "Number of active subscriptions.",
		}),
		ListenerToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listener_toggles_total",
			Help:      "Upstream listener enable/disable calls, by action.",
		}, []string{"action"}),
		EventsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_received_total",
			Help:      "Upstream stream events routed, by kind.",
		}, []string{"kind"}),
		Matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "subscription_matches_total",
			Help:      "Subscriptions fired by upstream events, by kind.",
		}, []string{"kind"}),
		Polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "twitch_polls_total",
			Help:      "Twitch stream polls, by result.",
		}, []string{"result"}),
		PollErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "twitch_poll_errors_total",
			Help:      "Failed Helix stream lookups.",
		}),
		Sends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Notification deliveries, by platform and result.",
		}, []string{"platform", "result"}),
	}

	reg.MustRegister(
		m.TrackedStreamers, m.Subscriptions, m.ListenerToggles,
		m.EventsReceived, m.Matches,
		m.Polls, m.PollErrors,
		m.Sends,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
