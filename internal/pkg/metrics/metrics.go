package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RoundsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crashgate_rounds_total",
		Help: "The total number of rounds finished",
	})

	CrashMultiplier = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "crashgate_crash_multiplier",
		Help:    "Distribution of crash multipliers",
		Buckets: []float64{1.0, 1.2, 1.5, 2, 3, 5, 10, 25, 100, 1000, 10000},
	})

	BetsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crashgate_bets_total",
		Help: "The total number of bet commands processed",
	}, []string{"status"})

	CashoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crashgate_cashouts_total",
		Help: "The total number of cashout settlements processed",
	}, []string{"kind", "status"})

	LiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crashgate_ws_connections",
		Help: "Number of authenticated realtime connections",
	})

	DroppedBroadcasts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crashgate_broadcast_dropped_total",
		Help: "Broadcast frames dropped because a client send buffer was full",
	})

	LatencyBucket = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crashgate_latency_bucket",
		Help:    "Request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
)
