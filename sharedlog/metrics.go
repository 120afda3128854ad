package sharedlog

import "github.com/prometheus/client_golang/prometheus"

// metrics - the small set of gauges/counters a running Node exposes.
// Registered against the default registry under a name-prefixed
// namespace so more than one Node (multiple logs in one process) can
// coexist without collector name collisions.
type metrics struct {
	replicationFactor prometheus.Gauge
	leaderGIDs        prometheus.Gauge
	exchangeHeadsRX   prometheus.Counter
	pruneRounds       prometheus.Counter
	rebalanceTicks    prometheus.Counter
}

func newMetrics(name string) *metrics {
	if "" == name {
		name = "default"
	}
	constLabels := prometheus.Labels{"log": name}

	m := &metrics{
		replicationFactor: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "peerlog",
			Subsystem:   "sharedlog",
			Name:        "replication_factor",
			Help:        "current local replication factor",
			ConstLabels: constLabels,
		}),
		leaderGIDs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "peerlog",
			Subsystem:   "sharedlog",
			Name:        "leader_gids",
			Help:        "number of gids this peer is currently a leader for",
			ConstLabels: constLabels,
		}),
		exchangeHeadsRX: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "peerlog",
			Subsystem:   "sharedlog",
			Name:        "exchange_heads_received_total",
			Help:        "ExchangeHeads messages received",
			ConstLabels: constLabels,
		}),
		pruneRounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "peerlog",
			Subsystem:   "sharedlog",
			Name:        "prune_rounds_total",
			Help:        "RequestIPrune rounds completed",
			ConstLabels: constLabels,
		}),
		rebalanceTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "peerlog",
			Subsystem:   "sharedlog",
			Name:        "rebalance_ticks_total",
			Help:        "adaptive rebalance ticks evaluated",
			ConstLabels: constLabels,
		}),
	}

	// Registration failures (a second Node under the same name in the
	// same process) are not fatal - metrics are observability, not a
	// correctness dependency - so the collectors are still returned
	// usable even if the default registry already holds one with the
	// same descriptor.
	_ = prometheus.Register(m.replicationFactor)
	_ = prometheus.Register(m.leaderGIDs)
	_ = prometheus.Register(m.exchangeHeadsRX)
	_ = prometheus.Register(m.pruneRounds)
	_ = prometheus.Register(m.rebalanceTicks)

	return m
}
