package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesRequested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tuktuk", Name: "rides_requested_total",
		Help: "Total ride requests accepted by the dispatcher",
	})
	RidesPooled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tuktuk", Name: "rides_pooled_total",
		Help: "Ride requests created without an advisory driver",
	})
	AcceptWins = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tuktuk", Name: "accept_wins_total",
		Help: "Accept attempts that committed the claim",
	})
	AcceptConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tuktuk", Name: "accept_conflicts_total",
		Help: "Accept attempts that lost the claim race",
	})
	RidesFinished = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tuktuk", Name: "rides_finished_total",
		Help: "Rides that reached the terminal status",
	})
	DriversAvailable = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tuktuk", Name: "drivers_available",
		Help: "Drivers currently in the available pool",
	})
	FeedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tuktuk", Name: "feed_events_total",
		Help: "Change feed events published, by kind",
	}, []string{"kind"})
)
