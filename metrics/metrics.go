package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var MatchesCreatedCounter = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "battlescore_matches_created_total",
		Help: "Number of matches created, manual and automatic",
	},
)

var MatchesFinishedCounter = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "battlescore_matches_finished_total",
		Help: "Number of matches moved to DONE",
	},
)

var ScoresUpsertedCounter = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "battlescore_scores_upserted_total",
		Help: "Number of score rows written",
	},
)

var StandingsRefreshCounter = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "battlescore_standings_refresh_total",
		Help: "Number of standings snapshot refreshes",
	},
)

var WebsocketConnectionsGauge = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "battlescore_websocket_connections",
		Help: "Currently open websocket connections",
	},
)

var EventsPublishedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "battlescore_events_published_total",
	Help: "The total number of tournament events published by type",
}, []string{"type"})
