package repository

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// queryDuration times the heavy preload queries so slow tournaments show
// up in the metrics endpoint.
var queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name: "battlescore_sql_query_duration_seconds",
	Help: "Duration of sql queries in seconds",
}, []string{"query"})
