package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpgroster_http_requests_total",
			Help: "Total HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rpgroster_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	CharactersCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpgroster_characters_created_total",
			Help: "Characters created by class",
		},
		[]string{"class"},
	)

	LevelUps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpgroster_level_ups_total",
			Help: "Level-ups by class",
		},
		[]string{"class"},
	)

	Battles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpgroster_battles_total",
			Help: "Battles fought by winning class",
		},
		[]string{"winner_class"},
	)

	VersionConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rpgroster_version_conflicts_total",
			Help: "Concurrent character writes that had to be retried",
		},
	)
)

// RecordHTTPRequest counts a finished request. route is the matched route template,
// not the raw path, so IDs do not blow up label cardinality.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func RecordCharacterCreated(class string) {
	CharactersCreated.WithLabelValues(class).Inc()
}

func RecordLevelUp(class string) {
	LevelUps.WithLabelValues(class).Inc()
}

func RecordBattle(winnerClass string) {
	Battles.WithLabelValues(winnerClass).Inc()
}

func RecordVersionConflict() {
	VersionConflicts.Inc()
}
