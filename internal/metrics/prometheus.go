package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Selection metrics
	AgentSelections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "morpheus_agent_selections_total",
			Help: "Total number of agent selection attempts",
		},
		[]string{"agent", "status"}, // status: success|no_choice|out_of_list|error
	)

	SelectionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "morpheus_agent_selection_duration_seconds",
			Help:    "Agent selection model call duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	// Dispatch metrics
	AgentCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "morpheus_agent_calls_total",
			Help: "Total number of delegated agent calls",
		},
		[]string{"agent", "status"}, // status: success|error|unknown_agent
	)

	// Search metrics
	SearchRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "morpheus_search_requests_total",
			Help: "Total number of outbound web search requests",
		},
		[]string{"status"}, // status: success|error
	)
)

func init() {
	prometheus.MustRegister(
		AgentSelections,
		SelectionDuration,
		AgentCalls,
		SearchRequests,
	)
}

// SelectionTimer starts a timer observing into SelectionDuration.
func SelectionTimer() *prometheus.Timer {
	return prometheus.NewTimer(SelectionDuration)
}

// Handler returns the HTTP handler exposing registered metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
