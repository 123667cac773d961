package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CommandsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoreboard_commands_applied_total",
			Help: "Scoreboard commands applied successfully, by command type",
		},
		[]string{"command"},
	)
	CommandsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoreboard_commands_rejected_total",
			Help: "Scoreboard commands rejected by the state machine, by command type",
		},
		[]string{"command"},
	)
	MatchesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scoreboard_matches_created_total",
			Help: "Match sessions created over the HTTP API",
		},
	)
)

func init() {
	prometheus.MustRegister(CommandsApplied)
	prometheus.MustRegister(CommandsRejected)
	prometheus.MustRegister(MatchesCreated)
}
