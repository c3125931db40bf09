package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(sessionsRotatedTotal, authAttemptsTotal) }

var sessionsRotatedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "sessions_rotated_total",
		Help: "Session tokens recorded in the revocation cache, by principal kind.",
	},
	[]string{"kind"},
)

var authAttemptsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_attempts_total",
		Help: "Sign-up and sign-in attempts by principal kind, operation and result.",
	},
	[]string{"kind", "op", "result"},
)

func IncSessionRotated(kind string) {
	sessionsRotatedTotal.WithLabelValues(norm(kind)).Inc()
}

func IncAuthAttempt(kind, op, result string) {
	authAttemptsTotal.WithLabelValues(norm(kind), norm(op), norm(result)).Inc()
}
