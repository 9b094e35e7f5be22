package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		sessionsActive,
		sessionsCreated,
		sessionsExpired,
	)
}

var (
	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_active",
			Help: "Sessions currently held in the store.",
		},
	)

	sessionsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_created_total",
			Help: "Sessions created since start.",
		},
	)

	sessionsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_expired_total",
			Help: "Sessions removed by the expiry sweeper.",
		},
	)
)

func SetActiveSessions(n int) { sessionsActive.Set(float64(n)) }

func IncSessionCreated() { sessionsCreated.Inc() }

func AddSessionsExpired(n int) { sessionsExpired.Add(float64(n)) }
