package user

import "github.com/prometheus/client_golang/prometheus"

var accountEvents = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "user_account_events_total", Help: "Account lifecycle operations by outcome"},
	[]string{"event", "outcome"},
)

func init() { prometheus.MustRegister(accountEvents) }

func observe(event string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	accountEvents.WithLabelValues(event, outcome).Inc()
}
