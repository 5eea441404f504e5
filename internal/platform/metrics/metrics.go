package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alumni_connect_auth_attempts_total",
		Help: "Identity operations by operation and outcome.",
	}, []string{"operation", "outcome"})

	OutboundRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alumni_connect_outbound_requests_total",
		Help: "Requests to external services by target and outcome.",
	}, []string{"target", "outcome"})

	MailDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alumni_connect_mail_deliveries_total",
		Help: "Outbox deliveries by outcome.",
	}, []string{"outcome"})
)

func Outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
