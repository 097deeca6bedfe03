package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RegistrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_registrations_total",
			Help: "Total number of successful registrations",
		},
	)

	LoginsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_logins_total",
			Help: "Total number of successful logins",
		},
	)

	AuthFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blog_auth_failures_total",
			Help: "Total number of failed auth attempts",
		},
		[]string{"reason"},
	)

	TokensIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "blog_tokens_issued_total",
			Help: "Total number of access tokens issued",
		},
	)
)
