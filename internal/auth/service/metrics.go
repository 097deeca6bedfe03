package service

import "blogspace/internal/observability/metrics"

func incrementRegistrations() {
	metrics.RegistrationsTotal.Inc()
}

func incrementLogins() {
	metrics.LoginsTotal.Inc()
}

func incrementTokensIssued() {
	metrics.TokensIssued.Inc()
}

func incrementAuthFailures(reason string) {
	metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()
}
