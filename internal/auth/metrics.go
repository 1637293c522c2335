package auth

import "github.com/prometheus/client_golang/prometheus"

var (
	loginSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "comfortd_auth_login_success_total",
		Help: "Successful full login sequences",
	})
	loginFailure = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "comfortd_auth_login_failure_total",
		Help: "Failed full login sequences",
	})
	refreshSuccess = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "comfortd_auth_refresh_success_total",
		Help: "Successful refresh-token exchanges",
	})
	refreshFailure = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "comfortd_auth_refresh_failure_total",
		Help: "Failed refresh-token exchanges (each one triggers a login)",
	})
	tokenValid = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "comfortd_auth_token_valid",
		Help: "Access token validity (1=valid, 0=invalid)",
	})
)

// MetricsCollectors returns collectors for the auth module.
func MetricsCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		loginSuccess,
		loginFailure,
		refreshSuccess,
		refreshFailure,
		tokenValid,
	}
}
