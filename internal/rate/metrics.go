package rate

import "github.com/prometheus/client_golang/prometheus"

var (
	retryAfterGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "comfortd_rate_limit_retry_after_seconds",
			Help: "Cooldown applied after the provider throttled us",
		},
		[]string{"provider"},
	)
	lastStatusGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "comfortd_rate_limit_last_status_code",
			Help: "Last HTTP status code observed by the rate-limit wrapper",
		},
		[]string{"provider"},
	)
	blockedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comfortd_rate_limit_blocked_total",
			Help: "Requests rejected locally during a provider cooldown",
		},
		[]string{"provider"},
	)
)

// MetricsCollectors exposes shared rate-limit collectors.
func MetricsCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		retryAfterGauge,
		lastStatusGauge,
		blockedCounter,
	}
}
