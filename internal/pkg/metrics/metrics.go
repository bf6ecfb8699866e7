// Package metrics Prometheus 指标定义，注册到默认 registry，由 /metrics 暴露
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "coach"

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	ProgressComputed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "progress_snapshots_total",
		Help:      "Progress snapshots computed, by source (api, sweep).",
	}, []string{"source"})

	ProgressAlerts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "progress_alerts_total",
		Help:      "Alerts raised by the progress calculator.",
	}, []string{"alert"})

	AlertJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alert_jobs_total",
		Help:      "Alert jobs handled by the worker, by result.",
	}, []string{"result"})

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "ws_connections",
		Help:      "Open websocket connections.",
	})
)

// ObserveSnapshot 记录一次快照计算及其提醒
func ObserveSnapshot(source string, alerts []string) {
	ProgressComputed.WithLabelValues(source).Inc()
	for _, a := range alerts {
		ProgressAlerts.WithLabelValues(a).Inc()
	}
}
