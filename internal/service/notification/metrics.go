package notification

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/simonmuehling/educafric-platform-sub010/internal/domain"
)

const metricsNamespace = "educafric"

// Metrics 分发相关的 prometheus 指标
type Metrics struct {
	results  *prometheus.CounterVec
	cost     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func (m *Metrics) observe(payload domain.NotificationPayload, res domain.NotificationResult, elapsed time.Duration) {
	if m == nil {
		return
	}

	status := "success"
	if !res.Success {
		status = "failure"
	}
	m.results.WithLabelValues(payload.Channel.String(), payload.Template.String(), status).Inc()
	if res.Cost > 0 {
		m.cost.WithLabelValues(payload.Channel.String()).Add(res.Cost)
	}
	m.duration.WithLabelValues(payload.Channel.String()).Observe(elapsed.Seconds())
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "notification_results_total",
			Help:      "Per recipient send results",
		}, []string{"channel", "template", "status"}),
		cost: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "notification_cost_total",
			Help:      "Estimated cost of delivered notifications",
		}, []string{"channel"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "notification_send_seconds",
			Help:      "Time to send a notification to one recipient",
			Buckets:   prometheus.DefBuckets,
		}, []string{"channel"}),
	}
	reg.MustRegister(m.results, m.cost, m.duration)
	return m
}
