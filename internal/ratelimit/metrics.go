package ratelimit

import "github.com/prometheus/client_golang/prometheus"

// Metrics はレート制限のカウンタです。nil でも呼び出せます。
type Metrics struct {
	requests    *prometheus.CounterVec
	blocked     *prometheus.CounterVec
	storeErrors *prometheus.CounterVec
}

// NewMetrics はカウンタを作成して reg に登録します。
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limiter_requests_total",
				Help: "Total requests allowed by the rate limiter",
			},
			[]string{"limiter"},
		),
		blocked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limiter_blocked_total",
				Help: "Total requests blocked by the rate limiter",
			},
			[]string{"limiter"},
		),
		storeErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limiter_store_errors_total",
				Help: "Total store failures; requests are allowed when the store fails",
			},
			[]string{"limiter"},
		),
	}
	reg.MustRegister(m.requests, m.blocked, m.storeErrors)
	return m
}

func (m *Metrics) allowed(name string) {
	if m != nil {
		m.requests.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) rejected(name string) {
	if m != nil {
		m.blocked.WithLabelValues(name).Inc()
	}
}

func (m *Metrics) storeError(name string) {
	if m != nil {
		m.storeErrors.WithLabelValues(name).Inc()
	}
}
