package service

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the service-level prometheus collectors.
type Metrics struct {
	notarizations *prometheus.CounterVec
}

// NewMetrics creates and registers the service metrics on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		notarizations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notarizations_total",
				Help: "Total number of successful notarize calls.",
			},
			[]string{"scenario"},
		),
	}
	if err := reg.Register(m.notarizations); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) observeNotarization(scenario string) {
	if m == nil {
		return
	}
	m.notarizations.WithLabelValues(scenario).Inc()
}
