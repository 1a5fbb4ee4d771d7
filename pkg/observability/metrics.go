package observability

import (
	"errors"
	"net/http"

	"github.com/aretw0/reshape/pkg/schema"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Record outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Metrics holds the transformation collectors.
type Metrics struct {
	Records   *prometheus.CounterVec
	Fallbacks *prometheus.CounterVec
	Duration  *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg uses a fresh private registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		Records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reshape_records_total",
				Help: "Total number of transformed records",
			},
			[]string{"schema", "outcome"},
		),
		Fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reshape_field_fallbacks_total",
				Help: "Field values replaced by a default or kept unformatted",
			},
			[]string{"schema", "stage"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reshape_record_duration_seconds",
				Help:    "Duration of record transformations",
				Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
			},
			[]string{"schema"},
		),
	}
	reg.MustRegister(m.Records, m.Fallbacks, m.Duration)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// Hooks returns schema hooks that feed the collectors.
func (m *Metrics) Hooks() schema.Hooks {
	return schema.Hooks{
		OnField: func(e *schema.FieldEvent) {
			m.Fallbacks.WithLabelValues(e.Schema, string(e.Stage)).Inc()
		},
		OnRecord: func(e *schema.RecordEvent) {
			m.Records.WithLabelValues(e.Schema, outcome(e.Err)).Inc()
			m.Duration.WithLabelValues(e.Schema).Observe(e.Duration.Seconds())
		},
	}
}

// Handler serves the registry the metrics were registered with.
// It falls back to the default gatherer.
func (m *Metrics) Handler() http.Handler {
	if m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, schema.ErrValidation):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}
