package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics agrupa los contadores de autenticacion expuestos en /metrics.
type Metrics struct {
	registry       *prometheus.Registry
	GuardDecisions *prometheus.CounterVec
	AuthOperations *prometheus.CounterVec
}

// NewMetrics usa un registry propio para no contaminar el global.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: registry,
		GuardDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_guard_decisions_total",
				Help: "Total de decisiones de guard por estrategia y resultado",
			},
			[]string{"guard", "result"},
		),
		AuthOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_operations_total",
				Help: "Total de operaciones de autenticacion por operacion y status",
			},
			[]string{"operation", "status"},
		),
	}
	registry.MustRegister(m.GuardDecisions)
	registry.MustRegister(m.AuthOperations)
	return m
}

func (m *Metrics) guardDecision(guard, result string) {
	if m == nil {
		return
	}
	m.GuardDecisions.WithLabelValues(guard, result).Inc()
}

func (m *Metrics) operation(name, status string) {
	if m == nil {
		return
	}
	m.AuthOperations.WithLabelValues(name, status).Inc()
}

// Handler expone el registry en formato prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
