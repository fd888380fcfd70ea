// Package metrics exposes Prometheus counters for queries and catalog loads.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/starford/genedata/internal/models"
)

const namespace = "genedata"

// Metrics owns a private registry so tests and multiple servers in one
// process never collide on the default registerer.
type Metrics struct {
	reg *prometheus.Registry

	queries        *prometheus.CounterVec
	catalogLoads   *prometheus.CounterVec
	catalogRecords prometheus.Gauge
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Queries processed, by command kind and outcome.",
		}, []string{"kind", "status"}),
		catalogLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "catalog_loads_total",
			Help:      "Catalog load attempts, by result.",
		}, []string{"result"}),
		catalogRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_records",
			Help:      "Records in the active catalog.",
		}),
	}
	m.reg.MustRegister(
		m.queries,
		m.catalogLoads,
		m.catalogRecords,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveQuery counts one processed command.
func (m *Metrics) ObserveQuery(kind models.Kind, status models.Status) {
	m.queries.WithLabelValues(kind.String(), status.String()).Inc()
}

// ObserveCatalogLoad counts a load attempt. records is only recorded on success.
func (m *Metrics) ObserveCatalogLoad(records int, err error) {
	if err != nil {
		m.catalogLoads.WithLabelValues("error").Inc()
		return
	}
	m.catalogLoads.WithLabelValues("ok").Inc()
	m.catalogRecords.Set(float64(records))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
