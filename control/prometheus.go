// control/prometheus.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus bridge for the metrics registry. Integer counters are
// exported as socksupport_operations_total with the registry key as
// the op label; non-numeric values are skipped.

package control

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector adapts a MetricsRegistry to prometheus.Collector.
type PrometheusCollector struct {
	reg  *MetricsRegistry
	desc *prometheus.Desc
}

var _ prometheus.Collector = (*PrometheusCollector)(nil)

// NewPrometheusCollector wraps reg for registration with a prometheus
// registry.
func NewPrometheusCollector(reg *MetricsRegistry) *PrometheusCollector {
	return &PrometheusCollector{
		reg: reg,
		desc: prometheus.NewDesc(
			"socksupport_operations_total",
			"Socket support operations by outcome.",
			[]string{"op"},
			nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *PrometheusCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *PrometheusCollector) Collect(ch chan<- prometheus.Metric) {
	for key, value := range c.reg.GetSnapshot() {
		var f float64
		switch v := value.(type) {
		case int64:
			f = float64(v)
		case int:
			f = float64(v)
		case float64:
			f = v
		default:
			continue
		}
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.CounterValue, f, key)
	}
}
