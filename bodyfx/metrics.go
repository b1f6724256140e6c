package bodyfx

import (
	"github.com/advdv/fetchbody/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// NewRegistry creates the registry the app's metrics are registered with, separate
// from the prometheus default registry.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

func newCollector(reg *prometheus.Registry, env Environment, logger *zap.Logger) *metrics.Collector {
	return metrics.NewCollector(reg, env.metricsNamespace(), logger)
}
