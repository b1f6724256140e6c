// Package metrics records body consumption outcomes as prometheus metrics.
package metrics

import (
	"time"

	"github.com/advdv/fetchbody"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// OutcomeFulfilled labels consumptions whose promise was fulfilled. Rejections are
// labeled with the name of their error code.
const OutcomeFulfilled = "fulfilled"

// Collector implements [fetchbody.Observer] on top of prometheus.
type Collector struct {
	consumeTotal    *prometheus.CounterVec
	consumeBytes    *prometheus.HistogramVec
	consumeDuration *prometheus.HistogramVec

	logger *zap.Logger
}

// NewCollector creates the collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer, namespace string, logger *zap.Logger) *Collector {
	factory := promauto.With(reg)
	c := &Collector{logger: logger.With(zap.String("component", "metrics"))}

	c.consumeTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consume_total",
			Help:      "Total number of body consumptions by outcome",
		},
		[]string{"op", "outcome"},
	)

	c.consumeBytes = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "consume_bytes",
			Help:      "Number of body bytes handed to a converter",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 10),
		},
		[]string{"op"},
	)

	c.consumeDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "consume_duration_seconds",
			Help:      "Time from starting a consumption until its promise settled",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	return c
}

// ObserveConsume implements [fetchbody.Observer].
func (c *Collector) ObserveConsume(op fetchbody.Op, err error, size int, took time.Duration) {
	outcome := OutcomeFulfilled
	if err != nil {
		outcome = fetchbody.CodeOf(err).String()
		c.logger.Debug("consume rejected",
			zap.String("op", string(op)),
			zap.String("outcome", outcome),
			zap.Error(err))
	}

	c.consumeTotal.WithLabelValues(string(op), outcome).Inc()
	c.consumeBytes.WithLabelValues(string(op)).Observe(float64(size))
	c.consumeDuration.WithLabelValues(string(op)).Observe(took.Seconds())
}

var _ fetchbody.Observer = (*Collector)(nil)
