package cache

import (
	awspkg "github.com/doguaydn/microservices-e-commerce/pkg/aws"
)

// MetricsObserver reports hits and misses to CloudWatch, tagged by namespace.
type MetricsObserver struct {
	metrics *awspkg.MetricsClient
	service string
}

func NewMetricsObserver(metrics *awspkg.MetricsClient, service string) *MetricsObserver {
	return &MetricsObserver{metrics: metrics, service: service}
}

func (o *MetricsObserver) Hit(namespace string) {
	o.metrics.CountAsync(awspkg.MetricCacheHits, map[string]string{"Service": o.service, "Namespace": namespace})
}

func (o *MetricsObserver) Miss(namespace string) {
	o.metrics.CountAsync(awspkg.MetricCacheMisses, map[string]string{"Service": o.service, "Namespace": namespace})
}
