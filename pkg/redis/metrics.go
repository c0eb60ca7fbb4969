package redis

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	goredis "github.com/redis/go-redis/v9"
)

var (
	kvOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "econbot",
		Subsystem: "redis",
		Name:      "kv_operations_total",
		Help:      "Key-value operations by method and result (ok, miss, error).",
	}, []string{"method", "result"})

	kvLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "econbot",
		Subsystem: "redis",
		Name:      "kv_operation_duration_seconds",
		Help:      "Key-value operation latency.",
		Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
	}, []string{"method"})
)

// MetricsClient is the string key-value view used by the guild config cache
// and the user directory, with each call counted and timed.
type MetricsClient struct {
	next *Client
}

func NewMetricsClient(next *Client) *MetricsClient {
	return &MetricsClient{next: next}
}

func (m *MetricsClient) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := observe("get", func() (err error) {
		value, err = m.next.Get(ctx, key)
		return err
	})
	return value, err
}

func (m *MetricsClient) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return observe("set", func() error { return m.next.Set(ctx, key, value, ttl) })
}

func (m *MetricsClient) Delete(ctx context.Context, key string) error {
	return observe("delete", func() error { return m.next.Delete(ctx, key) })
}

func (m *MetricsClient) Close() error {
	return m.next.Close()
}

func observe(method string, call func() error) error {
	start := time.Now()
	err := call()
	kvLatency.WithLabelValues(method).Observe(time.Since(start).Seconds())

	result := "ok"
	switch {
	case errors.Is(err, goredis.Nil):
		result = "miss"
	case err != nil:
		result = "error"
	}
	kvOps.WithLabelValues(method, result).Inc()
	return err
}
