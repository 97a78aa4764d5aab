package telemetry

import "sync"

// Metrics is how the registry reports counters. By default they are no-ops,
// a user can provide an implementation if they want their metrics to go somewhere.
type Metrics interface {
	SetCount(key string, value int64)
	SetGauge(key string, value float64)
}

type NOPMetrics struct {
}

func (n NOPMetrics) SetCount(key string, value int64) {
}
func (n NOPMetrics) SetGauge(key string, value float64) {
}

// MemoryMetrics keeps the last value of each key. Handy in tests.
type MemoryMetrics struct {
	lock   sync.Mutex
	counts map[string]int64
	gauges map[string]float64
}

func NewMemoryMetrics() *MemoryMetrics {
	return &MemoryMetrics{counts: map[string]int64{}, gauges: map[string]float64{}}
}

func (m *MemoryMetrics) SetCount(key string, value int64) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.counts[key] = value
}

func (m *MemoryMetrics) SetGauge(key string, value float64) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.gauges[key] = value
}

func (m *MemoryMetrics) Count(key string) int64 {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.counts[key]
}

func (m *MemoryMetrics) Gauge(key string) float64 {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.gauges[key]
}
