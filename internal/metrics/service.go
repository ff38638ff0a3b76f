package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Service tracks request and breakdown statistics. A nil *Service discards
// everything, so callers never need to check for it.
type Service struct {
	RequestLatency   *Histogram
	BreakdownLatency *Histogram
	LookupLatency    *Histogram

	Requests     atomic.Uint64
	ServerErrors atomic.Uint64
	Breakdowns   atomic.Uint64
	LookupErrors atomic.Uint64
	PointReloads atomic.Uint64

	startTime time.Time
	mu        sync.RWMutex
}

// New creates a metrics collector.
func New() *Service {
	return &Service{
		RequestLatency:   NewHistogram(10000),
		BreakdownLatency: NewHistogram(10000),
		LookupLatency:    NewHistogram(10000),
		startTime:        time.Now(),
	}
}

// RecordRequest records one served HTTP request and its status.
func (m *Service) RecordRequest(d time.Duration, status int) {
	if m == nil {
		return
	}
	m.Requests.Add(1)
	if status >= 500 {
		m.ServerErrors.Add(1)
	}
	m.RequestLatency.Record(d)
}

// RecordBreakdown records one deck aggregation.
func (m *Service) RecordBreakdown(d time.Duration) {
	if m == nil {
		return
	}
	m.Breakdowns.Add(1)
	m.BreakdownLatency.Record(d)
}

// RecordLookup records one card metadata lookup.
func (m *Service) RecordLookup(d time.Duration, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.LookupErrors.Add(1)
	}
	m.LookupLatency.Record(d)
}

// RecordPointReload counts a point list reload.
func (m *Service) RecordPointReload() {
	if m == nil {
		return
	}
	m.PointReloads.Add(1)
}

// Stats is a snapshot of the collected metrics.
type Stats struct {
	RequestLatency   Latency `json:"request_latency"`
	BreakdownLatency Latency `json:"breakdown_latency"`
	LookupLatency    Latency `json:"lookup_latency"`

	Requests     uint64  `json:"requests"`
	ServerErrors uint64  `json:"server_errors"`
	SuccessRate  float64 `json:"success_rate"` // percentage
	Breakdowns   uint64  `json:"breakdowns"`
	LookupErrors uint64  `json:"lookup_errors"`
	PointReloads uint64  `json:"point_reloads"`

	Uptime string `json:"uptime"`
}

// Stats returns a snapshot of the current statistics.
func (m *Service) Stats() *Stats {
	if m == nil {
		return &Stats{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	requests := m.Requests.Load()
	serverErrors := m.ServerErrors.Load()
	successRate := 0.0
	if requests > 0 {
		successRate = float64(requests-serverErrors) / float64(requests) * 100
	}

	return &Stats{
		RequestLatency:   m.RequestLatency.Summary(),
		BreakdownLatency: m.BreakdownLatency.Summary(),
		LookupLatency:    m.LookupLatency.Summary(),
		Requests:         requests,
		ServerErrors:     serverErrors,
		SuccessRate:      successRate,
		Breakdowns:       m.Breakdowns.Load(),
		LookupErrors:     m.LookupErrors.Load(),
		PointReloads:     m.PointReloads.Load(),
		Uptime:           time.Since(m.startTime).Round(time.Second).String(),
	}
}

// Reset clears all metrics.
func (m *Service) Reset() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RequestLatency.Reset()
	m.BreakdownLatency.Reset()
	m.LookupLatency.Reset()

	m.Requests.Store(0)
	m.ServerErrors.Store(0)
	m.Breakdowns.Store(0)
	m.LookupErrors.Store(0)
	m.PointReloads.Store(0)

	m.startTime = time.Now()
}
